package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"storeapi/internal/pkg/utils"
	"storeapi/internal/repository"
)

// Scheduler manages all cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	repos  *CronRepos
	logger *zap.Logger
}

// CronRepos bundles repositories needed by cron jobs.
type CronRepos struct {
	Session *repository.SessionRepository
	Order   *repository.OrderRepository
}

// New creates a new cron scheduler.
func New(repos *CronRepos, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		repos:  repos,
		logger: logger,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler...")

	// Purge expired payment sessions - every hour
	s.cron.AddFunc("0 0 * * * *", func() {
		s.logger.Debug("Running: purge expired sessions")
		s.purgeExpiredSessions()
	})

	// Daily sales report - at 23:45
	s.cron.AddFunc("0 45 23 * * *", func() {
		s.logger.Debug("Running: daily sales report")
		s.dailySalesReport()
	})

	s.cron.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping cron scheduler...")
	return s.cron.Stop()
}

func (s *Scheduler) recoverFromPanic(job string) {
	if r := recover(); r != nil {
		s.logger.Error("Cron job panicked",
			zap.String("job", job), zap.Any("panic", r))
	}
}

// purgeExpiredSessions physically deletes sessions past their TTL. Reads
// already treat expired rows as absent; this just reclaims the space.
func (s *Scheduler) purgeExpiredSessions() {
	defer s.recoverFromPanic("purgeExpiredSessions")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.repos.Session.PurgeExpired(ctx)
	if err != nil {
		s.logger.Error("Failed to purge expired sessions", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("Purged expired payment sessions", zap.Int64("count", count))
	}
}

// dailySalesReport logs order count and revenue for the current day.
func (s *Scheduler) dailySalesReport() {
	defer s.recoverFromPanic("dailySalesReport")

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	count, revenue, err := s.repos.Order.StatsSince(midnight)
	if err != nil {
		s.logger.Error("Failed to compute daily sales report", zap.Error(err))
		return
	}
	s.logger.Info("Daily sales report",
		zap.String("date", now.Format("2006-01-02")),
		zap.String("orders", utils.FormatNumber(count)),
		zap.Float64("revenue", revenue))
}
