package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storeapi/internal/models"
)

// SessionRepository handles payment session database operations. Sessions
// carry a hard TTL: every read filters on expires_at, so an expired row is
// indistinguishable from a missing one whether or not the purge job has
// deleted it yet.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.PaymentSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindActiveByID returns a non-expired session by ID.
func (r *SessionRepository) FindActiveByID(ctx context.Context, id string) (*models.PaymentSession, error) {
	var session models.PaymentSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, time.Now()).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByReference returns a non-expired session by tracking reference.
func (r *SessionRepository) FindActiveByReference(ctx context.Context, reference string) (*models.PaymentSession, error) {
	var session models.PaymentSession
	err := r.db.WithContext(ctx).
		Where("reference = ? AND expires_at > ?", reference, time.Now()).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// AdvanceStatus moves a session from one status to another. The conditional
// WHERE makes it a no-op when the session already left the expected status,
// which keeps webhook retries idempotent.
func (r *SessionRepository) AdvanceStatus(ctx context.Context, id, from, to string) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentSession{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to).Error
}

// ClaimConfirmation atomically marks the session confirmed and links the
// order. Returns false when a concurrent confirm already claimed it, or the
// session reached the terminal failed status in the meantime: the
// conditional UPDATE is the compare-and-set that prevents two orders from
// being kept for one session and keeps failed sessions failed.
func (r *SessionRepository) ClaimConfirmation(ctx context.Context, id, orderRef string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentSession{}).
		Where("id = ? AND order_ref = '' AND status NOT IN ?",
			id, []string{models.SessionConfirmed, models.SessionFailed}).
		Updates(map[string]interface{}{
			"status":    models.SessionConfirmed,
			"order_ref": orderRef,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetGatewayResponse stores the raw gateway payload for support/audit.
func (r *SessionRepository) SetGatewayResponse(ctx context.Context, id, payload string) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentSession{}).
		Where("id = ?", id).
		Update("gateway_response", payload).Error
}

// PurgeExpired physically deletes sessions past their TTL.
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.PaymentSession{})
	return res.RowsAffected, res.Error
}
