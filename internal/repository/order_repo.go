package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storeapi/internal/models"
)

// OrderRepository handles order database operations.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID returns an order by ID.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete removes an order. Only used to discard the redundant order when a
// concurrent confirmation lost the compare-and-set.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{}).Error
}

// FindAll returns orders with pagination and search.
func (r *OrderRepository) FindAll(limit, page int, query string) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	db := r.db.Model(&models.Order{})
	if query != "" {
		search := "%" + query + "%"
		db = db.Where("order_number LIKE ? OR reference LIKE ? OR email LIKE ?",
			search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Limit(limit).Offset(offset).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// StatsSince returns order count and revenue since the given time, for the
// daily report job.
func (r *OrderRepository) StatsSince(since time.Time) (int64, float64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).
		Where("created_at >= ?", since).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	var sum float64
	err := r.db.Model(&models.Order{}).
		Where("created_at >= ?", since).
		Select("COALESCE(SUM(total), 0)").Scan(&sum).Error
	return count, sum, err
}
