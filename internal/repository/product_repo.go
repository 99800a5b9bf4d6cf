package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storeapi/internal/models"
)

// ProductRepository handles catalog database operations. It also implements
// the checkout package's Catalog and Inventory collaborators.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindAll returns products with pagination and search.
func (r *ProductRepository) FindAll(limit, page int, query string) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	db := r.db.Model(&models.Product{})
	if query != "" {
		search := "%" + query + "%"
		db = db.Where("name LIKE ? OR sku LIKE ? OR ref LIKE ?", search, search, search)
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

	if err := db.Limit(limit).Offset(offset).Order("id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ProductByRef returns the live catalog record for a snapshot reference.
func (r *ProductRepository) ProductByRef(ctx context.Context, ref string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("ref = ?", ref).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByID returns a product by numeric ID.
func (r *ProductRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create creates a new product.
func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update updates a product.
func (r *ProductRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a product.
func (r *ProductRepository) Delete(id uint) error {
	return r.db.Where("id = ?", id).Delete(&models.Product{}).Error
}

// SetStock overwrites a product's stock level (ERP refresh).
func (r *ProductRepository) SetStock(ctx context.Context, ref string, stock int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("ref = ?", ref).
		Update("stock", stock).Error
}

// Reserve decrements stock for all items as one transaction. Any line that
// cannot be satisfied rolls the whole batch back.
func (r *ProductRepository) Reserve(ctx context.Context, items []models.SessionItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			res := tx.Model(&models.Product{}).
				Where("ref = ? AND stock >= ?", it.ProductRef, it.Quantity).
				Update("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("insufficient stock for product %s", it.ProductRef)
			}
		}
		return nil
	})
}
