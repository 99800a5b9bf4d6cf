package repository

import (
	"gorm.io/gorm"

	"storeapi/internal/models"
)

// BannerRepository handles storefront banner database operations.
type BannerRepository struct {
	db *gorm.DB
}

func NewBannerRepository(db *gorm.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

// FindActive returns active banners ordered by position.
func (r *BannerRepository) FindActive() ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Where("active = ?", true).Order("position ASC").Find(&banners).Error
	return banners, err
}

// FindAll returns all banners.
func (r *BannerRepository) FindAll() ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Order("position ASC").Find(&banners).Error
	return banners, err
}

// Create creates a new banner.
func (r *BannerRepository) Create(banner *models.Banner) error {
	return r.db.Create(banner).Error
}

// Update updates a banner.
func (r *BannerRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Banner{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a banner.
func (r *BannerRepository) Delete(id uint) error {
	return r.db.Where("id = ?", id).Delete(&models.Banner{}).Error
}
