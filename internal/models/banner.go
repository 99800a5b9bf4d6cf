package models

import "time"

// Banner maps to the `banner` table (storefront carousel entries).
type Banner struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"column:title;size:500" json:"title"`
	ImageURL  string    `gorm:"column:image_url;size:1000" json:"image_url"`
	LinkURL   string    `gorm:"column:link_url;size:1000" json:"link_url,omitempty"`
	Position  int       `gorm:"column:position" json:"position"`
	Active    bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Banner) TableName() string {
	return "banner"
}
