package models

import (
	"encoding/json"
	"time"
)

// Product maps to the `product` table. Ref is the stable catalog identifier
// carried in cart snapshots; Price is the authoritative unit price used when
// a payment session is confirmed.
type Product struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Ref       string    `gorm:"column:ref;size:64;uniqueIndex" json:"ref"`
	Name      string    `gorm:"column:name;size:500" json:"name"`
	SKU       string    `gorm:"column:sku;size:100" json:"sku"`
	Price     float64   `gorm:"column:price" json:"price"`
	Stock     int       `gorm:"column:stock" json:"stock"`
	Sizes     string    `gorm:"column:sizes;type:text" json:"-"`
	Colors    string    `gorm:"column:colors;type:text" json:"-"`
	ImageURL  string    `gorm:"column:image_url;size:1000" json:"image_url,omitempty"`
	Category  string    `gorm:"column:category;size:200" json:"category,omitempty"`
	Active    bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}

// SizeList decodes the sizes JSON column.
func (p *Product) SizeList() []string {
	return decodeStringList(p.Sizes)
}

// ColorList decodes the colors JSON column.
func (p *Product) ColorList() []string {
	return decodeStringList(p.Colors)
}

func decodeStringList(raw string) []string {
	var list []string
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &list)
	}
	return list
}
