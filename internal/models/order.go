package models

import (
	"encoding/json"
	"time"
)

// Order payment statuses.
const (
	OrderPaymentCompleted = "completed"
	OrderPaymentPending   = "pending"
)

// Order maps to the `orders` table. Created exactly once per confirmed
// payment session; totals are recomputed from the live catalog at
// confirmation time, never copied from the session snapshot.
type Order struct {
	ID            string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	OrderNumber   string    `gorm:"column:order_number;size:64;uniqueIndex" json:"order_number"`
	Reference     string    `gorm:"column:reference;size:64;index" json:"reference"`
	ItemsJSON     string    `gorm:"column:items;type:text" json:"-"`
	Subtotal      float64   `gorm:"column:subtotal" json:"subtotal"`
	ShippingFee   float64   `gorm:"column:shipping_fee" json:"shipping_fee"`
	Total         float64   `gorm:"column:total" json:"total"`
	CouponCode    string    `gorm:"column:coupon_code;size:100" json:"coupon_code,omitempty"`
	CouponAmount  float64   `gorm:"column:coupon_amount" json:"coupon_amount,omitempty"`
	Currency      string    `gorm:"column:currency;size:10" json:"currency"`
	PaymentMethod string    `gorm:"column:payment_method;size:50" json:"payment_method"`
	PaymentStatus string    `gorm:"column:payment_status;size:20" json:"payment_status"`
	CustomerName  string    `gorm:"column:customer_name;size:400" json:"customer_name"`
	Email         string    `gorm:"column:email;size:300" json:"email"`
	Mobile        string    `gorm:"column:mobile;size:50" json:"mobile"`
	Street        string    `gorm:"column:street;size:500" json:"street"`
	City          string    `gorm:"column:city;size:200" json:"city"`
	Country       string    `gorm:"column:country;size:100" json:"country"`
	CreatedAt     time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one priced line of an order, serialized into the items column.
// UnitPrice is the live catalog price captured at confirmation.
type OrderItem struct {
	ProductRef string  `json:"product_ref"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku,omitempty"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Size       string  `json:"size,omitempty"`
	Color      string  `json:"color,omitempty"`
}

func (o *Order) Items() []OrderItem {
	var items []OrderItem
	if o.ItemsJSON != "" {
		_ = json.Unmarshal([]byte(o.ItemsJSON), &items)
	}
	return items
}

func (o *Order) SetItems(items []OrderItem) {
	b, _ := json.Marshal(items)
	o.ItemsJSON = string(b)
}
