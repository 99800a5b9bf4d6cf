package models

import (
	"encoding/json"
	"time"
)

// Payment session statuses.
const (
	SessionCreated   = "created"
	SessionApproved  = "approved"
	SessionFailed    = "failed"
	SessionConfirmed = "confirmed"
)

// SessionTTL is how long a payment session stays readable after creation.
const SessionTTL = 3 * 24 * time.Hour

// PaymentSession maps to the `payment_session` table. It bridges a cart and
// an order: the item snapshot is frozen at creation and never re-derived.
type PaymentSession struct {
	ID              string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Status          string    `gorm:"column:status;size:20;index" json:"status"`
	Reference       string    `gorm:"column:reference;size:64;uniqueIndex" json:"reference"`
	ItemsJSON       string    `gorm:"column:items;type:text" json:"-"`
	Street          string    `gorm:"column:street;size:500" json:"street"`
	City            string    `gorm:"column:city;size:200" json:"city"`
	Country         string    `gorm:"column:country;size:100" json:"country"`
	FirstName       string    `gorm:"column:first_name;size:200" json:"first_name"`
	LastName        string    `gorm:"column:last_name;size:200" json:"last_name"`
	Email           string    `gorm:"column:email;size:300" json:"email"`
	Mobile          string    `gorm:"column:mobile;size:50" json:"mobile"`
	SecondaryMobile string    `gorm:"column:secondary_mobile;size:50" json:"secondary_mobile,omitempty"`
	CouponCode      string    `gorm:"column:coupon_code;size:100" json:"coupon_code,omitempty"`
	CouponDiscount  float64   `gorm:"column:coupon_discount" json:"coupon_discount,omitempty"`
	Currency        string    `gorm:"column:currency;size:10" json:"currency"`
	ShippingFee     float64   `gorm:"column:shipping_fee" json:"shipping_fee"`
	TotalWithShip   float64   `gorm:"column:total_with_shipping" json:"total_with_shipping,omitempty"`
	OrderRef        string    `gorm:"column:order_ref;size:64" json:"order_ref,omitempty"`
	GatewayResponse string    `gorm:"column:gateway_response;type:text" json:"-"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	ExpiresAt       time.Time `gorm:"column:expires_at;index" json:"expires_at"`
}

func (PaymentSession) TableName() string {
	return "payment_session"
}

// SessionItem is one line of the frozen cart snapshot, serialized into the
// items text column.
type SessionItem struct {
	ProductRef      string   `json:"product_ref"`
	SKU             string   `json:"sku,omitempty"`
	Quantity        int      `json:"quantity"`
	Size            string   `json:"size,omitempty"`
	Color           string   `json:"color,omitempty"`
	VariantRef      string   `json:"variant_ref,omitempty"`
	SelectedOptions []string `json:"selected_options,omitempty"`
}

// Items decodes the snapshot. A corrupt column yields an empty slice; the
// confirmation path treats that the same as a session without items.
func (s *PaymentSession) Items() []SessionItem {
	var items []SessionItem
	if s.ItemsJSON != "" {
		_ = json.Unmarshal([]byte(s.ItemsJSON), &items)
	}
	return items
}

// SetItems freezes the snapshot. Only called at creation.
func (s *PaymentSession) SetItems(items []SessionItem) {
	b, _ := json.Marshal(items)
	s.ItemsJSON = string(b)
}

// Expired reports whether the session is past its TTL. Reads at the
// repository layer already filter on expires_at; this is for callers that
// hold an instance loaded earlier.
func (s *PaymentSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
