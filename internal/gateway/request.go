package gateway

import (
	"math"
	"strconv"
	"strings"
)

// OrderSnapshot is the cart/order view the request builder works from.
// Callers map their session snapshot into this shape; the builder never
// reaches back into storage.
type OrderSnapshot struct {
	Reference string
	Amount    float64
	Currency  string
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Street    string
	City      string
	Country   string
	Items     []SnapshotItem
}

type SnapshotItem struct {
	Description string
	SKU         string
	Quantity    float64
	UnitPrice   float64
}

// Overrides carry caller-level values that win over the config snapshot.
// RequestScheme/RequestHost describe the inbound HTTP request so the IPN
// URL can be derived per environment when none is configured.
type Overrides struct {
	Reference       string
	RedirectURL     string
	NotifyURL       string
	MaxInstallments *int
	VATExempt       *bool
	Discount        *float64
	CustomerIP      string
	RequestScheme   string
	RequestHost     string
}

// LineItem is one outgoing order line.
type LineItem struct {
	Description string  `json:"description"`
	SKU         string  `json:"sku,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"price"`
}

// Request is the gateway's canonical request shape. Ephemeral: built fresh
// per attempt and never persisted.
type Request struct {
	Token           string
	Reference       string
	OrderLabel      string
	Comments        string
	Amount          float64
	Currency        string
	RedirectURL     string
	NotifyURL       string
	MaxInstallments int
	VATExempt       bool
	Discount        float64
	FirstName       string
	LastName        string
	Email           string
	Mobile          string
	Street          string
	City            string
	Country         string
	CustomerIP      string
	Items           []LineItem
}

// BuildRequest maps {snapshot, config, overrides} into the wire request.
// Precedence per field: caller override, then config default, then a
// hard-coded fallback. Pure function.
func BuildRequest(snap OrderSnapshot, cfg Config, ov Overrides) Request {
	ref := firstNonEmpty(ov.Reference, snap.Reference)

	req := Request{
		Token:           cfg.Secret,
		Reference:       ref,
		Amount:          coerceNumber(snap.Amount),
		Currency:        strings.TrimSpace(snap.Currency),
		RedirectURL:     firstNonEmpty(ov.RedirectURL, cfg.RedirectURL),
		NotifyURL:       resolveNotifyURL(ov, cfg),
		MaxInstallments: cfg.MaxInstallments,
		VATExempt:       cfg.VATExempt,
		Discount:        coerceNumber(cfg.Discount),
		FirstName:       snap.FirstName,
		LastName:        snap.LastName,
		Email:           snap.Email,
		Mobile:          snap.Mobile,
		Street:          snap.Street,
		City:            snap.City,
		Country:         snap.Country,
	}

	if ref != "" {
		req.OrderLabel = "Order " + ref
		req.Comments = "Payment for order " + ref
	}
	if ov.MaxInstallments != nil {
		req.MaxInstallments = *ov.MaxInstallments
	}
	if ov.VATExempt != nil {
		req.VATExempt = *ov.VATExempt
	}
	if ov.Discount != nil {
		req.Discount = coerceNumber(*ov.Discount)
	}
	if ValidIPv4(ov.CustomerIP) {
		req.CustomerIP = ov.CustomerIP
	}

	for _, it := range snap.Items {
		req.Items = append(req.Items, LineItem{
			Description: it.Description,
			SKU:         it.SKU,
			Quantity:    coerceNumber(it.Quantity),
			UnitPrice:   coerceNumber(it.UnitPrice),
		})
	}
	return req
}

// resolveNotifyURL falls back to the inbound request's own scheme/host with
// the fixed webhook path, so one build works across environments.
func resolveNotifyURL(ov Overrides, cfg Config) string {
	if ov.NotifyURL != "" {
		return ov.NotifyURL
	}
	if cfg.NotifyURL != "" {
		return cfg.NotifyURL
	}
	if ov.RequestHost != "" {
		scheme := ov.RequestScheme
		if scheme == "" {
			scheme = "https"
		}
		return scheme + "://" + ov.RequestHost + WebhookPath
	}
	return ""
}

type wireField struct {
	Key   string
	Value interface{}
}

// wireFields lists every field that survives pruning, in wire order. Empty
// strings are pruned; numeric and boolean fields always ship (zero is the
// documented fallback, not an absence).
func (r Request) wireFields() []wireField {
	fields := []wireField{
		{"token", r.Token},
		{"trackid", r.Reference},
		{"orderLabel", r.OrderLabel},
		{"comments", r.Comments},
		{"amount", r.Amount},
		{"currency", r.Currency},
		{"redirectUrl", r.RedirectURL},
		{"ipnUrl", r.NotifyURL},
		{"maxInstallments", r.MaxInstallments},
		{"vatExempt", r.VATExempt},
		{"discount", r.Discount},
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"email", r.Email},
		{"mobile", r.Mobile},
		{"street", r.Street},
		{"city", r.City},
		{"country", r.Country},
		{"ip", r.CustomerIP},
	}
	out := fields[:0]
	for _, f := range fields {
		if s, ok := f.Value.(string); ok && s == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// WireMap builds the JSON payload. The wire format does not carry nulls, so
// pruned fields are absent rather than empty.
func (r Request) WireMap() map[string]interface{} {
	m := make(map[string]interface{})
	for _, f := range r.wireFields() {
		m[f.Key] = f.Value
	}
	if len(r.Items) > 0 {
		m["items"] = r.Items
	}
	return m
}

// ValidIPv4 accepts only strict dotted-quad literals: four dot-separated
// decimal octets, digits only, each 0-255.
func ValidIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" || len(p) > 3 {
			return false
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
		}
		n, err := strconv.Atoi(p)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}

// coerceNumber maps NaN and infinities to 0 so they never reach the wire.
func coerceNumber(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
