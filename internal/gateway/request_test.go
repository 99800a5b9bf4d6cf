package gateway

import (
	"math"
	"testing"
)

func TestBuildRequest(t *testing.T) {
	cfg := Config{
		Secret:          "sk_live_12345",
		RedirectURL:     "https://shop.example/return",
		NotifyURL:       "https://shop.example/payment/smartpay/notify",
		MaxInstallments: 3,
		Discount:        5,
	}
	snap := OrderSnapshot{
		Reference: "PS-1-abc",
		Amount:    149.5,
		Currency:  "SAR",
		FirstName: "Nora",
		LastName:  "Hassan",
		Email:     "nora@example.com",
		Mobile:    "0555555555",
		Street:    "1 Main St",
		City:      "Riyadh",
		Country:   "SA",
	}

	t.Run("Given config defaults and no overrides When built Then config values are used", func(t *testing.T) {
		req := BuildRequest(snap, cfg, Overrides{})
		if req.Token != "sk_live_12345" {
			t.Errorf("Token = %q", req.Token)
		}
		if req.RedirectURL != cfg.RedirectURL {
			t.Errorf("RedirectURL = %q", req.RedirectURL)
		}
		if req.NotifyURL != cfg.NotifyURL {
			t.Errorf("NotifyURL = %q", req.NotifyURL)
		}
		if req.MaxInstallments != 3 {
			t.Errorf("MaxInstallments = %d", req.MaxInstallments)
		}
	})

	t.Run("Given overrides When built Then overrides win over config", func(t *testing.T) {
		installments := 12
		exempt := true
		discount := 7.5
		req := BuildRequest(snap, cfg, Overrides{
			Reference:       "PS-2-def",
			RedirectURL:     "https://other.example/return",
			NotifyURL:       "https://other.example/notify",
			MaxInstallments: &installments,
			VATExempt:       &exempt,
			Discount:        &discount,
		})
		if req.Reference != "PS-2-def" {
			t.Errorf("Reference = %q", req.Reference)
		}
		if req.RedirectURL != "https://other.example/return" {
			t.Errorf("RedirectURL = %q", req.RedirectURL)
		}
		if req.NotifyURL != "https://other.example/notify" {
			t.Errorf("NotifyURL = %q", req.NotifyURL)
		}
		if req.MaxInstallments != 12 || !req.VATExempt || req.Discount != 7.5 {
			t.Errorf("override fields = %d %v %v", req.MaxInstallments, req.VATExempt, req.Discount)
		}
	})

	t.Run("Given no configured notify URL When built Then it derives from the inbound request", func(t *testing.T) {
		bare := cfg
		bare.NotifyURL = ""
		req := BuildRequest(snap, bare, Overrides{
			RequestScheme: "http",
			RequestHost:   "staging.shop.example",
		})
		want := "http://staging.shop.example" + WebhookPath
		if req.NotifyURL != want {
			t.Errorf("NotifyURL = %q, want %q", req.NotifyURL, want)
		}
	})

	t.Run("Given a reference When built Then order label and comments are derived from it", func(t *testing.T) {
		req := BuildRequest(snap, cfg, Overrides{})
		if req.OrderLabel != "Order PS-1-abc" {
			t.Errorf("OrderLabel = %q", req.OrderLabel)
		}
		if req.Comments != "Payment for order PS-1-abc" {
			t.Errorf("Comments = %q", req.Comments)
		}
	})

	t.Run("Given non-finite numbers When built Then they are coerced to zero", func(t *testing.T) {
		dirty := snap
		dirty.Amount = math.NaN()
		dirty.Items = []SnapshotItem{{Description: "Shirt", Quantity: math.Inf(1), UnitPrice: math.Inf(-1)}}
		req := BuildRequest(dirty, cfg, Overrides{})
		if req.Amount != 0 {
			t.Errorf("Amount = %v, want 0", req.Amount)
		}
		if req.Items[0].Quantity != 0 || req.Items[0].UnitPrice != 0 {
			t.Errorf("item numbers = %v %v, want zeros", req.Items[0].Quantity, req.Items[0].UnitPrice)
		}
	})

	t.Run("Given an invalid customer IP When built Then the ip field is left empty", func(t *testing.T) {
		req := BuildRequest(snap, cfg, Overrides{CustomerIP: "999.1.1.1"})
		if req.CustomerIP != "" {
			t.Errorf("CustomerIP = %q, want empty", req.CustomerIP)
		}
	})
}

func TestWireMap(t *testing.T) {
	t.Run("Given empty optional strings When mapped Then they are pruned but numbers survive", func(t *testing.T) {
		req := Request{Token: "tok", Reference: "r1", Amount: 0, MaxInstallments: 0}
		m := req.WireMap()
		if _, ok := m["email"]; ok {
			t.Error("empty email should be pruned")
		}
		if _, ok := m["redirectUrl"]; ok {
			t.Error("empty redirectUrl should be pruned")
		}
		if v, ok := m["amount"]; !ok || v.(float64) != 0 {
			t.Errorf("amount = %v, want explicit 0", m["amount"])
		}
		if v, ok := m["maxInstallments"]; !ok || v.(int) != 0 {
			t.Errorf("maxInstallments = %v, want explicit 0", m["maxInstallments"])
		}
		if m["token"] != "tok" || m["trackid"] != "r1" {
			t.Errorf("identity fields = %v %v", m["token"], m["trackid"])
		}
	})

	t.Run("Given line items When mapped Then they ship under items", func(t *testing.T) {
		req := Request{Token: "tok", Items: []LineItem{{Description: "Shirt", Quantity: 2, UnitPrice: 10}}}
		m := req.WireMap()
		items, ok := m["items"].([]LineItem)
		if !ok || len(items) != 1 {
			t.Fatalf("items = %v", m["items"])
		}
	})
}

func TestValidIPv4(t *testing.T) {
	valid := []string{"203.0.113.5", "0.0.0.0", "255.255.255.255"}
	invalid := []string{"", "1.2.3", "1.2.3.4.5", "999.1.1.1", "1.2.3.a", "2001:db8::1", " 1.2.3.4", "01234.1.1.1"}

	for _, ip := range valid {
		if !ValidIPv4(ip) {
			t.Errorf("ValidIPv4(%q) = false, want true", ip)
		}
	}
	for _, ip := range invalid {
		if ValidIPv4(ip) {
			t.Errorf("ValidIPv4(%q) = true, want false", ip)
		}
	}
}
