package gateway

import (
	"strings"
	"time"
)

// Transport preferences.
const (
	TransportJSON = "json"
	TransportSOAP = "soap"
	TransportAuto = "auto"
)

// Config is the read-only gateway snapshot assembled from store settings
// with environment fallbacks. Built fresh per call site; never mutated.
type Config struct {
	Enabled         bool
	BaseURL         string
	Transport       string
	Secret          string
	RedirectURL     string
	NotifyURL       string
	MaxInstallments int
	VATExempt       bool
	Discount        float64
	ForceTest       bool
	MinTimeout      time.Duration
	MaxTimeout      time.Duration
}

func (c Config) transport() string {
	switch strings.ToLower(strings.TrimSpace(c.Transport)) {
	case TransportJSON:
		return TransportJSON
	case TransportSOAP:
		return TransportSOAP
	default:
		return TransportAuto
	}
}

// attemptTimeout bounds a single candidate attempt. The window defaults to
// 10-20s and is clamped to a 5s floor so a misconfigured value cannot make
// every attempt fail instantly.
func (c Config) attemptTimeout() time.Duration {
	min := c.MinTimeout
	if min <= 0 {
		min = 10 * time.Second
	}
	max := c.MaxTimeout
	if max <= 0 {
		max = 20 * time.Second
	}
	if max < min {
		max = min
	}
	if max < 5*time.Second {
		max = 5 * time.Second
	}
	return max
}
