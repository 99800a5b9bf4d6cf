package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storeapi/internal/checkout"
	"storeapi/internal/middleware"
)

// WebhookHandler receives server-to-server payment notifications (IPN)
// from the gateway. The customer may still be mid-redirect when these
// arrive, so the handler only advances session state and never creates
// orders.
type WebhookHandler struct {
	svc     *checkout.Service
	deduper middleware.NotificationDeduper
	logger  *zap.Logger
}

func NewWebhookHandler(svc *checkout.Service, deduper middleware.NotificationDeduper, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, deduper: deduper, logger: logger}
}

// Field names vary between gateway firmware versions, so both reference
// and result are probed under several keys.
var (
	referenceKeys = []string{"trackid", "TrackId", "trackId", "reference", "Reference", "ref"}
	resultKeys    = []string{"result", "Result", "status", "Status", "paymentStatus", "PaymentStatus"}
)

var successResults = map[string]bool{
	"successful": true,
	"success":    true,
	"paid":       true,
	"captured":   true,
	"approved":   true,
	"00":         true,
}

var failureResults = map[string]bool{
	"failed":    true,
	"failure":   true,
	"declined":  true,
	"cancelled": true,
	"canceled":  true,
	"error":     true,
}

// Notify handles POST /payment/smartpay/notify.
func (h *WebhookHandler) Notify(c echo.Context) error {
	var payload map[string]interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return failCode(c, http.StatusBadRequest, "malformed", "notification body is not valid JSON")
	}

	reference := firstStringValue(payload, referenceKeys)
	if reference == "" {
		return failCode(c, http.StatusBadRequest, "malformed", "notification carries no payment reference")
	}
	result := strings.ToLower(firstStringValue(payload, resultKeys))

	ctx := c.Request().Context()
	h.logger.Info("gateway notification received",
		zap.String("reference", reference),
		zap.String("result", result))

	// Classify before any dedup bookkeeping. A notification the handler
	// cannot act on must never consume the dedup slot, or the definitive
	// retry would be dropped as a duplicate.
	var apply func(context.Context, string) error
	switch {
	case successResults[result]:
		apply = h.svc.Approve
	case failureResults[result]:
		apply = h.svc.Fail
	default:
		h.logger.Warn("gateway notification with unrecognized result",
			zap.String("reference", reference),
			zap.String("result", result))
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	// Keyed on reference plus result so a later notification with a
	// different outcome is not shadowed by an earlier one. Seen and Mark
	// are not atomic, which is fine: Approve and Fail are idempotent, so
	// two concurrent deliveries slipping through is harmless.
	dedupKey := reference + ":" + result
	if h.deduper != nil {
		seen, err := h.deduper.Seen(ctx, dedupKey)
		if err != nil {
			h.logger.Warn("notification dedup check failed", zap.Error(err))
		} else if seen {
			return c.JSON(http.StatusOK, map[string]string{"status": "duplicate"})
		}
	}

	if err := apply(ctx, reference); err != nil {
		if errors.Is(err, checkout.ErrSessionNotFound) {
			// Acknowledge anyway; the gateway retries otherwise and the
			// session may simply have expired.
			return c.JSON(http.StatusOK, map[string]string{"status": "unknown_reference"})
		}
		h.logger.Error("failed to apply gateway notification",
			zap.String("reference", reference), zap.Error(err))
		return failCode(c, http.StatusInternalServerError, "notification_failed", "could not process notification")
	}

	// Only a successfully applied notification is recorded, so a transient
	// store failure leaves the provider retry able to land.
	if h.deduper != nil {
		if err := h.deduper.Mark(ctx, dedupKey); err != nil {
			h.logger.Warn("notification dedup mark failed", zap.Error(err))
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func firstStringValue(payload map[string]interface{}, keys []string) string {
	for _, key := range keys {
		v, ok := payload[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case float64:
			return strings.TrimSuffix(fmt.Sprintf("%g", val), ".0")
		}
	}
	return ""
}
