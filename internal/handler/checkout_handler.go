package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storeapi/internal/checkout"
	"storeapi/internal/config"
	"storeapi/internal/gateway"
	"storeapi/internal/models"
	"storeapi/internal/repository"
)

// CheckoutHandler drives the payment session flow: create a session and
// obtain the hosted-payment URL, then confirm after the customer returns.
type CheckoutHandler struct {
	svc        *checkout.Service
	settings   *repository.SettingRepository
	envGateway config.GatewayConfig
	logger     *zap.Logger
}

func NewCheckoutHandler(
	svc *checkout.Service,
	settings *repository.SettingRepository,
	envGateway config.GatewayConfig,
	logger *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		svc:        svc,
		settings:   settings,
		envGateway: envGateway,
		logger:     logger,
	}
}

type sessionItemRequest struct {
	ProductRef      string   `json:"product_ref"`
	Name            string   `json:"name"`
	SKU             string   `json:"sku"`
	Quantity        int      `json:"quantity"`
	UnitPrice       float64  `json:"unit_price"`
	Size            string   `json:"size"`
	Color           string   `json:"color"`
	VariantRef      string   `json:"variant_ref"`
	SelectedOptions []string `json:"selected_options"`
}

type createSessionRequest struct {
	Items           []sessionItemRequest `json:"items"`
	ShippingAddress struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"shipping_address"`
	CustomerInfo struct {
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		Email           string `json:"email"`
		Mobile          string `json:"mobile"`
		SecondaryMobile string `json:"secondary_mobile"`
	} `json:"customer_info"`
	Coupon *struct {
		Code           string  `json:"code"`
		DiscountAmount float64 `json:"discount_amount"`
	} `json:"coupon"`
	Currency          string  `json:"currency"`
	ShippingFee       float64 `json:"shipping_fee"`
	TotalWithShipping float64 `json:"total_with_shipping"`
}

// CreateSession handles POST /checkout/session.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return failCode(c, http.StatusBadRequest, "invalid_body", "request body could not be parsed")
	}

	cfg := h.settings.GatewayConfig(h.envGateway)
	if !cfg.Enabled {
		return failCode(c, http.StatusPreconditionFailed, "gateway_disabled", "online payment is not enabled for this store")
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return failCode(c, http.StatusPreconditionFailed, "gateway_misconfigured", "online payment is not fully configured")
	}

	in := checkout.CreateSessionInput{
		Street:          req.ShippingAddress.Street,
		City:            req.ShippingAddress.City,
		Country:         req.ShippingAddress.Country,
		FirstName:       req.CustomerInfo.FirstName,
		LastName:        req.CustomerInfo.LastName,
		Email:           req.CustomerInfo.Email,
		Mobile:          req.CustomerInfo.Mobile,
		SecondaryMobile: req.CustomerInfo.SecondaryMobile,
		Currency:        req.Currency,
		ShippingFee:     req.ShippingFee,
		TotalWithShip:   req.TotalWithShipping,
	}
	if req.Coupon != nil {
		in.CouponCode = req.Coupon.Code
		in.CouponDiscount = req.Coupon.DiscountAmount
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, models.SessionItem{
			ProductRef:      it.ProductRef,
			SKU:             it.SKU,
			Quantity:        it.Quantity,
			Size:            it.Size,
			Color:           it.Color,
			VariantRef:      it.VariantRef,
			SelectedOptions: it.SelectedOptions,
		})
	}

	ctx := c.Request().Context()
	session, err := h.svc.CreateSession(ctx, in)
	if err != nil {
		if errors.Is(err, checkout.ErrValidation) {
			return failCode(c, http.StatusBadRequest, "validation_failed", err.Error())
		}
		h.logger.Error("failed to create payment session", zap.Error(err))
		return failCode(c, http.StatusInternalServerError, "session_create_failed", "could not create payment session")
	}

	snap := snapshotFromRequest(&req, session)
	ov := gateway.Overrides{
		Reference:     session.Reference,
		CustomerIP:    c.RealIP(),
		RequestScheme: c.Scheme(),
		RequestHost:   c.Request().Host,
	}

	client := gateway.New(cfg, h.logger)
	result, err := client.CreatePayment(ctx, snap, ov)
	if err != nil {
		h.svc.MarkFailedByID(ctx, session.ID)
		return h.gatewayFailure(c, session, err)
	}
	h.svc.RecordGatewayResponse(ctx, session.ID, result.RawBody)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":  session.ID,
		"reference":   session.Reference,
		"payment_url": result.PaymentURL,
	})
}

func (h *CheckoutHandler) gatewayFailure(c echo.Context, session *models.PaymentSession, err error) error {
	var rejection *gateway.RejectionError
	var unparseable *gateway.UnparseableError
	switch {
	case gateway.IsConfigError(err):
		return failCode(c, http.StatusPreconditionFailed, "gateway_misconfigured", err.Error())
	case errors.As(err, &rejection):
		h.logger.Warn("gateway rejected payment request",
			zap.String("session_id", session.ID),
			zap.Int("status", rejection.StatusCode),
			zap.String("detail", rejection.Detail))
		return failCode(c, http.StatusBadGateway, "gateway_rejected", rejection.Detail)
	case errors.As(err, &unparseable):
		h.logger.Error("gateway answered success without a payment url",
			zap.String("session_id", session.ID), zap.Error(err))
		return failCode(c, http.StatusBadGateway, "gateway_protocol_error", "gateway response could not be understood")
	default:
		h.logger.Error("gateway unreachable",
			zap.String("session_id", session.ID), zap.Error(err))
		return failCode(c, http.StatusBadGateway, "gateway_unreachable", "payment gateway could not be reached")
	}
}

type confirmSessionRequest struct {
	SessionID string `json:"session_id"`
}

// ConfirmSession handles POST /checkout/confirm. Safe to call repeatedly:
// the same order comes back every time.
func (h *CheckoutHandler) ConfirmSession(c echo.Context) error {
	var req confirmSessionRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		return failCode(c, http.StatusBadRequest, "invalid_body", "session_id is required")
	}

	order, err := h.svc.Confirm(c.Request().Context(), req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrSessionNotFound):
			return failCode(c, http.StatusNotFound, "session_not_found", "payment session not found or expired")
		case errors.Is(err, checkout.ErrSessionFailed):
			return failCode(c, http.StatusConflict, "payment_failed", "payment was declined, the session cannot be confirmed")
		case errors.Is(err, checkout.ErrProductUnavailable):
			return failCode(c, http.StatusConflict, "product_unavailable", err.Error())
		case errors.Is(err, checkout.ErrValidation):
			return failCode(c, http.StatusBadRequest, "validation_failed", err.Error())
		default:
			h.logger.Error("confirmation failed",
				zap.String("session_id", req.SessionID), zap.Error(err))
			return failCode(c, http.StatusInternalServerError, "confirmation_failed", "could not confirm payment session")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order": map[string]interface{}{
			"id":           order.ID,
			"order_number": order.OrderNumber,
			"shipping_fee": order.ShippingFee,
		},
	})
}

// snapshotFromRequest builds the gateway view of the cart. Item names and
// display prices come from the inbound request; authoritative totals are
// recomputed at confirmation, not here.
func snapshotFromRequest(req *createSessionRequest, session *models.PaymentSession) gateway.OrderSnapshot {
	snap := gateway.OrderSnapshot{
		Reference: session.Reference,
		Currency:  session.Currency,
		FirstName: session.FirstName,
		LastName:  session.LastName,
		Email:     session.Email,
		Mobile:    session.Mobile,
		Street:    session.Street,
		City:      session.City,
		Country:   session.Country,
	}
	sum := 0.0
	for _, it := range req.Items {
		snap.Items = append(snap.Items, gateway.SnapshotItem{
			Description: it.Name,
			SKU:         it.SKU,
			Quantity:    float64(it.Quantity),
			UnitPrice:   it.UnitPrice,
		})
		sum += it.UnitPrice * float64(it.Quantity)
	}
	snap.Amount = req.TotalWithShipping
	if snap.Amount <= 0 {
		snap.Amount = sum + req.ShippingFee
	}
	return snap
}

func failCode(c echo.Context, status int, code, message string) error {
	return c.JSON(status, models.ErrorResponse{Code: code, Message: message})
}
