package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"storeapi/internal/models"
	"storeapi/internal/pkg/utils"
)

// Collaborators the orchestrator calls into. Catalog and order persistence
// live elsewhere; the checkout flow only depends on these operations.
type Catalog interface {
	ProductByRef(ctx context.Context, ref string) (*models.Product, error)
}

type Inventory interface {
	Reserve(ctx context.Context, items []models.SessionItem) error
}

type Orders interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	Delete(ctx context.Context, id string) error
}

type Sessions interface {
	Create(ctx context.Context, session *models.PaymentSession) error
	FindActiveByID(ctx context.Context, id string) (*models.PaymentSession, error)
	FindActiveByReference(ctx context.Context, reference string) (*models.PaymentSession, error)
	AdvanceStatus(ctx context.Context, id, from, to string) error
	ClaimConfirmation(ctx context.Context, id, orderRef string) (bool, error)
	SetGatewayResponse(ctx context.Context, id, payload string) error
}

// Service owns the payment session lifecycle: create, best-effort approve,
// idempotent confirm.
type Service struct {
	sessions  Sessions
	catalog   Catalog
	inventory Inventory
	orders    Orders
	logger    *zap.Logger
}

func NewService(sessions Sessions, catalog Catalog, inventory Inventory, orders Orders, logger *zap.Logger) *Service {
	return &Service{
		sessions:  sessions,
		catalog:   catalog,
		inventory: inventory,
		orders:    orders,
		logger:    logger,
	}
}

// Sentinel errors surfaced to handlers.
var (
	ErrSessionNotFound    = errors.New("payment session not found")
	ErrSessionFailed      = errors.New("payment session already failed")
	ErrValidation         = errors.New("invalid session input")
	ErrProductUnavailable = errors.New("a referenced product is unavailable")
)

// CreateSessionInput is the unvalidated create request.
type CreateSessionInput struct {
	Items           []models.SessionItem
	Street          string
	City            string
	Country         string
	FirstName       string
	LastName        string
	Email           string
	Mobile          string
	SecondaryMobile string
	CouponCode      string
	CouponDiscount  float64
	Currency        string
	ShippingFee     float64
	TotalWithShip   float64
}

// CreateSession validates the input and persists a new session with a
// generated reference. The live cart is discarded after this point; the
// stored snapshot is the sole source of truth.
func (s *Service) CreateSession(ctx context.Context, in CreateSessionInput) (*models.PaymentSession, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.PaymentSession{
		ID:              utils.GenerateUUID(),
		Status:          models.SessionCreated,
		Reference:       utils.GenerateReference(),
		Street:          strings.TrimSpace(in.Street),
		City:            strings.TrimSpace(in.City),
		Country:         strings.TrimSpace(in.Country),
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Email:           strings.TrimSpace(in.Email),
		Mobile:          strings.TrimSpace(in.Mobile),
		SecondaryMobile: strings.TrimSpace(in.SecondaryMobile),
		CouponCode:      in.CouponCode,
		CouponDiscount:  in.CouponDiscount,
		Currency:        in.Currency,
		ShippingFee:     in.ShippingFee,
		TotalWithShip:   in.TotalWithShip,
		CreatedAt:       now,
		ExpiresAt:       now.Add(models.SessionTTL),
	}
	session.SetItems(in.Items)

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create payment session: %w", err)
	}
	s.logger.Info("payment session created",
		zap.String("session_id", session.ID),
		zap.String("reference", session.Reference),
		zap.Int("items", len(in.Items)))
	return session, nil
}

func validateInput(in CreateSessionInput) error {
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: items are required", ErrValidation)
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductRef) == "" {
			return fmt.Errorf("%w: item %d has no product reference", ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d has a non-positive quantity", ErrValidation, i)
		}
	}
	for _, f := range []struct{ name, value string }{
		{"street", in.Street},
		{"city", in.City},
		{"country", in.Country},
		{"first name", in.FirstName},
		{"last name", in.LastName},
		{"email", in.Email},
		{"mobile", in.Mobile},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
	}
	return nil
}

// Approve advances created -> approved. Any other current status is left
// untouched: webhook retries and late notifications are no-ops. Never
// creates an order.
func (s *Service) Approve(ctx context.Context, reference string) error {
	session, err := s.sessions.FindActiveByReference(ctx, reference)
	if err != nil {
		return ErrSessionNotFound
	}
	if session.Status != models.SessionCreated {
		return nil
	}
	return s.sessions.AdvanceStatus(ctx, session.ID, models.SessionCreated, models.SessionApproved)
}

// Fail advances created -> failed. Same idempotency rules as Approve.
func (s *Service) Fail(ctx context.Context, reference string) error {
	session, err := s.sessions.FindActiveByReference(ctx, reference)
	if err != nil {
		return ErrSessionNotFound
	}
	if session.Status != models.SessionCreated {
		return nil
	}
	return s.sessions.AdvanceStatus(ctx, session.ID, models.SessionCreated, models.SessionFailed)
}

// RecordGatewayResponse stores the raw gateway payload on the session.
func (s *Service) RecordGatewayResponse(ctx context.Context, sessionID, payload string) {
	if err := s.sessions.SetGatewayResponse(ctx, sessionID, payload); err != nil {
		s.logger.Warn("failed to store gateway response",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

// MarkFailedByID moves a session to failed after a hard gateway error at
// creation time.
func (s *Service) MarkFailedByID(ctx context.Context, sessionID string) {
	if err := s.sessions.AdvanceStatus(ctx, sessionID, models.SessionCreated, models.SessionFailed); err != nil {
		s.logger.Warn("failed to mark session failed",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Confirm turns a session into a real order exactly once. Calling it again
// returns the same order. Prices come from the live catalog, never from the
// snapshot; a missing product or non-finite price aborts the whole
// confirmation with no partial order. The session coupon is copied onto the
// order for back-office reconciliation but never subtracted from the total.
func (s *Service) Confirm(ctx context.Context, sessionID string) (*models.Order, error) {
	session, err := s.sessions.FindActiveByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	// Idempotency contract: an order already linked means this confirm
	// already happened.
	if session.OrderRef != "" {
		return s.orders.FindByID(ctx, session.OrderRef)
	}

	// failed is terminal. A declined payment must never turn into an order,
	// no matter what the storefront claims after the redirect.
	if session.Status == models.SessionFailed {
		return nil, ErrSessionFailed
	}

	items := session.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: session snapshot has no items", ErrValidation)
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	subtotal := 0.0
	for _, it := range items {
		product, err := s.catalog.ProductByRef(ctx, it.ProductRef)
		if err != nil {
			return nil, fmt.Errorf("%w: product %s: %v", ErrProductUnavailable, it.ProductRef, err)
		}
		price := product.Price
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return nil, fmt.Errorf("%w: product %s has an invalid price", ErrProductUnavailable, it.ProductRef)
		}
		subtotal += price * float64(it.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductRef: it.ProductRef,
			Name:       product.Name,
			SKU:        product.SKU,
			Quantity:   it.Quantity,
			UnitPrice:  price,
			Size:       it.Size,
			Color:      it.Color,
		})
	}

	shippingFee := session.ShippingFee
	if math.IsNaN(shippingFee) || math.IsInf(shippingFee, 0) || shippingFee < 0 {
		shippingFee = 0
	}

	// Stock correctness is best-effort: a failed reservation is logged and
	// the order is still created, because the paid order is the source of
	// truth for what was sold.
	if err := s.inventory.Reserve(ctx, items); err != nil {
		s.logger.Warn("inventory reservation failed, order will still be created",
			zap.String("session_id", session.ID), zap.Error(err))
	}

	order := &models.Order{
		ID:            utils.GenerateUUID(),
		OrderNumber:   utils.GenerateOrderNumber(),
		Reference:     session.Reference,
		Subtotal:      subtotal,
		ShippingFee:   shippingFee,
		Total:         subtotal + shippingFee,
		CouponCode:    session.CouponCode,
		CouponAmount:  session.CouponDiscount,
		Currency:      session.Currency,
		PaymentMethod: "smartpay",
		PaymentStatus: models.OrderPaymentCompleted,
		CustomerName:  strings.TrimSpace(session.FirstName + " " + session.LastName),
		Email:         session.Email,
		Mobile:        session.Mobile,
		Street:        session.Street,
		City:          session.City,
		Country:       session.Country,
		CreatedAt:     time.Now(),
	}
	order.SetItems(orderItems)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	claimed, err := s.sessions.ClaimConfirmation(ctx, session.ID, order.ID)
	if err != nil {
		return nil, fmt.Errorf("link order to session: %w", err)
	}
	if !claimed {
		// Either a concurrent confirm won the compare-and-set or a failure
		// notification landed after our read. Discard our order and report
		// what actually happened.
		s.logger.Warn("confirmation lost the claim, discarding redundant order",
			zap.String("session_id", session.ID), zap.String("order_id", order.ID))
		if delErr := s.orders.Delete(ctx, order.ID); delErr != nil {
			s.logger.Error("failed to delete redundant order",
				zap.String("order_id", order.ID), zap.Error(delErr))
		}
		current, err := s.sessions.FindActiveByID(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("session claimed concurrently but unreadable")
		}
		if current.Status == models.SessionFailed {
			return nil, ErrSessionFailed
		}
		if current.OrderRef == "" {
			return nil, fmt.Errorf("session confirmed concurrently but order link unreadable")
		}
		return s.orders.FindByID(ctx, current.OrderRef)
	}

	s.logger.Info("payment session confirmed",
		zap.String("session_id", session.ID),
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Total))
	return order, nil
}
