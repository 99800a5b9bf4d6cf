package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storeapi/internal/config"
	"storeapi/internal/gateway"
	"storeapi/internal/pkg/utils"
	"storeapi/internal/repository"
)

// DiagnosticsHandler exposes gateway troubleshooting endpoints for staff:
// candidate preview, connectivity probing, and payload preview for a stored
// session. The shared secret never leaves these endpoints unmasked.
type DiagnosticsHandler struct {
	settings   *repository.SettingRepository
	sessions   *repository.SessionRepository
	products   *repository.ProductRepository
	envGateway config.GatewayConfig
	logger     *zap.Logger
}

func NewDiagnosticsHandler(
	settings *repository.SettingRepository,
	sessions *repository.SessionRepository,
	products *repository.ProductRepository,
	envGateway config.GatewayConfig,
	logger *zap.Logger,
) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		settings:   settings,
		sessions:   sessions,
		products:   products,
		envGateway: envGateway,
		logger:     logger,
	}
}

func (h *DiagnosticsHandler) client() *gateway.Client {
	return gateway.New(h.settings.GatewayConfig(h.envGateway), h.logger)
}

// Candidates handles GET /api/diagnostics/gateway/candidates.
func (h *DiagnosticsHandler) Candidates(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"candidates": h.client().Candidates(),
	})
}

// Probe handles GET /api/diagnostics/gateway/probe. Checks only the first few
// candidates by default to keep it quick.
func (h *DiagnosticsHandler) Probe(c echo.Context) error {
	limit := utils.ParseInt(c.QueryParam("limit"), 3)
	results := h.client().Probe(c.Request().Context(), limit)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

// PreviewPayload handles GET /api/diagnostics/gateway/payload/:session_id. It rebuilds
// the outgoing gateway payload for a stored session with the secret masked.
// Item prices are taken from the live catalog since the session snapshot
// deliberately carries none.
func (h *DiagnosticsHandler) PreviewPayload(c echo.Context) error {
	sessionID := c.Param("session_id")
	ctx := c.Request().Context()

	session, err := h.sessions.FindActiveByID(ctx, sessionID)
	if err != nil {
		return failCode(c, http.StatusNotFound, "session_not_found", "payment session not found or expired")
	}

	snap := gateway.OrderSnapshot{
		Reference: session.Reference,
		Amount:    session.TotalWithShip,
		Currency:  session.Currency,
		FirstName: session.FirstName,
		LastName:  session.LastName,
		Email:     session.Email,
		Mobile:    session.Mobile,
		Street:    session.Street,
		City:      session.City,
		Country:   session.Country,
	}
	for _, it := range session.Items() {
		item := gateway.SnapshotItem{
			SKU:      it.SKU,
			Quantity: float64(it.Quantity),
		}
		if product, err := h.products.ProductByRef(ctx, it.ProductRef); err == nil {
			item.Description = product.Name
			item.UnitPrice = product.Price
		}
		snap.Items = append(snap.Items, item)
	}

	payload := h.client().PreviewPayload(snap, gateway.Overrides{
		Reference:     session.Reference,
		RequestScheme: c.Scheme(),
		RequestHost:   c.Request().Host,
	})
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": session.ID,
		"payload":    payload,
	})
}
