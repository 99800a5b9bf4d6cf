package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storeapi/internal/checkout"
	"storeapi/internal/config"
	"storeapi/internal/erp"
	"storeapi/internal/handler"
	"storeapi/internal/handler/api"
	"storeapi/internal/middleware"
	"storeapi/internal/repository"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	cfg *config.Config,
	svc *checkout.Service,
	erpClient *erp.Client,
	deduper middleware.NotificationDeduper,
	logger *zap.Logger,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Repositories
	sessionRepo := repository.NewSessionRepository(db)
	repos := &api.Repos{
		Product: repository.NewProductRepository(db),
		Order:   repository.NewOrderRepository(db),
		Banner:  repository.NewBannerRepository(db),
		Setting: repository.NewSettingRepository(db),
	}

	// Handlers
	checkoutHandler := handler.NewCheckoutHandler(svc, repos.Setting, cfg.Gateway, logger)
	webhookHandler := handler.NewWebhookHandler(svc, deduper, logger)
	diagHandler := handler.NewDiagnosticsHandler(repos.Setting, sessionRepo, repos.Product, cfg.Gateway, logger)
	productHandler := api.NewProductHandler(repos, erpClient, logger)
	orderHandler := api.NewOrderHandler(repos, logger)
	bannerHandler := api.NewBannerHandler(repos, logger)
	settingsHandler := api.NewSettingsHandler(repos, logger)

	// Storefront checkout routes, no API key: these are called by the shop
	// frontend on behalf of customers.
	e.POST("/checkout/session", checkoutHandler.CreateSession)
	e.POST("/checkout/confirm", checkoutHandler.ConfirmSession)

	// Gateway server-to-server notifications (IP allowlist + dedup).
	notifyGroup := e.Group("/payment")
	notifyGroup.Use(middleware.GatewayIPAllowlist(cfg.Gateway.AllowedIPs))
	notifyGroup.POST("/smartpay/notify", webhookHandler.Notify)

	// Staff API group behind the API key.
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIAuth(cfg.API.Key))

	apiGroup.POST("/products", productHandler.Handle)
	apiGroup.GET("/products", productHandler.Handle)
	apiGroup.POST("/orders", orderHandler.Handle)
	apiGroup.GET("/orders", orderHandler.Handle)
	apiGroup.POST("/banners", bannerHandler.Handle)
	apiGroup.GET("/banners", bannerHandler.Handle)
	apiGroup.POST("/settings", settingsHandler.Handle)
	apiGroup.GET("/settings", settingsHandler.Handle)

	apiGroup.GET("/diagnostics/gateway/candidates", diagHandler.Candidates)
	apiGroup.GET("/diagnostics/gateway/probe", diagHandler.Probe)
	apiGroup.GET("/diagnostics/gateway/payload/:session_id", diagHandler.PreviewPayload)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
