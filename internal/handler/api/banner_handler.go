package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storeapi/internal/models"
)

// BannerHandler manages storefront carousel entries.
type BannerHandler struct {
	repos  *Repos
	logger *zap.Logger
}

func NewBannerHandler(repos *Repos, logger *zap.Logger) *BannerHandler {
	return &BannerHandler{repos: repos, logger: logger}
}

// Handle routes banner API requests.
// POST /api/banners
func (h *BannerHandler) Handle(c echo.Context) error {
	action, body, err := parseBodyAction(c)
	if err != nil {
		return errorResponse(c, "Invalid request body")
	}

	switch action {
	case "banners":
		return h.listBanners(c)
	case "banner_add":
		return h.addBanner(c, body)
	case "banner_edit":
		return h.editBanner(c, body)
	case "banner_delete":
		return h.deleteBanner(c, body)
	default:
		return errorResponse(c, "Unknown action: "+action)
	}
}

func (h *BannerHandler) listBanners(c echo.Context) error {
	banners, err := h.repos.Banner.FindAll()
	if err != nil {
		h.logger.Error("Failed to list banners", zap.Error(err))
		return errorResponse(c, "Failed to retrieve banners")
	}
	return successResponse(c, "Successful", map[string]interface{}{"banners": banners})
}

func (h *BannerHandler) addBanner(c echo.Context, body map[string]interface{}) error {
	imageURL := getStringField(body, "image_url")
	if imageURL == "" {
		return errorResponse(c, "image_url is required")
	}

	banner := &models.Banner{
		Title:    getStringField(body, "title"),
		ImageURL: imageURL,
		LinkURL:  getStringField(body, "link_url"),
		Position: getIntField(body, "position", 0),
		Active:   getBoolField(body, "active", true),
	}
	if err := h.repos.Banner.Create(banner); err != nil {
		h.logger.Error("Failed to create banner", zap.Error(err))
		return errorResponse(c, "Failed to create banner")
	}
	return successResponse(c, "Banner created", banner)
}

func (h *BannerHandler) editBanner(c echo.Context, body map[string]interface{}) error {
	id := getIntField(body, "id", 0)
	if id == 0 {
		return errorResponse(c, "id is required")
	}

	updates := map[string]interface{}{}
	if v := getStringField(body, "title"); v != "" {
		updates["title"] = v
	}
	if v := getStringField(body, "image_url"); v != "" {
		updates["image_url"] = v
	}
	if v := getStringField(body, "link_url"); v != "" {
		updates["link_url"] = v
	}
	if _, ok := body["position"]; ok {
		updates["position"] = getIntField(body, "position", 0)
	}
	if _, ok := body["active"]; ok {
		updates["active"] = getBoolField(body, "active", true)
	}
	if len(updates) == 0 {
		return errorResponse(c, "Nothing to update")
	}

	if err := h.repos.Banner.Update(uint(id), updates); err != nil {
		h.logger.Error("Failed to update banner", zap.Error(err))
		return errorResponse(c, "Failed to update banner")
	}
	return successResponse(c, "Banner updated", nil)
}

func (h *BannerHandler) deleteBanner(c echo.Context, body map[string]interface{}) error {
	id := getIntField(body, "id", 0)
	if id == 0 {
		return errorResponse(c, "id is required")
	}
	if err := h.repos.Banner.Delete(uint(id)); err != nil {
		h.logger.Error("Failed to delete banner", zap.Error(err))
		return errorResponse(c, "Failed to delete banner")
	}
	return successResponse(c, "Banner deleted", nil)
}
