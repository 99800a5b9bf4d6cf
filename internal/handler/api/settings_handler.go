package api

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SettingsHandler reads and writes store_setting rows. Reads always come
// back with the gateway secret masked; writes go through key by key so a
// partial update never wipes unrelated settings.
type SettingsHandler struct {
	repos  *Repos
	logger *zap.Logger
}

func NewSettingsHandler(repos *Repos, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{repos: repos, logger: logger}
}

// Handle routes settings API requests.
// POST /api/settings
func (h *SettingsHandler) Handle(c echo.Context) error {
	action, body, err := parseBodyAction(c)
	if err != nil {
		return errorResponse(c, "Invalid request body")
	}

	switch action {
	case "settings":
		return h.getSettings(c)
	case "settings_update":
		return h.updateSettings(c, body)
	default:
		return errorResponse(c, "Unknown action: "+action)
	}
}

func (h *SettingsHandler) getSettings(c echo.Context) error {
	settings, err := h.repos.Setting.All()
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		return errorResponse(c, "Failed to retrieve settings")
	}
	return successResponse(c, "Successful", map[string]interface{}{"settings": settings})
}

func (h *SettingsHandler) updateSettings(c echo.Context, body map[string]interface{}) error {
	raw, ok := body["settings"].(map[string]interface{})
	if !ok || len(raw) == 0 {
		return errorResponse(c, "settings object is required")
	}

	for key, v := range raw {
		value := ""
		switch t := v.(type) {
		case string:
			value = t
		case bool:
			value = fmt.Sprintf("%t", t)
		case float64:
			value = fmt.Sprintf("%g", t)
		default:
			return errorResponse(c, "Unsupported value for setting: "+key)
		}
		if err := h.repos.Setting.Set(key, value); err != nil {
			h.logger.Error("Failed to store setting",
				zap.String("key", key), zap.Error(err))
			return errorResponse(c, "Failed to store setting: "+key)
		}
	}
	return successResponse(c, "Settings updated", nil)
}
