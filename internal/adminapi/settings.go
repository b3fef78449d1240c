package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/phonemart/phonemart/internal/app"
	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/internal/webserver"
)

type settingPayload struct {
	Type  string `json:"type" validate:"required,min=1,max=50"`
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Value string `json:"value" validate:"omitempty,max=1000"`
}

// registerSettingsRoutes registers system settings routes
func registerSettingsRoutes() {
	webserver.ApiGET("/system/settings", listSettings)
	webserver.ApiPUT("/system/settings", updateSetting)
}

func listSettings(c echo.Context) error {
	var settings []domain.SysConfig
	if err := GetDB(c).Order("sort, type, name").Find(&settings).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}
	return ok(c, settings)
}

func updateSetting(c echo.Context) error {
	var payload settingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse setting parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	// Write through the config manager so its cache is invalidated.
	manager, validType := GetAppContext(c).GetSettings().(*app.ConfigManager)
	if !validType {
		return fail(c, http.StatusInternalServerError, "SERVICE_ERROR", "Settings manager not initialized", nil)
	}
	if err := manager.SetValue(payload.Type, payload.Name, payload.Value); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "SETTING_NOT_FOUND", "Setting not found", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update setting", err.Error())
	}

	var setting domain.SysConfig
	if err := GetDB(c).Where("type = ? AND name = ?", payload.Type, payload.Name).First(&setting).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query setting", err.Error())
	}
	return ok(c, setting)
}
