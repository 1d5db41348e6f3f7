package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/model"
)

type settingsResponse struct {
	Settings []model.CategorySetting `json:"settings"`
}

// settingName reads the category name from the path. The router matches on
// the raw path only when one was kept, and only then is the param escaped.
func settingName(c echo.Context) string {
	name := c.Param("name")
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	return strings.TrimSpace(name)
}

// handleListSettings returns every category setting of the caller
func (s *Server) handleListSettings(c echo.Context) error {
	settings, err := s.docs.ListCategorySettings(c.Request().Context(), userID(c))
	if err != nil {
		return s.respondError(c, "list category settings", err)
	}
	if settings == nil {
		settings = []model.CategorySetting{}
	}
	return c.JSON(http.StatusOK, settingsResponse{Settings: settings})
}

// handleGetSetting returns one category setting, 404 when absent
func (s *Server) handleGetSetting(c echo.Context) error {
	setting, found, err := s.docs.GetCategorySetting(c.Request().Context(), userID(c), settingName(c))
	if err != nil {
		return s.respondError(c, "get category setting", err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, setting)
}

// handlePutSetting merges the body into the stored setting
func (s *Server) handlePutSetting(c echo.Context) error {
	var setting model.CategorySetting
	if err := c.Bind(&setting); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	name := settingName(c)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name required"})
	}
	if strings.TrimSpace(setting.Name) == "" || model.CategoryDocID(setting.Name) != model.CategoryDocID(name) {
		setting.Name = name
	}
	if setting.Color != "" {
		color, valid := category.NormalizeColor(setting.Color)
		if !valid {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid colour format, expected #rrggbb"})
		}
		setting.Color = color
	}
	setting.UserID = userID(c)

	if err := s.docs.PutCategorySetting(c.Request().Context(), setting.UserID, setting); err != nil {
		return s.respondError(c, "put category setting", err)
	}
	return ok(c)
}

// handleDeleteSetting removes a category setting
func (s *Server) handleDeleteSetting(c echo.Context) error {
	if err := s.docs.DeleteCategorySetting(c.Request().Context(), userID(c), settingName(c)); err != nil {
		return s.respondError(c, "delete category setting", err)
	}
	return ok(c)
}
