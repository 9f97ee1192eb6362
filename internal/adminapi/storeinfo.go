package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/webserver"
)

func registerStoreInfoRoutes() {
	webserver.ApiGET("/store-info", getStoreInfo)
	webserver.ApiPUT("/store-info", updateStoreInfo, webserver.RequireRole(domain.RoleSupervisor))
}

func getStoreInfo(c echo.Context) error {
	info, err := GetStore(c).StoreInfo()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	return ok(c, info)
}

func updateStoreInfo(c echo.Context) error {
	var info domain.StoreInfo
	if err := c.Bind(&info); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse store info", err.Error())
	}
	if strings.TrimSpace(info.Name) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Store name is required", nil)
	}
	if err := GetStore(c).UpdateStoreInfo(currentActor(c), info); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update store info", err.Error())
	}
	return ok(c, info)
}
