package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/amflabs/stockpilot/internal/advisor"
	"github.com/amflabs/stockpilot/internal/webserver"
)

func registerStockAlertRoutes() {
	webserver.ApiGET("/stock-alerts/input", stockAlertInput)
	webserver.ApiPOST("/stock-alerts", generateStockAlert)
}

// stockAlertInput exposes the advisory payload so the UI can show what
// will be sent before asking for a recommendation.
func stockAlertInput(c echo.Context) error {
	dataStore := GetStore(c)
	receipts, err := dataStore.Receipts()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	products, err := dataStore.Products()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	input, err := advisor.BuildInput(receipts, products)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "ADVISOR_ERROR", "Failed to build advisory input", err.Error())
	}
	return ok(c, input)
}

func generateStockAlert(c echo.Context) error {
	dataStore := GetStore(c)
	receipts, err := dataStore.Receipts()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	products, err := dataStore.Products()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	input, err := advisor.BuildInput(receipts, products)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "ADVISOR_ERROR", "Failed to build advisory input", err.Error())
	}

	output, err := GetApp(c).Advisor().GenerateStockAlert(c.Request().Context(), input)
	if err != nil {
		zap.L().Error("restock advisory failed", zap.Error(err))
		return fail(c, http.StatusBadGateway, "ADVISOR_ERROR", "Advisory service unavailable", err.Error())
	}

	known, unknown := advisor.ValidateProducts(output.ProductsToRestock, products)
	if len(unknown) > 0 {
		zap.L().Warn("advisory returned unknown products", zap.Strings("unknown", unknown))
	}
	return ok(c, map[string]interface{}{
		"productsToRestock": known,
		"unknownProducts":   unknown,
		"reasoning":         output.Reasoning,
	})
}
