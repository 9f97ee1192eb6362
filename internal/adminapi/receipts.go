package adminapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/pdfexport"
	"github.com/amflabs/stockpilot/internal/webserver"
	"github.com/amflabs/stockpilot/pkg/metrics"
)

func registerReceiptRoutes() {
	webserver.ApiGET("/receipts", listReceipts)
	webserver.ApiGET("/receipts/:id", getReceipt)
	webserver.ApiGET("/receipts/:id/pdf", exportReceiptPdf)
	webserver.ApiPOST("/receipts", createReceipt)
}

func listReceipts(c echo.Context) error {
	receipts, err := GetStore(c).Receipts()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	if customerID := c.QueryParam("customer_id"); customerID != "" {
		filtered := make([]domain.Receipt, 0, len(receipts))
		for _, r := range receipts {
			if r.CustomerID == customerID {
				filtered = append(filtered, r)
			}
		}
		receipts = filtered
	}
	pos, count := parsePagination(c)
	return paged(c, pageSlice(receipts, pos, count), int64(len(receipts)), pos, count)
}

func getReceipt(c echo.Context) error {
	r, found := GetStore(c).ReceiptByID(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Receipt not found", nil)
	}
	return ok(c, r)
}

type salePayload struct {
	CustomerID string `json:"customerId"`
	LineItems  []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"lineItems"`
}

// createReceipt records a sale: line items are priced from the current
// catalog, stock and purchase history move together with the receipt.
func createReceipt(c echo.Context) error {
	var payload salePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sale", err.Error())
	}
	if len(payload.LineItems) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "A sale needs at least one line item", nil)
	}

	dataStore := GetStore(c)
	customer, found := dataStore.CustomerByID(payload.CustomerID)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
	}

	receipt := domain.Receipt{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
	}
	for _, li := range payload.LineItems {
		p, found := dataStore.ProductByID(li.ProductID)
		if !found {
			return fail(c, http.StatusNotFound, "NOT_FOUND",
				fmt.Sprintf("Product %s not found", li.ProductID), nil)
		}
		if li.Quantity <= 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST",
				fmt.Sprintf("Quantity for %s must be positive", p.Name), nil)
		}
		price := p.PriceRetail
		if customer.Type == domain.CustomerWholesale {
			price = p.PriceWholesale
		}
		receipt.LineItems = append(receipt.LineItems, domain.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    li.Quantity,
			Price:       price,
		})
	}

	saved, err := dataStore.RecordSale(currentActor(c), receipt)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to record sale", err.Error())
	}
	metrics.InsertSample(metrics.SalesTotal, saved.Total)
	zap.L().Info("sale recorded",
		zap.String("receipt", saved.ID),
		zap.String("customer", saved.CustomerName),
		zap.Float64("total", saved.Total))
	return ok(c, saved)
}

func exportReceiptPdf(c echo.Context) error {
	dataStore := GetStore(c)
	r, found := dataStore.ReceiptByID(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Receipt not found", nil)
	}
	info, err := dataStore.StoreInfo()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}

	var buf bytes.Buffer
	if err := pdfexport.WriteReceipt(&buf, r, info); err != nil {
		return fail(c, http.StatusInternalServerError, "PDF_ERROR", "Failed to render receipt", err.Error())
	}
	disposition := fmt.Sprintf("attachment; filename=%q", pdfexport.ReceiptFilename(r))
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
