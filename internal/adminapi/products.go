package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/webserver"
)

type productPayload struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Stock          int     `json:"stock"`
	PricePurchase  float64 `json:"pricePurchase"`
	PriceRetail    float64 `json:"priceRetail"`
	PriceWholesale float64 `json:"priceWholesale"`
}

func registerProductRoutes() {
	webserver.ApiGET("/inventory/products", listProducts)
	webserver.ApiGET("/inventory/products/:id", getProduct)
	webserver.ApiPOST("/inventory/products", createProduct)
	webserver.ApiPUT("/inventory/products/:id", updateProduct)
	webserver.ApiDELETE("/inventory/products/:id", deleteProduct)
	webserver.ApiPUT("/inventory/products/:id/stock", updateProductStock)
}

func listProducts(c echo.Context) error {
	products, err := GetStore(c).Products()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}

	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		filtered := make([]domain.Product, 0, len(products))
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) ||
				strings.Contains(strings.ToLower(p.Category), strings.ToLower(q)) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	if category := strings.TrimSpace(c.QueryParam("category")); category != "" {
		filtered := make([]domain.Product, 0, len(products))
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(products, page, pageSize), int64(len(products)), page, pageSize)
}

func getProduct(c echo.Context) error {
	p, found := GetStore(c).ProductByID(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func (p productPayload) validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "Name is required"
	}
	if p.PricePurchase < 0 || p.PriceRetail < 0 || p.PriceWholesale < 0 {
		return "Prices must be non-negative"
	}
	return ""
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	p, err := GetStore(c).AddProduct(currentActor(c), domain.Product{
		Name:           strings.TrimSpace(payload.Name),
		Category:       strings.TrimSpace(payload.Category),
		Stock:          payload.Stock,
		PricePurchase:  payload.PricePurchase,
		PriceRetail:    payload.PriceRetail,
		PriceWholesale: payload.PriceWholesale,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	updated := domain.Product{
		ID:             c.Param("id"),
		Name:           strings.TrimSpace(payload.Name),
		Category:       strings.TrimSpace(payload.Category),
		Stock:          payload.Stock,
		PricePurchase:  payload.PricePurchase,
		PriceRetail:    payload.PriceRetail,
		PriceWholesale: payload.PriceWholesale,
	}
	found, err := GetStore(c).EditProduct(currentActor(c), updated)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update product", err.Error())
	}
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, updated)
}

func deleteProduct(c echo.Context) error {
	id := c.Param("id")
	if err := GetStore(c).DeleteProduct(currentActor(c), id); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

type stockPayload struct {
	QuantitySold int `json:"quantitySold"`
}

// updateProductStock applies a raw stock decrement. No clamping: the
// quantity may drive stock negative, matching sale semantics.
func updateProductStock(c echo.Context) error {
	var payload stockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse stock update", err.Error())
	}
	id := c.Param("id")
	if err := GetStore(c).UpdateProductStock(id, payload.QuantitySold); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update stock", err.Error())
	}
	p, found := GetStore(c).ProductByID(id)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}
