package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/webserver"
)

type customerPayload struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func registerCustomerRoutes() {
	webserver.ApiGET("/customers", listCustomers)
	webserver.ApiGET("/customers/:id", getCustomer)
	webserver.ApiPOST("/customers", createCustomer)
	webserver.ApiPUT("/customers/:id", updateCustomer)
	webserver.ApiDELETE("/customers/:id", deleteCustomer)
}

func listCustomers(c echo.Context) error {
	customers, err := GetStore(c).Customers()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}

	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		filtered := make([]domain.Customer, 0, len(customers))
		for _, cu := range customers {
			if strings.Contains(strings.ToLower(cu.Name), strings.ToLower(q)) ||
				strings.Contains(strings.ToLower(cu.Email), strings.ToLower(q)) {
				filtered = append(filtered, cu)
			}
		}
		customers = filtered
	}
	if typ := strings.TrimSpace(c.QueryParam("type")); typ != "" {
		filtered := make([]domain.Customer, 0, len(customers))
		for _, cu := range customers {
			if string(cu.Type) == typ {
				filtered = append(filtered, cu)
			}
		}
		customers = filtered
	}

	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(customers, page, pageSize), int64(len(customers)), page, pageSize)
}

func getCustomer(c echo.Context) error {
	cu, found := GetStore(c).CustomerByID(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
	}
	return ok(c, cu)
}

func customerType(s string) (domain.CustomerType, bool) {
	switch domain.CustomerType(s) {
	case domain.CustomerWholesale:
		return domain.CustomerWholesale, true
	case domain.CustomerRetail:
		return domain.CustomerRetail, true
	}
	return "", false
}

func createCustomer(c echo.Context) error {
	var payload customerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse customer", err.Error())
	}
	if strings.TrimSpace(payload.Name) == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Customer name is required", nil)
	}
	ctype, valid := customerType(payload.Type)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Type must be 'Wholesale' or 'Retail'", nil)
	}

	cu, err := GetStore(c).AddCustomer(currentActor(c), domain.Customer{
		Name:  strings.TrimSpace(payload.Name),
		Type:  ctype,
		Email: strings.TrimSpace(payload.Email),
		Phone: strings.TrimSpace(payload.Phone),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to create customer", err.Error())
	}
	return ok(c, cu)
}

func updateCustomer(c echo.Context) error {
	var payload customerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse customer", err.Error())
	}
	if strings.TrimSpace(payload.Name) == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Customer name is required", nil)
	}
	ctype, valid := customerType(payload.Type)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Type must be 'Wholesale' or 'Retail'", nil)
	}

	id := c.Param("id")
	current, found := GetStore(c).CustomerByID(id)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
	}

	updated := domain.Customer{
		ID:    id,
		Name:  strings.TrimSpace(payload.Name),
		Type:  ctype,
		Email: strings.TrimSpace(payload.Email),
		Phone: strings.TrimSpace(payload.Phone),
		// the accumulator is only moved by sales
		PurchaseHistory: current.PurchaseHistory,
	}
	if _, err := GetStore(c).EditCustomer(currentActor(c), updated); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update customer", err.Error())
	}
	return ok(c, updated)
}

func deleteCustomer(c echo.Context) error {
	id := c.Param("id")
	if err := GetStore(c).DeleteCustomer(currentActor(c), id); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to delete customer", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
