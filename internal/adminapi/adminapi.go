package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/amflabs/stockpilot/internal/app"
	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/store"
	"github.com/amflabs/stockpilot/internal/webserver"
)

// InitRouter registers every admin API route on the global web server.
func InitRouter() {
	registerAuthRoutes()
	registerProductRoutes()
	registerCustomerRoutes()
	registerUserRoutes()
	registerReceiptRoutes()
	registerStoreInfoRoutes()
	registerActivityRoutes()
	registerReportRoutes()
	registerStockAlertRoutes()
	registerBackupRoutes()
	registerSystemRoutes()
}

// GetApp returns the application injected by the web server middleware.
func GetApp(c echo.Context) *app.Application {
	return c.Get(webserver.AppContextKey).(*app.Application)
}

func GetStore(c echo.Context) *store.Store {
	return GetApp(c).Store()
}

// currentActor resolves the authenticated user into the audit attribution
// recorded on activity entries.
func currentActor(c echo.Context) domain.Actor {
	claims := webserver.Claims(c)
	if claims == nil {
		return domain.Actor{User: "System", Avatar: store.DefaultAvatar}
	}
	avatar := store.DefaultAvatar
	if u, found := GetStore(c).UserByUsername(claims.Username); found {
		avatar = u.Avatar
	}
	return domain.Actor{User: claims.Username, Avatar: avatar}
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":    0,
		"items":   rows,
		"total":   total,
		"page":    page,
		"perPage": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = cast.ToInt(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}
	pageSize = cast.ToInt(c.QueryParam("perPage"))
	if pageSize <= 0 {
		pageSize = cast.ToInt(c.QueryParam("pageSize"))
	}
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

// pageSlice cuts one page out of an in-memory collection.
func pageSlice[T any](rows []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
