package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/webserver"
)

func registerActivityRoutes() {
	webserver.ApiGET("/activity-logs", listActivityLogs)
}

// listActivityLogs pages the audit trail, newest first as persisted.
func listActivityLogs(c echo.Context) error {
	logs, err := GetStore(c).ActivityLogs()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	if q := strings.ToLower(strings.TrimSpace(c.QueryParam("q"))); q != "" {
		filtered := make([]domain.ActivityLog, 0, len(logs))
		for _, l := range logs {
			if strings.Contains(strings.ToLower(l.User), q) ||
				strings.Contains(strings.ToLower(l.Action), q) {
				filtered = append(filtered, l)
			}
		}
		logs = filtered
	}
	pos, count := parsePagination(c)
	return paged(c, pageSlice(logs, pos, count), int64(len(logs)), pos, count)
}
