package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/amflabs/stockpilot/internal/webserver"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/login", login)
}

// login verifies credentials against the user collection and issues a
// bearer token carrying the role claim.
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	user, verified := GetStore(c).Authenticate(payload.Username, payload.Password)
	if !verified {
		zap.L().Warn("login rejected", zap.String("username", payload.Username))
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}

	token, err := webserver.IssueToken(GetApp(c).Config().Web.Secret, user.Username, user.Role)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", err.Error())
	}
	zap.L().Info("login accepted", zap.String("username", user.Username), zap.String("role", user.Role))
	return ok(c, map[string]interface{}{
		"token":    token,
		"username": user.Username,
		"role":     user.Role,
		"avatar":   user.Avatar,
	})
}
