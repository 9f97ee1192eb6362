package webserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/amflabs/stockpilot/internal/app"
)

// AppContextKey is the echo context key under which the application is
// injected for handlers.
const AppContextKey = "stockpilot_app"

// AuthClaims is the JWT payload issued by the login handler.
type AuthClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	appctx *app.Application
}

var server *WebServer

// Public API paths that skip bearer auth.
var openPaths = map[string]struct{}{
	"/api/login":  {},
	"/api/status": {},
}

// Init builds the global web server instance.
func Init(application *app.Application) {
	server = NewWebServer(application)
}

func NewWebServer(application *app.Application) *WebServer {
	s := &WebServer{root: echo.New(), appctx: application}
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.Use(middleware.Recover())
	s.root.Use(s.injectContext)
	s.root.Use(requestLogger)

	s.api = s.root.Group("/api")
	s.api.Use(echojwt.WithConfig(echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return new(AuthClaims) },
		SigningKey:    []byte(application.Config().Web.Secret),
		Skipper: func(c echo.Context) bool {
			_, open := openPaths[c.Path()]
			return open
		},
	}))
	return s
}

func (s *WebServer) injectContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(AppContextKey, s.appctx)
		return next(c)
	}
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		zap.L().Debug("http request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(start)))
		return err
	}
}

// Listen starts the global server and blocks.
func Listen() error {
	cfg := server.appctx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("starting web server", zap.String("addr", addr))
	return server.root.Start(addr)
}

// Shutdown stops the global server.
func Shutdown() error {
	if server == nil {
		return nil
	}
	return server.root.Close()
}

func apiPath(path string) string {
	return "/" + strings.TrimPrefix(path, "/")
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(apiPath(path), h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(apiPath(path), h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(apiPath(path), h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(apiPath(path), h, m...)
}

// Claims extracts the verified JWT claims, nil on open paths.
func Claims(c echo.Context) *AuthClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// IssueToken signs a 24h bearer token for the given account.
func IssueToken(secret, username, role string) (string, error) {
	claims := &AuthClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// RequireRole guards a route group to one role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := Claims(c)
			if claims == nil || claims.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
