package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/phonemart/phonemart/config"
)

const (
	ContextDBKey  = "phonemart_db"
	ContextAppKey = "phonemart_app"
)

// WebApp is what the web layer needs from the application container.
// Services come back untyped and are cast at the handler, which keeps
// this package free of service imports.
type WebApp interface {
	DB() *gorm.DB
	Config() *config.AppConfig
	GetDealService() interface{}
	GetHomepageService() interface{}
	GetProductService() interface{}
	GetSettings() interface{}
}

// WebContext holds the running echo instance.
type WebContext struct {
	Server *echo.Echo
	app    WebApp
}

var server *WebContext

// CustomValidator adapts go-playground/validator to echo.
type CustomValidator struct {
	validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

// Init builds the echo server, wires middleware and remembers the app
// container for route registration.
func Init(app WebApp) *WebContext {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewCustomValidator()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			zap.L().Error("http panic recovered",
				zap.String("path", c.Path()),
				zap.Error(err),
				zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextDBKey, app.DB())
			c.Set(ContextAppKey, app)
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)))
			return err
		}
	})

	server = &WebContext{Server: e, app: app}
	return server
}

// Instance returns the initialized web context.
func Instance() *WebContext {
	return server
}

func jwtMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(server.app.Config().Web.Secret),
		TokenLookup: "header:Authorization:Bearer ,query:token",
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		},
	})
}

// apiGroup lazily creates the authenticated /api/v1 group.
var apiGroup *echo.Group

func api() *echo.Group {
	if apiGroup == nil {
		apiGroup = server.Server.Group("/api/v1", jwtMiddleware())
	}
	return apiGroup
}

// ApiGET registers an authenticated admin route under /api/v1.
func ApiGET(path string, h echo.HandlerFunc) {
	api().GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	api().POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	api().PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	api().DELETE(path, h)
}

// PubGET and PubPOST register unauthenticated routes, used by the
// storefront API and the login endpoint.
func PubGET(path string, h echo.HandlerFunc) {
	server.Server.GET(path, h)
}

func PubPOST(path string, h echo.HandlerFunc) {
	server.Server.POST(path, h)
}

// Listen blocks serving HTTP until the server stops.
func (w *WebContext) Listen() error {
	cfg := w.app.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("starting web server", zap.String("listen", addr))
	return w.Server.Start(addr)
}

// Close shuts the listener down.
func (w *WebContext) Close() error {
	return w.Server.Close()
}
