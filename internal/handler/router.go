package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig holds the options that shape the HTTP surface.
type RouterConfig struct {
	AllowedOrigins []string
}

// NewRouter builds the echo instance serving the issue API together with the
// health and metrics endpoints.
func NewRouter(issues *IssueHandler, db Pinger, cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewAppValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	e.Use(Metrics())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAccept, echo.HeaderContentType},
		ExposeHeaders: []string{echo.HeaderXRequestID},
		MaxAge:        300,
	}))

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/issues")
	api.GET("/:project", issues.List)
	api.POST("/:project", issues.Create)
	api.PUT("/:project", issues.Update)
	api.DELETE("/:project", issues.Delete)

	return e
}
