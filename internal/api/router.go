package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/bulk-shipping/docs"
	"github.com/99minutos/bulk-shipping/internal/api/handler"
	"github.com/99minutos/bulk-shipping/internal/api/middleware"
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// Deps are the services and settings the HTTP layer is built from.
type Deps struct {
	Ingestor  ports.BatchIngestor
	Batches   ports.BatchService
	Payments  ports.PaymentReconciler
	Tracking  ports.TrackingService
	Shipments ports.ShipmentService

	// Health maps a dependency name to its readiness probe.
	Health map[string]handler.Checker

	JWTSecret      string
	MaxUploadBytes int64
	Logger         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// @title                       Bulk Shipping API
// @version                     1.0
// @description                 Bulk shipment intake, pricing and fulfillment tracking.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddleware("shipping"))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	batchHandler := handler.NewBatchHandler(d.Ingestor, d.Batches, d.MaxUploadBytes)
	paymentHandler := handler.NewPaymentHandler(d.Payments)
	trackingHandler := handler.NewTrackingHandler(d.Tracking)
	shipmentHandler := handler.NewShipmentHandler(d.Shipments)

	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleMerchant, domain.RoleCourier)
	owners := middleware.RBAC(domain.RoleAdmin, domain.RoleMerchant)
	dispatchers := middleware.RBAC(domain.RoleAdmin, domain.RoleCourier)

	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret), anyRole)

	// --- Batches ---
	batches := v1.Group("/batches")
	batches.POST("", batchHandler.Upload, owners)
	batches.GET("", batchHandler.List, owners)
	batches.GET("/template", batchHandler.Template)
	batches.GET("/:code", batchHandler.Get)
	batches.DELETE("/:code", batchHandler.Delete, owners)
	batches.PATCH("/:code/status", batchHandler.UpdateStatus, dispatchers)
	batches.POST("/:code/cancel", batchHandler.Cancel, owners)
	batches.POST("/:code/payment", paymentHandler.Confirm, owners)
	batches.GET("/:code/payment", paymentHandler.Status, owners)

	// --- Tracking ---
	v1.GET("/tracking/:code", trackingHandler.Lookup)
	v1.PATCH("/tracking/:code/status", trackingHandler.UpdateStatus, dispatchers)

	// --- Single shipments ---
	v1.POST("/quotes", shipmentHandler.Quote)
	v1.GET("/pricing", shipmentHandler.Pricing)
	v1.POST("/shipments", shipmentHandler.Create, owners)
	v1.GET("/shipments/:code", shipmentHandler.Get)

	return e
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
