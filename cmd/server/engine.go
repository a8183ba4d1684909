package main

import (
	contactapp "github.com/contactdesk/backend/internal/application/contact"
	customerapp "github.com/contactdesk/backend/internal/application/customer"
	messageapp "github.com/contactdesk/backend/internal/application/message"
	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/infrastructure/config"
	"github.com/contactdesk/backend/internal/infrastructure/logger"
	"github.com/contactdesk/backend/internal/infrastructure/persistence"
	"github.com/contactdesk/backend/internal/interfaces/http/handler"
	"github.com/contactdesk/backend/internal/interfaces/http/middleware"
	"github.com/contactdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// deps are the collaborators the engine is assembled from
type deps struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *persistence.Database
	registry *prometheus.Registry
	tracer   trace.TracerProvider
}

// customerStore picks the backing store of /api/v1/customers
func customerStore(d deps) customer.Repository {
	if d.cfg.HTTP.CustomerStore == "memory" {
		d.log.Info("Customer collection kept in memory")
		return persistence.NewMemoryCustomerStore()
	}
	return persistence.NewGormCustomerRepository(d.db.DB)
}

// newEngine builds the gin engine with its middleware chain and routes
func newEngine(d deps) *gin.Engine {
	cfg := d.cfg
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			d.log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics := middleware.NewHTTPMetrics(d.registry)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	// RequestID first so every later layer can log and tag it
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
			Provider:    d.tracer,
		}),
		middleware.SpanAttributes(),
		logger.Recovery(d.log),
		logger.GinMiddleware(d.log),
		middleware.SpanErrorMarker(),
		httpMetrics.Middleware(),
		middleware.SecurityHeaders(),
		middleware.CORS(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	contactSvc := contactapp.NewService(persistence.NewGormContactRepository(d.db.DB), d.log)
	messageSvc := messageapp.NewService(persistence.NewGormMessageRepository(d.db.DB), d.log)
	customerSvc := customerapp.NewService(customerStore(d))

	system := handler.NewSystemHandler(cfg.App.Name, version, d.db, d.registry)

	router.NewRouter(engine).
		RegisterIn(router.ScopeRoot, system).
		RegisterIn(router.ScopePublic, handler.NewContactHandler(contactSvc, httpMetrics)).
		RegisterIn(router.ScopePublic, handler.NewMessageHandler(messageSvc, httpMetrics)).
		Register(handler.NewCustomerHandler(customerSvc).Routes()).
		Register(router.RegistrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/system/info", system.GetSystemInfo)
		})).
		Setup()

	return engine
}
