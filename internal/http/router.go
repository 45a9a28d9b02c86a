package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/trackdechets/bsd-events/internal/http/handlers"
	httpMW "github.com/trackdechets/bsd-events/internal/http/middleware"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
)

type RouterConfig struct {
	StreamHandler       *httpH.StreamHandler
	BsdHandler          *httpH.BsdHandler
	NotificationHandler *httpH.NotificationHandler
	HealthHandler       *httpH.HealthHandler

	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	// Raw streams
	if cfg.StreamHandler != nil {
		r.GET("/stream/", cfg.StreamHandler.GetStream)
		r.GET("/stream/:streamId", cfg.StreamHandler.GetStream)
	}

	// Snapshots and edits
	if cfg.BsdHandler != nil {
		r.GET("/bsds/:docType", cfg.BsdHandler.GetSnapshots)
		r.GET("/bsds/:docType/:id", cfg.BsdHandler.GetSnapshot)
		r.PATCH("/bsds/:docType/:id", cfg.BsdHandler.PatchDocument)
	}

	// Realtime (SSE)
	if cfg.NotificationHandler != nil {
		r.GET("/notifications", cfg.NotificationHandler.Stream)
	}

	return r
}
