package handlers

import (
	"drive_diagnostics/internal/logger"
	"drive_diagnostics/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services    *service.Service
	log         *logger.Logger
	authLimiter *ipRateLimiter
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{
		services:    services,
		log:         log,
		authLimiter: newIPRateLimiter(authRatePerSec, authBurst),
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Minimal WebSocket connection (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth", h.rateLimitMiddleware)
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerDriveRoutes(api)
		h.registerScenarioRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerDriveRoutes(api *gin.RouterGroup) {
	drive := api.Group("/drive")
	{
		drive.GET("/diagnostics", h.getDiagnostics)
		drive.GET("/components/:id", h.getComponentDetails)
		drive.POST("/components/:id/maintenance", h.performMaintenance)
		// Body example: {"fault_id":"F30001","component":"motor"}
		drive.POST("/faults", h.injectFault)
		drive.POST("/alarms", h.injectAlarm)
		drive.POST("/clear", h.clearAll)
	}
}

func (h *Handler) registerScenarioRoutes(api *gin.RouterGroup) {
	scenarios := api.Group("/scenarios")
	{
		scenarios.GET("/", h.getScenarios)
		scenarios.GET("/current", h.getCurrentScenario)
		scenarios.POST("/start", h.startScenario)
		scenarios.POST("/stop", h.stopScenario)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
