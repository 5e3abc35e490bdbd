package api

import (
	"log/slog"

	"tvbridge/internal/api/handlers"
	"tvbridge/internal/api/middleware"
	"tvbridge/internal/remote"

	"github.com/gin-gonic/gin"
)

// RouterConfig holds dependencies for the API router
type RouterConfig struct {
	Registry *remote.Registry
	// Directory is optional: device routes are only registered when the
	// SmartThings backend is configured.
	Directory handlers.DeviceDirectory
	APIKey    string
	Logger    *slog.Logger
}

// NewRouter creates and configures the Gin router
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(config.Logger))
	router.Use(middleware.Logging(config.Logger))
	router.Use(middleware.ContentType())

	// Health check (no auth)
	healthHandler := handlers.NewHealthHandler()
	router.GET("/health", healthHandler.GetHealth)

	// API v1 routes (with authentication)
	v1 := router.Group("/v1")
	v1.Use(middleware.APIKeyAuth(config.APIKey))
	{
		commandsHandler := handlers.NewCommandsHandler(config.Registry, config.Logger)
		v1.POST("/devices/:id/commands", commandsHandler.SendCommand)
		v1.GET("/commands", commandsHandler.ListCommands)

		validateHandler := handlers.NewValidateHandler(config.Registry, config.Logger)
		v1.POST("/validate", validateHandler.Validate)

		if config.Directory != nil {
			devicesHandler := handlers.NewDevicesHandler(config.Directory, config.Logger)
			v1.GET("/devices", devicesHandler.ListDevices)
			v1.GET("/devices/:id/status", devicesHandler.GetStatus)
			v1.GET("/devices/:id/capabilities", devicesHandler.GetCapabilities)
		}
	}

	return router
}
