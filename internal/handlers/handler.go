package handlers

import (
	"temp_monitor/internal/logger"
	"temp_monitor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)
	router.SetHTMLTemplate(pageTemplates)
	router.MaxMultipartMemory = maxRootCertBytes

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	// Device pages
	h.registerPageRoutes(router)

	// Versioned JSON API
	h.registerAPIRoutes(router)

	// Live status stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	r.GET("/", h.rootPage)
	r.GET("/configure", h.configurePage)
	r.POST("/configure", h.submitConfigure)
	r.POST("/rootcert", h.uploadRootCert)
	r.GET("/dir", h.dirPage)
	r.GET("/testcode", h.testCode)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerSampleRoutes(api)
		h.registerConfigRoutes(api)
		h.registerUploadRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerSampleRoutes(api *gin.RouterGroup) {
	samples := api.Group("/samples")
	{
		samples.GET("", h.getSamples)
		samples.POST("/reset-minmax", h.resetMinMax)
		samples.POST("/clear", h.clearSamples)
	}
}

func (h *Handler) registerConfigRoutes(api *gin.RouterGroup) {
	cfg := api.Group("/config")
	{
		cfg.GET("", h.getConfig)
		// Body example: {"relay_on_below_temp":20.5,"relay_off_above_temp":21.5}
		cfg.PUT("", h.putConfig)
	}
}

func (h *Handler) registerUploadRoutes(api *gin.RouterGroup) {
	upload := api.Group("/upload")
	{
		upload.POST("", h.uploadNow)
		upload.GET("/status", h.getUploadStatus)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
