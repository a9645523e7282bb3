package v1

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"job-board-backend/config"
	"job-board-backend/internal/delivery/http/middleware"
	"job-board-backend/internal/domain"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	JobUC         domain.JobUsecase
	ApplicationUC domain.ApplicationUsecase
	HealthUC      domain.HealthUsecase
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	release := cfg.GinMode == gin.ReleaseMode

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, release)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.PhotoPublicOrigin()))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	api := r.Group("/api")

	NewHealthHandler(api, deps.HealthUC)
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	admin := api.Group("")
	admin.Use(middleware.AdminSession(deps.AuthUC))

	NewAuthHandler(api, admin, deps.AuthUC, release)
	NewJobHandler(api, admin, deps.JobUC)
	NewApplicationHandler(api, deps.ApplicationUC, cfg.PhotoMaxBytes)

	return r
}
