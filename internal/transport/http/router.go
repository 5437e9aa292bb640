package httptransport

import (
	"net/http"
	"strings"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aparichit/backend/internal/auth"
	jwtpkg "aparichit/backend/internal/auth/jwt"
	"aparichit/backend/internal/config"
	"aparichit/backend/internal/health"
	"aparichit/backend/internal/middleware"
	"aparichit/backend/internal/monitoring"
	"aparichit/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config           *config.Config
	ComplaintService *service.ComplaintService
	AuthService      *auth.Service
	JWTManager       *jwtpkg.Manager
	Metrics          *monitoring.Metrics
	Health           *health.HealthChecker
	Logger           *zap.Logger
	UploadDir        string // 附件静态目录
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	// 使用自定义中间件替代默认中间件
	router.Use(middleware.RecoveryHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(deps.Metrics.GinMiddleware())

	// 请求体上限按上传端点的需求设定
	router.Use(middleware.BodySizeLimit(middleware.UploadBodyLimit))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	authHandler := NewAuthHandler(deps.AuthService, deps.JWTManager, deps.Metrics, deps.Logger)
	complaintHandler := NewComplaintHandler(deps.ComplaintService, deps.Logger)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)
	rateLimiter := middleware.NewRateLimiter(deps.Config.RateLimit.RequestsPerMinute)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		results := deps.Health.CheckHealth()
		status := http.StatusOK
		for _, v := range results {
			if strings.HasPrefix(v, "ERROR") {
				status = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(status, results)
	})

	// Prometheus 指标
	router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))

	// 附件静态服务
	router.Static("/uploads", deps.UploadDir)

	// API
	api := router.Group("/api")
	api.Use(rateLimiter.Handler())
	{
		// ========== Public Routes ==========
		api.POST("/login", authHandler.Login)
		api.POST("/complaints", complaintHandler.Submit)
		api.GET("/categories", complaintHandler.Categories)

		// ========== Admin Routes ==========
		admin := api.Group("")
		admin.Use(jwtAuth.RequireAuth())
		{
			admin.GET("/complaints", complaintHandler.List)
			admin.GET("/export", complaintHandler.Export)
			admin.POST("/backup", complaintHandler.Backup)
			admin.DELETE("/complaints/:id", complaintHandler.Delete)
		}
	}

	return router
}
