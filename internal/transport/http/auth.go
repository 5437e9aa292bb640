package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aparichit/backend/internal/auth"
	jwtpkg "aparichit/backend/internal/auth/jwt"
	"aparichit/backend/internal/monitoring"
)

// AuthHandler 处理认证相关的 HTTP 请求
type AuthHandler struct {
	authService *auth.Service       // 认证业务服务
	jwtManager  *jwtpkg.Manager     // JWT 令牌管理器
	metrics     *monitoring.Metrics // 监控指标
	log         *zap.Logger         // 结构化日志记录器
}

// NewAuthHandler 创建新的认证处理器实例
func NewAuthHandler(authService *auth.Service, jwtManager *jwtpkg.Manager, metrics *monitoring.Metrics, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
		metrics:     metrics,
		log:         log,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理管理员登录请求
//
// 成功时返回 {"token": "..."}；用户名不存在与密码错误
// 返回相同的 401 响应。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing"})
		return
	}

	admin, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.RecordLogin("failure")
			h.log.Warn("登录失败",
				zap.String("username", req.Username),
				zap.String("ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.Error("登录处理异常", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	token, err := h.jwtManager.GenerateToken(admin.ID, admin.Username)
	if err != nil {
		h.log.Error("签发令牌失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	h.metrics.RecordLogin("success")
	c.JSON(http.StatusOK, gin.H{"token": token})
}
