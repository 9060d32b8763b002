package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-lead-crm/internal/core/auth"
	"go-lead-crm/internal/core/cache"
	"go-lead-crm/internal/core/config"
	"go-lead-crm/internal/repo"
	"go-lead-crm/internal/service"
	"go-lead-crm/internal/transport/http/handler"
	mdw "go-lead-crm/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, cfg *config.Config, db *gorm.DB, jwter *auth.JWTer, c *cache.Cache) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterValidators()

	// 组装依赖：repo → service → handler
	userRepo := repo.NewUserRepo(db)
	leadRepo := repo.NewLeadRepo(db)

	authSvc := service.NewAuthService(userRepo, jwter)
	leadSvc := service.NewLeadService(leadRepo, c, time.Duration(cfg.Redis.StatsTTLSec)*time.Second)

	authH := handler.NewAuthHandler(authSvc, l, jwter.RefreshTTL, cfg.IsProd())
	leadH := handler.NewLeadHandler(leadSvc, l)

	api := r.Group("/api/v1")

	// 认证接口不需要登录，但单独挂每 IP 限速防撞库
	authGrp := api.Group("/auth")
	authGrp.Use(mdw.RateLimitPerIP(5, 10))
	{
		authGrp.POST("/register", authH.Register)
		authGrp.POST("/login", authH.Login)
		authGrp.POST("/refresh-token", authH.Refresh)
	}

	leads := api.Group("/leads")
	leads.Use(mdw.AuthJWT(jwter))
	{
		leads.POST("", leadH.Create)
		leads.GET("", leadH.List)
		// 具体路径要排在 /:id 前面
		leads.GET("/stats/summary", leadH.Stats)
		leads.GET("/:id", leadH.Get)
		leads.PATCH("/:id", leadH.Update)
		leads.DELETE("/:id", leadH.Delete)
	}

	return r
}
