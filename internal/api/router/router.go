package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roll-call/config"
	"roll-call/internal/api/handler"
	"roll-call/internal/api/middleware"
	"roll-call/internal/model"
	"roll-call/pkg/jwt"
	"roll-call/pkg/metrics"
)

// Setup 初始化并返回 Gin 路由引擎
// blacklist 与 limiter 可为 nil（Redis 不可用时降级）
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	blacklist middleware.TokenChecker,
	limiter middleware.RateLimiter,
	m *metrics.Metrics,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		rl := cfg.Server.RateLimit
		v1.POST("/auth/login", middleware.RateLimit(limiter, rl.Limit, rl.Window), h.Auth.Login)

		// 看板推送（WebSocket 握手允许 ?token= 认证）
		v1.GET("/board/ws", middleware.WebSocketAuth(jwtMgr, blacklist), h.Board.Subscribe)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentStaff)

			// 名单模块
			authorized.GET("/get-homeboard-students", h.Roster.GetHomeboardStudents)
			authorized.POST("/roster/seed", middleware.RoleAuth(model.RoleAdmin), h.Roster.Seed)

			// 点名看板
			board := authorized.Group("/board")
			{
				board.GET("", h.Board.Get)
				board.POST("/load", h.Board.Load)
				board.POST("/actions", h.Board.Dispatch)
				board.DELETE("", h.Board.Discard)
			}

			// 点名记录与导出
			rolls := authorized.Group("/rolls")
			{
				rolls.POST("", h.Roll.Complete)
				rolls.GET("", h.Roll.List)
				rolls.GET("/calendar.ics", h.Export.ExportCalendar)
				rolls.GET("/:id", h.Roll.Get)
				rolls.GET("/:id/export", h.Export.ExportRoll)
			}
		}
	}

	return r
}
