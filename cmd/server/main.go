package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"roll-call/config"
	"roll-call/internal/api/handler"
	"roll-call/internal/api/middleware"
	"roll-call/internal/api/router"
	"roll-call/internal/repository"
	"roll-call/internal/service"
	"roll-call/pkg/database"
	"roll-call/pkg/jwt"
	applogger "roll-call/pkg/logger"
	"roll-call/pkg/metrics"
	"roll-call/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（为空时只读取环境变量）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var (
		cache     service.BoardCache
		blacklist service.TokenBlacklist
		checker   middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与看板快照将不可用", zap.Error(err))
	} else {
		cache, blacklist, checker, limiter = rdb, rdb, rdb, rdb
	}

	// 5. 初始化 JWT 管理器与指标
	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.New()

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, cache, blacklist, m, logger)
	h := handler.NewHandler(cfg, svc)
	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal("注册参数校验器失败", zap.Error(err))
	}

	// 6.1 初始数据
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Auth.EnsureBootstrapStaff(initCtx); err != nil {
		logger.Fatal("创建初始管理员失败", zap.Error(err))
	}
	if cfg.Roster.SeedOnStart {
		if err := svc.Roster.EnsureSeeded(initCtx, cfg.Roster.SeedCount); err != nil {
			logger.Fatal("生成初始名单失败", zap.Error(err))
		}
	}
	initCancel()

	// 6.2 定时任务
	scheduler, err := service.NewScheduler(cfg.Board.ResetCron, svc.Board, logger)
	if err != nil {
		logger.Fatal("注册定时任务失败", zap.Error(err))
	}
	scheduler.Start()

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, checker, limiter, m, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	// WebSocket 连接为长连接，不设置 WriteTimeout
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop(ctx)

	// 关闭全部看板，WebSocket 订阅随之结束
	svc.Board.CloseAll()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("服务器已关闭")
}
