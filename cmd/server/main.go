package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aparichit/backend/internal/auth"
	jwtpkg "aparichit/backend/internal/auth/jwt"
	"aparichit/backend/internal/config"
	"aparichit/backend/internal/health"
	"aparichit/backend/internal/logger"
	"aparichit/backend/internal/monitoring"
	"aparichit/backend/internal/service"
	"aparichit/backend/internal/storage"
	"aparichit/backend/internal/storage/filesystem"
	"aparichit/backend/internal/storage/memory"
	sqlstore "aparichit/backend/internal/storage/sql"
	httptransport "aparichit/backend/internal/transport/http"
)

// main 启动诉状受理 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		File:        cfg.Log.File,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting aparichit server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	store, err := initializeStorage(cfg, log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize storage: %v", err))
	}
	defer store.Close()

	// 初始化文件系统存储（附件与备份）
	fsStore, err := filesystem.NewStore(cfg.Storage.UploadDir, cfg.Storage.BackupDir)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize filesystem storage: %v", err))
	}
	log.Info("filesystem storage initialized",
		zap.String("uploads", cfg.Storage.UploadDir),
		zap.String("backups", cfg.Storage.BackupDir),
	)

	// 初始化监控与健康检查
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewHealthChecker(store, log)

	// 初始化服务层
	complaintService := service.NewComplaintService(store, fsStore, metrics, log)
	authService := auth.NewService(store, log)
	jwtManager := jwtpkg.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	log.Info("JWT configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("expiry", cfg.JWT.Expiry),
	)

	// 播种管理员账户（仅在不存在任何账户时生效一次）
	if err := authService.Seed(cfg.Admin.Username, cfg.Admin.Password); err != nil {
		panic(fmt.Sprintf("failed to seed admin account: %v", err))
	}

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:           cfg,
		ComplaintService: complaintService,
		AuthService:      authService,
		JWTManager:       jwtManager,
		Metrics:          metrics,
		Health:           healthChecker,
		Logger:           log,
		UploadDir:        fsStore.UploadDir(),
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 定时自动备份 goroutine（间隔为 0 时禁用）
	if cfg.Backup.AutoInterval > 0 {
		group.Go(func() error {
			ticker := time.NewTicker(cfg.Backup.AutoInterval)
			defer ticker.Stop()

			log.Info("starting automatic backup task", zap.Duration("interval", cfg.Backup.AutoInterval))

			for {
				select {
				case <-groupCtx.Done():
					log.Info("backup task stopped")
					return nil
				case <-ticker.C:
					name, err := complaintService.Backup()
					if err != nil {
						log.Error("automatic backup failed", zap.Error(err))
					} else {
						log.Info("automatic backup completed", zap.String("file", name))
					}
				}
			}
		})
	}

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	// 等待所有 goroutine 完成
	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}

// initializeStorage 根据配置选择存储实现
func initializeStorage(cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	switch cfg.Database.Type {
	case "sqlite":
		log.Info("using sqlite storage", zap.String("path", cfg.Database.Path))
		return sqlstore.NewStore(
			"sqlite",
			cfg.Database.Path,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
	case "postgres":
		log.Info("using postgres storage")
		return sqlstore.NewStore(
			"postgres",
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
	default:
		// 未配置数据库时使用内存存储（开发环境）
		log.Info("using memory storage (development mode)")
		return memory.NewStore(), nil
	}
}
