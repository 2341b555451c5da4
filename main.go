package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sifs_backend/internals/bootstrap"
	"sifs_backend/internals/configs"
	database "sifs_backend/internals/databases"
	"sifs_backend/internals/features/certificates/verification_logs/scheduler"
	logService "sifs_backend/internals/features/certificates/verification_logs/service"
	"sifs_backend/internals/middlewares"
	routes "sifs_backend/internals/route"
)

func main() {
	log, err := configs.NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := configs.LoadEnv(log)
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}
	if l, err := configs.NewLogger(cfg.LogLevel); err == nil {
		log = l
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		BodyLimit:               1 << 20,
		ErrorHandler:            middlewares.ErrorHandler,
	})
	middlewares.SetupMiddlewares(app, cfg, log)

	// 🔌 DB is optional; without it verification logs are off
	var db *gorm.DB
	if cfg.DatabaseEnabled() {
		if db, err = database.ConnectDB(cfg, log); err != nil {
			log.Fatal("❌ database", zap.Error(err))
		}
		database.TunePool(db, log)
		if cfg.DBAutoMigrate {
			if err := logService.AutoMigrate(db); err != nil {
				log.Fatal("❌ migrate", zap.Error(err))
			}
			log.Info("✅ verification log table migrated")
		}
	} else {
		log.Info("⚠️ DB_HOST not set, verification logs disabled")
	}

	services := bootstrap.NewServices(cfg, db, log)

	// ⏱ retention after DB is ready
	var retention *cron.Cron
	if services.Logs != nil {
		r := scheduler.NewRetention(scheduler.RetentionConfig{
			Schedule:         cfg.VerificationLogPurgeCron,
			RetentionDays:    cfg.VerificationLogRetentionDays,
			ArchiveBucket:    services.ArchiveBucket,
			ArchivePrefix:    cfg.ArchivePrefix,
			ArchiveRetention: time.Duration(cfg.VerificationLogRetentionDays) * 24 * time.Hour,
		}, services.Logs, log)
		if retention, err = r.Start(); err != nil {
			log.Fatal("❌ retention", zap.Error(err))
		}
	}

	routes.SetupRoutes(app, services)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = cfg.ExportTimeout + 10*time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Info("✅ Listening", zap.String("port", cfg.Port))
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("🛑 shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if retention != nil {
		<-retention.Stop().Done()
	}
	if err := services.Close(); err != nil {
		log.Warn("close services", zap.Error(err))
	}
	database.Close(db)
}
