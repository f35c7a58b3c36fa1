package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/database"
	"github.com/arnold/studytrack-api/internal/logger"
	"github.com/arnold/studytrack-api/internal/middleware"
	"github.com/arnold/studytrack-api/internal/routes"
	"github.com/arnold/studytrack-api/internal/services"
	"github.com/arnold/studytrack-api/internal/store"
)

func main() {
	cfg := config.Load()
	appLog := logger.New(log.New(os.Stdout, "", log.LstdFlags), cfg)
	defer appLog.Flush()

	// Without a database the API still serves empty reads.
	var db *gorm.DB
	if conn, err := database.Connect(cfg); err != nil {
		appLog.Error("database unavailable, serving degraded reads", "err", err)
	} else if err := database.Migrate(conn); err != nil {
		appLog.Error("migration failed, serving degraded reads", "err", err)
	} else {
		db = conn
	}

	ctx := context.Background()
	app := routes.New(routes.Deps{
		Config:   cfg,
		Log:      appLog,
		Store:    store.New(db, appLog),
		Objects:  services.NewObjectStore(ctx, cfg, appLog),
		Sessions: middleware.NewSessions(cfg),
		Google:   services.IDTokenVerifier{},
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		appLog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			appLog.Error("shutdown failed", "err", err)
		}
	}()

	appLog.Info("listening", "port", cfg.Port, "env", cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Error("server stopped", "err", err)
		appLog.Flush()
		os.Exit(1)
	}
}
