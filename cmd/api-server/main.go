package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/teamsp-admin-api/api/swagger"
	"github.com/noah-isme/teamsp-admin-api/internal/handler"
	"github.com/noah-isme/teamsp-admin-api/internal/repository"
	"github.com/noah-isme/teamsp-admin-api/internal/router"
	"github.com/noah-isme/teamsp-admin-api/internal/service"
	"github.com/noah-isme/teamsp-admin-api/pkg/cache"
	"github.com/noah-isme/teamsp-admin-api/pkg/config"
	"github.com/noah-isme/teamsp-admin-api/pkg/database"
	"github.com/noah-isme/teamsp-admin-api/pkg/logger"
)

// @title TeamSP Admin API
// @version 1.0.0
// @description Administrative backend for subjects, teams and students
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	var sessions service.SessionStore
	if cfg.Sessions.Enabled {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		sessions = repository.NewSessionRepository(rdb)
	} else {
		logr.Warn("login sessions disabled; logout will not revoke tokens")
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	validate := service.NewValidator()
	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	audit := service.NewAuditDispatcher(auditRepo, 2, logr)
	audit.Start(context.Background())

	authSvc := service.NewAuthService(userRepo, sessions, audit, validate, logr, metrics, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	})
	subjectSvc := service.NewSubjectService(subjectRepo, userRepo, validate, logr, metrics, cfg.Subjects.SinglePageLimit)
	exportSvc := service.NewExportService(subjectSvc, cfg.Subjects.ExportMaxRows, logr)
	teamSvc := service.NewTeamService(teamRepo, userRepo, studentRepo, validate, logr, cfg.Subjects.SinglePageLimit)
	studentSvc := service.NewStudentService(studentRepo, validate, logr, cfg.Subjects.SinglePageLimit)

	engine := router.New(router.Dependencies{
		Config:         cfg,
		Logger:         logr,
		Metrics:        metrics,
		Auth:           authSvc,
		Audit:          audit,
		AuthHandler:    handler.NewAuthHandler(authSvc),
		SubjectHandler: handler.NewSubjectHandler(subjectSvc, exportSvc),
		TeamHandler:    handler.NewTeamHandler(teamSvc),
		StudentHandler: handler.NewStudentHandler(studentSvc),
		MetricsHandler: handler.NewMetricsHandler(metrics, db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	audit.Stop()
}
