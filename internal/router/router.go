package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/teamsp-admin-api/internal/handler"
	"github.com/noah-isme/teamsp-admin-api/internal/middleware"
	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/internal/service"
	"github.com/noah-isme/teamsp-admin-api/pkg/config"
	"github.com/noah-isme/teamsp-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/teamsp-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/teamsp-admin-api/pkg/middleware/requestid"
)

// Dependencies groups everything the HTTP layer needs.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	Auth    middleware.TokenValidator
	Audit   middleware.AuditWriter

	AuthHandler    *handler.AuthHandler
	SubjectHandler *handler.SubjectHandler
	TeamHandler    *handler.TeamHandler
	StudentHandler *handler.StudentHandler
	MetricsHandler *handler.MetricsHandler
}

// New builds the gin engine with global middleware and every route.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(logger.Recovery(logr))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", deps.MetricsHandler.Health)
	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, deps.MetricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := strings.TrimRight(cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	api.POST("/account/login", deps.AuthHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Auth))
	secured.POST("/account/logout", deps.AuthHandler.Logout)

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, logr, action, resource)
	}

	subjects := secured.Group("/subjects")
	subjects.GET("", deps.SubjectHandler.List)
	subjects.GET("/export", deps.SubjectHandler.Export)
	subjects.GET("/:id", deps.SubjectHandler.Get)
	subjects.POST("", audit(models.AuditActionSubjectCreate, "subject"), deps.SubjectHandler.Create)
	subjects.POST("/:id/update", audit(models.AuditActionSubjectUpdate, "subject"), deps.SubjectHandler.Update)
	subjects.POST("/:id/delete", audit(models.AuditActionSubjectDelete, "subject"), deps.SubjectHandler.Delete)

	adminOnly := middleware.RequireRole(models.RoleAdmin)

	teams := secured.Group("/teams")
	teams.GET("", deps.TeamHandler.List)
	teams.GET("/:id", deps.TeamHandler.Get)
	teams.POST("", adminOnly, audit(models.AuditActionTeamCreate, "team"), deps.TeamHandler.Create)
	teams.POST("/:id/members", adminOnly, audit(models.AuditActionTeamMemberAdd, "team"), deps.TeamHandler.AddMember)

	students := secured.Group("/students")
	students.GET("", deps.StudentHandler.List)
	students.POST("", adminOnly, audit(models.AuditActionStudentCreate, "student"), deps.StudentHandler.Create)

	return r
}
