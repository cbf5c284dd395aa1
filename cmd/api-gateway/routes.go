package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/adobah666/edutrack-sub001/internal/handler"
	"github.com/adobah666/edutrack-sub001/internal/middleware"
	"github.com/adobah666/edutrack-sub001/internal/models"
	"github.com/adobah666/edutrack-sub001/pkg/config"
)

type routeDeps struct {
	tokens     middleware.TokenValidator
	audits     middleware.AuditWriter
	logger     *zap.Logger
	metrics    *handler.MetricsHandler
	reports    *handler.ReportHandler
	weights    *handler.WeightHandler
	approvals  *handler.ApprovalHandler
	promotions *handler.PromotionHandler
	history    *handler.ClassHistoryHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, d routeDeps) {
	r.GET("/health", d.metrics.Health)
	r.GET("/ready", d.metrics.Ready)
	r.GET("/metrics", d.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	staff := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher}
	admins := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(d.tokens))

	students := api.Group("/students/:id")
	students.GET("/term-report", d.reports.TermReport)
	students.GET("/term-report/export",
		middleware.Audit(d.audits, d.logger, models.AuditActionReportExport, "student", "id"),
		d.reports.ExportTermReport,
	)
	students.GET("/class-history", d.history.Get)
	students.POST("/class-history/repair", middleware.RequireRoles(admins...), d.history.Repair)

	subjects := api.Group("/subjects/:id", middleware.RequireRoles(staff...))
	subjects.PUT("/term-weights/:term", d.weights.Set)
	subjects.DELETE("/term-weights/:term", d.weights.Delete)

	classes := api.Group("/classes/:id", middleware.RequireRoles(staff...))
	classes.GET("/approvals/:term", d.approvals.Get)
	classes.PUT("/approvals/:term", d.approvals.Toggle)

	api.POST("/promotions", middleware.RequireRoles(staff...), d.promotions.Promote)
}
