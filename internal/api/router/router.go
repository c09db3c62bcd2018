package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"inv-timesheet/backend/config"
	"inv-timesheet/backend/internal/api/handler"
	"inv-timesheet/backend/internal/api/middleware"
	"inv-timesheet/backend/pkg/jwt"
)

const (
	maxBodyBytes     = 1 << 20
	writeRateLimit   = 60
	writeRateWindow  = time.Minute
	defaultMetricsAt = "/metrics"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil（未启用 Redis）时写接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = defaultMetricsAt
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	writeLimit := middleware.RateLimit(limiter, writeRateLimit, writeRateWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 加班计算器（不落库）
		v1.POST("/overtime/calculate", h.Overtime.Calculate)

		// 工时记录
		entries := v1.Group("/time-entries")
		{
			entries.POST("", writeLimit, h.Timesheet.CreateTimeEntry)
			entries.GET("/week", h.Timesheet.GetWeek)
			entries.POST("/week/recalculate", middleware.RoleAuth("manager", "admin"), writeLimit, h.Timesheet.RecalculateWeek)
			entries.GET("/:id", h.Timesheet.GetTimeEntry)
			entries.PUT("/:id", writeLimit, h.Timesheet.UpdateTimeEntry)
			entries.DELETE("/:id", writeLimit, h.Timesheet.DeleteTimeEntry)

			// 审批流（审批范围在 Service 层按 manager_id 判定）
			entries.POST("/:id/submit", writeLimit, h.Approval.Submit)
			entries.POST("/:id/approve", middleware.RoleAuth("manager", "admin"), writeLimit, h.Approval.Approve)
			entries.POST("/:id/reject", middleware.RoleAuth("manager", "admin"), writeLimit, h.Approval.Reject)
		}

		v1.GET("/approvals/pending", middleware.RoleAuth("manager", "admin"), h.Approval.ListPending)

		// 审计日志（管理员）
		v1.GET("/audit-logs", middleware.RoleAuth("admin"), h.Audit.ListAuditLogs)

		// 导出
		v1.GET("/export/week", h.Export.ExportWeek)
	}

	return r
}
