package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stride/backend/config"
	"stride/backend/internal/api/handler"
	"stride/backend/internal/api/middleware"
	"stride/backend/pkg/jwt"
	"stride/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// db 仅用于健康检查，可为 nil
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "redis": rdb != nil}
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": false})
				return
			}
			status["db"] = true
		}
		c.JSON(http.StatusOK, status)
	})

	generateLimit := middleware.RateLimit(rdb, cfg.Retroplan.GenerateRateLimit, cfg.Retroplan.GenerateRateWindow, logger)

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 逆向规划
		retroplans := v1.Group("/retroplans")
		{
			retroplans.POST("", generateLimit, h.Retroplan.GenerateRetroplan)
			retroplans.GET("/:goal_id", h.Retroplan.GetRetroplan)
			retroplans.DELETE("/:goal_id", h.Retroplan.InvalidateRetroplan)
			retroplans.POST("/:goal_id/regenerate", generateLimit, h.Retroplan.RegenerateRetroplan)
			retroplans.GET("/:goal_id/predictions", h.Retroplan.GetPredictions)
			retroplans.GET("/:goal_id/export", h.Export.ExportRetroplan)
		}

		// 文本动作入口
		v1.POST("/retroplan/actions", generateLimit, h.Retroplan.HandleAction)

		// 单周产能预览
		v1.GET("/capacity/week", h.Retroplan.GetWeekCapacity)

		// 状态自评
		energyLogs := v1.Group("/energy-logs")
		{
			energyLogs.GET("", h.EnergyLog.ListEnergyLogs)
			energyLogs.POST("", h.EnergyLog.UpsertEnergyLog)
		}

		// 学业事件
		academicEvents := v1.Group("/academic-events")
		{
			academicEvents.GET("", h.AcademicEvent.ListAcademicEvents)
			academicEvents.POST("/import", h.AcademicEvent.ImportICS)
		}

		// 每周固定投入
		v1.GET("/commitments", h.Commitment.ListCommitments)
	}

	return r
}
