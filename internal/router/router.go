package router

import (
	"github.com/tezgo/ops-backend/internal/config"
	adminhandlers "github.com/tezgo/ops-backend/internal/http/handlers/admin"
	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		admin := apiV1.Group("/admin")
		{
			// 营销活动管理
			admin.POST("/campaigns", adminHandler.CreateCampaign)
			admin.POST("/campaigns/validate", adminHandler.ValidateCampaign)
			admin.GET("/campaigns", adminHandler.ListCampaigns)
			admin.GET("/campaigns/active", adminHandler.ActiveCampaignsForOutlet)
			admin.GET("/campaigns/:id", adminHandler.GetCampaign)
			admin.PUT("/campaigns/:id", adminHandler.UpdateCampaign)
			admin.POST("/campaigns/:id/activate", adminHandler.ActivateCampaign)
			admin.POST("/campaigns/:id/pause", adminHandler.PauseCampaign)
			admin.POST("/campaigns/:id/archive", adminHandler.ArchiveCampaign)
			admin.POST("/campaigns/:id/duplicate", adminHandler.DuplicateCampaign)
			admin.GET("/campaigns/:id/usage", adminHandler.CampaignUsage)

			// 促销码管理
			admin.POST("/promo-codes", adminHandler.CreatePromoCode)
			admin.GET("/promo-codes", adminHandler.ListPromoCodes)
			admin.GET("/promo-codes/check", adminHandler.CheckPromoCode)
			admin.GET("/promo-codes/:id", adminHandler.GetPromoCode)
			admin.PUT("/promo-codes/:id", adminHandler.UpdatePromoCode)
			admin.DELETE("/promo-codes/:id", adminHandler.DeletePromoCode)

			// 定向发放管理
			admin.POST("/promo-issues", adminHandler.IssuePromo)
			admin.GET("/promo-issues", adminHandler.ListPromoIssues)
			admin.POST("/promo-issues/:id/revoke", adminHandler.RevokePromoIssue)

			// 订单计价与健康信号
			admin.POST("/orders/:id/price", adminHandler.PriceOrder)
			admin.GET("/orders/:id/pricing/preview", adminHandler.PreviewOrderPricing)
			admin.GET("/orders/:id/signals", adminHandler.OrderSignals)
			admin.POST("/orders/:id/events", adminHandler.AppendOrderEvent)
			admin.GET("/orders/:id/events", adminHandler.ListOrderEvents)

			// 审计日志
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
