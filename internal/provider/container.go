package provider

import (
	"github.com/tezgo/ops-backend/internal/cache"
	"github.com/tezgo/ops-backend/internal/config"
	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/queue"
	"github.com/tezgo/ops-backend/internal/repository"
	"github.com/tezgo/ops-backend/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config        *config.Config
	QueueClient   *queue.Client
	CampaignCache *cache.CampaignCache

	// Repositories
	CampaignRepo      repository.CampaignRepository
	CampaignUsageRepo repository.CampaignUsageRepository
	OrderRepo         repository.OrderRepository
	OrderEventRepo    repository.OrderEventRepository
	PromoCodeRepo     repository.PromoCodeRepository
	PromoIssueRepo    repository.PromoIssueRepository
	OutletItemRepo    repository.OutletItemRepository
	AuditLogRepo      repository.AuditLogRepository

	// Services
	AuditService         *service.AuditService
	PromoService         *service.PromoService
	CampaignAdminService *service.CampaignAdminService
	PricingService       *service.PricingService
	SignalService        *service.SignalService
	OrderEventService    *service.OrderEventService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:        cfg,
		QueueClient:   queueClient,
		CampaignCache: cache.NewCampaignCache(cfg.Pricing.ActiveCampaignCacheTTLSeconds),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.CampaignUsageRepo = repository.NewCampaignUsageRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.OrderEventRepo = repository.NewOrderEventRepository(db)
	c.PromoCodeRepo = repository.NewPromoCodeRepository(db)
	c.PromoIssueRepo = repository.NewPromoIssueRepository(db)
	c.OutletItemRepo = repository.NewOutletItemRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
}

func (c *Container) initServices() {
	db := models.DB

	c.AuditService = service.NewAuditService(c.AuditLogRepo)
	c.PromoService = service.NewPromoService(c.PromoCodeRepo, c.PromoIssueRepo, c.OrderRepo, c.AuditService)
	c.CampaignAdminService = service.NewCampaignAdminService(
		db,
		c.CampaignRepo,
		c.CampaignUsageRepo,
		c.OutletItemRepo,
		c.AuditService,
		c.CampaignCache,
	)
	c.PricingService = service.NewPricingService(
		db,
		c.CampaignRepo,
		c.CampaignUsageRepo,
		c.OrderRepo,
		c.PromoCodeRepo,
		c.PromoIssueRepo,
		c.PromoService,
		c.AuditService,
		c.CampaignCache,
	)

	var enqueuer service.TaskEnqueuer
	if c.QueueClient.Enabled() {
		enqueuer = c.QueueClient
	}
	c.SignalService = service.NewSignalService(c.OrderRepo, c.OrderEventRepo, c.Config.SLA, enqueuer)
	c.OrderEventService = service.NewOrderEventService(c.OrderRepo, c.OrderEventRepo)
}
