package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/tezgo/ops-backend/internal/config"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// testEnv 测试用服务集合，共享同一个内存数据库
type testEnv struct {
	db       *gorm.DB
	campaign *CampaignAdminService
	pricing  *PricingService
	promo    *PromoService
	signal   *SignalService
	audit    *AuditService
	events   *OrderEventService
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Campaign{},
		&models.CampaignItem{},
		&models.CampaignUsage{},
		&models.PromoCode{},
		&models.PromoIssue{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderEvent{},
		&models.OutletItem{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	campaignRepo := repository.NewCampaignRepository(db)
	usageRepo := repository.NewCampaignUsageRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewOrderEventRepository(db)
	promoRepo := repository.NewPromoCodeRepository(db)
	issueRepo := repository.NewPromoIssueRepository(db)
	itemRepo := repository.NewOutletItemRepository(db)
	audit := NewAuditService(repository.NewAuditLogRepository(db))

	promoSvc := NewPromoService(promoRepo, issueRepo, orderRepo, audit)
	return &testEnv{
		db:       db,
		campaign: NewCampaignAdminService(db, campaignRepo, usageRepo, itemRepo, audit, nil),
		pricing:  NewPricingService(db, campaignRepo, usageRepo, orderRepo, promoRepo, issueRepo, promoSvc, audit, nil),
		promo:    promoSvc,
		signal:   NewSignalService(orderRepo, eventRepo, testSLA(), nil),
		audit:    audit,
		events:   NewOrderEventService(orderRepo, eventRepo),
	}
}

func testSLA() config.SLAConfig {
	return config.SLAConfig{
		CourierSearchMinutes: 10,
		CookingMinutes:       20,
		PickupWaitMinutes:    10,
		DeliveryMinutes:      45,
	}
}

func seedOutletItem(t *testing.T, db *gorm.DB, outletID, itemID uint, price int64) {
	t.Helper()
	item := models.OutletItem{
		OutletID: outletID,
		ItemID:   itemID,
		Name:     fmt.Sprintf("item_%d", itemID),
		Price:    price,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create outlet item failed: %v", err)
	}
}

func seedOrder(t *testing.T, db *gorm.DB, order *models.Order) {
	t.Helper()
	if order.Status == "" {
		order.Status = "new"
	}
	if order.DeliveryMethod == "" {
		order.DeliveryMethod = "courier"
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
}

func testActor() Actor {
	return Actor{Role: "admin", ID: 1}
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func uintPtr(v uint) *uint {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}
