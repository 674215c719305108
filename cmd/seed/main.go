package main

import (
	"time"

	"github.com/tezgo/ops-backend/internal/config"
	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()
	const outletID = uint(1)

	// 添加门店商品基准价
	items := []models.OutletItem{
		{OutletID: outletID, ItemID: 101, Name: "Margherita Pizza", Price: 45000},
		{OutletID: outletID, ItemID: 102, Name: "Pepperoni Pizza", Price: 52000},
		{OutletID: outletID, ItemID: 103, Name: "Caesar Salad", Price: 28000},
		{OutletID: outletID, ItemID: 104, Name: "Cola 0.5L", Price: 9000},
		{OutletID: outletID, ItemID: 105, Name: "Tiramisu", Price: 21000, Stoplisted: true},
	}
	for _, item := range items {
		var existing models.OutletItem
		if err := models.DB.Where("outlet_id = ? AND item_id = ?", item.OutletID, item.ItemID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&item).Error; err != nil {
				stdLog.Printf("Failed to create outlet item %d: %v", item.ItemID, err)
			} else {
				stdLog.Printf("Created outlet item: %s", item.Name)
			}
		} else {
			stdLog.Printf("Outlet item already exists: %s", item.Name)
		}
	}

	// 添加营销活动
	weekStart := now.Add(-24 * time.Hour)
	weekEnd := now.Add(14 * 24 * time.Hour)
	fixedBundle := int64(95000)
	campaigns := []models.Campaign{
		{
			OutletID: outletID,
			Type:     constants.CampaignTypeDiscount,
			Title:    "Pizza Tuesday",
			Priority: 10,
			Status:   constants.CampaignStatusActive,
			StartAt:  &weekStart,
			EndAt:    &weekEnd,
			ActiveDays: models.WeekdaySet{"tue"},
			Items: []models.CampaignItem{
				{ItemID: 101, Qty: 1, DiscountType: constants.DiscountTypePercent, DiscountValue: 20},
				{ItemID: 102, Qty: 1, DiscountType: constants.DiscountTypePercent, DiscountValue: 20},
			},
		},
		{
			OutletID:         outletID,
			Type:             constants.CampaignTypeBundle,
			Title:            "Dinner Set",
			Priority:         5,
			Status:           constants.CampaignStatusActive,
			StartAt:          &weekStart,
			EndAt:            &weekEnd,
			BundleFixedPrice: &fixedBundle,
			Items: []models.CampaignItem{
				{ItemID: 101, Qty: 1, Required: true},
				{ItemID: 103, Qty: 1, Required: true},
				{ItemID: 104, Qty: 2, Required: true},
			},
		},
		{
			OutletID: outletID,
			Type:     constants.CampaignTypeDiscount,
			Title:    "Late Night Salad",
			Priority: 1,
			Status:   constants.CampaignStatusDraft,
			EndAt:    &weekEnd,
			ActiveHours: models.HourWindow{From: "22:00", To: "02:00"},
			Items: []models.CampaignItem{
				{ItemID: 103, Qty: 1, DiscountType: constants.DiscountTypeNewPrice, DiscountValue: 19000},
			},
		},
	}
	for _, campaign := range campaigns {
		var existing models.Campaign
		if err := models.DB.Where("outlet_id = ? AND title = ?", campaign.OutletID, campaign.Title).First(&existing).Error; err != nil {
			if err := models.DB.Create(&campaign).Error; err != nil {
				stdLog.Printf("Failed to create campaign %s: %v", campaign.Title, err)
			} else {
				stdLog.Printf("Created campaign: %s", campaign.Title)
			}
		} else {
			stdLog.Printf("Campaign already exists: %s", campaign.Title)
		}
	}

	// 添加全局优惠码
	promoEnd := now.Add(30 * 24 * time.Hour)
	promos := []models.PromoCode{
		{Code: "WELCOME10", DiscountPercent: 10, MaxUses: 1000, IsActive: true, EndsAt: &promoEnd, MinOrderAmount: 30000, FirstOrderOnly: true},
		{Code: "WEEKEND15", DiscountPercent: 15, IsActive: true, EndsAt: &promoEnd, MinOrderAmount: 50000, OutletIDs: models.Int64Array{int64(outletID)}},
	}
	for _, promo := range promos {
		var existing models.PromoCode
		if err := models.DB.Where("code = ?", promo.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&promo).Error; err != nil {
				stdLog.Printf("Failed to create promo code %s: %v", promo.Code, err)
			} else {
				stdLog.Printf("Created promo code: %s", promo.Code)
			}
		} else {
			stdLog.Printf("Promo code already exists: %s", promo.Code)
		}
	}

	// 添加定向优惠码
	issueExpiry := now.Add(7 * 24 * time.Hour)
	issues := []models.PromoIssue{
		{Code: "SORRY5K", ClientUserID: 42, Type: constants.PromoIssueTypeFixed, Value: 5000, Status: constants.PromoIssueStatusActive, ExpiresAt: &issueExpiry},
	}
	for _, issue := range issues {
		var existing models.PromoIssue
		if err := models.DB.Where("code = ? AND client_user_id = ?", issue.Code, issue.ClientUserID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&issue).Error; err != nil {
				stdLog.Printf("Failed to create promo issue %s: %v", issue.Code, err)
			} else {
				stdLog.Printf("Created promo issue: %s", issue.Code)
			}
		} else {
			stdLog.Printf("Promo issue already exists: %s", issue.Code)
		}
	}

	// 添加演示订单与事件
	var orderCount int64
	models.DB.Model(&models.Order{}).Count(&orderCount)
	if orderCount == 0 {
		clientID := uint(42)
		createdAt := now.Add(-50 * time.Minute)
		acceptedAt := now.Add(-45 * time.Minute)
		readyAt := now.Add(-20 * time.Minute)
		order := models.Order{
			OutletID:       outletID,
			ClientUserID:   &clientID,
			Status:         constants.OrderStatusReady,
			DeliveryMethod: constants.DeliveryMethodCourier,
			CourierFee:     5000,
			ServiceFee:     2000,
			CreatedAt:      createdAt,
			AcceptedAt:     &acceptedAt,
			ReadyAt:        &readyAt,
			Items: []models.OrderItem{
				{ItemID: 101, UnitPrice: 45000, Quantity: 2, TotalPrice: 90000},
				{ItemID: 104, UnitPrice: 9000, Quantity: 2, TotalPrice: 18000},
			},
		}
		if err := models.DB.Create(&order).Error; err != nil {
			stdLog.Printf("Failed to create demo order: %v", err)
		} else {
			events := []models.OrderEvent{
				{OrderID: order.ID, Type: constants.OrderEventAccepted, CreatedAt: acceptedAt},
				{OrderID: order.ID, Type: constants.OrderEventReady, CreatedAt: readyAt},
			}
			for _, event := range events {
				if err := models.DB.Create(&event).Error; err != nil {
					stdLog.Printf("Failed to create order event: %v", err)
				}
			}
			stdLog.Printf("Created demo order #%d with events", order.ID)
		}
	} else {
		stdLog.Printf("Orders already exist, skipping demo order")
	}

	stdLog.Printf("Seed completed")
}
