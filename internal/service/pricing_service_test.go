package service

import (
	"testing"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/models"
)

func createActiveCampaign(t *testing.T, env *testEnv, in CampaignInput) *models.Campaign {
	t.Helper()
	campaign, _, err := env.campaign.Create(in, testActor())
	if err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	activated, err := env.campaign.Activate(campaign.ID, testActor())
	if err != nil {
		t.Fatalf("activate campaign failed: %v", err)
	}
	return activated
}

func TestPriceOrderPercentCampaign(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)
	createActiveCampaign(t, env, discountCampaignInput(1))

	order := &models.Order{
		OutletID:   1,
		CourierFee: 5000,
		ServiceFee: 1000,
		Items: []models.OrderItem{
			{ItemID: 101, UnitPrice: 45000, Quantity: 2, TotalPrice: 90000},
		},
	}
	seedOrder(t, env.db, order)

	result, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("price order failed: %v", err)
	}
	if result.SubtotalFood != 90000 {
		t.Fatalf("expected subtotal 90000, got: %d", result.SubtotalFood)
	}
	if result.CampaignDiscount != 18000 {
		t.Fatalf("expected campaign discount 18000, got: %d", result.CampaignDiscount)
	}
	if result.Total != 90000+5000+1000-18000 {
		t.Fatalf("unexpected total: %d", result.Total)
	}

	var stored models.Order
	if err := env.db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.CampaignDiscount != 18000 || stored.Total != result.Total {
		t.Fatalf("order pricing not persisted: %+v", stored)
	}
}

func TestPriceOrderMinOrderAmountGate(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 40000)

	in := discountCampaignInput(1)
	in.MinOrderAmount = 50000
	createActiveCampaign(t, env, in)

	order := &models.Order{
		OutletID: 1,
		Items: []models.OrderItem{
			{ItemID: 101, UnitPrice: 40000, Quantity: 1, TotalPrice: 40000},
		},
	}
	seedOrder(t, env.db, order)

	result, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("price order failed: %v", err)
	}
	if result.CampaignDiscount != 0 {
		t.Fatalf("subtotal below min_order_amount should yield zero discount, got: %d", result.CampaignDiscount)
	}
}

func TestPriceOrderUsageCap(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 10000)

	in := discountCampaignInput(1)
	in.MaxUsesTotal = 1
	createActiveCampaign(t, env, in)

	first := &models.Order{
		OutletID:     1,
		ClientUserID: uintPtr(7),
		Items:        []models.OrderItem{{ItemID: 101, UnitPrice: 10000, Quantity: 1, TotalPrice: 10000}},
	}
	seedOrder(t, env.db, first)
	second := &models.Order{
		OutletID:     1,
		ClientUserID: uintPtr(8),
		Items:        []models.OrderItem{{ItemID: 101, UnitPrice: 10000, Quantity: 1, TotalPrice: 10000}},
	}
	seedOrder(t, env.db, second)

	result, err := env.pricing.PriceOrder(first.ID, testActor())
	if err != nil {
		t.Fatalf("price first order failed: %v", err)
	}
	if result.CampaignDiscount != 2000 {
		t.Fatalf("expected discount 2000 on first order, got: %d", result.CampaignDiscount)
	}

	result, err = env.pricing.PriceOrder(second.ID, testActor())
	if err != nil {
		t.Fatalf("price second order failed: %v", err)
	}
	if result.CampaignDiscount != 0 {
		t.Fatalf("usage cap exhausted, expected zero discount, got: %d", result.CampaignDiscount)
	}
}

func TestPriceOrderIdempotent(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 10000)
	createActiveCampaign(t, env, discountCampaignInput(1))

	order := &models.Order{
		OutletID:     1,
		ClientUserID: uintPtr(7),
		Items:        []models.OrderItem{{ItemID: 101, UnitPrice: 10000, Quantity: 1, TotalPrice: 10000}},
	}
	seedOrder(t, env.db, order)

	first, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("first pricing failed: %v", err)
	}
	second, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("second pricing failed: %v", err)
	}
	if first.Total != second.Total || first.CampaignDiscount != second.CampaignDiscount {
		t.Fatalf("re-pricing changed result: %+v vs %+v", first, second)
	}

	var ledger int64
	if err := env.db.Model(&models.CampaignUsage{}).Where("order_id = ?", order.ID).Count(&ledger).Error; err != nil {
		t.Fatalf("count ledger failed: %v", err)
	}
	if ledger != 1 {
		t.Fatalf("expected exactly 1 ledger row after re-pricing, got: %d", ledger)
	}
}

func TestPriceOrderBundle(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 201, 30000)
	seedOutletItem(t, env.db, 1, 202, 20000)

	in := CampaignInput{
		OutletID:         1,
		Type:             constants.CampaignTypeBundle,
		Title:            "双人套餐",
		BundleFixedPrice: int64Ptr(70000),
		Items: []CampaignItemInput{
			{ItemID: 201, Qty: 2, Required: true},
			{ItemID: 202, Qty: 1, Required: true},
		},
	}
	createActiveCampaign(t, env, in)

	qualified := &models.Order{
		OutletID: 1,
		Items: []models.OrderItem{
			{ItemID: 201, UnitPrice: 30000, Quantity: 2, TotalPrice: 60000},
			{ItemID: 202, UnitPrice: 20000, Quantity: 1, TotalPrice: 20000},
		},
	}
	seedOrder(t, env.db, qualified)

	result, err := env.pricing.PriceOrder(qualified.ID, testActor())
	if err != nil {
		t.Fatalf("price qualified order failed: %v", err)
	}
	// 成员原价合计 80000，固定价 70000
	if result.CampaignDiscount != 10000 {
		t.Fatalf("expected bundle discount 10000, got: %d", result.CampaignDiscount)
	}

	short := &models.Order{
		OutletID: 1,
		Items: []models.OrderItem{
			{ItemID: 201, UnitPrice: 30000, Quantity: 1, TotalPrice: 30000},
			{ItemID: 202, UnitPrice: 20000, Quantity: 1, TotalPrice: 20000},
		},
	}
	seedOrder(t, env.db, short)

	result, err = env.pricing.PriceOrder(short.ID, testActor())
	if err != nil {
		t.Fatalf("price short order failed: %v", err)
	}
	if result.CampaignDiscount != 0 {
		t.Fatalf("bundle quantity not met, expected zero discount, got: %d", result.CampaignDiscount)
	}
}

func TestPriceOrderBestDiscountPerItem(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 10000)

	weak := discountCampaignInput(1)
	weak.Title = "九折"
	weak.Items[0].DiscountValue = 10
	createActiveCampaign(t, env, weak)

	strong := discountCampaignInput(1)
	strong.Title = "七折"
	strong.Items[0].DiscountValue = 30
	createActiveCampaign(t, env, strong)

	order := &models.Order{
		OutletID: 1,
		Items:    []models.OrderItem{{ItemID: 101, UnitPrice: 10000, Quantity: 1, TotalPrice: 10000}},
	}
	seedOrder(t, env.db, order)

	result, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("price order failed: %v", err)
	}
	if result.CampaignDiscount != 3000 {
		t.Fatalf("expected only the best discount 3000, got: %d", result.CampaignDiscount)
	}
	if len(result.AppliedCampaigns) != 1 {
		t.Fatalf("expected exactly 1 applied campaign, got: %d", len(result.AppliedCampaigns))
	}
}

func TestPriceOrderTotalFloorsAtZero(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 1000)

	issue := &models.PromoIssue{
		Code:         "VIP1000",
		ClientUserID: 7,
		Type:         constants.PromoIssueTypeFixed,
		Value:        1000,
		Status:       constants.PromoIssueStatusActive,
	}
	if err := env.db.Create(issue).Error; err != nil {
		t.Fatalf("create promo issue failed: %v", err)
	}

	order := &models.Order{
		OutletID:     1,
		ClientUserID: uintPtr(7),
		PromoCode:    "VIP1000",
		Items:        []models.OrderItem{{ItemID: 101, UnitPrice: 1000, Quantity: 1, TotalPrice: 1000}},
	}
	seedOrder(t, env.db, order)

	result, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("price order failed: %v", err)
	}
	if result.PromoDiscount != 1000 {
		t.Fatalf("expected promo discount 1000, got: %d", result.PromoDiscount)
	}
	if result.Total != 0 {
		t.Fatalf("expected total 0, got: %d", result.Total)
	}
}

func TestPriceOrderMarksPersonalIssueUsedAndStaysIdempotent(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 20000)

	issue := &models.PromoIssue{
		Code:         "WELCOME10",
		ClientUserID: 7,
		Type:         constants.PromoIssueTypePercent,
		Value:        10,
		Status:       constants.PromoIssueStatusActive,
	}
	if err := env.db.Create(issue).Error; err != nil {
		t.Fatalf("create promo issue failed: %v", err)
	}

	order := &models.Order{
		OutletID:     1,
		ClientUserID: uintPtr(7),
		PromoCode:    "WELCOME10",
		Items:        []models.OrderItem{{ItemID: 101, UnitPrice: 20000, Quantity: 1, TotalPrice: 20000}},
	}
	seedOrder(t, env.db, order)

	first, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("first pricing failed: %v", err)
	}
	if first.PromoDiscount != 2000 || first.PromoSource != constants.PromoSourcePersonal {
		t.Fatalf("unexpected promo resolution: %+v", first)
	}

	var stored models.PromoIssue
	if err := env.db.First(&stored, issue.ID).Error; err != nil {
		t.Fatalf("load promo issue failed: %v", err)
	}
	if stored.Status != constants.PromoIssueStatusUsed {
		t.Fatalf("expected issue marked used, got: %s", stored.Status)
	}
	if stored.UsedOrderID == nil || *stored.UsedOrderID != order.ID {
		t.Fatalf("expected used_order_id %d, got: %v", order.ID, stored.UsedOrderID)
	}

	// 重算同一订单时已核销的个人优惠码继续生效
	second, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("second pricing failed: %v", err)
	}
	if second.PromoDiscount != 2000 {
		t.Fatalf("re-pricing should keep promo discount, got: %d", second.PromoDiscount)
	}
}

func TestPriceOrderGlobalPromoRepriceAtUsageCap(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 10000)

	promo := &models.PromoCode{Code: "CAP10", DiscountPercent: 10, MaxUses: 1, IsActive: true}
	if err := env.db.Create(promo).Error; err != nil {
		t.Fatalf("create promo code failed: %v", err)
	}

	order := &models.Order{
		OutletID:     1,
		ClientUserID: uintPtr(7),
		PromoCode:    "CAP10",
		Items:        []models.OrderItem{{ItemID: 101, UnitPrice: 10000, Quantity: 1, TotalPrice: 10000}},
	}
	seedOrder(t, env.db, order)

	first, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("first pricing failed: %v", err)
	}
	if first.PromoDiscount != 1000 || first.PromoSource != constants.PromoSourceGlobal {
		t.Fatalf("unexpected promo resolution: %+v", first)
	}

	// 上限已被本订单占满，重算仍保持原优惠与总额
	second, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("second pricing failed: %v", err)
	}
	if second.PromoDiscount != first.PromoDiscount || second.Total != first.Total {
		t.Fatalf("re-pricing changed promo result: first promo=%d total=%d, second promo=%d total=%d",
			first.PromoDiscount, first.Total, second.PromoDiscount, second.Total)
	}

	var stored models.PromoCode
	if err := env.db.First(&stored, promo.ID).Error; err != nil {
		t.Fatalf("load promo code failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("expected used_count 1 after re-pricing, got: %d", stored.UsedCount)
	}

	// 其他订单仍然受上限限制
	other := &models.Order{
		OutletID:     1,
		ClientUserID: uintPtr(8),
		PromoCode:    "CAP10",
		Items:        []models.OrderItem{{ItemID: 101, UnitPrice: 10000, Quantity: 1, TotalPrice: 10000}},
	}
	seedOrder(t, env.db, other)
	result, err := env.pricing.PriceOrder(other.ID, testActor())
	if err != nil {
		t.Fatalf("price other order failed: %v", err)
	}
	if result.PromoDiscount != 0 {
		t.Fatalf("exhausted promo should yield zero for other orders, got: %d", result.PromoDiscount)
	}
}

func TestPriceOrderFirstOrderOnlyRepriceAfterLaterOrder(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 10000)

	promo := &models.PromoCode{Code: "FIRST10", DiscountPercent: 10, IsActive: true, FirstOrderOnly: true}
	if err := env.db.Create(promo).Error; err != nil {
		t.Fatalf("create promo code failed: %v", err)
	}

	order := &models.Order{
		OutletID:     1,
		ClientUserID: uintPtr(7),
		PromoCode:    "FIRST10",
		Items:        []models.OrderItem{{ItemID: 101, UnitPrice: 10000, Quantity: 1, TotalPrice: 10000}},
	}
	seedOrder(t, env.db, order)

	first, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("first pricing failed: %v", err)
	}
	if first.PromoDiscount != 1000 {
		t.Fatalf("expected first-order promo discount 1000, got: %d", first.PromoDiscount)
	}

	// 客户又下了一单，首单的重算不应因此丢失优惠
	later := &models.Order{
		OutletID:     1,
		ClientUserID: uintPtr(7),
		Items:        []models.OrderItem{{ItemID: 101, UnitPrice: 10000, Quantity: 1, TotalPrice: 10000}},
	}
	seedOrder(t, env.db, later)

	second, err := env.pricing.PriceOrder(order.ID, testActor())
	if err != nil {
		t.Fatalf("re-pricing failed: %v", err)
	}
	if second.PromoDiscount != first.PromoDiscount || second.Total != first.Total {
		t.Fatalf("re-pricing changed first-order promo: first promo=%d total=%d, second promo=%d total=%d",
			first.PromoDiscount, first.Total, second.PromoDiscount, second.Total)
	}
}

func TestPreviewOrderHasNoSideEffects(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 10000)
	createActiveCampaign(t, env, discountCampaignInput(1))

	order := &models.Order{
		OutletID: 1,
		Items:    []models.OrderItem{{ItemID: 101, UnitPrice: 10000, Quantity: 1, TotalPrice: 10000}},
	}
	seedOrder(t, env.db, order)

	result, err := env.pricing.PreviewOrder(order.ID)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if result.CampaignDiscount != 2000 {
		t.Fatalf("expected preview discount 2000, got: %d", result.CampaignDiscount)
	}

	var ledger int64
	if err := env.db.Model(&models.CampaignUsage{}).Count(&ledger).Error; err != nil {
		t.Fatalf("count ledger failed: %v", err)
	}
	if ledger != 0 {
		t.Fatalf("preview must not write ledger rows, got: %d", ledger)
	}
	var stored models.Order
	if err := env.db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Total != 0 && stored.Total != order.Total {
		t.Fatalf("preview must not persist totals: %+v", stored)
	}
}

func TestActiveCampaignsFiltersSchedule(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 10000)

	in := discountCampaignInput(1)
	now := time.Now()
	// 把时段窗口设到远离当前时刻的两分钟区间
	windowStart := now.Add(5 * time.Hour)
	in.ActiveHours = models.HourWindow{
		From: windowStart.Format("15:04"),
		To:   windowStart.Add(2 * time.Minute).Format("15:04"),
	}
	createActiveCampaign(t, env, in)

	campaigns, err := env.pricing.ActiveCampaigns(1, now)
	if err != nil {
		t.Fatalf("active campaigns failed: %v", err)
	}
	if len(campaigns) != 0 {
		t.Fatalf("campaign outside hour window should be filtered, got %d", len(campaigns))
	}

	campaigns, err = env.pricing.ActiveCampaigns(1, windowStart.Add(time.Minute))
	if err != nil {
		t.Fatalf("active campaigns failed: %v", err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("campaign inside hour window should be returned, got %d", len(campaigns))
	}
}
