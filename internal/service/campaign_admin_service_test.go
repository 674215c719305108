package service

import (
	"errors"
	"testing"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/models"
)

func discountCampaignInput(outletID uint) CampaignInput {
	return CampaignInput{
		OutletID: outletID,
		Type:     constants.CampaignTypeDiscount,
		Title:    "午市折扣",
		Items: []CampaignItemInput{
			{ItemID: 101, Qty: 1, DiscountType: constants.DiscountTypePercent, DiscountValue: 20},
		},
	}
}

func TestCampaignCreateStartsAsDraft(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)

	campaign, warnings, err := env.campaign.Create(discountCampaignInput(1), testActor())
	if err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	if campaign.Status != constants.CampaignStatusDraft {
		t.Fatalf("expected draft status, got: %s", campaign.Status)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(campaign.Items) != 1 {
		t.Fatalf("expected 1 item rule, got: %d", len(campaign.Items))
	}
}

func TestCampaignCreateRejectsUnpricedItem(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)

	in := discountCampaignInput(1)
	in.Items = append(in.Items, CampaignItemInput{
		ItemID: 999, Qty: 1, DiscountType: constants.DiscountTypePercent, DiscountValue: 10,
	})
	_, _, err := env.campaign.Create(in, testActor())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unpriced item, got: %v", err)
	}
}

func TestCampaignCreateRejectsDuplicateItems(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)

	in := discountCampaignInput(1)
	in.Items = append(in.Items, in.Items[0])
	_, _, err := env.campaign.Create(in, testActor())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for duplicate item, got: %v", err)
	}
}

func TestBundleValidation(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 201, 30000)
	seedOutletItem(t, env.db, 1, 202, 20000)

	in := CampaignInput{
		OutletID: 1,
		Type:     constants.CampaignTypeBundle,
		Title:    "双人套餐",
		Items: []CampaignItemInput{
			{ItemID: 201, Qty: 1, Required: true},
			{ItemID: 202, Qty: 1, Required: true},
		},
	}

	// 固定价与百分比都缺失
	if _, err := env.campaign.Validate(in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error without bundle pricing, got: %v", err)
	}

	// 固定价与百分比同时存在
	in.BundleFixedPrice = int64Ptr(40000)
	in.BundlePercentDiscount = int64Ptr(10)
	if _, err := env.campaign.Validate(in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error with both bundle pricing fields, got: %v", err)
	}

	// 固定价超出成员原价合计
	in.BundlePercentDiscount = nil
	in.BundleFixedPrice = int64Ptr(60000)
	if _, err := env.campaign.Validate(in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for fixed price above member sum, got: %v", err)
	}

	// 固定价等于合计：通过但有告警
	in.BundleFixedPrice = int64Ptr(50000)
	warnings, err := env.campaign.Validate(in)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for no-savings bundle, got: %v", warnings)
	}

	// 正常固定价
	in.BundleFixedPrice = int64Ptr(40000)
	warnings, err = env.campaign.Validate(in)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestBundlePercentZeroSavingsWarns(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 301, 2)

	in := CampaignInput{
		OutletID:              1,
		Type:                  constants.CampaignTypeBundle,
		Title:                 "迷你套餐",
		BundlePercentDiscount: int64Ptr(10),
		Items: []CampaignItemInput{
			{ItemID: 301, Qty: 1, Required: true},
		},
	}
	// 成员原价合计太小，折扣取整后为零
	warnings, err := env.campaign.Validate(in)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for zero-savings percent bundle, got: %v", warnings)
	}
}

func TestCampaignCoercesNegativeNumbers(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)

	in := discountCampaignInput(1)
	in.Priority = -5
	in.MinOrderAmount = -1000
	in.MaxUsesTotal = -1
	in.MaxUsesPerClient = -2

	campaign, warnings, err := env.campaign.Create(in, testActor())
	if err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if campaign.Priority != 0 || campaign.MinOrderAmount != 0 ||
		campaign.MaxUsesTotal != 0 || campaign.MaxUsesPerClient != 0 {
		t.Fatalf("negative numbers should coerce to zero: %+v", campaign)
	}
}

func TestCampaignActivateSetsStartAt(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)

	campaign, _, err := env.campaign.Create(discountCampaignInput(1), testActor())
	if err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	activated, err := env.campaign.Activate(campaign.ID, testActor())
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if activated.Status != constants.CampaignStatusActive {
		t.Fatalf("expected active status, got: %s", activated.Status)
	}
	if activated.StartAt == nil {
		t.Fatal("activate should backfill start_at")
	}
}

func TestCampaignActivatePastEndAtConflicts(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)

	in := discountCampaignInput(1)
	in.StartAt = timePtr(time.Now().Add(-48 * time.Hour))
	in.EndAt = timePtr(time.Now().Add(-24 * time.Hour))
	campaign, _, err := env.campaign.Create(in, testActor())
	if err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}

	_, err = env.campaign.Activate(campaign.ID, testActor())
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected state conflict for past end_at, got: %v", err)
	}
}

func TestCampaignTransitionRules(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)

	campaign, _, err := env.campaign.Create(discountCampaignInput(1), testActor())
	if err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}

	// 同状态迁移是幂等空操作
	if _, err := env.campaign.Transition(campaign.ID, constants.CampaignStatusDraft, testActor()); err != nil {
		t.Fatalf("same-state transition should be a no-op: %v", err)
	}

	if _, err := env.campaign.Activate(campaign.ID, testActor()); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if _, err := env.campaign.Pause(campaign.ID, testActor()); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if _, err := env.campaign.Activate(campaign.ID, testActor()); err != nil {
		t.Fatalf("re-activate failed: %v", err)
	}
	if _, err := env.campaign.Archive(campaign.ID, testActor()); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	// 归档后不可再激活
	if _, err := env.campaign.Activate(campaign.ID, testActor()); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected state conflict re-activating archived campaign, got: %v", err)
	}
	// 归档后不可修改
	if _, _, err := env.campaign.Update(campaign.ID, discountCampaignInput(1), testActor()); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected state conflict updating archived campaign, got: %v", err)
	}
}

func TestCampaignSweepExpired(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)

	in := discountCampaignInput(1)
	in.StartAt = timePtr(time.Now().Add(-48 * time.Hour))
	in.EndAt = timePtr(time.Now().Add(-1 * time.Hour))
	campaign, _, err := env.campaign.Create(in, testActor())
	if err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}

	swept, err := env.campaign.SweepExpired(time.Now())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept campaign, got: %d", swept)
	}

	got, err := env.campaign.Get(campaign.ID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	if got.Status != constants.CampaignStatusExpired {
		t.Fatalf("expected expired status, got: %s", got.Status)
	}

	// expired 只能归档
	if _, err := env.campaign.Activate(campaign.ID, testActor()); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected state conflict activating expired campaign, got: %v", err)
	}
	if _, err := env.campaign.Archive(campaign.ID, testActor()); err != nil {
		t.Fatalf("archiving expired campaign failed: %v", err)
	}
}

func TestCampaignDuplicate(t *testing.T) {
	env := setupServiceTest(t)
	seedOutletItem(t, env.db, 1, 101, 45000)

	campaign, _, err := env.campaign.Create(discountCampaignInput(1), testActor())
	if err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	if _, err := env.campaign.Activate(campaign.ID, testActor()); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	copied, err := env.campaign.Duplicate(campaign.ID, testActor())
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}
	if copied.ID == campaign.ID {
		t.Fatal("duplicate should create a new campaign")
	}
	if copied.Status != constants.CampaignStatusDraft {
		t.Fatalf("duplicate should start as draft, got: %s", copied.Status)
	}
	if copied.Title != campaign.Title+" (copy)" {
		t.Fatalf("unexpected duplicate title: %s", copied.Title)
	}

	var items []models.CampaignItem
	if err := env.db.Where("campaign_id = ?", copied.ID).Find(&items).Error; err != nil {
		t.Fatalf("load duplicated items failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 duplicated item rule, got: %d", len(items))
	}
}

func TestCampaignGetNotFound(t *testing.T) {
	env := setupServiceTest(t)
	if _, err := env.campaign.Get(12345); !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("expected campaign not found, got: %v", err)
	}
}
