package service

import (
	"strings"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/repository"

	"gorm.io/gorm"
)

// CampaignCache 门店生效活动缓存接口（Redis 不可用时注入 nil）
type CampaignCache interface {
	GetActive(outletID uint) ([]models.Campaign, bool)
	SetActive(outletID uint, campaigns []models.Campaign)
	Invalidate(outletID uint)
}

// allowedTransitions 活动状态机：键为当前状态，值为允许迁移到的目标状态
var allowedTransitions = map[string][]string{
	constants.CampaignStatusDraft:    {constants.CampaignStatusActive, constants.CampaignStatusPaused, constants.CampaignStatusArchived},
	constants.CampaignStatusActive:   {constants.CampaignStatusPaused, constants.CampaignStatusArchived},
	constants.CampaignStatusPaused:   {constants.CampaignStatusActive, constants.CampaignStatusArchived},
	constants.CampaignStatusExpired:  {constants.CampaignStatusArchived},
	constants.CampaignStatusArchived: {},
}

func transitionAllowed(from, to string) bool {
	for _, status := range allowedTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

// CampaignAdminService 营销活动管理服务
type CampaignAdminService struct {
	db           *gorm.DB
	campaignRepo repository.CampaignRepository
	usageRepo    repository.CampaignUsageRepository
	itemRepo     repository.OutletItemRepository
	audit        *AuditService
	cache        CampaignCache
}

// NewCampaignAdminService 创建活动管理服务
func NewCampaignAdminService(
	db *gorm.DB,
	campaignRepo repository.CampaignRepository,
	usageRepo repository.CampaignUsageRepository,
	itemRepo repository.OutletItemRepository,
	audit *AuditService,
	cache CampaignCache,
) *CampaignAdminService {
	return &CampaignAdminService{
		db:           db,
		campaignRepo: campaignRepo,
		usageRepo:    usageRepo,
		itemRepo:     itemRepo,
		audit:        audit,
		cache:        cache,
	}
}

// CampaignItemInput 活动商品规则入参
type CampaignItemInput struct {
	ItemID        uint   `json:"item_id"`
	Qty           int    `json:"qty"`
	Required      bool   `json:"required"`
	DiscountType  string `json:"discount_type"`
	DiscountValue int64  `json:"discount_value"`
}

// CampaignInput 活动创建/更新入参
type CampaignInput struct {
	OutletID              uint                `json:"outlet_id"`
	Type                  string              `json:"type"`
	Title                 string              `json:"title"`
	Description           string              `json:"description"`
	Priority              int                 `json:"priority"`
	StartAt               *time.Time          `json:"start_at"`
	EndAt                 *time.Time          `json:"end_at"`
	ActiveDays            []string            `json:"active_days"`
	ActiveHours           models.HourWindow   `json:"active_hours"`
	MinOrderAmount        int64               `json:"min_order_amount"`
	MaxUsesTotal          int                 `json:"max_uses_total"`
	MaxUsesPerClient      int                 `json:"max_uses_per_client"`
	DeliveryMethods       []string            `json:"delivery_methods"`
	StoplistPolicy        string              `json:"stoplist_policy"`
	BundleFixedPrice      *int64              `json:"bundle_fixed_price"`
	BundlePercentDiscount *int64              `json:"bundle_percent_discount"`
	Items                 []CampaignItemInput `json:"items"`
}

// validateAndBuild 校验入参并构建活动实体，返回非致命告警列表。
// 校验失败返回 ValidationError，调用方映射为 400。
func (s *CampaignAdminService) validateAndBuild(in CampaignInput) (*models.Campaign, []string, error) {
	var warnings []string

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, nil, validationErrorf("title is required")
	}
	if in.OutletID == 0 {
		return nil, nil, validationErrorf("outlet_id is required")
	}
	switch in.Type {
	case constants.CampaignTypeDiscount, constants.CampaignTypeBundle, constants.CampaignTypeBogo:
	default:
		return nil, nil, validationErrorf("unknown campaign type %q", in.Type)
	}
	if in.StartAt != nil && in.EndAt != nil && in.EndAt.Before(*in.StartAt) {
		return nil, nil, validationErrorf("end_at cannot be before start_at")
	}
	// 负数一律归零：0 表示无门槛/无上限/默认优先级
	if in.Priority < 0 {
		in.Priority = 0
	}
	if in.MinOrderAmount < 0 {
		in.MinOrderAmount = 0
	}
	if in.MaxUsesTotal < 0 {
		in.MaxUsesTotal = 0
	}
	if in.MaxUsesPerClient < 0 {
		in.MaxUsesPerClient = 0
	}

	days := make(models.WeekdaySet, 0, len(in.ActiveDays))
	for _, day := range in.ActiveDays {
		day = strings.ToLower(strings.TrimSpace(day))
		valid := false
		for _, code := range constants.WeekdayCodes {
			if day == code {
				valid = true
				break
			}
		}
		if !valid {
			return nil, nil, validationErrorf("unknown weekday code %q", day)
		}
		if !days.Contains(day) {
			days = append(days, day)
		}
	}

	if !in.ActiveHours.IsZero() {
		_, okFrom := parseClockMinutes(in.ActiveHours.From)
		_, okTo := parseClockMinutes(in.ActiveHours.To)
		if !okFrom || !okTo {
			warnings = append(warnings, "active_hours is not a valid HH:MM window and will not restrict the campaign")
		}
	}

	for _, method := range in.DeliveryMethods {
		switch method {
		case constants.DeliveryMethodCourier, constants.DeliveryMethodPickup:
		default:
			return nil, nil, validationErrorf("unknown delivery method %q", method)
		}
	}

	stoplistPolicy := in.StoplistPolicy
	if stoplistPolicy == "" {
		stoplistPolicy = constants.StoplistPolicyHide
	}
	switch stoplistPolicy {
	case constants.StoplistPolicyHide, constants.StoplistPolicyDisable:
	default:
		return nil, nil, validationErrorf("unknown stoplist policy %q", stoplistPolicy)
	}

	if len(in.Items) == 0 {
		return nil, nil, validationErrorf("campaign needs at least one item rule")
	}
	seen := make(map[uint]bool, len(in.Items))
	itemIDs := make([]uint, 0, len(in.Items))
	items := make([]models.CampaignItem, 0, len(in.Items))
	for _, rule := range in.Items {
		if rule.ItemID == 0 {
			return nil, nil, validationErrorf("item_id is required for every item rule")
		}
		if seen[rule.ItemID] {
			return nil, nil, validationErrorf("duplicate item %d in item rules", rule.ItemID)
		}
		seen[rule.ItemID] = true
		itemIDs = append(itemIDs, rule.ItemID)
		if rule.Qty < 1 {
			return nil, nil, validationErrorf("item %d: qty must be at least 1", rule.ItemID)
		}
		if in.Type != constants.CampaignTypeBundle {
			switch rule.DiscountType {
			case constants.DiscountTypePercent:
				if rule.DiscountValue <= 0 || rule.DiscountValue >= 100 {
					return nil, nil, validationErrorf("item %d: percent discount must be between 1 and 99", rule.ItemID)
				}
			case constants.DiscountTypeFixed, constants.DiscountTypeNewPrice:
				if rule.DiscountValue < 0 {
					return nil, nil, validationErrorf("item %d: discount value cannot be negative", rule.ItemID)
				}
			default:
				return nil, nil, validationErrorf("item %d: unknown discount type %q", rule.ItemID, rule.DiscountType)
			}
		}
		items = append(items, models.CampaignItem{
			ItemID:        rule.ItemID,
			Qty:           rule.Qty,
			Required:      rule.Required,
			DiscountType:  rule.DiscountType,
			DiscountValue: rule.DiscountValue,
		})
	}

	prices, err := s.itemRepo.PriceMap(in.OutletID, itemIDs)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range itemIDs {
		if _, ok := prices[id]; !ok {
			return nil, nil, validationErrorf("item %d has no price configured for outlet %d", id, in.OutletID)
		}
	}

	if in.Type == constants.CampaignTypeBundle {
		if err := validateBundle(in, items, prices, &warnings); err != nil {
			return nil, nil, err
		}
	} else if in.BundleFixedPrice != nil || in.BundlePercentDiscount != nil {
		return nil, nil, validationErrorf("bundle pricing fields are only valid for bundle campaigns")
	}

	campaign := &models.Campaign{
		OutletID:              in.OutletID,
		Type:                  in.Type,
		Title:                 in.Title,
		Description:           in.Description,
		Priority:              in.Priority,
		Status:                constants.CampaignStatusDraft,
		StartAt:               in.StartAt,
		EndAt:                 in.EndAt,
		ActiveDays:            days,
		ActiveHours:           in.ActiveHours,
		MinOrderAmount:        in.MinOrderAmount,
		MaxUsesTotal:          in.MaxUsesTotal,
		MaxUsesPerClient:      in.MaxUsesPerClient,
		DeliveryMethods:       models.StringArray(in.DeliveryMethods),
		StoplistPolicy:        stoplistPolicy,
		BundleFixedPrice:      in.BundleFixedPrice,
		BundlePercentDiscount: in.BundlePercentDiscount,
		Items:                 items,
	}
	return campaign, warnings, nil
}

// validateBundle 校验套餐专属规则：固定价与百分比折扣二选一，固定价不得高于成员原价合计
func validateBundle(in CampaignInput, items []models.CampaignItem, prices map[uint]int64, warnings *[]string) error {
	hasFixed := in.BundleFixedPrice != nil
	hasPercent := in.BundlePercentDiscount != nil
	if hasFixed == hasPercent {
		return validationErrorf("bundle needs exactly one of bundle_fixed_price or bundle_percent_discount")
	}

	requiredCount := 0
	var memberSum int64
	for _, rule := range items {
		if !rule.Required {
			continue
		}
		requiredCount++
		memberSum += prices[rule.ItemID] * int64(rule.Qty)
	}
	if requiredCount == 0 {
		return validationErrorf("bundle needs at least one required item")
	}

	if hasFixed {
		fixed := *in.BundleFixedPrice
		if fixed <= 0 {
			return validationErrorf("bundle_fixed_price must be positive")
		}
		if fixed > memberSum {
			return validationErrorf("bundle_fixed_price %d exceeds member price sum %d", fixed, memberSum)
		}
		if fixed == memberSum {
			*warnings = append(*warnings, "bundle_fixed_price equals member price sum, bundle gives no savings")
		}
	} else {
		percent := *in.BundlePercentDiscount
		if percent <= 0 || percent >= 100 {
			return validationErrorf("bundle_percent_discount must be between 1 and 99")
		}
		if percentOf(memberSum, percent) == 0 {
			*warnings = append(*warnings, "bundle_percent_discount rounds to zero savings on member price sum, bundle gives no savings")
		}
	}
	return nil
}

// Create 创建活动（始终以 draft 状态入库）
func (s *CampaignAdminService) Create(in CampaignInput, actor Actor) (*models.Campaign, []string, error) {
	campaign, warnings, err := s.validateAndBuild(in)
	if err != nil {
		return nil, nil, err
	}
	campaign.CreatedByRole = actor.Role
	campaign.CreatedByID = actor.ID
	if err := s.campaignRepo.Create(campaign); err != nil {
		return nil, nil, err
	}

	logger.Infow("campaign_created",
		"campaign_id", campaign.ID,
		"outlet_id", campaign.OutletID,
		"type", campaign.Type,
	)
	s.audit.Record(constants.AuditEntityCampaign, campaign.ID, "create", actor, nil, campaignSnapshot(campaign))
	return campaign, warnings, nil
}

// Update 更新活动内容（归档活动不可修改）
func (s *CampaignAdminService) Update(id uint, in CampaignInput, actor Actor) (*models.Campaign, []string, error) {
	existing, err := s.campaignRepo.GetWithItems(id)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil {
		return nil, nil, ErrCampaignNotFound
	}
	if existing.Status == constants.CampaignStatusArchived {
		return nil, nil, stateConflictf("archived campaign cannot be modified")
	}

	built, warnings, err := s.validateAndBuild(in)
	if err != nil {
		return nil, nil, err
	}
	before := campaignSnapshot(existing)

	existing.OutletID = built.OutletID
	existing.Type = built.Type
	existing.Title = built.Title
	existing.Description = built.Description
	existing.Priority = built.Priority
	existing.StartAt = built.StartAt
	existing.EndAt = built.EndAt
	existing.ActiveDays = built.ActiveDays
	existing.ActiveHours = built.ActiveHours
	existing.MinOrderAmount = built.MinOrderAmount
	existing.MaxUsesTotal = built.MaxUsesTotal
	existing.MaxUsesPerClient = built.MaxUsesPerClient
	existing.DeliveryMethods = built.DeliveryMethods
	existing.StoplistPolicy = built.StoplistPolicy
	existing.BundleFixedPrice = built.BundleFixedPrice
	existing.BundlePercentDiscount = built.BundlePercentDiscount
	items := built.Items
	existing.Items = nil

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.campaignRepo.WithTx(tx)
		if err := repo.Update(existing); err != nil {
			return err
		}
		return repo.ReplaceItems(existing.ID, items)
	})
	if err != nil {
		return nil, nil, err
	}
	existing.Items = items

	logger.Infow("campaign_updated", "campaign_id", existing.ID, "outlet_id", existing.OutletID)
	s.audit.Record(constants.AuditEntityCampaign, existing.ID, "update", actor, before, campaignSnapshot(existing))
	s.invalidateCache(existing.OutletID)
	return existing, warnings, nil
}

// Validate 只做校验不落库，返回校验告警
func (s *CampaignAdminService) Validate(in CampaignInput) ([]string, error) {
	_, warnings, err := s.validateAndBuild(in)
	if err != nil {
		return nil, err
	}
	if warnings == nil {
		warnings = []string{}
	}
	return warnings, nil
}

// Get 获取活动详情（读取前先执行过期清扫）
func (s *CampaignAdminService) Get(id uint) (*models.Campaign, error) {
	if _, err := s.SweepExpired(time.Now()); err != nil {
		return nil, err
	}
	campaign, err := s.campaignRepo.GetWithItems(id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// List 获取活动列表（读取前先执行过期清扫）
func (s *CampaignAdminService) List(filter repository.CampaignListFilter) ([]models.Campaign, int64, error) {
	if _, err := s.SweepExpired(time.Now()); err != nil {
		return nil, 0, err
	}
	return s.campaignRepo.List(filter)
}

// Transition 执行状态迁移。目标与当前状态相同时为幂等空操作。
func (s *CampaignAdminService) Transition(id uint, target string, actor Actor) (*models.Campaign, error) {
	now := time.Now()
	if _, err := s.SweepExpired(now); err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.GetWithItems(id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.Status == target {
		return campaign, nil
	}
	if !transitionAllowed(campaign.Status, target) {
		return nil, stateConflictf("campaign cannot go from %s to %s", campaign.Status, target)
	}

	updates := map[string]interface{}{}
	if target == constants.CampaignStatusActive {
		if campaign.EndAt != nil && campaign.EndAt.Before(now) {
			return nil, stateConflictf("campaign end_at is in the past, cannot activate")
		}
		if campaign.StartAt == nil {
			updates["start_at"] = now
			campaign.StartAt = &now
		}
	}
	if target == constants.CampaignStatusArchived {
		updates["archived_at"] = now
		campaign.ArchivedAt = &now
	}

	before := campaign.Status
	if err := s.campaignRepo.UpdateStatus(id, target, updates); err != nil {
		return nil, err
	}
	campaign.Status = target

	logger.Infow("campaign_status_changed",
		"campaign_id", id,
		"from", before,
		"to", target,
	)
	s.audit.Record(constants.AuditEntityCampaign, id, "status_"+target, actor,
		models.JSON{"status": before}, models.JSON{"status": target})
	s.invalidateCache(campaign.OutletID)
	return campaign, nil
}

// Activate 激活活动
func (s *CampaignAdminService) Activate(id uint, actor Actor) (*models.Campaign, error) {
	return s.Transition(id, constants.CampaignStatusActive, actor)
}

// Pause 暂停活动
func (s *CampaignAdminService) Pause(id uint, actor Actor) (*models.Campaign, error) {
	return s.Transition(id, constants.CampaignStatusPaused, actor)
}

// Archive 归档活动
func (s *CampaignAdminService) Archive(id uint, actor Actor) (*models.Campaign, error) {
	return s.Transition(id, constants.CampaignStatusArchived, actor)
}

// Duplicate 复制活动为新的草稿
func (s *CampaignAdminService) Duplicate(id uint, actor Actor) (*models.Campaign, error) {
	source, err := s.campaignRepo.GetWithItems(id)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrCampaignNotFound
	}

	items := make([]models.CampaignItem, 0, len(source.Items))
	for _, rule := range source.Items {
		items = append(items, models.CampaignItem{
			ItemID:        rule.ItemID,
			Qty:           rule.Qty,
			Required:      rule.Required,
			DiscountType:  rule.DiscountType,
			DiscountValue: rule.DiscountValue,
		})
	}
	copied := &models.Campaign{
		OutletID:              source.OutletID,
		Type:                  source.Type,
		Title:                 source.Title + " (copy)",
		Description:           source.Description,
		Priority:              source.Priority,
		Status:                constants.CampaignStatusDraft,
		StartAt:               source.StartAt,
		EndAt:                 source.EndAt,
		ActiveDays:            source.ActiveDays,
		ActiveHours:           source.ActiveHours,
		MinOrderAmount:        source.MinOrderAmount,
		MaxUsesTotal:          source.MaxUsesTotal,
		MaxUsesPerClient:      source.MaxUsesPerClient,
		DeliveryMethods:       source.DeliveryMethods,
		StoplistPolicy:        source.StoplistPolicy,
		BundleFixedPrice:      source.BundleFixedPrice,
		BundlePercentDiscount: source.BundlePercentDiscount,
		CreatedByRole:         actor.Role,
		CreatedByID:           actor.ID,
		Items:                 items,
	}
	if err := s.campaignRepo.Create(copied); err != nil {
		return nil, err
	}

	logger.Infow("campaign_duplicated", "source_campaign_id", id, "campaign_id", copied.ID)
	s.audit.Record(constants.AuditEntityCampaign, copied.ID, "duplicate", actor,
		models.JSON{"source_campaign_id": id}, campaignSnapshot(copied))
	return copied, nil
}

// SweepExpired 将失效时间已过的活动统一置为 expired，返回清扫条数
func (s *CampaignAdminService) SweepExpired(now time.Time) (int64, error) {
	swept, err := s.campaignRepo.MarkExpired(now)
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		logger.Infow("campaigns_expired_swept", "count", swept)
	}
	return swept, nil
}

// Usage 获取活动使用台账
func (s *CampaignAdminService) Usage(filter repository.CampaignUsageListFilter) ([]models.CampaignUsage, int64, error) {
	campaign, err := s.campaignRepo.GetByID(filter.CampaignID)
	if err != nil {
		return nil, 0, err
	}
	if campaign == nil {
		return nil, 0, ErrCampaignNotFound
	}
	return s.usageRepo.ListByCampaign(filter)
}

func (s *CampaignAdminService) invalidateCache(outletID uint) {
	if s.cache != nil {
		s.cache.Invalidate(outletID)
	}
}

func campaignSnapshot(campaign *models.Campaign) models.JSON {
	return models.JSON{
		"outlet_id":        campaign.OutletID,
		"type":             campaign.Type,
		"title":            campaign.Title,
		"status":           campaign.Status,
		"priority":         campaign.Priority,
		"min_order_amount": campaign.MinOrderAmount,
		"item_count":       len(campaign.Items),
	}
}
