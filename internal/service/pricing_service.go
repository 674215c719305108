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

// AppliedCampaign 计价结果中单个活动的贡献
type AppliedCampaign struct {
	CampaignID uint   `json:"campaign_id"`
	Title      string `json:"title"`
	Amount     int64  `json:"amount"`
}

// PricingResult 订单计价结果
type PricingResult struct {
	OrderID          uint              `json:"order_id"`
	SubtotalFood     int64             `json:"subtotal_food"`
	CourierFee       int64             `json:"courier_fee"`
	ServiceFee       int64             `json:"service_fee"`
	PromoCode        string            `json:"promo_code,omitempty"`
	PromoDiscount    int64             `json:"promo_discount"`
	PromoSource      string            `json:"promo_source,omitempty"`
	CampaignDiscount int64             `json:"campaign_discount"`
	Total            int64             `json:"total"`
	AppliedCampaigns []AppliedCampaign `json:"applied_campaigns"`
}

// PricingService 订单计价聚合服务
type PricingService struct {
	db           *gorm.DB
	campaignRepo repository.CampaignRepository
	usageRepo    repository.CampaignUsageRepository
	orderRepo    repository.OrderRepository
	promoRepo    repository.PromoCodeRepository
	issueRepo    repository.PromoIssueRepository
	promo        *PromoService
	audit        *AuditService
	cache        CampaignCache
}

// NewPricingService 创建订单计价服务
func NewPricingService(
	db *gorm.DB,
	campaignRepo repository.CampaignRepository,
	usageRepo repository.CampaignUsageRepository,
	orderRepo repository.OrderRepository,
	promoRepo repository.PromoCodeRepository,
	issueRepo repository.PromoIssueRepository,
	promo *PromoService,
	audit *AuditService,
	cache CampaignCache,
) *PricingService {
	return &PricingService{
		db:           db,
		campaignRepo: campaignRepo,
		usageRepo:    usageRepo,
		orderRepo:    orderRepo,
		promoRepo:    promoRepo,
		issueRepo:    issueRepo,
		promo:        promo,
		audit:        audit,
		cache:        cache,
	}
}

// ActiveCampaigns 获取门店在 now 时刻可参与计价的活动列表。
// 先执行过期清扫，再按优先级取窗口内的 active 活动，最后应用星期/时段排期过滤。
func (s *PricingService) ActiveCampaigns(outletID uint, now time.Time) ([]models.Campaign, error) {
	if _, err := s.campaignRepo.MarkExpired(now); err != nil {
		return nil, err
	}

	var campaigns []models.Campaign
	if s.cache != nil {
		if cached, ok := s.cache.GetActive(outletID); ok {
			campaigns = cached
		}
	}
	if campaigns == nil {
		loaded, err := s.campaignRepo.ListActive(outletID, now)
		if err != nil {
			return nil, err
		}
		campaigns = loaded
		if s.cache != nil {
			s.cache.SetActive(outletID, campaigns)
		}
	}

	result := make([]models.Campaign, 0, len(campaigns))
	for i := range campaigns {
		c := &campaigns[i]
		// 缓存命中时重新校验生效窗口，避免短暂返回刚过期的活动
		if c.StartAt != nil && c.StartAt.After(now) {
			continue
		}
		if c.EndAt != nil && c.EndAt.Before(now) {
			continue
		}
		if !campaignLiveAt(c, now) {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

// usageOK 校验活动的使用次数限制。ownCount 为该订单自身已占用的台账行数，
// 重算计价时先行扣除，保证同一订单重复计价结果稳定。
func (s *PricingService) usageOK(campaign *models.Campaign, clientUserID *uint, ownCount int64) (bool, error) {
	if campaign.MaxUsesTotal > 0 {
		count, err := s.usageRepo.CountByCampaign(campaign.ID)
		if err != nil {
			return false, err
		}
		if count-ownCount >= int64(campaign.MaxUsesTotal) {
			return false, nil
		}
	}
	if campaign.MaxUsesPerClient > 0 && clientUserID != nil {
		count, err := s.usageRepo.CountByClient(campaign.ID, *clientUserID)
		if err != nil {
			return false, err
		}
		if count-ownCount >= int64(campaign.MaxUsesPerClient) {
			return false, nil
		}
	}
	return true, nil
}

// eligible 判断活动是否可参与该订单的计价（门槛与使用限制，不含排期）
func (s *PricingService) eligible(campaign *models.Campaign, order *models.Order, subtotalFood int64, ownCount int64) (bool, error) {
	if len(campaign.DeliveryMethods) > 0 && order.DeliveryMethod != "" &&
		!campaign.DeliveryMethods.Contains(order.DeliveryMethod) {
		return false, nil
	}
	if campaign.MinOrderAmount > 0 && subtotalFood < campaign.MinOrderAmount {
		return false, nil
	}
	return s.usageOK(campaign, order.ClientUserID, ownCount)
}

// bundleDiscount 计算套餐活动优惠：所有必选项满足数量要求时按固定价差额或百分比折扣计
func bundleDiscount(campaign *models.Campaign, lines map[uint]*models.OrderItem) int64 {
	var memberSum int64
	hasRequired := false
	for _, rule := range campaign.Items {
		if !rule.Required {
			continue
		}
		hasRequired = true
		line, ok := lines[rule.ItemID]
		if !ok || line.Quantity < rule.Qty {
			return 0
		}
		memberSum += line.UnitPrice * int64(rule.Qty)
	}
	if !hasRequired {
		return 0
	}

	var discount int64
	if campaign.BundleFixedPrice != nil {
		discount = memberSum - *campaign.BundleFixedPrice
	} else if campaign.BundlePercentDiscount != nil {
		discount = percentOf(memberSum, *campaign.BundlePercentDiscount)
	}
	if discount < 0 {
		return 0
	}
	return discount
}

// itemWin 商品级折扣竞争结果
type itemWin struct {
	campaignID uint
	amount     int64
}

// computeCampaignDiscount 汇总活动优惠：套餐活动各自累计，
// 商品级折扣同一商品只取最优（入参已按优先级排序，金额相同先到先得）。
func computeCampaignDiscount(campaigns []models.Campaign, lines map[uint]*models.OrderItem) (int64, []AppliedCampaign) {
	byCampaign := make(map[uint]int64)
	titles := make(map[uint]string)
	ordered := make([]uint, 0, len(campaigns))

	bestPerItem := make(map[uint]itemWin)
	for i := range campaigns {
		c := &campaigns[i]
		titles[c.ID] = c.Title
		ordered = append(ordered, c.ID)

		if c.Type == constants.CampaignTypeBundle {
			if amount := bundleDiscount(c, lines); amount > 0 {
				byCampaign[c.ID] += amount
			}
			continue
		}
		for _, rule := range c.Items {
			line, ok := lines[rule.ItemID]
			if !ok || line.Quantity < rule.Qty {
				continue
			}
			perUnit := line.UnitPrice - discountedPrice(line.UnitPrice, rule.DiscountType, rule.DiscountValue)
			if perUnit <= 0 {
				continue
			}
			amount := perUnit * int64(line.Quantity)
			if win, exists := bestPerItem[rule.ItemID]; !exists || amount > win.amount {
				bestPerItem[rule.ItemID] = itemWin{campaignID: c.ID, amount: amount}
			}
		}
	}

	for _, win := range bestPerItem {
		byCampaign[win.campaignID] += win.amount
	}

	var total int64
	applied := make([]AppliedCampaign, 0, len(byCampaign))
	for _, id := range ordered {
		amount, ok := byCampaign[id]
		if !ok || amount <= 0 {
			continue
		}
		total += amount
		applied = append(applied, AppliedCampaign{CampaignID: id, Title: titles[id], Amount: amount})
	}
	return total, applied
}

// compute 执行一次完整计价，不产生任何写入
func (s *PricingService) compute(order *models.Order, now time.Time) (*PricingResult, PromoResolution, error) {
	var subtotal int64
	lines := make(map[uint]*models.OrderItem, len(order.Items))
	for i := range order.Items {
		line := &order.Items[i]
		subtotal += line.TotalPrice
		lines[line.ItemID] = line
	}

	campaigns, err := s.ActiveCampaigns(order.OutletID, now)
	if err != nil {
		return nil, PromoResolution{}, err
	}

	ownUsages, err := s.usageRepo.ListByOrderID(order.ID)
	if err != nil {
		return nil, PromoResolution{}, err
	}
	ownCounts := make(map[uint]int64, len(ownUsages))
	for _, usage := range ownUsages {
		ownCounts[usage.CampaignID]++
	}

	eligibleCampaigns := make([]models.Campaign, 0, len(campaigns))
	for i := range campaigns {
		ok, err := s.eligible(&campaigns[i], order, subtotal, ownCounts[campaigns[i].ID])
		if err != nil {
			return nil, PromoResolution{}, err
		}
		if ok {
			eligibleCampaigns = append(eligibleCampaigns, campaigns[i])
		}
	}
	campaignDiscount, applied := computeCampaignDiscount(eligibleCampaigns, lines)

	promoRes, err := s.resolvePromo(order, now, subtotal)
	if err != nil {
		return nil, PromoResolution{}, err
	}

	total := subtotal + order.CourierFee + order.ServiceFee - promoRes.Discount - campaignDiscount
	if total < 0 {
		total = 0
	}

	result := &PricingResult{
		OrderID:          order.ID,
		SubtotalFood:     subtotal,
		CourierFee:       order.CourierFee,
		ServiceFee:       order.ServiceFee,
		PromoCode:        strings.TrimSpace(order.PromoCode),
		PromoDiscount:    promoRes.Discount,
		PromoSource:      promoRes.Source,
		CampaignDiscount: campaignDiscount,
		Total:            total,
		AppliedCampaigns: applied,
	}
	return result, promoRes, nil
}

// resolvePromo 解析订单优惠码。重算时已被本订单核销的个人优惠码继续生效。
func (s *PricingService) resolvePromo(order *models.Order, now time.Time, subtotal int64) (PromoResolution, error) {
	code := strings.TrimSpace(order.PromoCode)
	if code == "" {
		return PromoResolution{}, nil
	}

	used, err := s.issueRepo.GetByUsedOrder(order.ID)
	if err != nil {
		return PromoResolution{}, err
	}
	if used != nil && used.Code == code {
		return s.promo.resolveIssue(used, subtotal), nil
	}

	// 订单已有优惠金额且未命中个人优惠码时，说明此前核销的是这个全局码
	ownRedemption := used == nil && order.PromoDiscount > 0
	return s.promo.resolveForOrder(now, code, order.OutletID, order.ClientUserID, subtotal, ownRedemption)
}

// PreviewOrder 试算订单计价，不落库
func (s *PricingService) PreviewOrder(orderID uint) (*PricingResult, error) {
	order, err := s.orderRepo.GetWithItems(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	result, _, err := s.compute(order, time.Now())
	return result, err
}

// PriceOrder 计价并持久化：回写订单金额字段，整单替换活动使用台账，
// 核销个人优惠码/累计全局优惠码使用次数，全部在同一事务内完成。
func (s *PricingService) PriceOrder(orderID uint, actor Actor) (*PricingResult, error) {
	now := time.Now()
	order, err := s.orderRepo.GetWithItems(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	result, promoRes, err := s.compute(order, now)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		usageRepo := s.usageRepo.WithTx(tx)
		if err := usageRepo.DeleteByOrderID(order.ID); err != nil {
			return err
		}
		for _, entry := range result.AppliedCampaigns {
			usage := &models.CampaignUsage{
				CampaignID:     entry.CampaignID,
				OrderID:        order.ID,
				ClientUserID:   order.ClientUserID,
				DiscountAmount: entry.Amount,
				AppliedAt:      now,
			}
			if err := usageRepo.Create(usage); err != nil {
				return err
			}
		}

		if err := s.orderRepo.WithTx(tx).UpdatePricing(order.ID, map[string]interface{}{
			"subtotal_food":     result.SubtotalFood,
			"promo_discount":    result.PromoDiscount,
			"campaign_discount": result.CampaignDiscount,
			"total":             result.Total,
		}); err != nil {
			return err
		}

		switch promoRes.Source {
		case constants.PromoSourcePersonal:
			issue, err := s.issueRepo.WithTx(tx).GetByID(promoRes.PromoIssueID)
			if err != nil {
				return err
			}
			if issue != nil && issue.Status == constants.PromoIssueStatusActive {
				if err := s.issueRepo.WithTx(tx).UpdateStatus(issue.ID, constants.PromoIssueStatusUsed, &order.ID); err != nil {
					return err
				}
			}
		case constants.PromoSourceGlobal:
			// 重算同一订单不重复累计使用次数
			if order.PromoDiscount == 0 {
				if err := s.promoRepo.WithTx(tx).IncrementUsedCount(promoRes.PromoCodeID, 1); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_priced",
		"order_id", order.ID,
		"outlet_id", order.OutletID,
		"subtotal_food", result.SubtotalFood,
		"promo_discount", result.PromoDiscount,
		"campaign_discount", result.CampaignDiscount,
		"total", result.Total,
	)
	s.audit.Record(constants.AuditEntityOrder, order.ID, "price", actor,
		models.JSON{
			"subtotal_food":     order.SubtotalFood,
			"promo_discount":    order.PromoDiscount,
			"campaign_discount": order.CampaignDiscount,
			"total":             order.Total,
		},
		models.JSON{
			"subtotal_food":     result.SubtotalFood,
			"promo_discount":    result.PromoDiscount,
			"campaign_discount": result.CampaignDiscount,
			"total":             result.Total,
		})
	return result, nil
}
