package service

import (
	"strings"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/repository"
)

// PromoResolution 优惠码解析结果。未命中任何可用优惠时 Discount 为 0、Source 为空。
type PromoResolution struct {
	Discount     int64  `json:"discount"`
	Source       string `json:"source"`
	PromoCodeID  uint   `json:"promo_code_id,omitempty"`
	PromoIssueID uint   `json:"promo_issue_id,omitempty"`
}

// PromoService 优惠码解析与管理服务
type PromoService struct {
	promoRepo repository.PromoCodeRepository
	issueRepo repository.PromoIssueRepository
	orderRepo repository.OrderRepository
	audit     *AuditService
}

// NewPromoService 创建优惠码服务
func NewPromoService(
	promoRepo repository.PromoCodeRepository,
	issueRepo repository.PromoIssueRepository,
	orderRepo repository.OrderRepository,
	audit *AuditService,
) *PromoService {
	return &PromoService{
		promoRepo: promoRepo,
		issueRepo: issueRepo,
		orderRepo: orderRepo,
		audit:     audit,
	}
}

// Resolve 解析订单上的优惠码并计算优惠金额。
// 个人优惠码优先于全局优惠码；任何资格不满足都静默返回零优惠，不报错。
func (s *PromoService) Resolve(now time.Time, code string, outletID uint, clientUserID *uint, subtotalFood int64) (PromoResolution, error) {
	return s.resolveForOrder(now, code, outletID, clientUserID, subtotalFood, false)
}

// resolveForOrder 带重算语义的解析：ownRedemption 表示该订单此前已核销过这个全局码，
// 重算时该订单自身的核销不再计入使用上限与首单判定。
func (s *PromoService) resolveForOrder(now time.Time, code string, outletID uint, clientUserID *uint, subtotalFood int64, ownRedemption bool) (PromoResolution, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return PromoResolution{}, nil
	}

	if clientUserID != nil {
		issue, err := s.issueRepo.GetActiveByCodeAndClient(code, *clientUserID, now)
		if err != nil {
			return PromoResolution{}, err
		}
		if issue != nil {
			return s.resolveIssue(issue, subtotalFood), nil
		}
	}

	promo, err := s.promoRepo.GetByCode(code)
	if err != nil {
		return PromoResolution{}, err
	}
	if promo == nil {
		return PromoResolution{}, nil
	}
	return s.resolveGlobal(now, promo, outletID, clientUserID, subtotalFood, ownRedemption)
}

// resolveIssue 计算个人优惠码优惠。命中个人优惠码后不再回退到全局规则。
func (s *PromoService) resolveIssue(issue *models.PromoIssue, subtotalFood int64) PromoResolution {
	if issue.MinOrderAmount > 0 && subtotalFood < issue.MinOrderAmount {
		return PromoResolution{}
	}
	var discount int64
	switch issue.Type {
	case constants.PromoIssueTypePercent:
		discount = percentOf(subtotalFood, issue.Value)
	case constants.PromoIssueTypeFixed:
		discount = issue.Value
	default:
		return PromoResolution{}
	}
	if discount > subtotalFood {
		discount = subtotalFood
	}
	if discount <= 0 {
		return PromoResolution{}
	}
	return PromoResolution{
		Discount:     discount,
		Source:       constants.PromoSourcePersonal,
		PromoIssueID: issue.ID,
	}
}

// resolveGlobal 计算全局优惠码优惠
func (s *PromoService) resolveGlobal(now time.Time, promo *models.PromoCode, outletID uint, clientUserID *uint, subtotalFood int64, ownRedemption bool) (PromoResolution, error) {
	if !promo.IsActive {
		return PromoResolution{}, nil
	}
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return PromoResolution{}, nil
	}
	if promo.EndsAt != nil && now.After(*promo.EndsAt) {
		return PromoResolution{}, nil
	}
	if len(promo.OutletIDs) > 0 {
		matched := false
		for _, id := range promo.OutletIDs {
			if id == int64(outletID) {
				matched = true
				break
			}
		}
		if !matched {
			return PromoResolution{}, nil
		}
	}
	usedCount := promo.UsedCount
	if ownRedemption {
		// 重算时扣除该订单自身已累计的一次核销
		usedCount--
	}
	if promo.MaxUses > 0 && usedCount >= promo.MaxUses {
		return PromoResolution{}, nil
	}
	if promo.MinOrderAmount > 0 && subtotalFood < promo.MinOrderAmount {
		return PromoResolution{}, nil
	}
	// 首单资格在首次核销时已经确认，重算不再重新判定
	if promo.FirstOrderOnly && !ownRedemption {
		if clientUserID == nil {
			return PromoResolution{}, nil
		}
		count, err := s.orderRepo.CountByClient(*clientUserID)
		if err != nil {
			return PromoResolution{}, err
		}
		// 当前订单已落库，首单客户最多只有这一单
		if count > 1 {
			return PromoResolution{}, nil
		}
	}

	discount := percentOf(subtotalFood, int64(promo.DiscountPercent))
	if discount > subtotalFood {
		discount = subtotalFood
	}
	if discount <= 0 {
		return PromoResolution{}, nil
	}
	return PromoResolution{
		Discount:    discount,
		Source:      constants.PromoSourceGlobal,
		PromoCodeID: promo.ID,
	}, nil
}

// PromoCodeInput 全局优惠码创建/更新入参
type PromoCodeInput struct {
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discount_percent"`
	MaxUses         int        `json:"max_uses"`
	IsActive        *bool      `json:"is_active"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
	MinOrderAmount  int64      `json:"min_order_amount"`
	OutletIDs       []int64    `json:"outlet_ids"`
	FirstOrderOnly  bool       `json:"first_order_only"`
}

func (in *PromoCodeInput) validate() error {
	in.Code = strings.TrimSpace(in.Code)
	if in.Code == "" {
		return validationErrorf("code is required")
	}
	if in.DiscountPercent <= 0 || in.DiscountPercent >= 100 {
		return validationErrorf("discount_percent must be between 1 and 99")
	}
	if in.MaxUses < 0 {
		return validationErrorf("max_uses cannot be negative")
	}
	if in.MinOrderAmount < 0 {
		return validationErrorf("min_order_amount cannot be negative")
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return validationErrorf("ends_at cannot be before starts_at")
	}
	return nil
}

// CreatePromoCode 创建全局优惠码
func (s *PromoService) CreatePromoCode(in PromoCodeInput, actor Actor) (*models.PromoCode, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.promoRepo.GetByCode(in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, validationErrorf("promo code %q already exists", in.Code)
	}

	promo := &models.PromoCode{
		Code:            in.Code,
		DiscountPercent: in.DiscountPercent,
		MaxUses:         in.MaxUses,
		IsActive:        true,
		StartsAt:        in.StartsAt,
		EndsAt:          in.EndsAt,
		MinOrderAmount:  in.MinOrderAmount,
		OutletIDs:       models.Int64Array(in.OutletIDs),
		FirstOrderOnly:  in.FirstOrderOnly,
	}
	if in.IsActive != nil {
		promo.IsActive = *in.IsActive
	}
	if err := s.promoRepo.Create(promo); err != nil {
		return nil, err
	}

	logger.Infow("promo_code_created", "promo_code_id", promo.ID, "code", promo.Code)
	s.audit.Record(constants.AuditEntityPromoCode, promo.ID, "create", actor, nil, promoSnapshot(promo))
	return promo, nil
}

// UpdatePromoCode 更新全局优惠码
func (s *PromoService) UpdatePromoCode(id uint, in PromoCodeInput, actor Actor) (*models.PromoCode, error) {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Code != promo.Code {
		dup, err := s.promoRepo.GetByCode(in.Code)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, validationErrorf("promo code %q already exists", in.Code)
		}
	}

	before := promoSnapshot(promo)
	promo.Code = in.Code
	promo.DiscountPercent = in.DiscountPercent
	promo.MaxUses = in.MaxUses
	promo.StartsAt = in.StartsAt
	promo.EndsAt = in.EndsAt
	promo.MinOrderAmount = in.MinOrderAmount
	promo.OutletIDs = models.Int64Array(in.OutletIDs)
	promo.FirstOrderOnly = in.FirstOrderOnly
	if in.IsActive != nil {
		promo.IsActive = *in.IsActive
	}
	if err := s.promoRepo.Update(promo); err != nil {
		return nil, err
	}

	logger.Infow("promo_code_updated", "promo_code_id", promo.ID, "code", promo.Code)
	s.audit.Record(constants.AuditEntityPromoCode, promo.ID, "update", actor, before, promoSnapshot(promo))
	return promo, nil
}

// DeletePromoCode 删除全局优惠码
func (s *PromoService) DeletePromoCode(id uint, actor Actor) error {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return err
	}
	if promo == nil {
		return ErrPromoNotFound
	}
	if err := s.promoRepo.Delete(id); err != nil {
		return err
	}
	logger.Infow("promo_code_deleted", "promo_code_id", id, "code", promo.Code)
	s.audit.Record(constants.AuditEntityPromoCode, id, "delete", actor, promoSnapshot(promo), nil)
	return nil
}

// GetPromoCode 获取全局优惠码
func (s *PromoService) GetPromoCode(id uint) (*models.PromoCode, error) {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	return promo, nil
}

// ListPromoCodes 获取全局优惠码列表
func (s *PromoService) ListPromoCodes(filter repository.PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	return s.promoRepo.List(filter)
}

// PromoIssueInput 个人优惠码发放入参
type PromoIssueInput struct {
	Code           string     `json:"code"`
	ClientUserID   uint       `json:"client_user_id"`
	Type           string     `json:"type"`
	Value          int64      `json:"value"`
	MinOrderAmount int64      `json:"min_order_amount"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// IssuePromo 向客户发放个人优惠码
func (s *PromoService) IssuePromo(in PromoIssueInput, actor Actor) (*models.PromoIssue, error) {
	in.Code = strings.TrimSpace(in.Code)
	if in.Code == "" {
		return nil, validationErrorf("code is required")
	}
	if in.ClientUserID == 0 {
		return nil, validationErrorf("client_user_id is required")
	}
	switch in.Type {
	case constants.PromoIssueTypePercent:
		if in.Value <= 0 || in.Value >= 100 {
			return nil, validationErrorf("percent value must be between 1 and 99")
		}
	case constants.PromoIssueTypeFixed:
		if in.Value <= 0 {
			return nil, validationErrorf("fixed value must be positive")
		}
	default:
		return nil, validationErrorf("unknown promo issue type %q", in.Type)
	}
	if in.MinOrderAmount < 0 {
		return nil, validationErrorf("min_order_amount cannot be negative")
	}

	issue := &models.PromoIssue{
		Code:           in.Code,
		ClientUserID:   in.ClientUserID,
		Type:           in.Type,
		Value:          in.Value,
		MinOrderAmount: in.MinOrderAmount,
		Status:         constants.PromoIssueStatusActive,
		ExpiresAt:      in.ExpiresAt,
	}
	if err := s.issueRepo.Create(issue); err != nil {
		return nil, err
	}

	logger.Infow("promo_issue_created",
		"promo_issue_id", issue.ID,
		"code", issue.Code,
		"client_user_id", issue.ClientUserID,
	)
	s.audit.Record(constants.AuditEntityPromoCode, issue.ID, "issue", actor, nil, models.JSON{
		"code":           issue.Code,
		"client_user_id": issue.ClientUserID,
		"type":           issue.Type,
		"value":          issue.Value,
	})
	return issue, nil
}

// RevokePromoIssue 撤销未使用的个人优惠码
func (s *PromoService) RevokePromoIssue(id uint, actor Actor) error {
	issue, err := s.issueRepo.GetByID(id)
	if err != nil {
		return err
	}
	if issue == nil {
		return ErrPromoNotFound
	}
	if issue.Status != constants.PromoIssueStatusActive {
		return stateConflictf("promo issue is %s, only active issues can be revoked", issue.Status)
	}
	if err := s.issueRepo.UpdateStatus(id, constants.PromoIssueStatusRevoked, nil); err != nil {
		return err
	}
	logger.Infow("promo_issue_revoked", "promo_issue_id", id, "code", issue.Code)
	s.audit.Record(constants.AuditEntityPromoCode, id, "revoke", actor, models.JSON{"status": issue.Status}, models.JSON{"status": constants.PromoIssueStatusRevoked})
	return nil
}

// ListPromoIssues 获取个人优惠码列表
func (s *PromoService) ListPromoIssues(filter repository.PromoIssueListFilter) ([]models.PromoIssue, int64, error) {
	return s.issueRepo.List(filter)
}

func promoSnapshot(promo *models.PromoCode) models.JSON {
	return models.JSON{
		"code":             promo.Code,
		"discount_percent": promo.DiscountPercent,
		"max_uses":         promo.MaxUses,
		"is_active":        promo.IsActive,
		"min_order_amount": promo.MinOrderAmount,
		"first_order_only": promo.FirstOrderOnly,
	}
}
