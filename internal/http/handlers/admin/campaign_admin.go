package admin

import (
	"time"

	"github.com/tezgo/ops-backend/internal/http/response"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/repository"
	"github.com/tezgo/ops-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CampaignItemRequest 活动商品规则请求
type CampaignItemRequest struct {
	ItemID        uint   `json:"item_id" binding:"required"`
	Qty           int    `json:"qty"`
	Required      bool   `json:"required"`
	DiscountType  string `json:"discount_type"`
	DiscountValue int64  `json:"discount_value"`
}

// CampaignRequest 创建/更新活动请求
type CampaignRequest struct {
	OutletID              uint                  `json:"outlet_id" binding:"required"`
	Type                  string                `json:"type" binding:"required"`
	Title                 string                `json:"title" binding:"required"`
	Description           string                `json:"description"`
	Priority              int                   `json:"priority"`
	StartAt               string                `json:"start_at"`
	EndAt                 string                `json:"end_at"`
	ActiveDays            []string              `json:"active_days"`
	ActiveHours           models.HourWindow     `json:"active_hours"`
	MinOrderAmount        int64                 `json:"min_order_amount"`
	MaxUsesTotal          int                   `json:"max_uses_total"`
	MaxUsesPerClient      int                   `json:"max_uses_per_client"`
	DeliveryMethods       []string              `json:"delivery_methods"`
	StoplistPolicy        string                `json:"stoplist_policy"`
	BundleFixedPrice      *int64                `json:"bundle_fixed_price"`
	BundlePercentDiscount *int64                `json:"bundle_percent_discount"`
	Items                 []CampaignItemRequest `json:"items"`
}

func parseTimeNullable(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (req *CampaignRequest) toInput() (service.CampaignInput, error) {
	startAt, err := parseTimeNullable(req.StartAt)
	if err != nil {
		return service.CampaignInput{}, err
	}
	endAt, err := parseTimeNullable(req.EndAt)
	if err != nil {
		return service.CampaignInput{}, err
	}

	items := make([]service.CampaignItemInput, 0, len(req.Items))
	for _, rule := range req.Items {
		qty := rule.Qty
		if qty == 0 {
			qty = 1
		}
		items = append(items, service.CampaignItemInput{
			ItemID:        rule.ItemID,
			Qty:           qty,
			Required:      rule.Required,
			DiscountType:  rule.DiscountType,
			DiscountValue: rule.DiscountValue,
		})
	}
	return service.CampaignInput{
		OutletID:              req.OutletID,
		Type:                  req.Type,
		Title:                 req.Title,
		Description:           req.Description,
		Priority:              req.Priority,
		StartAt:               startAt,
		EndAt:                 endAt,
		ActiveDays:            req.ActiveDays,
		ActiveHours:           req.ActiveHours,
		MinOrderAmount:        req.MinOrderAmount,
		MaxUsesTotal:          req.MaxUsesTotal,
		MaxUsesPerClient:      req.MaxUsesPerClient,
		DeliveryMethods:       req.DeliveryMethods,
		StoplistPolicy:        req.StoplistPolicy,
		BundleFixedPrice:      req.BundleFixedPrice,
		BundlePercentDiscount: req.BundlePercentDiscount,
		Items:                 items,
	}, nil
}

// CreateCampaign 创建活动
func (h *Handler) CreateCampaign(c *gin.Context) {
	var req CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid time format, expected RFC3339", err)
		return
	}

	campaign, warnings, err := h.CampaignAdminService.Create(input, requestActor(c))
	if err != nil {
		respondServiceError(c, err, "campaign create failed")
		return
	}
	response.Success(c, gin.H{
		"campaign": campaign,
		"warnings": warnings,
	})
}

// UpdateCampaign 更新活动
func (h *Handler) UpdateCampaign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid campaign id", nil)
		return
	}
	var req CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid time format, expected RFC3339", err)
		return
	}

	campaign, warnings, err := h.CampaignAdminService.Update(id, input, requestActor(c))
	if err != nil {
		respondServiceError(c, err, "campaign update failed")
		return
	}
	response.Success(c, gin.H{
		"campaign": campaign,
		"warnings": warnings,
	})
}

// ValidateCampaign 只校验活动配置，不落库
func (h *Handler) ValidateCampaign(c *gin.Context) {
	var req CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid time format, expected RFC3339", err)
		return
	}

	warnings, err := h.CampaignAdminService.Validate(input)
	if err != nil {
		respondServiceError(c, err, "campaign validate failed")
		return
	}
	response.Success(c, gin.H{"warnings": warnings})
}

// GetCampaign 获取活动详情
func (h *Handler) GetCampaign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid campaign id", nil)
		return
	}
	campaign, err := h.CampaignAdminService.Get(id)
	if err != nil {
		respondServiceError(c, err, "campaign get failed")
		return
	}
	response.Success(c, campaign)
}

// ListCampaigns 获取活动列表
func (h *Handler) ListCampaigns(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.CampaignListFilter{
		Page:     page,
		PageSize: pageSize,
		OutletID: queryUint(c, "outlet_id"),
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	}
	campaigns, total, err := h.CampaignAdminService.List(filter)
	if err != nil {
		respondServiceError(c, err, "campaign list failed")
		return
	}
	response.SuccessWithPage(c, campaigns, response.NewPagination(page, pageSize, total))
}

// ActivateCampaign 激活活动
func (h *Handler) ActivateCampaign(c *gin.Context) {
	h.transitionCampaign(c, h.CampaignAdminService.Activate, "campaign activate failed")
}

// PauseCampaign 暂停活动
func (h *Handler) PauseCampaign(c *gin.Context) {
	h.transitionCampaign(c, h.CampaignAdminService.Pause, "campaign pause failed")
}

// ArchiveCampaign 归档活动
func (h *Handler) ArchiveCampaign(c *gin.Context) {
	h.transitionCampaign(c, h.CampaignAdminService.Archive, "campaign archive failed")
}

func (h *Handler) transitionCampaign(c *gin.Context, op func(uint, service.Actor) (*models.Campaign, error), fallbackMsg string) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid campaign id", nil)
		return
	}
	campaign, err := op(id, requestActor(c))
	if err != nil {
		respondServiceError(c, err, fallbackMsg)
		return
	}
	response.Success(c, campaign)
}

// DuplicateCampaign 复制活动为新草稿
func (h *Handler) DuplicateCampaign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid campaign id", nil)
		return
	}
	campaign, err := h.CampaignAdminService.Duplicate(id, requestActor(c))
	if err != nil {
		respondServiceError(c, err, "campaign duplicate failed")
		return
	}
	response.Success(c, campaign)
}

// CampaignUsage 获取活动使用台账
func (h *Handler) CampaignUsage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid campaign id", nil)
		return
	}
	page, pageSize := queryPagination(c)
	usages, total, err := h.CampaignAdminService.Usage(repository.CampaignUsageListFilter{
		Page:       page,
		PageSize:   pageSize,
		CampaignID: id,
	})
	if err != nil {
		respondServiceError(c, err, "campaign usage list failed")
		return
	}
	response.SuccessWithPage(c, usages, response.NewPagination(page, pageSize, total))
}
