package admin

import (
	"strconv"
	"time"

	"github.com/tezgo/ops-backend/internal/http/response"
	"github.com/tezgo/ops-backend/internal/repository"
	"github.com/tezgo/ops-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// PromoCodeRequest 创建/更新全局优惠码请求
type PromoCodeRequest struct {
	Code            string  `json:"code" binding:"required"`
	DiscountPercent int     `json:"discount_percent" binding:"required"`
	MaxUses         int     `json:"max_uses"`
	IsActive        *bool   `json:"is_active"`
	StartsAt        string  `json:"starts_at"`
	EndsAt          string  `json:"ends_at"`
	MinOrderAmount  int64   `json:"min_order_amount"`
	OutletIDs       []int64 `json:"outlet_ids"`
	FirstOrderOnly  bool    `json:"first_order_only"`
}

func (req *PromoCodeRequest) toInput() (service.PromoCodeInput, error) {
	startsAt, err := parseTimeNullable(req.StartsAt)
	if err != nil {
		return service.PromoCodeInput{}, err
	}
	endsAt, err := parseTimeNullable(req.EndsAt)
	if err != nil {
		return service.PromoCodeInput{}, err
	}
	return service.PromoCodeInput{
		Code:            req.Code,
		DiscountPercent: req.DiscountPercent,
		MaxUses:         req.MaxUses,
		IsActive:        req.IsActive,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		MinOrderAmount:  req.MinOrderAmount,
		OutletIDs:       req.OutletIDs,
		FirstOrderOnly:  req.FirstOrderOnly,
	}, nil
}

// CreatePromoCode 创建全局优惠码
func (h *Handler) CreatePromoCode(c *gin.Context) {
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid time format, expected RFC3339", err)
		return
	}
	promo, err := h.PromoService.CreatePromoCode(input, requestActor(c))
	if err != nil {
		respondServiceError(c, err, "promo code create failed")
		return
	}
	response.Success(c, promo)
}

// UpdatePromoCode 更新全局优惠码
func (h *Handler) UpdatePromoCode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid promo code id", nil)
		return
	}
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid time format, expected RFC3339", err)
		return
	}
	promo, err := h.PromoService.UpdatePromoCode(id, input, requestActor(c))
	if err != nil {
		respondServiceError(c, err, "promo code update failed")
		return
	}
	response.Success(c, promo)
}

// DeletePromoCode 删除全局优惠码
func (h *Handler) DeletePromoCode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid promo code id", nil)
		return
	}
	if err := h.PromoService.DeletePromoCode(id, requestActor(c)); err != nil {
		respondServiceError(c, err, "promo code delete failed")
		return
	}
	response.Success(c, nil)
}

// GetPromoCode 获取全局优惠码
func (h *Handler) GetPromoCode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid promo code id", nil)
		return
	}
	promo, err := h.PromoService.GetPromoCode(id)
	if err != nil {
		respondServiceError(c, err, "promo code get failed")
		return
	}
	response.Success(c, promo)
}

// ListPromoCodes 获取全局优惠码列表
func (h *Handler) ListPromoCodes(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.PromoCodeListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     c.Query("code"),
	}
	if raw := c.Query("is_active"); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}
	promos, total, err := h.PromoService.ListPromoCodes(filter)
	if err != nil {
		respondServiceError(c, err, "promo code list failed")
		return
	}
	response.SuccessWithPage(c, promos, response.NewPagination(page, pageSize, total))
}

// PromoIssueRequest 发放个人优惠码请求
type PromoIssueRequest struct {
	Code           string `json:"code" binding:"required"`
	ClientUserID   uint   `json:"client_user_id" binding:"required"`
	Type           string `json:"type" binding:"required"`
	Value          int64  `json:"value" binding:"required"`
	MinOrderAmount int64  `json:"min_order_amount"`
	ExpiresAt      string `json:"expires_at"`
}

// IssuePromo 向客户发放个人优惠码
func (h *Handler) IssuePromo(c *gin.Context) {
	var req PromoIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	expiresAt, err := parseTimeNullable(req.ExpiresAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid time format, expected RFC3339", err)
		return
	}
	issue, err := h.PromoService.IssuePromo(service.PromoIssueInput{
		Code:           req.Code,
		ClientUserID:   req.ClientUserID,
		Type:           req.Type,
		Value:          req.Value,
		MinOrderAmount: req.MinOrderAmount,
		ExpiresAt:      expiresAt,
	}, requestActor(c))
	if err != nil {
		respondServiceError(c, err, "promo issue failed")
		return
	}
	response.Success(c, issue)
}

// RevokePromoIssue 撤销个人优惠码
func (h *Handler) RevokePromoIssue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid promo issue id", nil)
		return
	}
	if err := h.PromoService.RevokePromoIssue(id, requestActor(c)); err != nil {
		respondServiceError(c, err, "promo issue revoke failed")
		return
	}
	response.Success(c, nil)
}

// CheckPromoCode 试算优惠码折扣（结账视角，不落库）
func (h *Handler) CheckPromoCode(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		respondError(c, response.CodeBadRequest, "code is required", nil)
		return
	}
	outletID := queryUint(c, "outlet_id")
	if outletID == 0 {
		respondError(c, response.CodeBadRequest, "outlet_id is required", nil)
		return
	}
	subtotal, err := strconv.ParseInt(c.Query("subtotal_food"), 10, 64)
	if err != nil || subtotal < 0 {
		respondError(c, response.CodeBadRequest, "invalid subtotal_food", nil)
		return
	}
	var clientUserID *uint
	if id := queryUint(c, "client_user_id"); id > 0 {
		clientUserID = &id
	}
	resolution, err := h.PromoService.Resolve(time.Now(), code, outletID, clientUserID, subtotal)
	if err != nil {
		respondServiceError(c, err, "promo check failed")
		return
	}
	response.Success(c, resolution)
}

// ListPromoIssues 获取个人优惠码列表
func (h *Handler) ListPromoIssues(c *gin.Context) {
	page, pageSize := queryPagination(c)
	issues, total, err := h.PromoService.ListPromoIssues(repository.PromoIssueListFilter{
		Page:         page,
		PageSize:     pageSize,
		ClientUserID: queryUint(c, "client_user_id"),
		Status:       c.Query("status"),
	})
	if err != nil {
		respondServiceError(c, err, "promo issue list failed")
		return
	}
	response.SuccessWithPage(c, issues, response.NewPagination(page, pageSize, total))
}
