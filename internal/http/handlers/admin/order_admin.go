package admin

import (
	"time"

	"github.com/tezgo/ops-backend/internal/http/response"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// PriceOrder 计价并回写订单
func (h *Handler) PriceOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	result, err := h.PricingService.PriceOrder(id, requestActor(c))
	if err != nil {
		respondServiceError(c, err, "order pricing failed")
		return
	}
	response.Success(c, result)
}

// PreviewOrderPricing 试算订单计价，不落库
func (h *Handler) PreviewOrderPricing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	result, err := h.PricingService.PreviewOrder(id)
	if err != nil {
		respondServiceError(c, err, "order pricing preview failed")
		return
	}
	response.Success(c, result)
}

// OrderSignals 获取订单健康信号
func (h *Handler) OrderSignals(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	signals, err := h.SignalService.Signals(id)
	if err != nil {
		respondServiceError(c, err, "order signals failed")
		return
	}
	response.Success(c, signals)
}

// ActiveCampaignsForOutlet 获取门店当前可用活动（计价视角）
func (h *Handler) ActiveCampaignsForOutlet(c *gin.Context) {
	outletID := queryUint(c, "outlet_id")
	if outletID == 0 {
		respondError(c, response.CodeBadRequest, "outlet_id is required", nil)
		return
	}
	campaigns, err := h.PricingService.ActiveCampaigns(outletID, time.Now())
	if err != nil {
		respondServiceError(c, err, "active campaigns failed")
		return
	}
	response.Success(c, campaigns)
}

// OrderEventRequest 追加订单事件请求
type OrderEventRequest struct {
	Type    string      `json:"type" binding:"required"`
	Payload models.JSON `json:"payload"`
}

// AppendOrderEvent 追加订单事件
func (h *Handler) AppendOrderEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	var req OrderEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}
	event, err := h.OrderEventService.Append(id, req.Type, req.Payload, requestActor(c))
	if err != nil {
		respondServiceError(c, err, "order event append failed")
		return
	}
	response.Success(c, event)
}

// ListOrderEvents 按时间顺序查询订单事件
func (h *Handler) ListOrderEvents(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	events, err := h.OrderEventService.List(id)
	if err != nil {
		respondServiceError(c, err, "order event list failed")
		return
	}
	response.Success(c, events)
}

// ListAuditLogs 查询审计日志
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.AuditLogListFilter{
		Page:       page,
		PageSize:   pageSize,
		EntityType: c.Query("entity_type"),
		EntityID:   queryUint(c, "entity_id"),
		Action:     c.Query("action"),
	}
	items, total, err := h.AuditService.List(filter)
	if err != nil {
		respondServiceError(c, err, "audit log list failed")
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}
