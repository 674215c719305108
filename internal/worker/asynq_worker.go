package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/provider"
	"github.com/tezgo/ops-backend/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCampaignExpireSweep, c.handleCampaignExpireSweep)
	mux.HandleFunc(queue.TaskOrderEscalation, c.handleOrderEscalation)
}

func (c *Consumer) handleCampaignExpireSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.CampaignExpireSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_campaign_sweep_unmarshal_failed", "error", err)
		return err
	}
	swept, err := c.CampaignAdminService.SweepExpired(time.Now())
	if err != nil {
		logger.Warnw("worker_campaign_sweep_failed", "error", err)
		return err
	}
	logger.Infow("worker_campaign_sweep_done", "count", swept)
	return nil
}

// handleOrderEscalation 处理订单升级通知：确认订单仍处于高危状态后记录升级日志。
// 实际的通知投递（IM/电话）由外部值班系统消费该日志流。
func (c *Consumer) handleOrderEscalation(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderEscalationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_escalation_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_escalation_fetch_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_escalation_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	logger.Warnw("order_escalation",
		"order_id", order.ID,
		"outlet_id", order.OutletID,
		"status", order.Status,
		"severity", payload.Severity,
		"problem_code", payload.ProblemCode,
	)
	event := &models.OrderEvent{
		OrderID: order.ID,
		Type:    constants.OrderEventNotifyClient,
		Payload: models.JSON{
			"kind":         "escalation",
			"severity":     payload.Severity,
			"problem_code": payload.ProblemCode,
		},
		CreatedAt: time.Now(),
	}
	if err := c.OrderEventRepo.Append(event); err != nil {
		logger.Warnw("worker_order_escalation_event_failed", "order_id", order.ID, "error", err)
	}
	return nil
}
