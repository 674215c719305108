package queue

import (
	"encoding/json"

	"github.com/tezgo/ops-backend/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCampaignExpireSweep 活动过期清扫任务
	TaskCampaignExpireSweep = constants.TaskCampaignExpireSweep
	// TaskOrderEscalation 订单升级通知任务
	TaskOrderEscalation = constants.TaskOrderEscalation
)

// CampaignExpireSweepPayload 活动过期清扫任务载荷
type CampaignExpireSweepPayload struct {
	RequestedAt int64 `json:"requested_at"`
}

// OrderEscalationPayload 订单升级通知任务载荷
type OrderEscalationPayload struct {
	OrderID     uint   `json:"order_id"`
	Severity    string `json:"severity"`
	ProblemCode string `json:"problem_code"`
}

// NewCampaignExpireSweepTask 创建活动过期清扫任务
func NewCampaignExpireSweepTask(payload CampaignExpireSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCampaignExpireSweep, body), nil
}

// NewOrderEscalationTask 创建订单升级通知任务
func NewOrderEscalationTask(payload OrderEscalationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderEscalation, body), nil
}
