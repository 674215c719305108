package service

import (
	"math"
	"sort"
	"time"

	"github.com/tezgo/ops-backend/internal/config"
	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/repository"
)

// 订单阶段名称
const (
	StageCourierSearch = "courier_search"
	StageCooking       = "cooking"
	StagePickupWait    = "pickup_wait"
	StageDelivery      = "delivery"
)

// TaskEnqueuer 异步任务投递接口（队列不可用时注入 nil）
type TaskEnqueuer interface {
	EnqueueOrderEscalation(orderID uint, severity, problemCode string) error
}

// StageTiming 订单单阶段耗时与超时标记
type StageTiming struct {
	Stage          string     `json:"stage"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	ElapsedMinutes int        `json:"elapsed_minutes"`
	SLAMinutes     int        `json:"sla_minutes"`
	Breached       bool       `json:"breached"`
}

// OrderProblem 检测到的订单问题
type OrderProblem struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Reason   string `json:"reason,omitempty"`
}

// OrderSignals 订单健康信号汇总
type OrderSignals struct {
	OrderID         uint           `json:"order_id"`
	Status          string         `json:"status"`
	Stages          []StageTiming  `json:"stages"`
	Problems        []OrderProblem `json:"problems"`
	OverallSeverity string         `json:"overall_severity"`
	PrimaryProblem  *OrderProblem  `json:"primary_problem,omitempty"`
}

var severityRank = map[string]int{
	constants.SeverityNone:   0,
	constants.SeverityLow:    1,
	constants.SeverityMedium: 2,
	constants.SeverityHigh:   3,
}

// SignalService 订单健康信号计算服务
type SignalService struct {
	orderRepo repository.OrderRepository
	eventRepo repository.OrderEventRepository
	sla       config.SLAConfig
	queue     TaskEnqueuer
}

// NewSignalService 创建订单信号服务
func NewSignalService(
	orderRepo repository.OrderRepository,
	eventRepo repository.OrderEventRepository,
	sla config.SLAConfig,
	queue TaskEnqueuer,
) *SignalService {
	return &SignalService{
		orderRepo: orderRepo,
		eventRepo: eventRepo,
		sla:       sla,
		queue:     queue,
	}
}

// firstEventAt 返回事件流中第一个匹配类型的事件时间
func firstEventAt(events []models.OrderEvent, types ...string) *time.Time {
	for i := range events {
		for _, t := range types {
			if events[i].Type == t {
				at := events[i].CreatedAt
				return &at
			}
		}
	}
	return nil
}

// lastEventOfType 返回事件流中最后一个匹配类型的事件
func lastEventOfType(events []models.OrderEvent, eventType string) *models.OrderEvent {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

// elapsedMinutes 计算阶段耗时（分钟，四舍五入）；未结束的阶段以 now 为终点
func elapsedMinutes(start, end *time.Time, now time.Time) int {
	if start == nil {
		return 0
	}
	endAt := now
	if end != nil {
		endAt = *end
	}
	if endAt.Before(*start) {
		return 0
	}
	return int(math.Round(endAt.Sub(*start).Minutes()))
}

// buildStage 构建单阶段耗时信号。超时标记只打在进行中的阶段上。
func buildStage(stage string, start, end *time.Time, slaMinutes int, now time.Time) StageTiming {
	elapsed := elapsedMinutes(start, end, now)
	return StageTiming{
		Stage:          stage,
		StartedAt:      start,
		CompletedAt:    end,
		ElapsedMinutes: elapsed,
		SLAMinutes:     slaMinutes,
		Breached:       start != nil && end == nil && elapsed > slaMinutes,
	}
}

// Signals 计算订单健康信号：阶段耗时、SLA 超时标记、问题列表与总体严重级别
func (s *SignalService) Signals(orderID uint) (*OrderSignals, error) {
	now := time.Now()
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	events, err := s.eventRepo.ListByOrder(orderID)
	if err != nil {
		return nil, err
	}
	signals := s.computeSignals(order, events, now)

	if signals.OverallSeverity == constants.SeverityHigh && s.queue != nil && signals.PrimaryProblem != nil {
		if err := s.queue.EnqueueOrderEscalation(order.ID, signals.OverallSeverity, signals.PrimaryProblem.Code); err != nil {
			logger.Warnw("order_escalation_enqueue_failed", "order_id", order.ID, "error", err)
		}
	}
	return signals, nil
}

// computeSignals 纯计算部分，便于测试
func (s *SignalService) computeSignals(order *models.Order, events []models.OrderEvent, now time.Time) *OrderSignals {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})

	searchStart := firstEventAt(events, constants.OrderEventCourierSearchStarted)
	if searchStart == nil {
		createdAt := order.CreatedAt
		searchStart = &createdAt
	}
	cookingStart := firstEventAt(events, constants.OrderEventAccepted, constants.OrderEventCookingStarted)
	if cookingStart == nil {
		cookingStart = order.AcceptedAt
	}
	// 找到骑手即结束搜索阶段；没有指派事件时退化为接单时刻
	courierAssignedAt := firstEventAt(events, constants.OrderEventCourierAssigned)
	searchEnd := courierAssignedAt
	if searchEnd == nil {
		searchEnd = cookingStart
	}
	readyAt := firstEventAt(events, constants.OrderEventReady)
	if readyAt == nil {
		readyAt = order.ReadyAt
	}
	pickedUpAt := firstEventAt(events, constants.OrderEventPickedUp)
	if pickedUpAt == nil {
		pickedUpAt = order.PickedUpAt
	}
	deliveredAt := firstEventAt(events, constants.OrderEventDelivered)
	if deliveredAt == nil {
		deliveredAt = order.DeliveredAt
	}

	cancelled := order.Status == constants.OrderStatusCancelled
	cancelEvent := lastEventOfType(events, constants.OrderEventCancelled)
	if cancelEvent != nil {
		cancelled = true
	}
	// 已取消订单的进行中阶段以取消时间截止
	ref := now
	if cancelled && cancelEvent != nil {
		ref = cancelEvent.CreatedAt
	}

	stages := []StageTiming{
		buildStage(StageCourierSearch, searchStart, searchEnd, s.sla.CourierSearchMinutes, ref),
		buildStage(StageCooking, cookingStart, readyAt, s.sla.CookingMinutes, ref),
		buildStage(StagePickupWait, readyAt, pickedUpAt, s.sla.PickupWaitMinutes, ref),
		buildStage(StageDelivery, pickedUpAt, deliveredAt, s.sla.DeliveryMinutes, ref),
	}

	problemDefs := []struct {
		stage    int
		code     string
		severity string
	}{
		{0, constants.ProblemCourierSearchDelayed, constants.SeverityHigh},
		{1, constants.ProblemCookingDelayed, constants.SeverityMedium},
		{2, constants.ProblemReadyWaitingPickup, constants.SeverityHigh},
		{3, constants.ProblemDeliveryDelayed, constants.SeverityMedium},
	}

	var problems []OrderProblem
	for _, def := range problemDefs {
		stage := stages[def.stage]
		if stage.StartedAt == nil || stage.ElapsedMinutes <= stage.SLAMinutes {
			continue
		}
		problems = append(problems, OrderProblem{Code: def.code, Severity: def.severity})
	}
	if cancelled {
		reason := ""
		if cancelEvent != nil && cancelEvent.Payload != nil {
			if v, ok := cancelEvent.Payload["reason"].(string); ok {
				reason = v
			}
		}
		problems = append(problems, OrderProblem{
			Code:     constants.ProblemCancelled,
			Severity: constants.SeverityLow,
			Reason:   reason,
		})
	}

	overall := constants.SeverityNone
	var primary *OrderProblem
	for i := range problems {
		if severityRank[problems[i].Severity] > severityRank[overall] {
			overall = problems[i].Severity
			primary = &problems[i]
		}
	}

	return &OrderSignals{
		OrderID:         order.ID,
		Status:          order.Status,
		Stages:          stages,
		Problems:        problems,
		OverallSeverity: overall,
		PrimaryProblem:  primary,
	}
}
