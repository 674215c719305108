package service

import (
	"errors"
	"testing"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/models"
)

func seedOrderEvent(t *testing.T, env *testEnv, orderID uint, eventType string, at time.Time, payload models.JSON) {
	t.Helper()
	event := models.OrderEvent{
		OrderID:   orderID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: at,
	}
	if err := env.db.Create(&event).Error; err != nil {
		t.Fatalf("create order event failed: %v", err)
	}
}

func findStage(t *testing.T, signals *OrderSignals, name string) StageTiming {
	t.Helper()
	for _, stage := range signals.Stages {
		if stage.Stage == name {
			return stage
		}
	}
	t.Fatalf("stage %s not found", name)
	return StageTiming{}
}

func hasProblem(signals *OrderSignals, code string) bool {
	for _, p := range signals.Problems {
		if p.Code == code {
			return true
		}
	}
	return false
}

func TestSignalsCookingDelayed(t *testing.T) {
	env := setupServiceTest(t)
	base := time.Now().Add(-time.Hour)

	order := &models.Order{OutletID: 1, Status: constants.OrderStatusReady, CreatedAt: base}
	seedOrder(t, env.db, order)
	seedOrderEvent(t, env, order.ID, constants.OrderEventCreated, base, nil)
	seedOrderEvent(t, env, order.ID, constants.OrderEventAccepted, base.Add(5*time.Minute), nil)
	seedOrderEvent(t, env, order.ID, constants.OrderEventReady, base.Add(40*time.Minute), nil)

	signals, err := env.signal.Signals(order.ID)
	if err != nil {
		t.Fatalf("signals failed: %v", err)
	}

	cooking := findStage(t, signals, StageCooking)
	if cooking.ElapsedMinutes != 35 {
		t.Fatalf("expected cooking elapsed 35 minutes, got: %d", cooking.ElapsedMinutes)
	}
	if !hasProblem(signals, constants.ProblemCookingDelayed) {
		t.Fatalf("expected COOKING_DELAYED problem, got: %+v", signals.Problems)
	}
	for _, p := range signals.Problems {
		if p.Code == constants.ProblemCookingDelayed && p.Severity != constants.SeverityMedium {
			t.Fatalf("cooking delay should be medium severity, got: %s", p.Severity)
		}
	}
}

func TestSignalsCourierSearchBreach(t *testing.T) {
	env := setupServiceTest(t)
	base := time.Now().Add(-30 * time.Minute)

	order := &models.Order{OutletID: 1, Status: constants.OrderStatusCourierSearch, CreatedAt: base}
	seedOrder(t, env.db, order)
	seedOrderEvent(t, env, order.ID, constants.OrderEventCourierSearchStarted, base, nil)

	signals, err := env.signal.Signals(order.ID)
	if err != nil {
		t.Fatalf("signals failed: %v", err)
	}

	search := findStage(t, signals, StageCourierSearch)
	if !search.Breached {
		t.Fatal("in-progress courier search over SLA should be breached")
	}
	if !hasProblem(signals, constants.ProblemCourierSearchDelayed) {
		t.Fatalf("expected COURIER_SEARCH_DELAYED, got: %+v", signals.Problems)
	}
	if signals.OverallSeverity != constants.SeverityHigh {
		t.Fatalf("expected high overall severity, got: %s", signals.OverallSeverity)
	}
	if signals.PrimaryProblem == nil || signals.PrimaryProblem.Code != constants.ProblemCourierSearchDelayed {
		t.Fatalf("unexpected primary problem: %+v", signals.PrimaryProblem)
	}
}

func TestSignalsCourierAssignedEndsSearch(t *testing.T) {
	env := setupServiceTest(t)
	base := time.Now().Add(-time.Hour)

	order := &models.Order{OutletID: 1, Status: constants.OrderStatusCooking, CreatedAt: base}
	seedOrder(t, env.db, order)
	seedOrderEvent(t, env, order.ID, constants.OrderEventCourierSearchStarted, base, nil)
	seedOrderEvent(t, env, order.ID, constants.OrderEventCourierAssigned, base.Add(4*time.Minute), nil)
	// 接单晚于骑手指派，搜索阶段应在指派时刻结束
	seedOrderEvent(t, env, order.ID, constants.OrderEventAccepted, base.Add(15*time.Minute), nil)

	signals, err := env.signal.Signals(order.ID)
	if err != nil {
		t.Fatalf("signals failed: %v", err)
	}

	search := findStage(t, signals, StageCourierSearch)
	if search.ElapsedMinutes != 4 {
		t.Fatalf("expected search elapsed 4 minutes, got: %d", search.ElapsedMinutes)
	}
	if search.Breached {
		t.Fatal("search ended by courier assignment should not be breached")
	}
	if hasProblem(signals, constants.ProblemCourierSearchDelayed) {
		t.Fatalf("no search delay expected, got: %+v", signals.Problems)
	}
}

func TestSignalsHealthyOrder(t *testing.T) {
	env := setupServiceTest(t)
	base := time.Now().Add(-50 * time.Minute)

	order := &models.Order{OutletID: 1, Status: constants.OrderStatusDelivered, CreatedAt: base}
	seedOrder(t, env.db, order)
	seedOrderEvent(t, env, order.ID, constants.OrderEventCourierSearchStarted, base, nil)
	seedOrderEvent(t, env, order.ID, constants.OrderEventAccepted, base.Add(4*time.Minute), nil)
	seedOrderEvent(t, env, order.ID, constants.OrderEventReady, base.Add(18*time.Minute), nil)
	seedOrderEvent(t, env, order.ID, constants.OrderEventPickedUp, base.Add(24*time.Minute), nil)
	seedOrderEvent(t, env, order.ID, constants.OrderEventDelivered, base.Add(45*time.Minute), nil)

	signals, err := env.signal.Signals(order.ID)
	if err != nil {
		t.Fatalf("signals failed: %v", err)
	}
	if len(signals.Problems) != 0 {
		t.Fatalf("healthy order should have no problems: %+v", signals.Problems)
	}
	if signals.OverallSeverity != constants.SeverityNone {
		t.Fatalf("expected none severity, got: %s", signals.OverallSeverity)
	}
	delivery := findStage(t, signals, StageDelivery)
	if delivery.ElapsedMinutes != 21 {
		t.Fatalf("expected delivery 21 minutes, got: %d", delivery.ElapsedMinutes)
	}
	if delivery.Breached {
		t.Fatal("completed in-SLA stage must not be breached")
	}
}

func TestSignalsCancelledWithReason(t *testing.T) {
	env := setupServiceTest(t)
	base := time.Now().Add(-20 * time.Minute)

	order := &models.Order{OutletID: 1, Status: constants.OrderStatusCancelled, CreatedAt: base}
	seedOrder(t, env.db, order)
	seedOrderEvent(t, env, order.ID, constants.OrderEventCreated, base, nil)
	seedOrderEvent(t, env, order.ID, constants.OrderEventCancelled, base.Add(5*time.Minute), models.JSON{"reason": "client_request"})

	signals, err := env.signal.Signals(order.ID)
	if err != nil {
		t.Fatalf("signals failed: %v", err)
	}
	if !hasProblem(signals, constants.ProblemCancelled) {
		t.Fatalf("expected CANCELLED problem, got: %+v", signals.Problems)
	}
	for _, p := range signals.Problems {
		if p.Code == constants.ProblemCancelled {
			if p.Severity != constants.SeverityLow {
				t.Fatalf("cancellation should be low severity, got: %s", p.Severity)
			}
			if p.Reason != "client_request" {
				t.Fatalf("expected reason from event payload, got: %q", p.Reason)
			}
		}
	}
	// 取消时刻距创建 5 分钟，搜索阶段不应按当前时间继续累计
	search := findStage(t, signals, StageCourierSearch)
	if search.ElapsedMinutes != 5 {
		t.Fatalf("cancelled order stage should stop at cancellation, got: %d", search.ElapsedMinutes)
	}
	if hasProblem(signals, constants.ProblemCourierSearchDelayed) {
		t.Fatalf("5 minute search should not be delayed: %+v", signals.Problems)
	}
}

func TestSignalsFallbackToOrderTimestamps(t *testing.T) {
	env := setupServiceTest(t)
	base := time.Now().Add(-time.Hour)

	order := &models.Order{
		OutletID:   1,
		Status:     constants.OrderStatusReady,
		CreatedAt:  base,
		AcceptedAt: timePtr(base.Add(3 * time.Minute)),
		ReadyAt:    timePtr(base.Add(15 * time.Minute)),
	}
	seedOrder(t, env.db, order)
	// 无任何事件,全部来自订单时间戳

	signals, err := env.signal.Signals(order.ID)
	if err != nil {
		t.Fatalf("signals failed: %v", err)
	}
	cooking := findStage(t, signals, StageCooking)
	if cooking.StartedAt == nil || cooking.CompletedAt == nil {
		t.Fatalf("cooking stage should fall back to order timestamps: %+v", cooking)
	}
	if cooking.ElapsedMinutes != 12 {
		t.Fatalf("expected cooking 12 minutes, got: %d", cooking.ElapsedMinutes)
	}
	// 出餐后无人取餐,等待取货阶段持续超时
	pickup := findStage(t, signals, StagePickupWait)
	if !pickup.Breached {
		t.Fatal("ready order waiting 45 minutes for pickup should be breached")
	}
	if !hasProblem(signals, constants.ProblemReadyWaitingPickup) {
		t.Fatalf("expected READY_WAITING_PICKUP, got: %+v", signals.Problems)
	}
}

func TestSignalsOrderNotFound(t *testing.T) {
	env := setupServiceTest(t)
	if _, err := env.signal.Signals(404404); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got: %v", err)
	}
}
