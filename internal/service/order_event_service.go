package service

import (
	"strings"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/repository"
)

var knownOrderEventTypes = map[string]bool{
	constants.OrderEventCreated:              true,
	constants.OrderEventCourierSearchStarted: true,
	constants.OrderEventCourierAssigned:      true,
	constants.OrderEventAccepted:             true,
	constants.OrderEventCookingStarted:       true,
	constants.OrderEventReady:                true,
	constants.OrderEventCourierArrivedOutlet: true,
	constants.OrderEventCourierArrivedClient: true,
	constants.OrderEventPickedUp:             true,
	constants.OrderEventDelivered:            true,
	constants.OrderEventCancelled:            true,
	constants.OrderEventNoteAdded:            true,
	constants.OrderEventCompensationIssued:   true,
	constants.OrderEventCartUpdated:          true,
	constants.OrderEventNotifyClient:         true,
	constants.OrderEventResendToRestaurant:   true,
}

// OrderEventService 订单事件追加与查询
type OrderEventService struct {
	orderRepo repository.OrderRepository
	eventRepo repository.OrderEventRepository
}

// NewOrderEventService 创建订单事件服务
func NewOrderEventService(orderRepo repository.OrderRepository, eventRepo repository.OrderEventRepository) *OrderEventService {
	return &OrderEventService{
		orderRepo: orderRepo,
		eventRepo: eventRepo,
	}
}

// Append 为订单追加一条事件
func (s *OrderEventService) Append(orderID uint, eventType string, payload models.JSON, actor Actor) (*models.OrderEvent, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return nil, validationErrorf("event type is required")
	}
	if !knownOrderEventTypes[eventType] {
		return nil, validationErrorf("unknown event type: %s", eventType)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	event := &models.OrderEvent{
		OrderID:   orderID,
		Type:      eventType,
		Payload:   payload,
		ActorID:   actor.ID,
		CreatedAt: time.Now(),
	}
	if err := s.eventRepo.Append(event); err != nil {
		return nil, err
	}
	logger.Infow("order_event_appended",
		"order_id", orderID,
		"type", eventType,
		"actor_role", actor.Role,
		"actor_id", actor.ID,
	)
	return event, nil
}

// List 按时间顺序返回订单事件
func (s *OrderEventService) List(orderID uint) ([]models.OrderEvent, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.eventRepo.ListByOrder(orderID)
}
