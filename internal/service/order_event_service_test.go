package service

import (
	"errors"
	"testing"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/models"
)

func TestOrderEventAppendAndList(t *testing.T) {
	env := setupServiceTest(t)
	order := &models.Order{OutletID: 1}
	seedOrder(t, env.db, order)

	event, err := env.events.Append(order.ID, constants.OrderEventNoteAdded, models.JSON{"text": "client called"}, testActor())
	if err != nil {
		t.Fatalf("append event failed: %v", err)
	}
	if event.ID == 0 {
		t.Fatalf("expected persisted event id")
	}
	if event.ActorID != 1 {
		t.Fatalf("expected actor id 1, got %d", event.ActorID)
	}

	if _, err := env.events.Append(order.ID, constants.OrderEventCancelled, models.JSON{"reason": "client_request"}, testActor()); err != nil {
		t.Fatalf("append second event failed: %v", err)
	}

	events, err := env.events.List(order.ID)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != constants.OrderEventNoteAdded {
		t.Fatalf("expected note_added first, got %s", events[0].Type)
	}
}

func TestOrderEventAppendValidation(t *testing.T) {
	env := setupServiceTest(t)
	order := &models.Order{OutletID: 1}
	seedOrder(t, env.db, order)

	if _, err := env.events.Append(order.ID, "", nil, testActor()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty type, got %v", err)
	}
	if _, err := env.events.Append(order.ID, "teleported", nil, testActor()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
	if _, err := env.events.Append(9999, constants.OrderEventReady, nil, testActor()); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
	if _, err := env.events.List(9999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found on list, got %v", err)
	}
}
