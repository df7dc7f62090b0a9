package events

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"campus_scheduler/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(nil)

	var received *Event
	callCount := 0
	bus.Subscribe(func(event *Event) error {
		received = event
		callCount++
		return nil
	}, EventBookingCreated)

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 7, Venue: "Hall1"}))

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventBookingCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	p, err := received.DecodeBooking()
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.BookingID)
	assert.Equal(t, "Hall1", p.Venue)
}

func TestEventBusMultipleTypes(t *testing.T) {
	bus := NewEventBus(nil)
	var seen []string
	bus.Subscribe(func(e *Event) error {
		seen = append(seen, e.Type)
		return nil
	}, AllBookingEvents...)

	for _, typ := range AllBookingEvents {
		bus.Publish(&Event{Type: typ})
	}
	bus.Publish(&Event{Type: "unrelated"})

	assert.Equal(t, AllBookingEvents, seen)
}

func TestEventBusHandlerErrorLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := NewEventBus(&logger)

	secondCalled := false
	bus.Subscribe(func(*Event) error { return errors.New("boom") }, EventBookingDeleted)
	bus.Subscribe(func(*Event) error { secondCalled = true; return nil }, EventBookingDeleted)

	bus.Publish(&Event{Type: EventBookingDeleted, CreatedAt: time.Now()})

	assert.True(t, secondCalled)
	assert.Contains(t, buf.String(), "boom")
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
}

func TestPublishJSONMarshalError(t *testing.T) {
	bus := NewEventBus(nil)
	assert.Error(t, bus.PublishJSON(EventBookingCreated, make(chan int)))
}

func TestPayloadFromBooking(t *testing.T) {
	b := &models.Booking{
		ID:        3,
		Venue:     "Auditorium",
		EventType: "Talk",
		EventName: "Go at scale",
		Date:      models.NewDate(2024, time.May, 1),
		StartTime: models.NewTimeOfDay(9, 0),
		EndTime:   models.NewTimeOfDay(10, 30),
		Status:    models.StatusPending,
	}

	p := PayloadFromBooking(b)
	assert.Equal(t, BookingEventPayload{
		BookingID: 3,
		Venue:     "Auditorium",
		EventType: "Talk",
		EventName: "Go at scale",
		Date:      "2024-05-01",
		StartTime: "09:00",
		EndTime:   "10:30",
		Status:    models.StatusPending,
	}, p)
}

func TestAuditLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := NewEventBus(nil)
	bus.Subscribe(AuditLogger(&logger), AllBookingEvents...)

	require.NoError(t, bus.PublishJSON(EventBookingApproved, BookingEventPayload{BookingID: 11, Status: models.StatusApproved}))

	assert.Contains(t, buf.String(), `"event":"booking_approved"`)
	assert.Contains(t, buf.String(), `"booking_id":11`)
}
