package events

import (
	"encoding/json"
	"sync"
	"time"

	"campus_scheduler/internal/models"

	"github.com/rs/zerolog"
)

const (
	EventBookingCreated  = "booking_created"
	EventBookingUpdated  = "booking_updated"
	EventBookingApproved = "booking_approved"
	EventBookingRejected = "booking_rejected"
	EventBookingDeleted  = "booking_deleted"
)

// AllBookingEvents lists every booking event type.
var AllBookingEvents = []string{
	EventBookingCreated,
	EventBookingUpdated,
	EventBookingApproved,
	EventBookingRejected,
	EventBookingDeleted,
}

// BookingEventPayload is the booking snapshot sent to event consumers.
// Only BookingID and Status are guaranteed for approve, reject and delete.
type BookingEventPayload struct {
	BookingID int64  `json:"booking_id"`
	Venue     string `json:"venue,omitempty"`
	EventType string `json:"event_type,omitempty"`
	EventName string `json:"event_name,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Status    string `json:"status,omitempty"`
}

// PayloadFromBooking copies a booking into an event payload.
func PayloadFromBooking(b *models.Booking) BookingEventPayload {
	return BookingEventPayload{
		BookingID: b.ID,
		Venue:     b.Venue,
		EventType: b.EventType,
		EventName: b.EventName,
		Date:      b.Date.String(),
		StartTime: b.StartTime.String(),
		EndTime:   b.EndTime.String(),
		Status:    b.Status,
	}
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// DecodeBooking unmarshals the event payload.
func (e *Event) DecodeBooking() (BookingEventPayload, error) {
	var p BookingEventPayload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus. Handler errors go to logger.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for the given event types.
func (b *EventBus) Subscribe(handler EventHandler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.subscribers[t] = append(b.subscribers[t], handler)
	}
}

// Publish notifies subscribers synchronously, in subscription order.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("Event handler failed")
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// AuditLogger returns a handler that writes every booking event to logger.
func AuditLogger(logger *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		p, err := event.DecodeBooking()
		if err != nil {
			return err
		}
		logger.Info().
			Str("event", event.Type).
			Int64("booking_id", p.BookingID).
			Str("venue", p.Venue).
			Str("date", p.Date).
			Str("status", p.Status).
			Msg("Booking event")
		return nil
	}
}
