package service

import (
	"context"
	"fmt"

	"campus_scheduler/internal/domain"
	"campus_scheduler/internal/events"

	"github.com/rs/zerolog"
)

// BookingNotifier turns booking events into messages for venue managers.
type BookingNotifier struct {
	queue   domain.NotificationQueue
	chatIDs []int64
	logger  *zerolog.Logger
}

func NewBookingNotifier(queue domain.NotificationQueue, chatIDs []int64, logger *zerolog.Logger) *BookingNotifier {
	return &BookingNotifier{queue: queue, chatIDs: chatIDs, logger: logger}
}

// Subscribe registers the notifier on every booking event.
func (n *BookingNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(n.Handle, events.AllBookingEvents...)
}

func (n *BookingNotifier) Handle(event *events.Event) error {
	p, err := event.DecodeBooking()
	if err != nil {
		return fmt.Errorf("decode booking event: %w", err)
	}

	text := FormatBookingEvent(event.Type, p)
	if text == "" {
		return nil
	}

	var firstErr error
	for _, chatID := range n.chatIDs {
		if err := n.queue.Enqueue(context.Background(), chatID, text); err != nil {
			n.logger.Warn().Err(err).Int64("chat_id", chatID).Str("event", event.Type).Msg("Failed to enqueue notification")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// FormatBookingEvent renders a manager-facing message. Unknown types yield "".
func FormatBookingEvent(eventType string, p events.BookingEventPayload) string {
	slot := fmt.Sprintf("%s %s %s-%s", p.Venue, p.Date, p.StartTime, p.EndTime)
	switch eventType {
	case events.EventBookingCreated:
		return fmt.Sprintf("New booking #%d awaiting approval: %s (%s, %s)", p.BookingID, slot, p.EventName, p.EventType)
	case events.EventBookingUpdated:
		return fmt.Sprintf("Booking #%d was edited and needs re-approval: %s (%s)", p.BookingID, slot, p.EventName)
	case events.EventBookingApproved:
		if p.Venue == "" {
			return fmt.Sprintf("Booking #%d approved", p.BookingID)
		}
		return fmt.Sprintf("Booking #%d approved: %s", p.BookingID, slot)
	case events.EventBookingRejected:
		if p.Venue == "" {
			return fmt.Sprintf("Booking #%d rejected", p.BookingID)
		}
		return fmt.Sprintf("Booking #%d rejected: %s", p.BookingID, slot)
	case events.EventBookingDeleted:
		return fmt.Sprintf("Booking #%d deleted", p.BookingID)
	}
	return ""
}
