package service

import (
	"context"
	"strings"

	"campus_scheduler/internal/domain"
	"campus_scheduler/internal/events"
	"campus_scheduler/internal/metrics"
	"campus_scheduler/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo           domain.Repository
	eventBus       domain.EventPublisher
	strictApproval bool
	logger         *zerolog.Logger
}

// NewBookingService wires the store. With strictApproval, approve re-checks
// the slot against other approved bookings.
func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, strictApproval bool, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:           repo,
		eventBus:       eventBus,
		strictApproval: strictApproval,
		logger:         logger,
	}
}

// ValidateRequest checks required fields, time format, time order and date
// format, in that order, and returns the parsed booking.
func ValidateRequest(req models.BookingRequest) (*models.Booking, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"venue", req.Venue},
		{"event_type", req.EventType},
		{"event_name", req.EventName},
		{"date", req.Date},
		{"start_time", req.StartTime},
		{"end_time", req.EndTime},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return nil, domain.NewValidationError("%s is required", f.name)
		}
	}

	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, domain.NewValidationError("invalid time format")
	}
	end, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, domain.NewValidationError("invalid time format")
	}
	if start >= end {
		return nil, domain.NewValidationError("start time must be before end time")
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, domain.NewValidationError("invalid date format")
	}

	return &models.Booking{
		Venue:     strings.TrimSpace(req.Venue),
		EventType: strings.TrimSpace(req.EventType),
		EventName: strings.TrimSpace(req.EventName),
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    models.StatusPending,
	}, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	booking, err := ValidateRequest(req)
	if err != nil {
		s.record("create", err)
		return nil, err
	}

	if err := s.repo.CreateBookingWithLock(ctx, booking); err != nil {
		s.record("create", err)
		return nil, err
	}
	s.record("create", nil)

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("venue", booking.Venue).
		Str("date", booking.Date.String()).
		Str("slot", booking.StartTime.String()+"-"+booking.EndTime.String()).
		Msg("Booking created")

	s.publishEvent(events.EventBookingCreated, events.PayloadFromBooking(booking))
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	bookings, err := s.repo.ListBookings(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list bookings")
		return nil, err
	}
	return bookings, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// GetOccupiedSlots returns approved bookings for one venue and date ordered by start time.
func (s *BookingService) GetOccupiedSlots(ctx context.Context, venue, date string) ([]*models.Booking, error) {
	if strings.TrimSpace(venue) == "" {
		return nil, domain.NewValidationError("venue is required")
	}
	if strings.TrimSpace(date) == "" {
		return nil, domain.NewValidationError("date is required")
	}
	d, err := models.ParseDate(date)
	if err != nil {
		return nil, domain.NewValidationError("invalid date format")
	}
	return s.repo.GetApprovedBookings(ctx, strings.TrimSpace(venue), d, 0)
}

func (s *BookingService) UpdateBooking(ctx context.Context, id int64, req models.BookingRequest) (*models.Booking, error) {
	booking, err := ValidateRequest(req)
	if err != nil {
		s.record("update", err)
		return nil, err
	}
	booking.ID = id

	if err := s.repo.UpdateBookingWithLock(ctx, booking); err != nil {
		s.record("update", err)
		return nil, err
	}
	s.record("update", nil)

	s.logger.Info().Int64("booking_id", id).Msg("Booking updated and reset to pending")
	s.publishEvent(events.EventBookingUpdated, events.PayloadFromBooking(booking))
	return booking, nil
}

func (s *BookingService) ApproveBooking(ctx context.Context, id int64) error {
	var err error
	if s.strictApproval {
		err = s.repo.ApproveBookingWithCheck(ctx, id)
	} else {
		err = s.repo.UpdateBookingStatus(ctx, id, models.StatusApproved)
	}
	s.record("approve", err)
	if err != nil {
		return err
	}

	s.logger.Info().Int64("booking_id", id).Bool("strict", s.strictApproval).Msg("Booking approved")
	s.publishStatusEvent(ctx, events.EventBookingApproved, id, models.StatusApproved)
	return nil
}

func (s *BookingService) RejectBooking(ctx context.Context, id int64) error {
	err := s.repo.UpdateBookingStatus(ctx, id, models.StatusRejected)
	s.record("reject", err)
	if err != nil {
		return err
	}

	s.logger.Info().Int64("booking_id", id).Msg("Booking rejected")
	s.publishStatusEvent(ctx, events.EventBookingRejected, id, models.StatusRejected)
	return nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	err := s.repo.DeleteBooking(ctx, id)
	s.record("delete", err)
	if err != nil {
		return err
	}

	s.logger.Info().Int64("booking_id", id).Msg("Booking deleted")
	s.publishEvent(events.EventBookingDeleted, events.BookingEventPayload{BookingID: id})
	return nil
}

// publishStatusEvent sends the full booking when it can be read back,
// otherwise just the id and new status.
func (s *BookingService) publishStatusEvent(ctx context.Context, eventType string, id int64, status string) {
	payload := events.BookingEventPayload{BookingID: id, Status: status}
	if booking, err := s.repo.GetBooking(ctx, id); err == nil {
		payload = events.PayloadFromBooking(booking)
	}
	s.publishEvent(eventType, payload)
}

func (s *BookingService) publishEvent(eventType string, payload events.BookingEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Int64("booking_id", payload.BookingID).Msg("Failed to publish booking event")
	}
}

func (s *BookingService) record(op string, err error) {
	switch {
	case err == nil:
		metrics.IncOperation(op, "ok")
	case domain.IsValidation(err):
		metrics.IncOperation(op, "validation")
	case domain.IsConflict(err):
		metrics.IncOperation(op, "conflict")
		metrics.IncConflict(op)
	case domain.IsNotFound(err):
		metrics.IncOperation(op, "not_found")
	default:
		metrics.IncOperation(op, "error")
		s.logger.Error().Err(err).Str("op", op).Msg("Booking store failure")
	}
}
