package domain

import (
	"context"
	"time"

	"campus_scheduler/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository is the booking store. Check-and-write methods run atomically.
type Repository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	GetApprovedBookings(ctx context.Context, venue string, date models.Date, excludeID int64) ([]*models.Booking, error)
	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	UpdateBookingWithLock(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	ApproveBookingWithCheck(ctx context.Context, id int64) error
	DeleteBooking(ctx context.Context, id int64) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetOccupiedSlots(ctx context.Context, venue, date string) ([]*models.Booking, error)
	UpdateBooking(ctx context.Context, id int64, req models.BookingRequest) (*models.Booking, error)
	ApproveBooking(ctx context.Context, id int64) error
	RejectBooking(ctx context.Context, id int64) error
	DeleteBooking(ctx context.Context, id int64) error
}

// RateLimiter counts hits per key within a fixed window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type NotificationQueue interface {
	Enqueue(ctx context.Context, chatID int64, text string) error
}
