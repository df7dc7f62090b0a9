package database

import (
	"context"
	"io"
	"testing"

	"campus_scheduler/internal/domain"
	"campus_scheduler/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_ErrorPaths(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	db.Close() // closed handle makes every call fail

	ctx := context.Background()
	b := newBooking("Hall1", "2024-05-01", "09:00", "10:00")
	b.ID = 1

	checks := map[string]error{
		"CreateBookingWithLock":   db.CreateBookingWithLock(ctx, b),
		"UpdateBookingWithLock":   db.UpdateBookingWithLock(ctx, b),
		"UpdateBookingStatus":     db.UpdateBookingStatus(ctx, 1, models.StatusApproved),
		"ApproveBookingWithCheck": db.ApproveBookingWithCheck(ctx, 1),
		"DeleteBooking":           db.DeleteBooking(ctx, 1),
	}
	for name, err := range checks {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, err)
			assert.False(t, domain.IsNotFound(err))
			assert.False(t, domain.IsConflict(err))
		})
	}

	t.Run("GetBooking", func(t *testing.T) {
		_, err := db.GetBooking(ctx, 1)
		assert.Error(t, err)
		assert.False(t, domain.IsNotFound(err))
	})

	t.Run("ListBookings", func(t *testing.T) {
		_, err := db.ListBookings(ctx, models.BookingFilter{})
		assert.Error(t, err)
	})

	t.Run("GetApprovedBookings", func(t *testing.T) {
		_, err := db.GetApprovedBookings(ctx, "Hall1", b.Date, 0)
		assert.Error(t, err)
	})
}

func TestNewDB_BadPath(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewDB("/dev/null/scheduler.db", &logger)
	assert.Error(t, err)
}
