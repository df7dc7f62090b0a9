package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campus_scheduler/internal/domain"
	"campus_scheduler/internal/models"
)

const bookingColumns = `id, venue, event_type, event_name, date, start_time, end_time, status`

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(&b.ID, &b.Venue, &b.EventType, &b.EventName, &b.Date, &b.StartTime, &b.EndTime, &b.Status)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func queryBookings(ctx context.Context, q querier, query string, args ...any) ([]*models.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func approvedBookings(ctx context.Context, q querier, venue string, date models.Date, excludeID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings
              WHERE venue = ? AND date = ? AND status = ? AND id != ?
              ORDER BY start_time ASC`
	return queryBookings(ctx, q, query, venue, date, models.StatusApproved, excludeID)
}

func findOverlap(existing []*models.Booking, start, end models.TimeOfDay) *models.Booking {
	for _, b := range existing {
		if b.Overlaps(start, end) {
			return b
		}
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// ListBookings returns bookings matching every non-empty filter field,
// ordered by date then start time.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Venue != "" {
		conds = append(conds, "venue = ?")
		args = append(args, filter.Venue)
	}
	if filter.Date != "" {
		conds = append(conds, "date = ?")
		args = append(args, filter.Date)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date ASC, start_time ASC, id ASC`

	bookings, err := queryBookings(ctx, db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetApprovedBookings returns approved bookings for a venue and date,
// skipping excludeID. Pass 0 to exclude nothing.
func (db *DB) GetApprovedBookings(ctx context.Context, venue string, date models.Date, excludeID int64) ([]*models.Booking, error) {
	bookings, err := approvedBookings(ctx, db, venue, date, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved bookings: %w", err)
	}
	return bookings, nil
}

// CreateBookingWithLock checks the slot against approved bookings and inserts
// the booking as Pending inside one transaction.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := approvedBookings(ctx, tx, booking.Venue, booking.Date, 0)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	if clash := findOverlap(existing, booking.StartTime, booking.EndTime); clash != nil {
		db.logger.Debug().
			Int64("conflicting_id", clash.ID).
			Str("venue", booking.Venue).
			Str("date", booking.Date.String()).
			Msg("Slot conflict on create")
		return domain.ErrSlotOccupied
	}

	query := `INSERT INTO bookings (venue, event_type, event_name, date, start_time, end_time, status)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query,
		booking.Venue,
		booking.EventType,
		booking.EventName,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		models.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.ID = id
	booking.Status = models.StatusPending
	return nil
}

// UpdateBookingWithLock overwrites every editable field and resets the status
// to Pending. The booking itself is excluded from the overlap check.
func (db *DB) UpdateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, booking.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load booking in tx: %w", err)
	}

	existing, err := approvedBookings(ctx, tx, booking.Venue, booking.Date, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	if clash := findOverlap(existing, booking.StartTime, booking.EndTime); clash != nil {
		db.logger.Debug().
			Int64("booking_id", booking.ID).
			Int64("conflicting_id", clash.ID).
			Msg("Slot conflict on update")
		return domain.ErrSlotOccupied
	}

	query := `UPDATE bookings
              SET venue = ?, event_type = ?, event_name = ?, date = ?, start_time = ?, end_time = ?, status = ?
              WHERE id = ?`
	_, err = tx.ExecContext(ctx, query,
		booking.Venue,
		booking.EventType,
		booking.EventName,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		models.StatusPending,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking update: %w", err)
	}

	booking.Status = models.StatusPending
	return nil
}

// UpdateBookingStatus sets the status without touching other fields.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	if !models.IsValidStatus(status) {
		return fmt.Errorf("invalid booking status %q", status)
	}

	result, err := db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// ApproveBookingWithCheck approves a booking only if it does not overlap any
// other approved booking for the same venue and date.
func (db *DB) ApproveBookingWithCheck(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load booking in tx: %w", err)
	}

	existing, err := approvedBookings(ctx, tx, booking.Venue, booking.Date, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	if clash := findOverlap(existing, booking.StartTime, booking.EndTime); clash != nil {
		db.logger.Debug().
			Int64("booking_id", id).
			Int64("conflicting_id", clash.ID).
			Msg("Slot conflict on approve")
		return domain.ErrSlotOccupied
	}

	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, models.StatusApproved, id); err != nil {
		return fmt.Errorf("failed to approve booking in tx: %w", err)
	}

	return tx.Commit()
}

func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}
