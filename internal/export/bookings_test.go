package export

import (
	"bytes"
	"testing"
	"time"

	"campus_scheduler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookings(t *testing.T) {
	bookings := []*models.Booking{
		{
			ID: 1, Venue: "Main Auditorium", EventType: "Seminar", EventName: "Intro",
			Date:      models.NewDate(2024, time.May, 1),
			StartTime: models.NewTimeOfDay(9, 0), EndTime: models.NewTimeOfDay(10, 30),
			Status: models.StatusApproved,
		},
		{
			ID: 2, Venue: "Lab 3", EventType: "Workshop", EventName: "Go",
			Date:      models.NewDate(2024, time.May, 2),
			StartTime: models.NewTimeOfDay(13, 0), EndTime: models.NewTimeOfDay(14, 0),
			Status: models.StatusPending,
		},
	}

	data, err := Bytes(bookings)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"1", "Main Auditorium", "Seminar", "Intro", "2024-05-01", "09:00", "10:30", "Approved"}, rows[1])
	assert.Equal(t, []string{"2", "Lab 3", "Workshop", "Go", "2024-05-02", "13:00", "14:00", "Pending"}, rows[2])
}

func TestWriteBookingsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, headers, rows[0])
}
