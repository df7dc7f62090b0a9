package export

import (
	"bytes"
	"fmt"
	"io"

	"campus_scheduler/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{"ID", "Venue", "Event Type", "Event Name", "Date", "Start", "End", "Status"}

var statusColors = map[string]string{
	models.StatusApproved: "#C6EFCE",
	models.StatusPending:  "#FFEB9C",
	models.StatusRejected: "#FFC7CE",
}

// WriteBookings renders bookings as an xlsx workbook with one row per booking.
func WriteBookings(w io.Writer, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle)

	styles := make(map[string]int, len(statusColors))
	for status, color := range statusColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("error creating style: %w", err)
		}
		styles[status] = id
	}

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID, b.Venue, b.EventType, b.EventName,
			b.Date.String(), b.StartTime.String(), b.EndTime.String(), b.Status,
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, start, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
		if id, ok := styles[b.Status]; ok {
			cell, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(sheetName, cell, cell, id)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "D", 25)
	_ = f.SetColWidth(sheetName, "E", lastCol, 12)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// Bytes is WriteBookings into a buffer.
func Bytes(bookings []*models.Booking) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteBookings(&buf, bookings); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
