package models

type Booking struct {
	ID        int64     `json:"id"`
	Venue     string    `json:"venue"`
	EventType string    `json:"event_type"`
	EventName string    `json:"event_name"`
	Date      Date      `json:"date"`
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
	Status    string    `json:"status"` // Pending, Approved, Rejected
}

// Overlaps reports whether [start, end) intersects the booking's window.
// Touching boundaries do not overlap.
func (b *Booking) Overlaps(start, end TimeOfDay) bool {
	return start < b.EndTime && end > b.StartTime
}

// BookingRequest carries raw client input before validation.
type BookingRequest struct {
	Venue     string `json:"venue"`
	EventType string `json:"event_type"`
	EventName string `json:"event_name"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// BookingFilter holds optional equality filters. Empty fields match everything.
type BookingFilter struct {
	Status string
	Venue  string
	Date   string
}

// Venue is one catalog entry exactly as written in the venues file.
type Venue map[string]any

// Name returns the entry's "name" value, or "" when it is missing or not a string.
func (v Venue) Name() string {
	name, _ := v["name"].(string)
	return name
}
