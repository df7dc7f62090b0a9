package models

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// IsValidStatus reports whether s is one of the booking statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}
