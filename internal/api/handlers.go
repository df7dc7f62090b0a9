package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"campus_scheduler/internal/domain"
	"campus_scheduler/internal/export"
	"campus_scheduler/internal/models"
)

const (
	msgCreateConflict = "This time slot is already occupied. Please choose another slot."
	msgUpdateConflict = "Time conflict detected with approved booking."
	msgNotFound       = "Booking not found."
	msgDeleted        = "Booking deleted successfully."
	msgUpdated        = "Booking updated and set to Pending approval."
	msgApproved       = "Booking approved."
	msgRejected       = "Booking rejected."
	msgBadID          = "invalid booking id"
	msgBadJSON        = "invalid JSON body"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// errorResponse is the failure shape of POST /book and GET /bookings.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// resultResponse is the shape of the id-addressed routes.
type resultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*models.Booking
}

func writeStoreError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Status: "Error", Message: message})
}

func writeResult(w http.ResponseWriter, statusCode int, success bool, message string) {
	writeJSON(w, statusCode, resultResponse{Success: success, Message: message})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStoreError(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	booking, err := s.svc.CreateBooking(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, booking)
	case domain.IsValidation(err):
		writeStoreError(w, http.StatusBadRequest, err.Error())
	case domain.IsConflict(err):
		writeStoreError(w, http.StatusBadRequest, msgCreateConflict)
	default:
		s.logError(r, err, "create booking")
		writeStoreError(w, http.StatusInternalServerError, err.Error())
	}
}

func bookingFilter(r *http.Request) models.BookingFilter {
	q := r.URL.Query()
	return models.BookingFilter{
		Status: strings.TrimSpace(q.Get("status")),
		Venue:  strings.TrimSpace(q.Get("venue")),
		Date:   strings.TrimSpace(q.Get("date")),
	}
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.svc.ListBookings(r.Context(), bookingFilter(r))
	if err != nil {
		s.logError(r, err, "list bookings")
		writeStoreError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.svc.ListBookings(r.Context(), bookingFilter(r))
	if err != nil {
		s.logError(r, err, "export bookings")
		writeStoreError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data, err := export.Bytes(bookings)
	if err != nil {
		s.logError(r, err, "render export")
		writeStoreError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResult(w, http.StatusBadRequest, false, msgBadJSON)
		return
	}

	booking, err := s.svc.UpdateBooking(r.Context(), id, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, updateResponse{Success: true, Message: msgUpdated, Booking: booking})
	case domain.IsValidation(err):
		writeResult(w, http.StatusBadRequest, false, err.Error())
	case domain.IsNotFound(err):
		writeResult(w, http.StatusNotFound, false, msgNotFound)
	case domain.IsConflict(err):
		writeResult(w, http.StatusBadRequest, false, msgUpdateConflict)
	default:
		s.logError(r, err, "update booking")
		writeResult(w, http.StatusInternalServerError, false, err.Error())
	}
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	s.writeIDResult(w, r, s.svc.DeleteBooking(r.Context(), id), msgDeleted, "delete booking")
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	s.writeIDResult(w, r, s.svc.ApproveBooking(r.Context(), id), msgApproved, "approve booking")
}

func (s *HTTPServer) handleRejectBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	s.writeIDResult(w, r, s.svc.RejectBooking(r.Context(), id), msgRejected, "reject booking")
}

func (s *HTTPServer) writeIDResult(w http.ResponseWriter, r *http.Request, err error, okMessage, op string) {
	switch {
	case err == nil:
		writeResult(w, http.StatusOK, true, okMessage)
	case domain.IsNotFound(err):
		writeResult(w, http.StatusNotFound, false, msgNotFound)
	case domain.IsConflict(err):
		writeResult(w, http.StatusBadRequest, false, msgUpdateConflict)
	default:
		s.logError(r, err, op)
		writeResult(w, http.StatusInternalServerError, false, err.Error())
	}
}

func bookingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 0 {
		writeResult(w, http.StatusBadRequest, false, msgBadID)
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) logError(r *http.Request, err error, op string) {
	s.log.Error().Err(err).Str("request_id", RequestID(r.Context())).Str("op", op).Msg("Booking request failed")
}
