package models

import "time"

// RequestStatus is the lifecycle of one booking negotiation on the backend.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestMatched   RequestStatus = "matched"
	RequestCancelled RequestStatus = "cancelled"
)

// BookingPreferences is the student-entered booking form. Field rules are
// checked locally before any network call; the allowed durations come from the
// school's booking options when available.
type BookingPreferences struct {
	StudentID       string `json:"studentId" validate:"required"`
	PreferredDate   string `json:"preferredDate" validate:"required,datetime=2006-01-02"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=20,max=180"`
	LessonType      string `json:"lessonType,omitempty"`
	InstructorID    string `json:"instructorId,omitempty"`
	VehicleID       string `json:"vehicleId,omitempty"`
	MaxDays         int    `json:"maxDays" validate:"omitempty,min=1,max=60"`
}

// BookingRequestInput is the wire shape of createBookingRequest. The first
// submission leaves RequestID empty; every later call of the same negotiation
// echoes the server-assigned id so the backend can deduplicate retries.
type BookingRequestInput struct {
	RequestID        string     `json:"requestId,omitempty"`
	StudentID        string     `json:"studentId"`
	PreferredDate    string     `json:"preferredDate"`
	DurationMinutes  int        `json:"durationMinutes"`
	LessonType       string     `json:"lessonType,omitempty"`
	InstructorID     string     `json:"instructorId,omitempty"`
	VehicleID        string     `json:"vehicleId,omitempty"`
	MaxDays          int        `json:"maxDays,omitempty"`
	SelectedStartsAt *time.Time `json:"selectedStartsAt,omitempty"`
	ExcludeStartsAt  *time.Time `json:"excludeStartsAt,omitempty"`
}

// BookingRequest is the server-side negotiation record. Its ID doubles as the
// idempotency key for the whole negotiation.
type BookingRequest struct {
	ID              string        `json:"id"`
	StudentID       string        `json:"studentId"`
	PreferredDate   string        `json:"preferredDate"`
	DurationMinutes int           `json:"durationMinutes"`
	LessonType      string        `json:"lessonType,omitempty"`
	Status          RequestStatus `json:"status"`
}

// Suggestion is a single candidate slot proposed by the backend in response
// to a booking request.
type Suggestion struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// BookingOutcome is the createBookingRequest response. Matched means the
// booking resolved to an appointment; otherwise the negotiation stays open
// and Suggestion, when present, is the next candidate slot.
type BookingOutcome struct {
	Matched     bool            `json:"matched"`
	Appointment *Appointment    `json:"appointment,omitempty"`
	Request     *BookingRequest `json:"request,omitempty"`
	Suggestion  *Suggestion     `json:"suggestion,omitempty"`
}
