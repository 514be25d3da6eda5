package models

import "time"

// AppointmentStatus is the backend-owned lifecycle of a lesson appointment.
type AppointmentStatus string

const (
	AppointmentProposal  AppointmentStatus = "proposal"
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCheckedIn AppointmentStatus = "checked_in"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentNoShow    AppointmentStatus = "no_show"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is one driving lesson. Created by the backend as the outcome of
// a matched booking request, an accepted waitlist offer, or an instructor
// proposal.
type Appointment struct {
	ID           string            `json:"id"`
	StudentID    string            `json:"studentId"`
	InstructorID string            `json:"instructorId,omitempty"`
	VehicleID    string            `json:"vehicleId,omitempty"`
	StartsAt     time.Time         `json:"startsAt"`
	EndsAt       *time.Time        `json:"endsAt,omitempty"`
	Status       AppointmentStatus `json:"status"`
	LessonType   string            `json:"lessonType,omitempty"`
}

// CancelOutcome is the backend's answer to a cancellation: either the lesson
// was moved to a new slot, or it was released (and possibly broadcast to the
// waitlist).
type CancelOutcome struct {
	Rescheduled bool       `json:"rescheduled"`
	NewStartsAt *time.Time `json:"newStartsAt,omitempty"`
	Broadcasted bool       `json:"broadcasted,omitempty"`
}

// Instructor is a read-only directory entry used by the preferences form.
type Instructor struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Vehicle is a read-only directory entry used by the preferences form.
type Vehicle struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Plate        string `json:"plate"`
	Transmission string `json:"transmission,omitempty"`
}
