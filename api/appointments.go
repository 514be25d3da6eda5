package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"scuolaguida/models"
)

// Appointments lists the student's lessons inside the window, past statuses
// included; the history screen reads from the same snapshot.
func (c *Client) Appointments(ctx context.Context, studentID string, window models.DateWindow) ([]models.Appointment, error) {
	path := fmt.Sprintf("/v1/students/%s/appointments?from=%s&to=%s",
		url.PathEscape(studentID),
		window.From.Format("2006-01-02"),
		window.To.Format("2006-01-02"))
	var out []models.Appointment
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAppointmentStatus moves an appointment along its lifecycle
// (proposal → scheduled, scheduled → confirmed, and so on).
func (c *Client) UpdateAppointmentStatus(ctx context.Context, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error) {
	in := map[string]string{"status": string(status)}
	var out models.Appointment
	path := fmt.Sprintf("/v1/appointments/%s/status", url.PathEscape(appointmentID))
	if err := c.do(ctx, http.MethodPut, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelAppointment releases a lesson. The backend answers with what it did
// about the freed slot: rescheduled the lesson, or released it (possibly
// broadcasting a waitlist offer).
func (c *Client) CancelAppointment(ctx context.Context, appointmentID string) (*models.CancelOutcome, error) {
	var out models.CancelOutcome
	path := fmt.Sprintf("/v1/appointments/%s/cancel", url.PathEscape(appointmentID))
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
