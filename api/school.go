package api

import (
	"context"
	"net/http"

	"scuolaguida/models"
)

// SchoolSettings reads the active school's policy. The company scope travels
// in the X-Company-ID header.
func (c *Client) SchoolSettings(ctx context.Context) (*models.SchoolSettings, error) {
	var out models.SchoolSettings
	if err := c.do(ctx, http.MethodGet, "/v1/school/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BookingOptions reads what the preferences form may offer. Only called when
// the school enables student-initiated booking.
func (c *Client) BookingOptions(ctx context.Context) (*models.BookingOptions, error) {
	var out models.BookingOptions
	if err := c.do(ctx, http.MethodGet, "/v1/school/booking-options", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Instructors lists the school's instructors for the preferences pickers.
func (c *Client) Instructors(ctx context.Context) ([]models.Instructor, error) {
	var out []models.Instructor
	if err := c.do(ctx, http.MethodGet, "/v1/school/instructors", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Vehicles lists the school's vehicles for the preferences pickers.
func (c *Client) Vehicles(ctx context.Context) ([]models.Vehicle, error) {
	var out []models.Vehicle
	if err := c.do(ctx, http.MethodGet, "/v1/school/vehicles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
