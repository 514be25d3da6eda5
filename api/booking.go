package api

import (
	"context"
	"net/http"

	"scuolaguida/models"
)

// CreateBookingRequest drives every step of a booking negotiation. The first
// call of a negotiation leaves input.RequestID empty; each retry or follow-up
// echoes the server-assigned id so the backend deduplicates it.
func (c *Client) CreateBookingRequest(ctx context.Context, input models.BookingRequestInput) (*models.BookingOutcome, error) {
	var out models.BookingOutcome
	if err := c.do(ctx, http.MethodPost, "/v1/booking/requests", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
