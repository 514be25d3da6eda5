package booking

import (
	"context"
	"fmt"

	"scuolaguida/models"
)

// Negotiation is one open booking negotiation. It owns the server-assigned
// request id and the original form input, so every follow-up call echoes the
// same id and the backend can deduplicate retried taps. Callers never thread
// the id themselves.
type Negotiation struct {
	requestID  string
	input      models.BookingRequestInput
	suggestion models.Suggestion
}

// newNegotiation captures the outcome of a first submission that came back
// unmatched with a candidate slot.
func newNegotiation(input models.BookingRequestInput, out *models.BookingOutcome) (*Negotiation, error) {
	if out.Request == nil || out.Request.ID == "" {
		return nil, fmt.Errorf("backend returned a suggestion without a request id")
	}
	if out.Suggestion == nil {
		return nil, fmt.Errorf("negotiation needs a suggestion to act on")
	}
	return &Negotiation{
		requestID:  out.Request.ID,
		input:      input,
		suggestion: *out.Suggestion,
	}, nil
}

// RequestID returns the idempotency key shared by every call of this
// negotiation.
func (n *Negotiation) RequestID() string {
	return n.requestID
}

// Suggestion returns the slot currently on offer.
func (n *Negotiation) Suggestion() models.Suggestion {
	return n.suggestion
}

// Accept resubmits the negotiation with the shown slot pinned. A
// matched:false outcome means the slot was claimed in the meantime; that is
// a normal outcome, not an error.
func (n *Negotiation) Accept(ctx context.Context, api API) (*models.BookingOutcome, error) {
	input := n.input
	input.RequestID = n.requestID
	starts := n.suggestion.StartsAt
	input.SelectedStartsAt = &starts
	input.ExcludeStartsAt = nil

	out, err := api.CreateBookingRequest(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("accepting suggestion failed: %w", err)
	}
	return out, nil
}

// RequestAlternative resubmits excluding the shown slot. When the backend
// answers with a fresh suggestion the negotiation adopts it; an outcome with
// no suggestion means the window is exhausted and the caller should discard
// the negotiation.
func (n *Negotiation) RequestAlternative(ctx context.Context, api API) (*models.BookingOutcome, error) {
	input := n.input
	input.RequestID = n.requestID
	excluded := n.suggestion.StartsAt
	input.ExcludeStartsAt = &excluded
	input.SelectedStartsAt = nil

	out, err := api.CreateBookingRequest(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("requesting alternative failed: %w", err)
	}
	if !out.Matched && out.Suggestion != nil {
		n.suggestion = *out.Suggestion
	}
	return out, nil
}
