package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"scuolaguida/models"
)

// WaitlistOffer returns the student's single current offer, or nil when the
// backend holds none. Older superseded offers never reach the client.
func (c *Client) WaitlistOffer(ctx context.Context, studentID string) (*models.WaitlistOffer, error) {
	var out struct {
		Offer *models.WaitlistOffer `json:"offer"`
	}
	path := fmt.Sprintf("/v1/students/%s/waitlist/offer", url.PathEscape(studentID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Offer, nil
}

// RespondWaitlistOffer resolves an offer. accepted:false on an accept means
// another student claimed the slot first; the reply is still a success at the
// transport level.
func (c *Client) RespondWaitlistOffer(ctx context.Context, offerID string, input models.OfferRespondInput) (*models.WaitlistOutcome, error) {
	var out models.WaitlistOutcome
	path := fmt.Sprintf("/v1/waitlist/offers/%s/respond", url.PathEscape(offerID))
	if err := c.do(ctx, http.MethodPost, path, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
