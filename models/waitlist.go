package models

import "time"

// TimeSlot is a concrete start/end window.
type TimeSlot struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// WaitlistOffer is a backend-issued notice that a booked slot freed up and is
// being offered to a waiting student. At most one is held client-side.
type WaitlistOffer struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	Slot      TimeSlot  `json:"slot"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the offer's window has already passed. The backend
// stays authoritative on accept races; this only gates auto-surfacing.
func (o WaitlistOffer) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && now.After(o.ExpiresAt)
}

// OfferReply is the student's answer to a waitlist offer.
type OfferReply string

const (
	OfferAccept  OfferReply = "accept"
	OfferDecline OfferReply = "decline"
)

// OfferRespondInput is the wire shape of respondWaitlistOffer.
type OfferRespondInput struct {
	StudentID string     `json:"studentId"`
	Response  OfferReply `json:"response"`
}

// OfferResponse is the recorded resolution the backend echoes back.
type OfferResponse struct {
	OfferID string `json:"offerId,omitempty"`
	Status  string `json:"status"`
}

// WaitlistOutcome is the respondWaitlistOffer response. Accepted false on an
// accept means someone else claimed the slot first; that is an informational
// outcome, not an error.
type WaitlistOutcome struct {
	Accepted    bool           `json:"accepted"`
	Appointment *Appointment   `json:"appointment,omitempty"`
	Response    *OfferResponse `json:"response,omitempty"`
}
