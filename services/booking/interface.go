package booking

import (
	"context"
	"sync"

	"scuolaguida/models"
	"scuolaguida/services/sheet"
)

// API is the slice of the backend the booking coordinator consumes. Every
// negotiation step, first submission included, goes through the same call.
type API interface {
	CreateBookingRequest(ctx context.Context, input models.BookingRequestInput) (*models.BookingOutcome, error)
}

// Coordinator drives the offer/accept negotiation for one lesson booking.
// At most one negotiation is alive at a time; submitting a new request
// replaces whatever was pending.
type Coordinator interface {
	// SubmitRequest validates the form and opens a negotiation. Outcomes are
	// surfaced as toasts and sheet transitions, never as returned errors.
	SubmitRequest(ctx context.Context, prefs models.BookingPreferences)

	// AcceptSuggestion books the currently shown slot. The negotiation is
	// discarded whether the slot was won or lost; only a transport failure
	// keeps it alive for a retry.
	AcceptSuggestion(ctx context.Context)

	// RequestAlternative asks for the next candidate slot, excluding the one
	// on screen.
	RequestAlternative(ctx context.Context)

	// RejectSuggestion discards the negotiation locally. No network call; the
	// backend expires the open request on its own.
	RejectSuggestion()

	// Suggestion returns the slot currently offered, nil when no negotiation
	// is waiting on the student.
	Suggestion() *models.Suggestion

	// Active reports whether a negotiation is in progress.
	Active() bool
}

// DefaultCoordinator implements Coordinator.
type DefaultCoordinator struct {
	API    API
	Toasts models.ToastSink
	Sheets sheet.Arbiter

	// Reload refreshes agenda data after a confirmed booking.
	Reload func(ctx context.Context)

	// Options yields the school's booking options, nil when unknown.
	Options func() *models.BookingOptions

	// DefaultMaxDays bounds the search window when the form leaves it unset.
	DefaultMaxDays int

	mu          sync.Mutex
	busy        bool
	negotiation *Negotiation
}

// NewDefaultCoordinator returns a booking Coordinator.
func NewDefaultCoordinator(api API, toasts models.ToastSink, sheets sheet.Arbiter, reload func(ctx context.Context), options func() *models.BookingOptions, defaultMaxDays int) *DefaultCoordinator {
	return &DefaultCoordinator{
		API:            api,
		Toasts:         toasts,
		Sheets:         sheets,
		Reload:         reload,
		Options:        options,
		DefaultMaxDays: defaultMaxDays,
	}
}
