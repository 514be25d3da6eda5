package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"scuolaguida/models"
	"scuolaguida/services/sheet"
)

type reply struct {
	out *models.BookingOutcome
	err error
}

// scriptedAPI replays a fixed sequence of backend outcomes and records every
// request it was sent.
type scriptedAPI struct {
	calls   []models.BookingRequestInput
	replies []reply
}

func (s *scriptedAPI) CreateBookingRequest(_ context.Context, input models.BookingRequestInput) (*models.BookingOutcome, error) {
	s.calls = append(s.calls, input)
	if len(s.replies) == 0 {
		return nil, errors.New("unscripted call")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.out, r.err
}

type toastRecorder struct {
	toasts []models.Toast
}

func (r *toastRecorder) sink(t models.Toast) { r.toasts = append(r.toasts, t) }

func (r *toastRecorder) last(t *testing.T) models.Toast {
	t.Helper()
	if len(r.toasts) == 0 {
		t.Fatalf("expected a toast")
	}
	return r.toasts[len(r.toasts)-1]
}

type fixture struct {
	api     *scriptedAPI
	toasts  *toastRecorder
	sheets  sheet.Arbiter
	reloads int
	options *models.BookingOptions
	coord   *DefaultCoordinator
}

func newFixture(replies ...reply) *fixture {
	f := &fixture{
		api:    &scriptedAPI{replies: replies},
		toasts: &toastRecorder{},
		sheets: sheet.NewArbiter(),
	}
	f.coord = NewDefaultCoordinator(
		f.api,
		f.toasts.sink,
		f.sheets,
		func(context.Context) { f.reloads++ },
		func() *models.BookingOptions { return f.options },
		14,
	)
	return f
}

func validPrefs() models.BookingPreferences {
	return models.BookingPreferences{
		StudentID:       "stu-1",
		PreferredDate:   "2024-05-02",
		DurationMinutes: 45,
	}
}

func suggested(requestID string, startsAt time.Time) reply {
	return reply{out: &models.BookingOutcome{
		Request:    &models.BookingRequest{ID: requestID, Status: models.RequestPending},
		Suggestion: &models.Suggestion{StartsAt: startsAt, EndsAt: startsAt.Add(45 * time.Minute)},
	}}
}

func matched() reply {
	return reply{out: &models.BookingOutcome{
		Matched:     true,
		Appointment: &models.Appointment{ID: "appt-new"},
	}}
}

func TestNegotiationCarriesRequestIDAcrossAccept(t *testing.T) {
	slot := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(suggested("req-1", slot), matched())

	f.coord.SubmitRequest(context.Background(), validPrefs())

	if len(f.api.calls) != 1 || f.api.calls[0].RequestID != "" {
		t.Fatalf("expected the first submission without a request id, got %+v", f.api.calls)
	}
	if !f.coord.Active() {
		t.Fatalf("expected an open negotiation")
	}
	if got := f.coord.Suggestion(); got == nil || !got.StartsAt.Equal(slot) {
		t.Fatalf("expected the offered slot exposed, got %+v", got)
	}
	if got := f.sheets.Active(); got != models.SheetSuggestion {
		t.Fatalf("expected the suggestion sheet up, got %s", got)
	}

	f.coord.AcceptSuggestion(context.Background())

	accept := f.api.calls[1]
	if accept.RequestID != "req-1" {
		t.Fatalf("expected the accept to echo the request id, got %q", accept.RequestID)
	}
	if accept.SelectedStartsAt == nil || !accept.SelectedStartsAt.Equal(slot) {
		t.Fatalf("expected the shown slot pinned, got %+v", accept.SelectedStartsAt)
	}
	if accept.ExcludeStartsAt != nil {
		t.Fatalf("expected no exclusion on accept")
	}
	if f.coord.Active() {
		t.Fatalf("expected the negotiation discarded after booking")
	}
	if got := f.sheets.Active(); got != models.SheetNone {
		t.Fatalf("expected the sheet dismissed, got %s", got)
	}
	if f.reloads != 1 {
		t.Fatalf("expected one agenda reload, got %d", f.reloads)
	}
	if got := f.toasts.last(t); got.Text != "Lezione prenotata!" || got.Tone != models.ToneSuccess {
		t.Fatalf("unexpected toast %+v", got)
	}
}

func TestAlternativeReusesRequestIDAndAdoptsNewSlot(t *testing.T) {
	first := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	second := time.Date(2024, 5, 2, 11, 0, 0, 0, time.UTC)
	f := newFixture(suggested("req-1", first), suggested("req-1", second))

	f.coord.SubmitRequest(context.Background(), validPrefs())
	f.coord.RequestAlternative(context.Background())

	alt := f.api.calls[1]
	if alt.RequestID != "req-1" {
		t.Fatalf("expected the alternative to echo the request id, got %q", alt.RequestID)
	}
	if alt.ExcludeStartsAt == nil || !alt.ExcludeStartsAt.Equal(first) {
		t.Fatalf("expected the rejected slot excluded, got %+v", alt.ExcludeStartsAt)
	}
	if alt.SelectedStartsAt != nil {
		t.Fatalf("expected no slot pinned on an alternative request")
	}
	if got := f.coord.Suggestion(); got == nil || !got.StartsAt.Equal(second) {
		t.Fatalf("expected the fresh slot adopted, got %+v", got)
	}
	if got := f.sheets.Active(); got != models.SheetSuggestion {
		t.Fatalf("expected the sheet to stay up, got %s", got)
	}
	if len(f.toasts.toasts) != 0 {
		t.Fatalf("expected no toast while the negotiation continues, got %v", f.toasts.toasts)
	}
}

func TestInvalidFormNeverReachesNetwork(t *testing.T) {
	f := newFixture()
	prefs := validPrefs()
	prefs.PreferredDate = "02/05/2024"

	f.coord.SubmitRequest(context.Background(), prefs)

	if len(f.api.calls) != 0 {
		t.Fatalf("expected the rejected form to stay local, got %d calls", len(f.api.calls))
	}
	if got := f.toasts.last(t).Text; got != "Controlla i dati inseriti" {
		t.Fatalf("unexpected toast %q", got)
	}
}

func TestDurationOutsideSchoolOptionsBlocked(t *testing.T) {
	f := newFixture()
	f.options = &models.BookingOptions{AllowedDurations: []int{45, 60}}
	prefs := validPrefs()
	prefs.DurationMinutes = 30

	f.coord.SubmitRequest(context.Background(), prefs)

	if len(f.api.calls) != 0 {
		t.Fatalf("expected no network call for a disallowed duration")
	}
	if got := f.toasts.last(t).Text; got != "Durata non consentita" {
		t.Fatalf("unexpected toast %q", got)
	}
}

func TestImmediateMatchClosesForm(t *testing.T) {
	f := newFixture(matched())
	f.sheets.Open(models.SheetPreferences)

	f.coord.SubmitRequest(context.Background(), validPrefs())

	if got := f.toasts.last(t); got.Text != "Lezione prenotata!" || got.Tone != models.ToneSuccess {
		t.Fatalf("unexpected toast %+v", got)
	}
	if got := f.sheets.Active(); got != models.SheetNone {
		t.Fatalf("expected the form closed, got %s", got)
	}
	if f.reloads != 1 {
		t.Fatalf("expected one agenda reload, got %d", f.reloads)
	}
	if f.coord.Active() {
		t.Fatalf("expected no negotiation after an immediate match")
	}
}

func TestEmptyWindowKeepsFormUp(t *testing.T) {
	f := newFixture(reply{out: &models.BookingOutcome{}})
	f.sheets.Open(models.SheetPreferences)

	f.coord.SubmitRequest(context.Background(), validPrefs())

	if got := f.toasts.last(t); got.Text != "Nessuna disponibilità nel periodo richiesto" || got.Tone != models.ToneInfo {
		t.Fatalf("unexpected toast %+v", got)
	}
	if got := f.sheets.Active(); got != models.SheetPreferences {
		t.Fatalf("expected the form to stay up for another try, got %s", got)
	}
	if f.coord.Active() {
		t.Fatalf("expected no negotiation without a suggestion")
	}
}

func TestTransportFailureKeepsNegotiationAlive(t *testing.T) {
	slot := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(suggested("req-1", slot), reply{err: errors.New("connection reset")})

	f.coord.SubmitRequest(context.Background(), validPrefs())
	f.coord.AcceptSuggestion(context.Background())

	if got := f.toasts.last(t); got.Text != "Errore di rete, riprova" || got.Tone != models.ToneDanger {
		t.Fatalf("unexpected toast %+v", got)
	}
	if !f.coord.Active() {
		t.Fatalf("expected the negotiation kept for a retry")
	}
	if got := f.coord.Suggestion(); got == nil || !got.StartsAt.Equal(slot) {
		t.Fatalf("expected the shown slot unchanged, got %+v", got)
	}
	if got := f.sheets.Active(); got != models.SheetSuggestion {
		t.Fatalf("expected the sheet to stay up, got %s", got)
	}
}

func TestLostSlotEndsNegotiationQuietly(t *testing.T) {
	slot := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(suggested("req-1", slot), reply{out: &models.BookingOutcome{Matched: false}})

	f.coord.SubmitRequest(context.Background(), validPrefs())
	f.coord.AcceptSuggestion(context.Background())

	if got := f.toasts.last(t); got.Text != "Slot non più disponibile" || got.Tone != models.ToneInfo {
		t.Fatalf("unexpected toast %+v", got)
	}
	if f.coord.Active() {
		t.Fatalf("expected the negotiation discarded after losing the slot")
	}
	if got := f.sheets.Active(); got != models.SheetNone {
		t.Fatalf("expected the sheet dismissed, got %s", got)
	}
	if f.reloads != 0 {
		t.Fatalf("expected no reload when nothing was booked, got %d", f.reloads)
	}
}

func TestExhaustedWindowDropsSheet(t *testing.T) {
	slot := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(suggested("req-1", slot), reply{out: &models.BookingOutcome{}})

	f.coord.SubmitRequest(context.Background(), validPrefs())
	f.coord.RequestAlternative(context.Background())

	if got := f.toasts.last(t); got.Text != "Nessuna altra disponibilità" || got.Tone != models.ToneInfo {
		t.Fatalf("unexpected toast %+v", got)
	}
	if f.coord.Active() {
		t.Fatalf("expected the negotiation discarded on exhaustion")
	}
	if got := f.sheets.Active(); got != models.SheetNone {
		t.Fatalf("expected the sheet dismissed, got %s", got)
	}
}

func TestRejectDiscardsLocally(t *testing.T) {
	slot := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(suggested("req-1", slot))

	f.coord.SubmitRequest(context.Background(), validPrefs())
	f.coord.RejectSuggestion()

	if len(f.api.calls) != 1 {
		t.Fatalf("expected no network call on reject, got %d", len(f.api.calls))
	}
	if f.coord.Active() {
		t.Fatalf("expected the negotiation discarded")
	}
	if got := f.sheets.Active(); got != models.SheetNone {
		t.Fatalf("expected the sheet dismissed, got %s", got)
	}
}

func TestUnsetSearchWindowFallsBackToDefault(t *testing.T) {
	f := newFixture(matched())

	f.coord.SubmitRequest(context.Background(), validPrefs())

	if got := f.api.calls[0].MaxDays; got != 14 {
		t.Fatalf("expected the default search window, got %d", got)
	}
}

func TestAcceptWithoutNegotiationIsNoop(t *testing.T) {
	f := newFixture()

	f.coord.AcceptSuggestion(context.Background())

	if len(f.api.calls) != 0 || len(f.toasts.toasts) != 0 {
		t.Fatalf("expected nothing to happen without a negotiation")
	}
}
