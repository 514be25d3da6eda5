package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"

	"scuolaguida/config"
	"scuolaguida/models"
	"scuolaguida/storage"
)

// fakeBackend is just enough of the scheduling backend for the composition
// flows: one student, one school, mutable appointment and offer state.
type fakeBackend struct {
	mu           sync.Mutex
	appointments []models.Appointment
	offer        *models.WaitlistOffer
	durations    []int

	agendaHits  int
	bookingHits int
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.SessionPayload{
			User:            &models.User{ID: "usr-1", FirstName: "Giulia"},
			Companies:       []models.Company{{ID: "c1", Name: "Autoscuola Prova", AutoscuolaRole: models.RoleStudent}},
			ActiveCompanyID: "c1",
		})
	})
	mux.HandleFunc("GET /v1/students/{id}/appointments", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.agendaHits++
		appts := append([]models.Appointment(nil), b.appointments...)
		b.mu.Unlock()
		json.NewEncoder(w).Encode(appts)
	})
	mux.HandleFunc("GET /v1/school/settings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.SchoolSettings{CompanyID: "c1", StudentBookingEnabled: true})
	})
	mux.HandleFunc("GET /v1/school/booking-options", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		durations := append([]int(nil), b.durations...)
		b.mu.Unlock()
		json.NewEncoder(w).Encode(models.BookingOptions{AllowedDurations: durations})
	})
	mux.HandleFunc("GET /v1/students/{id}/payments/profile", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.PaymentProfile{StudentID: r.PathValue("id"), Currency: "EUR"})
	})
	mux.HandleFunc("GET /v1/students/{id}/payments", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.PaymentRecord{})
	})
	mux.HandleFunc("GET /v1/students/{id}/waitlist/offer", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		offer := b.offer
		b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]*models.WaitlistOffer{"offer": offer})
	})
	mux.HandleFunc("POST /v1/booking/requests", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.bookingHits++
		b.mu.Unlock()
		json.NewEncoder(w).Encode(models.BookingOutcome{Matched: true})
	})
	return mux
}

func (b *fakeBackend) setOffer(offer *models.WaitlistOffer) {
	b.mu.Lock()
	b.offer = offer
	b.mu.Unlock()
}

func (b *fakeBackend) setAppointments(appts ...models.Appointment) {
	b.mu.Lock()
	b.appointments = appts
	b.mu.Unlock()
}

type toastRecorder struct {
	mu     sync.Mutex
	toasts []models.Toast
}

func (r *toastRecorder) sink(t models.Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

func (r *toastRecorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.toasts))
	for i, t := range r.toasts {
		out[i] = t.Text
	}
	return out
}

func freshToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "usr-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func notification(kind models.PushIntent) models.Notification {
	return models.Notification{Title: "Scuola Guida", Data: map[string]string{"type": string(kind)}}
}

func testWindow() models.DateWindow {
	return models.DateWindow{
		From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
	}
}

func newTestApp(t *testing.T) (*App, *fakeBackend, *toastRecorder) {
	t.Helper()
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	config.AppConfig = config.Config{
		APIBaseURL:        srv.URL,
		APITimeoutSeconds: 5,
		MaxRequestsPerMin: 600,
		BookingSearchDays: 14,
	}

	store := storage.NewMemory()
	store.SetToken(freshToken(t))
	store.SetActiveCompanyID("c1")

	toasts := &toastRecorder{}
	a := New(store, Options{Toasts: toasts.sink})
	a.Start(context.Background())
	if got := a.Session.Session().Status; got != models.SessionReady {
		t.Fatalf("expected a ready session, got %s", got)
	}
	return a, backend, toasts
}

func TestLoadAgendaFillsSnapshotAndRemembersStudent(t *testing.T) {
	a, backend, _ := newTestApp(t)
	backend.setAppointments(models.Appointment{ID: "appt-s1", StudentID: "stu-1", Status: models.AppointmentScheduled})

	a.LoadAgenda(context.Background(), "stu-1", testWindow())

	snap, ok := a.Loader.Snapshot()
	if !ok || len(snap.Appointments) != 1 || snap.SubjectID != "stu-1" {
		t.Fatalf("unexpected snapshot %+v (ok=%v)", snap, ok)
	}
	if snap.BookingOptions == nil {
		t.Fatalf("expected booking options fetched for a booking-enabled school")
	}
	if got, _ := a.Store.LastStudentID(); got != "stu-1" {
		t.Fatalf("expected the student remembered, got %q", got)
	}
}

func TestSlotOfferPushRefreshesRememberedStudent(t *testing.T) {
	a, backend, _ := newTestApp(t)
	a.LoadAgenda(context.Background(), "stu-1", testWindow())
	if got := a.Waitlist.Offer(); got != nil {
		t.Fatalf("expected no offer before the push, got %+v", got)
	}

	backend.setOffer(&models.WaitlistOffer{
		ID:        "off-1",
		StudentID: "stu-1",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	a.HandleNotification(context.Background(), notification(models.IntentSlotFillOffer))

	if got := a.Waitlist.Offer(); got == nil || got.ID != "off-1" {
		t.Fatalf("expected the offer fetched on the push, got %+v", got)
	}
	if got := a.Sheets.Active(); got != models.SheetWaitlist {
		t.Fatalf("expected the offer sheet up, got %s", got)
	}
}

func TestCancellationPushToastsAndReloads(t *testing.T) {
	a, backend, toasts := newTestApp(t)
	a.LoadAgenda(context.Background(), "stu-1", testWindow())
	backend.mu.Lock()
	before := backend.agendaHits
	backend.mu.Unlock()

	a.HandleNotification(context.Background(), notification(models.IntentAppointmentCancelled))

	var found bool
	for _, text := range toasts.texts() {
		if text == "Una lezione è stata annullata" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the cancellation toast, got %v", toasts.texts())
	}
	backend.mu.Lock()
	after := backend.agendaHits
	backend.mu.Unlock()
	if after != before+1 {
		t.Fatalf("expected one reload after the push, got %d extra", after-before)
	}
}

func TestTappedProposalOpensOnNextForeground(t *testing.T) {
	a, backend, _ := newTestApp(t)
	a.LoadAgenda(context.Background(), "stu-1", testWindow())
	if got := a.Sheets.Active(); got != models.SheetNone {
		t.Fatalf("expected no sheet before the tap, got %s", got)
	}

	backend.setAppointments(models.Appointment{
		ID:        "appt-p1",
		StudentID: "stu-1",
		StartsAt:  time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC),
		Status:    models.AppointmentProposal,
	})
	a.NotificationTapped(notification(models.IntentAppointmentProposal))
	a.OnForeground(context.Background())

	if got := a.Sheets.Active(); got != models.SheetProposal {
		t.Fatalf("expected the tapped proposal shown, got %s", got)
	}
	if got := a.Proposal.Pending(); got == nil || got.ID != "appt-p1" {
		t.Fatalf("expected the proposal pending, got %+v", got)
	}
}

func TestAppliedLoadDrivesProposalSync(t *testing.T) {
	a, backend, _ := newTestApp(t)
	backend.setAppointments(models.Appointment{
		ID:        "appt-p1",
		StudentID: "stu-1",
		StartsAt:  time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC),
		Status:    models.AppointmentProposal,
	})

	a.LoadAgenda(context.Background(), "stu-1", testWindow())

	if got := a.Sheets.Active(); got != models.SheetProposal {
		t.Fatalf("expected the loaded proposal surfaced, got %s", got)
	}
}

func TestSchoolOptionsGateTheBookingForm(t *testing.T) {
	a, backend, toasts := newTestApp(t)
	backend.mu.Lock()
	backend.durations = []int{45, 60}
	backend.mu.Unlock()
	a.LoadAgenda(context.Background(), "stu-1", testWindow())

	a.Booking.SubmitRequest(context.Background(), models.BookingPreferences{
		StudentID:       "stu-1",
		PreferredDate:   "2024-05-02",
		DurationMinutes: 30,
	})

	var found bool
	for _, text := range toasts.texts() {
		if text == "Durata non consentita" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the duration rejected, got %v", toasts.texts())
	}
	backend.mu.Lock()
	hits := backend.bookingHits
	backend.mu.Unlock()
	if hits != 0 {
		t.Fatalf("expected no booking call, got %d", hits)
	}
}
