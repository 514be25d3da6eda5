package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"scuolaguida/app"
	"scuolaguida/config"
	"scuolaguida/models"
	"scuolaguida/storage/sqlite"
)

// Manual smoke driver: stands up a fake backend with one autoscuola, one
// student, a pending instructor proposal and a live waitlist offer, then
// drives the app through sign-in, agenda load, proposal, waitlist, a full
// booking negotiation, push intents and sign-out. Run with `go run ./tests`.

type backend struct {
	mu sync.Mutex

	bookingCalls int
	proposal     *models.Appointment
	booked       []models.Appointment
	offer        *models.WaitlistOffer
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("[backend] encode failed: %v", err)
		}
	}

	companies := []models.Company{{ID: "aut-1", Name: "Autoscuola Colombo", AutoscuolaRole: models.RoleStudent}}
	payload := func(active string) models.SessionPayload {
		return models.SessionPayload{
			User:            &models.User{ID: "usr-1", FirstName: "Giulia", LastName: "Ferri", Email: "giulia@example.it"},
			Companies:       companies,
			ActiveCompanyID: active,
		}
	}

	mux.HandleFunc("POST /v1/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.AuthPayload{Token: "tok-driver", SessionPayload: payload("")})
	})
	mux.HandleFunc("POST /v1/me/company", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			CompanyID string `json:"companyId"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, map[string]string{"activeCompanyId": in.CompanyID})
	})
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, payload("aut-1"))
	})
	mux.HandleFunc("POST /v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /v1/push/tokens", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /v1/push/tokens/unregister", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /v1/students/{id}/appointments", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		appts := append([]models.Appointment(nil), b.booked...)
		if b.proposal != nil {
			appts = append(appts, *b.proposal)
		}
		writeJSON(w, appts)
	})
	mux.HandleFunc("GET /v1/school/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.SchoolSettings{
			CompanyID:               "aut-1",
			StudentBookingEnabled:   true,
			CancellationNoticeHours: 24,
			OpeningHour:             8,
			ClosingHour:             19,
		})
	})
	mux.HandleFunc("GET /v1/school/booking-options", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.BookingOptions{AllowedDurations: []int{30, 60, 90}, MaxAdvanceDays: 30})
	})
	mux.HandleFunc("GET /v1/students/{id}/payments/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.PaymentProfile{
			StudentID: r.PathValue("id"), PackageName: "Pacchetto B",
			LessonsIncluded: 20, LessonsUsed: 7, BalanceDue: 150, Currency: "EUR",
		})
	})
	mux.HandleFunc("GET /v1/students/{id}/payments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.PaymentRecord{{
			ID: "pay-1", StudentID: r.PathValue("id"), Amount: 350,
			Currency: "EUR", Method: "card", PaidAt: time.Now().AddDate(0, 0, -20),
		}})
	})

	mux.HandleFunc("GET /v1/students/{id}/waitlist/offer", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, map[string]*models.WaitlistOffer{"offer": b.offer})
	})
	mux.HandleFunc("POST /v1/waitlist/offers/{id}/respond", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.offer = nil
		b.mu.Unlock()
		// The freed slot always goes to somebody faster in this simulation.
		writeJSON(w, models.WaitlistOutcome{
			Accepted: false,
			Response: &models.OfferResponse{OfferID: r.PathValue("id"), Status: "declined"},
		})
	})

	mux.HandleFunc("POST /v1/booking/requests", func(w http.ResponseWriter, r *http.Request) {
		var in models.BookingRequestInput
		json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.bookingCalls++

		slot := time.Now().AddDate(0, 0, 2).Truncate(time.Hour)
		switch {
		case in.RequestID == "":
			writeJSON(w, models.BookingOutcome{
				Matched:    false,
				Request:    &models.BookingRequest{ID: "req-1", StudentID: in.StudentID, Status: models.RequestPending},
				Suggestion: &models.Suggestion{StartsAt: slot, EndsAt: slot.Add(time.Duration(in.DurationMinutes) * time.Minute)},
			})
		case in.SelectedStartsAt != nil:
			appt := models.Appointment{
				ID: "appt-new", StudentID: in.StudentID,
				StartsAt: *in.SelectedStartsAt, Status: models.AppointmentScheduled,
			}
			b.booked = append(b.booked, appt)
			writeJSON(w, models.BookingOutcome{
				Matched:     true,
				Appointment: &appt,
				Request:     &models.BookingRequest{ID: in.RequestID, Status: models.RequestMatched},
			})
		default:
			// alternative requested: nothing else in the window
			writeJSON(w, models.BookingOutcome{
				Matched: false,
				Request: &models.BookingRequest{ID: in.RequestID, Status: models.RequestPending},
			})
		}
	})

	mux.HandleFunc("PUT /v1/appointments/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.proposal == nil || b.proposal.ID != r.PathValue("id") {
			w.WriteHeader(http.StatusConflict)
			writeJSON(w, map[string]string{"error": "appointment no longer pending"})
			return
		}
		b.proposal.Status = models.AppointmentScheduled
		b.booked = append(b.booked, *b.proposal)
		appt := *b.proposal
		b.proposal = nil
		writeJSON(w, appt)
	})
	mux.HandleFunc("POST /v1/appointments/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		if b.proposal != nil && b.proposal.ID == r.PathValue("id") {
			b.proposal = nil
		}
		b.mu.Unlock()
		writeJSON(w, models.CancelOutcome{Rescheduled: false, Broadcasted: true})
	})

	return mux
}

type noLaunch struct{}

func (noLaunch) TakeLaunchNotification(ctx context.Context) (*models.Notification, error) {
	return nil, nil
}

func main() {
	be := &backend{
		proposal: &models.Appointment{
			ID: "appt-p1", StudentID: "stu-1", InstructorID: "ins-1",
			StartsAt: time.Now().AddDate(0, 0, 3), Status: models.AppointmentProposal,
		},
		booked: []models.Appointment{{
			ID: "appt-s1", StudentID: "stu-1", InstructorID: "ins-1",
			StartsAt: time.Now().AddDate(0, 0, 1), Status: models.AppointmentScheduled,
		}},
		offer: &models.WaitlistOffer{
			ID: "off-1", StudentID: "stu-1",
			Slot:      models.TimeSlot{StartsAt: time.Now().AddDate(0, 0, 1), EndsAt: time.Now().AddDate(0, 0, 1).Add(time.Hour)},
			ExpiresAt: time.Now().Add(2 * time.Hour),
		},
	}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	config.LoadConfig()
	config.AppConfig.APIBaseURL = srv.URL

	dir, err := os.MkdirTemp("", "scuolaguida-driver")
	if err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := sqlite.New(dir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	a := app.New(store, app.Options{
		Toasts:    func(t models.Toast) { log.Printf("[toast/%s] %s", t.Tone, t.Text) },
		PushToken: func() string { return "push-driver-token" },
		Launcher:  noLaunch{},
		Platform:  "ios",
	})
	ctx := context.Background()

	log.Printf("[driver] cold start")
	a.Start(ctx)
	mustStatus(a, models.SessionUnauthenticated)

	log.Printf("[driver] signing in")
	a.Session.SignIn(ctx, "giulia@example.it", "password123")
	mustStatus(a, models.SessionReady)

	window := models.DateWindow{From: time.Now(), To: time.Now().AddDate(0, 0, 14)}
	log.Printf("[driver] loading agenda for stu-1")
	a.LoadAgenda(ctx, "stu-1", window)
	mustSheet(a, models.SheetProposal) // the offer queues behind the proposal

	log.Printf("[driver] accepting instructor proposal")
	a.Proposal.Accept(ctx)
	mustSheet(a, models.SheetWaitlist) // queued offer promoted once proposal closed

	log.Printf("[driver] accepting waitlist offer (somebody else wins)")
	a.Waitlist.Accept(ctx)
	mustSheet(a, models.SheetNone)

	log.Printf("[driver] opening preferences and submitting a request")
	a.Sheets.Open(models.SheetPreferences)
	a.Booking.SubmitRequest(ctx, models.BookingPreferences{
		StudentID:       "stu-1",
		PreferredDate:   time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
		DurationMinutes: 60,
	})
	mustSheet(a, models.SheetSuggestion)
	if s := a.Booking.Suggestion(); s != nil {
		log.Printf("[driver] suggestion on screen: %s", s.StartsAt.Format(time.RFC3339))
	}

	log.Printf("[driver] accepting the suggestion")
	a.Booking.AcceptSuggestion(ctx)
	mustSheet(a, models.SheetNone)
	if a.Booking.Active() {
		log.Fatalf("Negotiation should be discarded after accept")
	}

	log.Printf("[driver] foreground cancellation push")
	a.HandleNotification(ctx, models.Notification{Data: map[string]string{"type": "appointment_cancelled"}})

	log.Printf("[driver] new proposal arrives; student taps the notification")
	be.mu.Lock()
	be.proposal = &models.Appointment{
		ID: "appt-p2", StudentID: "stu-1", InstructorID: "ins-1",
		StartsAt: time.Now().AddDate(0, 0, 5), Status: models.AppointmentProposal,
	}
	be.mu.Unlock()
	a.NotificationTapped(models.Notification{Data: map[string]string{"type": "appointment_proposal"}})
	a.OnForeground(ctx)
	mustSheet(a, models.SheetProposal)

	log.Printf("[driver] declining the proposal")
	a.Proposal.Decline(ctx)
	mustSheet(a, models.SheetNone)

	log.Printf("[driver] signing out")
	a.Session.SignOut(ctx)
	mustStatus(a, models.SessionUnauthenticated)
	if token, _ := store.Token(); token != "" {
		log.Fatalf("Token should be cleared after sign-out")
	}

	be.mu.Lock()
	calls := be.bookingCalls
	be.mu.Unlock()
	fmt.Printf("driver completed: all checkpoints passed (%d booking calls)\n", calls)
}

func mustStatus(a *app.App, want models.SessionStatus) {
	if got := a.Session.Session().Status; got != want {
		log.Fatalf("Session status = %q, want %q", got, want)
	}
	log.Printf("[driver] session status: %s", want)
}

func mustSheet(a *app.App, want models.Sheet) {
	if got := a.Sheets.Active(); got != want {
		log.Fatalf("Active sheet = %q, want %q", got, want)
	}
	log.Printf("[driver] active sheet: %s", want)
}
