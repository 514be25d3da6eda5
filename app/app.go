package app

import (
	"context"
	"time"

	"scuolaguida/api"
	"scuolaguida/config"
	"scuolaguida/models"
	"scuolaguida/services/booking"
	"scuolaguida/services/loader"
	"scuolaguida/services/proposal"
	"scuolaguida/services/push"
	"scuolaguida/services/session"
	"scuolaguida/services/sheet"
	"scuolaguida/services/waitlist"
	"scuolaguida/storage"
)

// Options carries the pieces only the platform shell can provide.
type Options struct {
	// Toasts receives every user-facing outcome message.
	Toasts models.ToastSink

	// PushToken returns the install's current push token, "" when the shell
	// has none (simulator, permission denied).
	PushToken func() string

	// Launcher exposes the OS's "which notification launched us" query.
	Launcher push.LaunchSource

	// Platform names the OS for push token registration, e.g. "ios".
	Platform string
}

// App is the composition root: one api client, one store, one sheet arbiter,
// and every coordinator wired to them. The platform shell owns exactly one.
type App struct {
	Store  storage.Store
	Client *api.Client
	Sheets sheet.Arbiter

	Session  session.Coordinator
	Loader   *loader.Loader
	Booking  booking.Coordinator
	Waitlist waitlist.Coordinator
	Proposal proposal.Coordinator
	Push     *push.Bridge
}

// New composes the app. Configuration must be loaded before calling this;
// the shell decides when (and whether) to read config files.
func New(store storage.Store, opts Options) *App {
	cfg := config.AppConfig

	client := api.New(cfg.APIBaseURL, time.Duration(cfg.APITimeoutSeconds)*time.Second, cfg.MaxRequestsPerMin)
	sheets := sheet.NewArbiter()
	bridge := push.NewBridge(store, opts.Launcher)

	ld := &loader.Loader{API: client, Toasts: opts.Toasts}

	sess := session.NewDefaultCoordinator(client, store, opts.Toasts)
	sess.PushToken = opts.PushToken
	sess.Platform = opts.Platform

	bookingOptions := func() *models.BookingOptions {
		snap, ok := ld.Snapshot()
		if !ok {
			return nil
		}
		return snap.BookingOptions
	}

	bk := booking.NewDefaultCoordinator(client, opts.Toasts, sheets, ld.Reload, bookingOptions, cfg.BookingSearchDays)
	wl := waitlist.NewDefaultCoordinator(client, opts.Toasts, sheets, ld.Reload)
	prop := proposal.NewDefaultCoordinator(client, opts.Toasts, sheets, ld.Reload)

	// Every applied load re-derives the pending proposal from agenda data.
	ld.OnApplied(func(agenda models.Agenda) {
		prop.SyncFromAgenda(&agenda)
	})

	a := &App{
		Store:    store,
		Client:   client,
		Sheets:   sheets,
		Session:  sess,
		Loader:   ld,
		Booking:  bk,
		Waitlist: wl,
		Proposal: prop,
		Push:     bridge,
	}

	bridge.React(models.IntentSlotFillOffer, func(ctx context.Context) {
		if id := a.subjectID(); id != "" {
			wl.Refresh(ctx, id)
		}
	})
	bridge.React(models.IntentAppointmentCancelled, func(ctx context.Context) {
		if opts.Toasts != nil {
			opts.Toasts(models.InfoToast("Una lezione è stata annullata"))
		}
		ld.Reload(ctx)
	})
	bridge.React(models.IntentAppointmentProposal, func(ctx context.Context) {
		prop.Surface()
		ld.Reload(ctx)
	})

	return a
}

// Start restores the session and then resolves any push intent that launched
// the app, in that order: reactions assume an authenticated client.
func (a *App) Start(ctx context.Context) {
	a.Session.Bootstrap(ctx)
	a.Push.ConsumePendingOrLaunch(ctx)
}

// OnForeground runs when the app returns to the foreground: consume a tapped
// notification if one is pending, then refresh whatever was on screen.
func (a *App) OnForeground(ctx context.Context) {
	a.Push.ConsumePendingOrLaunch(ctx)
	a.Loader.Reload(ctx)
}

// HandleNotification dispatches a push received while the app is running.
func (a *App) HandleNotification(ctx context.Context, n models.Notification) {
	a.Push.HandleForeground(ctx, n)
}

// NotificationTapped records a tap on a background notification for the next
// foreground resolution.
func (a *App) NotificationTapped(n models.Notification) {
	a.Push.RecordTapped(n)
}

// LoadAgenda loads a student's agenda and picks up any open waitlist offer
// for them. The student becomes the remembered subject for push reactions.
func (a *App) LoadAgenda(ctx context.Context, studentID string, window models.DateWindow) {
	a.Session.SelectStudent(studentID)
	a.Loader.Load(ctx, loader.Request{SubjectID: studentID, Window: window})
	a.Waitlist.Refresh(ctx, studentID)
}

// subjectID resolves whose data a push reaction should refresh: the agenda
// currently loaded, falling back to the last student worked with.
func (a *App) subjectID() string {
	if req, ok := a.Loader.LastRequest(); ok {
		return req.SubjectID
	}
	id, err := a.Store.LastStudentID()
	if err != nil || id == "" {
		return ""
	}
	return id
}
