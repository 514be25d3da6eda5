// File: scuolaguida/services/loader/loader.go
package loader

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"scuolaguida/models"
	"scuolaguida/utils"
)

// AgendaAPI is the slice of the backend one load reads.
type AgendaAPI interface {
	Appointments(ctx context.Context, studentID string, window models.DateWindow) ([]models.Appointment, error)
	SchoolSettings(ctx context.Context) (*models.SchoolSettings, error)
	PaymentProfile(ctx context.Context, studentID string) (*models.PaymentProfile, error)
	PaymentHistory(ctx context.Context, studentID string) ([]models.PaymentRecord, error)
	BookingOptions(ctx context.Context) (*models.BookingOptions, error)
}

// Request identifies one load: whose agenda, over which date window.
type Request struct {
	SubjectID string
	Window    models.DateWindow
}

// Loader is the one "load current state" operation every screen coordinator
// shares. Each call is stamped with a generation; a result is applied only
// while no newer call has been issued. Last issued wins, not whichever
// response happens to arrive last.
type Loader struct {
	API    AgendaAPI
	Toasts models.ToastSink

	mu            sync.Mutex
	generation    uint64
	lastRequest   *Request
	snapshot      models.Agenda
	hasSnapshot   bool
	appliedWindow string
	loading       bool
	windowLoading bool
	onApplied     []func(models.Agenda)
}

// Load fetches the subject's agenda. Blocks until the result is applied or
// discarded; callers that need it off the UI path run it in the shell's
// task runner.
func (l *Loader) Load(ctx context.Context, req Request) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	reqCopy := req
	l.lastRequest = &reqCopy
	l.loading = true
	// The window indicator only moves when the requested range actually
	// changed; a same-window re-fetch must not flicker the screen.
	if req.Window.Key() != l.appliedWindow {
		l.windowLoading = true
	}
	l.mu.Unlock()

	logger := utils.GetLogger()
	logger.Debug("loader: issuing load",
		zap.Uint64("generation", gen),
		zap.String("subject", req.SubjectID),
		zap.String("window", req.Window.Key()))

	var (
		wg sync.WaitGroup

		appts    []models.Appointment
		settings *models.SchoolSettings
		profile  *models.PaymentProfile
		history  []models.PaymentRecord

		apptsErr, settingsErr, profileErr, historyErr error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		appts, apptsErr = l.API.Appointments(ctx, req.SubjectID, req.Window)
	}()
	go func() {
		defer wg.Done()
		settings, settingsErr = l.API.SchoolSettings(ctx)
	}()
	go func() {
		defer wg.Done()
		profile, profileErr = l.API.PaymentProfile(ctx, req.SubjectID)
	}()
	go func() {
		defer wg.Done()
		history, historyErr = l.API.PaymentHistory(ctx, req.SubjectID)
	}()
	wg.Wait()

	if l.isStale(gen) {
		logger.Debug("loader: discarding stale load", zap.Uint64("generation", gen))
		return
	}

	if err := firstErr(apptsErr, settingsErr, profileErr, historyErr); err != nil {
		l.finishFailed(gen)
		logger.Warn("loader: load failed", zap.Error(err), zap.String("subject", req.SubjectID))
		l.toast(models.DangerToast("Impossibile aggiornare i dati, riprova"))
		return
	}

	// Booking options depend on school policy, so the dependent call goes
	// out only after the batch resolved, and only while this load is still
	// the newest one.
	var options *models.BookingOptions
	if settings != nil && settings.StudentBookingEnabled {
		opts, err := l.API.BookingOptions(ctx)
		if l.isStale(gen) {
			logger.Debug("loader: discarding stale load after dependent fetch", zap.Uint64("generation", gen))
			return
		}
		if err != nil {
			l.finishFailed(gen)
			logger.Warn("loader: booking options fetch failed", zap.Error(err))
			l.toast(models.DangerToast("Impossibile aggiornare i dati, riprova"))
			return
		}
		options = opts
	}

	agenda := models.Agenda{
		SubjectID:      req.SubjectID,
		Window:         req.Window,
		Appointments:   appts,
		Settings:       settings,
		PaymentProfile: profile,
		Payments:       history,
		BookingOptions: options,
	}

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		logger.Debug("loader: discarding stale load at apply", zap.Uint64("generation", gen))
		return
	}
	l.snapshot = agenda
	l.hasSnapshot = true
	l.appliedWindow = req.Window.Key()
	l.loading = false
	l.windowLoading = false
	fns := make([]func(models.Agenda), len(l.onApplied))
	copy(fns, l.onApplied)
	l.mu.Unlock()

	logger.Debug("loader: applied load",
		zap.Uint64("generation", gen),
		zap.Int("appointments", len(agenda.Appointments)))
	for _, fn := range fns {
		fn(agenda)
	}
}

// Reload re-issues the most recently requested load, if there was one. Push
// reactions and post-mutation refreshes come through here.
func (l *Loader) Reload(ctx context.Context) {
	l.mu.Lock()
	req := l.lastRequest
	l.mu.Unlock()
	if req == nil {
		utils.GetLogger().Debug("loader: reload requested before any load")
		return
	}
	l.Load(ctx, *req)
}

// Snapshot returns the last applied agenda.
func (l *Loader) Snapshot() (models.Agenda, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot, l.hasSnapshot
}

// LastRequest returns the most recently issued request, applied or not.
func (l *Loader) LastRequest() (Request, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastRequest == nil {
		return Request{}, false
	}
	return *l.lastRequest, true
}

// Loading reports whether any load is in flight.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// WindowLoading reports whether the in-flight load targets a window other
// than the one on screen.
func (l *Loader) WindowLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.windowLoading
}

// OnApplied registers an observer of applied agendas. Observers run after
// the snapshot is swapped, outside the loader's lock.
func (l *Loader) OnApplied(fn func(models.Agenda)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onApplied = append(l.onApplied, fn)
}

// isStale reports whether a newer load was issued since gen.
func (l *Loader) isStale(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen != l.generation
}

// finishFailed clears the progress flags, but only while this load is still
// the current one.
func (l *Loader) finishFailed(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		return
	}
	l.loading = false
	l.windowLoading = false
}

func (l *Loader) toast(t models.Toast) {
	if l.Toasts != nil {
		l.Toasts(t)
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
