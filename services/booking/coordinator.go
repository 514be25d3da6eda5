// File: scuolaguida/services/booking/coordinator.go
package booking

import (
	"context"

	"go.uber.org/zap"

	"scuolaguida/models"
	"scuolaguida/utils"
)

// SubmitRequest opens a new negotiation from the preferences form. A matched
// outcome books the lesson outright; an unmatched one with a suggestion
// surfaces the suggestion sheet; an unmatched one without any means the
// search window holds nothing and the form stays up for another try.
func (c *DefaultCoordinator) SubmitRequest(ctx context.Context, prefs models.BookingPreferences) {
	if !c.begin() {
		return
	}
	defer c.end()

	logger := utils.GetLogger()

	if prefs.MaxDays == 0 {
		prefs.MaxDays = c.DefaultMaxDays
	}
	if err := utils.Validate().Struct(prefs); err != nil {
		logger.Warn("booking: preferences failed validation", zap.Error(err))
		c.toast(models.DangerToast("Controlla i dati inseriti"))
		return
	}
	if opts := c.options(); opts != nil && !opts.AllowsDuration(prefs.DurationMinutes) {
		logger.Warn("booking: duration not offered by school", zap.Int("minutes", prefs.DurationMinutes))
		c.toast(models.DangerToast("Durata non consentita"))
		return
	}

	input := models.BookingRequestInput{
		StudentID:       prefs.StudentID,
		PreferredDate:   prefs.PreferredDate,
		DurationMinutes: prefs.DurationMinutes,
		LessonType:      prefs.LessonType,
		InstructorID:    prefs.InstructorID,
		VehicleID:       prefs.VehicleID,
		MaxDays:         prefs.MaxDays,
	}
	out, err := c.API.CreateBookingRequest(ctx, input)
	if err != nil {
		logger.Warn("booking: submit failed", zap.Error(err))
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}

	if out.Matched {
		logger.Info("booking: request matched immediately", zap.String("studentId", prefs.StudentID))
		c.setNegotiation(nil)
		c.toast(models.SuccessToast("Lezione prenotata!"))
		c.Sheets.Close(models.SheetPreferences)
		c.reload(ctx)
		return
	}

	if out.Suggestion == nil {
		logger.Info("booking: no availability in window", zap.String("preferredDate", prefs.PreferredDate))
		c.setNegotiation(nil)
		c.toast(models.InfoToast("Nessuna disponibilità nel periodo richiesto"))
		return
	}

	neg, err := newNegotiation(input, out)
	if err != nil {
		logger.Error("booking: unusable suggestion outcome", zap.Error(err))
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}
	logger.Info("booking: suggestion received",
		zap.String("requestId", neg.RequestID()),
		zap.Time("startsAt", neg.Suggestion().StartsAt))
	c.setNegotiation(neg)

	// Queue the suggestion first, then close the form: the arbiter promotes
	// the queued sheet the moment the form goes away.
	c.Sheets.RequestAuto(models.SheetSuggestion)
	c.Sheets.Close(models.SheetPreferences)
}

// AcceptSuggestion books the shown slot. Losing the slot to someone else is
// an ordinary outcome and ends the negotiation; only a transport failure
// keeps it alive.
func (c *DefaultCoordinator) AcceptSuggestion(ctx context.Context) {
	if !c.begin() {
		return
	}
	defer c.end()

	neg := c.current()
	if neg == nil {
		utils.GetLogger().Debug("booking: accept with no negotiation, ignoring")
		return
	}

	out, err := neg.Accept(ctx, c.API)
	if err != nil {
		utils.GetLogger().Warn("booking: accept failed", zap.String("requestId", neg.RequestID()), zap.Error(err))
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}

	c.setNegotiation(nil)
	c.Sheets.Close(models.SheetSuggestion)

	if !out.Matched {
		utils.GetLogger().Info("booking: slot lost to another booking", zap.String("requestId", neg.RequestID()))
		c.toast(models.InfoToast("Slot non più disponibile"))
		return
	}
	utils.GetLogger().Info("booking: suggestion accepted", zap.String("requestId", neg.RequestID()))
	c.toast(models.SuccessToast("Lezione prenotata!"))
	c.reload(ctx)
}

// RequestAlternative asks for the next candidate. The sheet stays up when a
// new suggestion arrives and comes down on exhaustion.
func (c *DefaultCoordinator) RequestAlternative(ctx context.Context) {
	if !c.begin() {
		return
	}
	defer c.end()

	neg := c.current()
	if neg == nil {
		utils.GetLogger().Debug("booking: alternative with no negotiation, ignoring")
		return
	}

	out, err := neg.RequestAlternative(ctx, c.API)
	if err != nil {
		utils.GetLogger().Warn("booking: alternative failed", zap.String("requestId", neg.RequestID()), zap.Error(err))
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}

	switch {
	case out.Matched:
		utils.GetLogger().Info("booking: alternative matched", zap.String("requestId", neg.RequestID()))
		c.setNegotiation(nil)
		c.Sheets.Close(models.SheetSuggestion)
		c.toast(models.SuccessToast("Lezione prenotata!"))
		c.reload(ctx)
	case out.Suggestion != nil:
		utils.GetLogger().Info("booking: new suggestion received",
			zap.String("requestId", neg.RequestID()),
			zap.Time("startsAt", neg.Suggestion().StartsAt))
	default:
		utils.GetLogger().Info("booking: window exhausted", zap.String("requestId", neg.RequestID()))
		c.setNegotiation(nil)
		c.Sheets.Close(models.SheetSuggestion)
		c.toast(models.InfoToast("Nessuna altra disponibilità"))
	}
}

// RejectSuggestion drops the negotiation without telling the backend; the
// open request expires server-side.
func (c *DefaultCoordinator) RejectSuggestion() {
	c.mu.Lock()
	neg := c.negotiation
	c.negotiation = nil
	c.mu.Unlock()

	if neg != nil {
		utils.GetLogger().Info("booking: suggestion rejected", zap.String("requestId", neg.RequestID()))
	}
	c.Sheets.Close(models.SheetSuggestion)
}

// Suggestion returns a copy of the slot on offer, nil when none.
func (c *DefaultCoordinator) Suggestion() *models.Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.negotiation == nil {
		return nil
	}
	s := c.negotiation.Suggestion()
	return &s
}

// Active reports whether a negotiation is in progress.
func (c *DefaultCoordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negotiation != nil
}

func (c *DefaultCoordinator) current() *Negotiation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negotiation
}

func (c *DefaultCoordinator) setNegotiation(n *Negotiation) {
	c.mu.Lock()
	c.negotiation = n
	c.mu.Unlock()
}

func (c *DefaultCoordinator) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		utils.GetLogger().Debug("booking: action already in flight, ignoring")
		return false
	}
	c.busy = true
	return true
}

func (c *DefaultCoordinator) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *DefaultCoordinator) toast(t models.Toast) {
	if c.Toasts != nil {
		c.Toasts(t)
	}
}

func (c *DefaultCoordinator) reload(ctx context.Context) {
	if c.Reload != nil {
		c.Reload(ctx)
	}
}

func (c *DefaultCoordinator) options() *models.BookingOptions {
	if c.Options == nil {
		return nil
	}
	return c.Options()
}
