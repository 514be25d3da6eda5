package sheet

import (
	"sync"

	"go.uber.org/zap"

	"scuolaguida/models"
	"scuolaguida/utils"
)

// Arbiter is the single source of truth for which sheet is visible. The
// preferences form, a booking suggestion, a waitlist offer, an instructor
// proposal and the history details all compete for one presentation slot.
type Arbiter interface {
	// Active returns the sheet currently holding the slot.
	Active() models.Sheet
	// Open shows s with user priority: whatever is visible yields now.
	Open(s models.Sheet)
	// RequestAuto asks to show s. Granted only when the slot is free;
	// otherwise the request is remembered and reconsidered on every close.
	RequestAuto(s models.Sheet) bool
	// Withdraw drops s whether it is visible or still waiting.
	Withdraw(s models.Sheet)
	// Close dismisses s if it is active, then promotes a waiting
	// auto-trigger into the freed slot.
	Close(s models.Sheet)
	// OnChange registers an observer of the active sheet.
	OnChange(fn func(models.Sheet))
}

// autoPriority orders waiting auto-triggers for promotion when the slot
// frees up. A pending suggestion belongs to a negotiation the student
// started, so it outranks interrupts; freed-slot offers expire and therefore
// outrank instructor proposals.
var autoPriority = []models.Sheet{models.SheetSuggestion, models.SheetWaitlist, models.SheetProposal}

// promote picks which deferred auto-trigger takes a freed slot.
func promote(deferred map[models.Sheet]bool) models.Sheet {
	for _, s := range autoPriority {
		if deferred[s] {
			return s
		}
	}
	return models.SheetNone
}

func isAuto(s models.Sheet) bool {
	for _, k := range autoPriority {
		if s == k {
			return true
		}
	}
	return false
}

// DefaultArbiter is the production implementation.
type DefaultArbiter struct {
	mu       sync.Mutex
	active   models.Sheet
	deferred map[models.Sheet]bool
	onChange []func(models.Sheet)
}

func NewArbiter() *DefaultArbiter {
	return &DefaultArbiter{deferred: make(map[models.Sheet]bool)}
}

func (a *DefaultArbiter) Active() models.Sheet {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *DefaultArbiter) Open(s models.Sheet) {
	a.mu.Lock()
	if a.active == s {
		a.mu.Unlock()
		return
	}
	// A displaced auto-surfaced sheet is unresolved: it goes back to
	// waiting and resurfaces once the slot frees up again.
	if isAuto(a.active) {
		a.deferred[a.active] = true
	}
	prev := a.active
	a.active = s
	delete(a.deferred, s)
	notify := a.observersLocked()
	a.mu.Unlock()

	utils.GetLogger().Debug("sheet: opened",
		zap.String("sheet", s.String()), zap.String("displaced", prev.String()))
	notify(s)
}

func (a *DefaultArbiter) RequestAuto(s models.Sheet) bool {
	a.mu.Lock()
	if a.active == s {
		a.mu.Unlock()
		return true
	}
	if a.active != models.SheetNone {
		a.deferred[s] = true
		a.mu.Unlock()
		utils.GetLogger().Debug("sheet: auto-trigger deferred", zap.String("sheet", s.String()))
		return false
	}
	a.active = s
	delete(a.deferred, s)
	notify := a.observersLocked()
	a.mu.Unlock()

	utils.GetLogger().Debug("sheet: auto-surfaced", zap.String("sheet", s.String()))
	notify(s)
	return true
}

func (a *DefaultArbiter) Withdraw(s models.Sheet) {
	a.mu.Lock()
	delete(a.deferred, s)
	if a.active != s {
		a.mu.Unlock()
		return
	}
	next := a.closeLocked()
	notify := a.observersLocked()
	a.mu.Unlock()
	notify(next)
}

func (a *DefaultArbiter) Close(s models.Sheet) {
	a.mu.Lock()
	if a.active != s {
		// Closing something that never surfaced clears its pending
		// auto-trigger, if any.
		delete(a.deferred, s)
		a.mu.Unlock()
		return
	}
	next := a.closeLocked()
	notify := a.observersLocked()
	a.mu.Unlock()

	utils.GetLogger().Debug("sheet: closed",
		zap.String("sheet", s.String()), zap.String("promoted", next.String()))
	notify(next)
}

// closeLocked frees the slot and promotes the highest-priority waiting
// auto-trigger, returning the new active sheet.
func (a *DefaultArbiter) closeLocked() models.Sheet {
	a.active = promote(a.deferred)
	if a.active != models.SheetNone {
		delete(a.deferred, a.active)
	}
	return a.active
}

func (a *DefaultArbiter) OnChange(fn func(models.Sheet)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = append(a.onChange, fn)
}

// observersLocked snapshots the observer list so callbacks run outside the
// lock.
func (a *DefaultArbiter) observersLocked() func(models.Sheet) {
	fns := make([]func(models.Sheet), len(a.onChange))
	copy(fns, a.onChange)
	return func(s models.Sheet) {
		for _, fn := range fns {
			fn(s)
		}
	}
}

var _ Arbiter = (*DefaultArbiter)(nil)
