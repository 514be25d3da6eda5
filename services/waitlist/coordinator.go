package waitlist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"scuolaguida/models"
	"scuolaguida/services/sheet"
	"scuolaguida/utils"
)

// API is the backend slice the waitlist coordinator consumes.
type API interface {
	WaitlistOffer(ctx context.Context, studentID string) (*models.WaitlistOffer, error)
	RespondWaitlistOffer(ctx context.Context, offerID string, input models.OfferRespondInput) (*models.WaitlistOutcome, error)
}

// Coordinator holds at most one current waitlist offer and surfaces it when
// no other sheet is up. Responding always ends with a fresh fetch so a newly
// freed slot is picked up right away.
type Coordinator interface {
	Refresh(ctx context.Context, studentID string)
	Accept(ctx context.Context)
	Decline(ctx context.Context)
	Offer() *models.WaitlistOffer
}

// DefaultCoordinator implements Coordinator.
type DefaultCoordinator struct {
	API    API
	Toasts models.ToastSink
	Sheets sheet.Arbiter

	// Reload refreshes agenda data after a confirmed booking.
	Reload func(ctx context.Context)

	// Now is the clock used for expiry checks; nil means time.Now.
	Now func() time.Time

	mu        sync.Mutex
	busy      bool
	studentID string
	offer     *models.WaitlistOffer
}

// NewDefaultCoordinator returns a waitlist Coordinator.
func NewDefaultCoordinator(api API, toasts models.ToastSink, sheets sheet.Arbiter, reload func(ctx context.Context)) *DefaultCoordinator {
	return &DefaultCoordinator{API: api, Toasts: toasts, Sheets: sheets, Reload: reload}
}

// Refresh fetches the student's current offer. Fetch failures stay quiet:
// nobody asked for this data explicitly, and the next trigger retries. An
// offer past its expiry is held but never auto-surfaced; the backend stays
// authoritative should the student still try to accept it.
func (c *DefaultCoordinator) Refresh(ctx context.Context, studentID string) {
	logger := utils.GetLogger()

	offer, err := c.API.WaitlistOffer(ctx, studentID)
	if err != nil {
		logger.Warn("waitlist: offer fetch failed", zap.String("studentId", studentID), zap.Error(err))
		return
	}

	c.mu.Lock()
	c.studentID = studentID
	c.offer = offer
	c.mu.Unlock()

	if offer == nil {
		c.Sheets.Withdraw(models.SheetWaitlist)
		return
	}
	if offer.Expired(c.now()) {
		logger.Debug("waitlist: offer already expired", zap.String("offerId", offer.ID))
		c.Sheets.Withdraw(models.SheetWaitlist)
		return
	}
	logger.Info("waitlist: offer available", zap.String("offerId", offer.ID), zap.Time("expiresAt", offer.ExpiresAt))
	c.Sheets.RequestAuto(models.SheetWaitlist)
}

// Accept claims the offered slot. A slot claimed by someone else first is a
// normal outcome; either way the coordinator re-fetches afterwards.
func (c *DefaultCoordinator) Accept(ctx context.Context) {
	if !c.begin() {
		return
	}
	defer c.end()

	offer, studentID := c.current()
	if offer == nil {
		return
	}

	out, err := c.API.RespondWaitlistOffer(ctx, offer.ID, models.OfferRespondInput{
		StudentID: studentID,
		Response:  models.OfferAccept,
	})
	if err != nil {
		utils.GetLogger().Warn("waitlist: accept failed", zap.String("offerId", offer.ID), zap.Error(err))
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}

	c.clearOffer()
	c.Sheets.Close(models.SheetWaitlist)

	if out.Accepted {
		utils.GetLogger().Info("waitlist: offer accepted", zap.String("offerId", offer.ID))
		c.toast(models.SuccessToast("Lezione confermata!"))
		c.reload(ctx)
	} else {
		utils.GetLogger().Info("waitlist: slot claimed elsewhere", zap.String("offerId", offer.ID))
		c.toast(models.InfoToast("Slot non più disponibile"))
	}
	c.Refresh(ctx, studentID)
}

// Decline passes on the offer and re-fetches. Success is silent.
func (c *DefaultCoordinator) Decline(ctx context.Context) {
	if !c.begin() {
		return
	}
	defer c.end()

	offer, studentID := c.current()
	if offer == nil {
		return
	}

	if _, err := c.API.RespondWaitlistOffer(ctx, offer.ID, models.OfferRespondInput{
		StudentID: studentID,
		Response:  models.OfferDecline,
	}); err != nil {
		utils.GetLogger().Warn("waitlist: decline failed", zap.String("offerId", offer.ID), zap.Error(err))
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}

	utils.GetLogger().Info("waitlist: offer declined", zap.String("offerId", offer.ID))
	c.clearOffer()
	c.Sheets.Close(models.SheetWaitlist)
	c.Refresh(ctx, studentID)
}

// Offer returns a copy of the held offer, nil when none.
func (c *DefaultCoordinator) Offer() *models.WaitlistOffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.offer == nil {
		return nil
	}
	o := *c.offer
	return &o
}

func (c *DefaultCoordinator) current() (*models.WaitlistOffer, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offer, c.studentID
}

func (c *DefaultCoordinator) clearOffer() {
	c.mu.Lock()
	c.offer = nil
	c.mu.Unlock()
}

func (c *DefaultCoordinator) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		utils.GetLogger().Debug("waitlist: action already in flight, ignoring")
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

func (c *DefaultCoordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
