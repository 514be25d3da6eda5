package proposal

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"scuolaguida/api"
	"scuolaguida/models"
	"scuolaguida/services/sheet"
	"scuolaguida/utils"
)

// API is the backend slice the proposal coordinator consumes.
type API interface {
	UpdateAppointmentStatus(ctx context.Context, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentID string) (*models.CancelOutcome, error)
}

// Coordinator tracks the single instructor-proposed appointment awaiting the
// student's answer. The pending proposal is derived from agenda data, never
// fetched on its own.
type Coordinator interface {
	// SyncFromAgenda picks the soonest appointment still in proposal status
	// out of freshly loaded agenda data, withdrawing the sheet when none is
	// left.
	SyncFromAgenda(agenda *models.Agenda)

	// Accept confirms the proposed lesson.
	Accept(ctx context.Context)

	// Decline cancels the proposed appointment.
	Decline(ctx context.Context)

	// Surface shows the proposal sheet on explicit user intent, such as a
	// tapped notification.
	Surface()

	// Pending returns the proposal awaiting an answer, nil when none.
	Pending() *models.Appointment
}

// DefaultCoordinator implements Coordinator.
type DefaultCoordinator struct {
	API    API
	Toasts models.ToastSink
	Sheets sheet.Arbiter

	Reload func(ctx context.Context)

	mu        sync.Mutex
	busy      bool
	pending   *models.Appointment
	forceNext bool
}

// NewDefaultCoordinator returns a proposal Coordinator.
func NewDefaultCoordinator(apiClient API, toasts models.ToastSink, sheets sheet.Arbiter, reload func(ctx context.Context)) *DefaultCoordinator {
	return &DefaultCoordinator{API: apiClient, Toasts: toasts, Sheets: sheets, Reload: reload}
}

func (c *DefaultCoordinator) SyncFromAgenda(agenda *models.Agenda) {
	var next *models.Appointment
	if agenda != nil {
		for i := range agenda.Appointments {
			appt := agenda.Appointments[i]
			if appt.Status != models.AppointmentProposal {
				continue
			}
			if next == nil || appt.StartsAt.Before(next.StartsAt) {
				copied := appt
				next = &copied
			}
		}
	}

	c.mu.Lock()
	c.pending = next
	force := c.forceNext
	c.forceNext = false
	c.mu.Unlock()

	if next == nil {
		c.Sheets.Withdraw(models.SheetProposal)
		return
	}
	utils.GetLogger().Info("proposal: pending proposal found",
		zap.String("appointmentId", next.ID),
		zap.Time("startsAt", next.StartsAt))
	if force {
		c.Sheets.Open(models.SheetProposal)
	} else {
		c.Sheets.RequestAuto(models.SheetProposal)
	}
}

func (c *DefaultCoordinator) Accept(ctx context.Context) {
	if !c.begin() {
		return
	}
	defer c.end()

	pending := c.Pending()
	if pending == nil {
		return
	}

	_, err := c.API.UpdateAppointmentStatus(ctx, pending.ID, models.AppointmentScheduled)
	switch {
	case api.IsConflict(err):
		// The instructor withdrew or rebooked it in the meantime.
		utils.GetLogger().Info("proposal: no longer pending", zap.String("appointmentId", pending.ID))
		c.clearPending()
		c.Sheets.Close(models.SheetProposal)
		c.toast(models.InfoToast("Proposta non più disponibile"))
		c.reload(ctx)
	case err != nil:
		utils.GetLogger().Warn("proposal: accept failed", zap.String("appointmentId", pending.ID), zap.Error(err))
		c.toast(models.DangerToast("Errore di rete, riprova"))
	default:
		utils.GetLogger().Info("proposal: accepted", zap.String("appointmentId", pending.ID))
		c.clearPending()
		c.Sheets.Close(models.SheetProposal)
		c.toast(models.SuccessToast("Lezione confermata!"))
		c.reload(ctx)
	}
}

func (c *DefaultCoordinator) Decline(ctx context.Context) {
	if !c.begin() {
		return
	}
	defer c.end()

	pending := c.Pending()
	if pending == nil {
		return
	}

	out, err := c.API.CancelAppointment(ctx, pending.ID)
	if err != nil && !api.IsConflict(err) {
		utils.GetLogger().Warn("proposal: decline failed", zap.String("appointmentId", pending.ID), zap.Error(err))
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}
	if out != nil {
		utils.GetLogger().Info("proposal: declined",
			zap.String("appointmentId", pending.ID),
			zap.Bool("broadcasted", out.Broadcasted))
	}
	c.clearPending()
	c.Sheets.Close(models.SheetProposal)
	c.reload(ctx)
}

func (c *DefaultCoordinator) Surface() {
	c.mu.Lock()
	pending := c.pending
	if pending == nil {
		// Agenda data has not caught up with the notification yet; the next
		// sync opens the sheet instead of queueing it.
		c.forceNext = true
	}
	c.mu.Unlock()

	if pending != nil {
		c.Sheets.Open(models.SheetProposal)
	}
}

func (c *DefaultCoordinator) Pending() *models.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	appt := *c.pending
	return &appt
}

func (c *DefaultCoordinator) clearPending() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

func (c *DefaultCoordinator) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		utils.GetLogger().Debug("proposal: action already in flight, ignoring")
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
