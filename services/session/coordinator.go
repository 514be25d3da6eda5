package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scuolaguida/models"
	"scuolaguida/utils"
)

// Session returns a snapshot of the current session.
func (c *DefaultCoordinator) Session() models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess := c.session
	if len(c.session.Companies) > 0 {
		sess.Companies = append([]models.Company(nil), c.session.Companies...)
	}
	return sess
}

// OnChange registers an observer. Observers run after every transition,
// outside the coordinator's lock.
func (c *DefaultCoordinator) OnChange(fn func(models.Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

func (c *DefaultCoordinator) applySession(sess models.Session) {
	c.mu.Lock()
	c.session = sess
	fns := make([]func(models.Session), len(c.onChange))
	copy(fns, c.onChange)
	c.mu.Unlock()

	utils.GetLogger().Debug("session: state changed", zap.String("status", string(sess.Status)))
	for _, fn := range fns {
		fn(sess)
	}
}

// begin marks a mutating user action in flight; a second tap while one is
// outstanding is dropped.
func (c *DefaultCoordinator) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		utils.GetLogger().Debug("session: action already in flight, ignoring")
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

func (c *DefaultCoordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// resetSession wipes everything: durable storage, ambient headers, state.
// After a reset the user is signed out, never stranded half-authenticated.
func (c *DefaultCoordinator) resetSession(reason string) {
	utils.GetLogger().Warn("session: clearing local state", zap.String("reason", reason))
	if err := c.Store.Reset(); err != nil {
		utils.GetLogger().Error("session: failed to clear storage", zap.Error(err))
	}
	c.API.SetToken("")
	c.API.SetCompanyID("")
	c.applySession(models.Session{Status: models.SessionUnauthenticated})
}

// settle turns an identity payload into a session, enforcing the status
// invariants: an empty company list or an unresolvable role is an
// inconsistency and forces a reset; a sole company is selected silently so
// its user never sees the picker.
func (c *DefaultCoordinator) settle(ctx context.Context, payload *models.SessionPayload) {
	logger := utils.GetLogger()

	if payload == nil || payload.User == nil || len(payload.Companies) == 0 {
		logger.Warn("session: identity payload carries no usable company")
		c.resetSession("empty company list")
		return
	}

	active := payload.ActiveCompanyID
	if active == "" && len(payload.Companies) == 1 {
		sole := payload.Companies[0].ID
		settled, err := c.API.SelectCompany(ctx, sole)
		if err != nil {
			logger.Warn("session: auto-select of sole company failed", zap.Error(err))
			c.resetSession("company auto-select failed")
			return
		}
		active = settled
		if active == "" {
			active = sole
		}
	}

	if active == "" {
		c.applySession(models.Session{
			Status:    models.SessionCompanySelect,
			User:      payload.User,
			Companies: payload.Companies,
		})
		return
	}

	role := resolveRole(payload, active)
	if role == "" {
		logger.Warn("session: no role resolves for active company", zap.String("companyId", active))
		c.resetSession("role unresolved")
		return
	}

	if err := c.Store.SetActiveCompanyID(active); err != nil {
		logger.Error("session: failed to persist active company", zap.Error(err))
	}
	c.API.SetCompanyID(active)

	c.applySession(models.Session{
		Status:          models.SessionReady,
		User:            payload.User,
		Companies:       payload.Companies,
		ActiveCompanyID: active,
		AutoscuolaRole:  role,
		InstructorID:    payload.InstructorID,
	})
	c.registerPushToken(ctx)
}

// resolveRole picks the effective role: the active company's own role when
// that company is known, the payload-level role otherwise.
func resolveRole(payload *models.SessionPayload, activeCompanyID string) models.Role {
	if activeCompanyID != "" {
		for _, company := range payload.Companies {
			if company.ID == activeCompanyID {
				return company.AutoscuolaRole
			}
		}
	}
	return payload.AutoscuolaRole
}

// registerPushToken is best effort: a school that never reaches the student
// by push still books lessons fine.
func (c *DefaultCoordinator) registerPushToken(ctx context.Context) {
	if c.PushToken == nil {
		return
	}
	token := c.PushToken()
	if token == "" {
		return
	}
	reg := models.PushRegistration{
		Token:    token,
		Platform: c.Platform,
		DeviceID: c.ensureDeviceID(),
	}
	if err := c.API.RegisterPushToken(ctx, reg); err != nil {
		utils.GetLogger().Warn("session: push token registration failed", zap.Error(err))
	}
}

// ensureDeviceID returns the install's device id, minting one on first use.
func (c *DefaultCoordinator) ensureDeviceID() string {
	id, err := c.Store.DeviceID()
	if err != nil {
		utils.GetLogger().Error("session: failed to read device id", zap.Error(err))
	}
	if id != "" {
		return id
	}
	id = uuid.NewString()
	if err := c.Store.SetDeviceID(id); err != nil {
		utils.GetLogger().Error("session: failed to persist device id", zap.Error(err))
	}
	return id
}
