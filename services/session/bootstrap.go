package session

import (
	"context"

	"go.uber.org/zap"

	"scuolaguida/models"
	"scuolaguida/utils"
)

// Bootstrap resolves the persisted credential on app start. No credential
// means the sign-in screen; a credential that is expired or fails to refresh
// wipes local state so the app never starts into a half-authenticated limbo.
func (c *DefaultCoordinator) Bootstrap(ctx context.Context) {
	logger := utils.GetLogger()

	c.applySession(models.Session{Status: models.SessionLoading})

	token, err := c.Store.Token()
	if err != nil {
		logger.Error("session: failed to read stored token", zap.Error(err))
		c.resetSession("storage read failed")
		return
	}
	if token == "" {
		c.applySession(models.Session{Status: models.SessionUnauthenticated})
		return
	}
	if utils.TokenExpired(token, c.now()) {
		logger.Info("session: stored token already expired",
			zap.String("sub", utils.TokenSubject(token)))
		c.resetSession("token expired")
		return
	}

	c.API.SetToken(token)
	if companyID, err := c.Store.ActiveCompanyID(); err == nil && companyID != "" {
		c.API.SetCompanyID(companyID)
	}
	c.RefreshMe(ctx)
}

// RefreshMe re-fetches the identity payload and re-validates the session
// invariants. An unresolvable role or an empty company list is an
// unrecoverable inconsistency: full reset, never a dead-end screen.
func (c *DefaultCoordinator) RefreshMe(ctx context.Context) {
	payload, err := c.API.Me(ctx)
	if err != nil {
		utils.GetLogger().Warn("session: identity refresh failed", zap.Error(err))
		c.resetSession("refresh failed")
		return
	}
	c.settle(ctx, payload)
}
