package session

import (
	"context"

	"go.uber.org/zap"

	"scuolaguida/utils"
)

// SignOut makes a best effort to release the push token and the server-side
// session, then clears local state unconditionally: a dead network must
// never trap a user in a signed-in session.
func (c *DefaultCoordinator) SignOut(ctx context.Context) {
	if !c.begin() {
		return
	}
	defer c.end()

	logger := utils.GetLogger()
	if c.PushToken != nil {
		if token := c.PushToken(); token != "" {
			if err := c.API.UnregisterPushToken(ctx, token); err != nil {
				logger.Warn("session: push token unregister failed", zap.Error(err))
			}
		}
	}
	if err := c.API.Logout(ctx); err != nil {
		logger.Warn("session: backend logout failed", zap.Error(err))
	}
	c.resetSession("sign out")
}
