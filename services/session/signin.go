package session

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"scuolaguida/api"
	"scuolaguida/models"
	"scuolaguida/utils"
)

// SignIn exchanges credentials for a session. A failure leaves the session
// unauthenticated with a toast; success settles company and role the same
// way a refresh does.
func (c *DefaultCoordinator) SignIn(ctx context.Context, email, password string) {
	if !c.begin() {
		return
	}
	defer c.end()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		c.toast(models.DangerToast("Inserisci email e password"))
		return
	}

	payload, err := c.API.SignIn(ctx, email, password)
	if err != nil {
		utils.GetLogger().Warn("session: sign-in failed", zap.Error(err))
		if api.IsUnauthorized(err) {
			c.toast(models.DangerToast("Email o password non validi"))
		} else {
			c.toast(models.DangerToast("Errore di rete, riprova"))
		}
		return
	}
	c.adopt(ctx, payload)
}

// SignUp registers a new account. Field rules are checked locally first; a
// rejected form never reaches the network.
func (c *DefaultCoordinator) SignUp(ctx context.Context, input models.SignUpInput) {
	if !c.begin() {
		return
	}
	defer c.end()

	if err := utils.Validate().Struct(input); err != nil {
		utils.GetLogger().Debug("session: sign-up input rejected", zap.Error(err))
		c.toast(models.DangerToast("Controlla i dati inseriti"))
		return
	}

	payload, err := c.API.SignUp(ctx, input)
	if err != nil {
		utils.GetLogger().Warn("session: sign-up failed", zap.Error(err))
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}
	c.adopt(ctx, payload)
}

// adopt stores the fresh credential and settles the session from its
// payload.
func (c *DefaultCoordinator) adopt(ctx context.Context, payload *models.AuthPayload) {
	if payload == nil || payload.Token == "" {
		utils.GetLogger().Error("session: auth reply carried no token")
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}
	if err := c.Store.SetToken(payload.Token); err != nil {
		utils.GetLogger().Error("session: failed to persist token", zap.Error(err))
	}
	c.API.SetToken(payload.Token)
	c.settle(ctx, &payload.SessionPayload)
}
