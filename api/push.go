package api

import (
	"context"
	"net/http"

	"scuolaguida/models"
)

// RegisterPushToken binds the install's push token to the signed-in account.
func (c *Client) RegisterPushToken(ctx context.Context, reg models.PushRegistration) error {
	return c.do(ctx, http.MethodPost, "/v1/push/tokens", reg, nil)
}

// UnregisterPushToken releases the token, typically on sign-out. Best
// effort: callers tolerate failure.
func (c *Client) UnregisterPushToken(ctx context.Context, token string) error {
	in := map[string]string{"token": token}
	return c.do(ctx, http.MethodPost, "/v1/push/tokens/unregister", in, nil)
}
