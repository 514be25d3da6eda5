package api

import (
	"context"
	"net/http"

	"scuolaguida/models"
)

// SignIn exchanges credentials for a bearer token and the identity payload.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.AuthPayload, error) {
	in := map[string]string{"email": email, "password": password}
	var out models.AuthPayload
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signin", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUp registers a new account and signs it in.
func (c *Client) SignUp(ctx context.Context, input models.SignUpInput) (*models.AuthPayload, error) {
	var out models.AuthPayload
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signup", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
}

// Me re-fetches the identity payload: user, companies, active company, role
// and instructor binding.
func (c *Client) Me(ctx context.Context) (*models.SessionPayload, error) {
	var out models.SessionPayload
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectCompany persists the active company server-side and returns the id
// the backend settled on.
func (c *Client) SelectCompany(ctx context.Context, companyID string) (string, error) {
	in := map[string]string{"companyId": companyID}
	var out struct {
		ActiveCompanyID string `json:"activeCompanyId"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/me/company", in, &out); err != nil {
		return "", err
	}
	return out.ActiveCompanyID, nil
}
