package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"scuolaguida/models"
)

// PaymentProfile reads the student's package and balance. The payment sheet
// itself is the shell's business; the core only displays what is owed.
func (c *Client) PaymentProfile(ctx context.Context, studentID string) (*models.PaymentProfile, error) {
	var out models.PaymentProfile
	path := fmt.Sprintf("/v1/students/%s/payments/profile", url.PathEscape(studentID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PaymentHistory lists settled payments, newest first.
func (c *Client) PaymentHistory(ctx context.Context, studentID string) ([]models.PaymentRecord, error) {
	var out []models.PaymentRecord
	path := fmt.Sprintf("/v1/students/%s/payments", url.PathEscape(studentID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
