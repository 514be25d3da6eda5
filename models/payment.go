package models

import "time"

// PaymentProfile summarizes a student's lesson package and balance. The
// payment-provider SDK itself lives in the shell; the core only reads what the
// backend reports.
type PaymentProfile struct {
	StudentID       string  `json:"studentId"`
	PackageName     string  `json:"packageName,omitempty"`
	LessonsIncluded int     `json:"lessonsIncluded"`
	LessonsUsed     int     `json:"lessonsUsed"`
	BalanceDue      float64 `json:"balanceDue"`
	Currency        string  `json:"currency"`
}

// PaymentRecord is one settled payment shown in the history screen.
type PaymentRecord struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Method      string    `json:"method,omitempty"`
	Description string    `json:"description,omitempty"`
	PaidAt      time.Time `json:"paidAt"`
}
