package models

import "time"

// SchoolSettings is the active autoscuola's policy, loaded with every agenda
// refresh. StudentBookingEnabled gates whether booking options are fetched at
// all.
type SchoolSettings struct {
	CompanyID               string `json:"companyId"`
	StudentBookingEnabled   bool   `json:"studentBookingEnabled"`
	CancellationNoticeHours int    `json:"cancellationNoticeHours"`
	OpeningHour             int    `json:"openingHour"`
	ClosingHour             int    `json:"closingHour"`
}

// BookingOptions is what the preferences form offers; only meaningful when
// the school allows student-initiated booking.
type BookingOptions struct {
	AllowedDurations []int    `json:"allowedDurations"`
	LessonTypes      []string `json:"lessonTypes,omitempty"`
	MaxAdvanceDays   int      `json:"maxAdvanceDays"`
}

// AllowsDuration reports whether minutes is one of the school's durations.
// An empty list means the school did not restrict durations.
func (o *BookingOptions) AllowsDuration(minutes int) bool {
	if o == nil || len(o.AllowedDurations) == 0 {
		return true
	}
	for _, d := range o.AllowedDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// DateWindow is the agenda date range a load covers. It keys the "window
// changed" loading indicator.
type DateWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Key collapses the window to a comparable day-granularity identifier.
func (w DateWindow) Key() string {
	const day = "2006-01-02"
	return w.From.Format(day) + ".." + w.To.Format(day)
}

// Agenda is the per-student snapshot every screen consumes: one load's worth
// of appointments, policy, and payment data. BookingOptions stays nil when the
// school disallows student booking.
type Agenda struct {
	SubjectID      string          `json:"subjectId"`
	Window         DateWindow      `json:"window"`
	Appointments   []Appointment   `json:"appointments"`
	Settings       *SchoolSettings `json:"settings"`
	PaymentProfile *PaymentProfile `json:"paymentProfile"`
	Payments       []PaymentRecord `json:"payments"`
	BookingOptions *BookingOptions `json:"bookingOptions,omitempty"`
}
