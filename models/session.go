package models

// SessionStatus is the lifecycle state of the client session.
type SessionStatus string

const (
	SessionLoading         SessionStatus = "loading"
	SessionUnauthenticated SessionStatus = "unauthenticated"
	SessionCompanySelect   SessionStatus = "company_select"
	SessionReady           SessionStatus = "ready"
)

// Role is the role a user holds inside an autoscuola. An empty Role means
// "no role resolved".
type Role string

const (
	RoleOwner      Role = "OWNER"
	RoleInstructor Role = "INSTRUCTOR"
	RoleStudent    Role = "STUDENT"
)

// User is the authenticated account.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Company is one autoscuola the user belongs to. AutoscuolaRole is the role
// held within this company, distinct from any payload-level role.
type Company struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	AutoscuolaRole Role   `json:"autoscuolaRole"`
}

// Session is the client-side identity context every coordinator depends on.
// It is owned and mutated exclusively by the session coordinator.
type Session struct {
	Status          SessionStatus `json:"status"`
	User            *User         `json:"user"`
	Companies       []Company     `json:"companies"`
	ActiveCompanyID string        `json:"activeCompanyId"`
	AutoscuolaRole  Role          `json:"autoscuolaRole"`
	InstructorID    string        `json:"instructorId"`
}

// SessionPayload is the backend's me() response.
type SessionPayload struct {
	User            *User     `json:"user"`
	Companies       []Company `json:"companies"`
	ActiveCompanyID string    `json:"activeCompanyId"`
	AutoscuolaRole  Role      `json:"autoscuolaRole"`
	InstructorID    string    `json:"instructorId"`
}

// AuthPayload is returned by sign-in and sign-up: a session payload plus the
// bearer token the client persists.
type AuthPayload struct {
	Token string `json:"token"`
	SessionPayload
}

// SignUpInput is the registration form. Validated client-side before any
// network call.
type SignUpInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,min=6"`
	// CompanyCode joins the new account to an autoscuola on registration.
	CompanyCode string `json:"companyCode,omitempty"`
}
