package session

import (
	"context"
	"sync"
	"time"

	"scuolaguida/models"
	"scuolaguida/storage"
)

// API is the backend surface the session coordinator drives. SetToken and
// SetCompanyID install the ambient headers every later call rides on.
type API interface {
	SignIn(ctx context.Context, email, password string) (*models.AuthPayload, error)
	SignUp(ctx context.Context, input models.SignUpInput) (*models.AuthPayload, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.SessionPayload, error)
	SelectCompany(ctx context.Context, companyID string) (string, error)
	RegisterPushToken(ctx context.Context, reg models.PushRegistration) error
	UnregisterPushToken(ctx context.Context, token string) error
	SetToken(token string)
	SetCompanyID(id string)
}

// Coordinator resolves authentication state, the active company and the
// effective role. It owns the Session value: nothing else mutates it.
type Coordinator interface {
	Bootstrap(ctx context.Context)
	SignIn(ctx context.Context, email, password string)
	SignUp(ctx context.Context, input models.SignUpInput)
	SelectCompany(ctx context.Context, companyID string)
	RefreshMe(ctx context.Context)
	SignOut(ctx context.Context)
	SelectStudent(studentID string)
	Session() models.Session
	OnChange(fn func(models.Session))
}

// DefaultCoordinator is the production implementation.
type DefaultCoordinator struct {
	API    API
	Store  storage.Store
	Toasts models.ToastSink

	// PushToken returns the install's current push token, "" when the shell
	// has none. Platform names the OS for token registration.
	PushToken func() string
	Platform  string

	// Now is replaceable in tests; nil means time.Now.
	Now func() time.Time

	mu       sync.Mutex
	busy     bool
	session  models.Session
	onChange []func(models.Session)
}

// NewDefaultCoordinator starts in the loading state; Bootstrap settles it.
func NewDefaultCoordinator(api API, store storage.Store, toasts models.ToastSink) *DefaultCoordinator {
	return &DefaultCoordinator{
		API:     api,
		Store:   store,
		Toasts:  toasts,
		session: models.Session{Status: models.SessionLoading},
	}
}

var _ Coordinator = (*DefaultCoordinator)(nil)
