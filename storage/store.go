package storage

const (
	keyToken         = "auth_token"
	keyActiveCompany = "active_company_id"
	keyLastStudent   = "last_student_id"
	keyDeviceID      = "device_id"
	keyPendingIntent = "pending_push_intent"
)

// sessionKeys are the values Reset wipes. Device identity is deliberately
// not among them.
var sessionKeys = []string{keyToken, keyActiveCompany, keyLastStudent, keyPendingIntent}

// Store is the durable local state of the client: the bearer token, the
// active company, the last-selected student, the install's device id and at
// most one pending push intent. It is mutated only by the session
// coordinator and the push bridge.
type Store interface {
	Token() (string, error)
	SetToken(token string) error

	ActiveCompanyID() (string, error)
	SetActiveCompanyID(id string) error

	LastStudentID() (string, error)
	SetLastStudentID(id string) error

	DeviceID() (string, error)
	SetDeviceID(id string) error

	PendingPushIntent() (string, error)
	SetPendingPushIntent(kind string) error
	ClearPendingPushIntent() error

	// Reset removes every session-scoped value: token, company, student and
	// pending intent. The device id survives, since it identifies the
	// install, not the signed-in user.
	Reset() error

	Close() error
}
