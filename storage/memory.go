package storage

import "sync"

// Memory is an in-memory Store. It backs tests and shells that run without
// a writable data directory; nothing survives a process restart.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *Memory) set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Token() (string, error)      { return m.get(keyToken) }
func (m *Memory) SetToken(token string) error { return m.set(keyToken, token) }
func (m *Memory) ActiveCompanyID() (string, error) {
	return m.get(keyActiveCompany)
}
func (m *Memory) SetActiveCompanyID(id string) error { return m.set(keyActiveCompany, id) }
func (m *Memory) LastStudentID() (string, error)     { return m.get(keyLastStudent) }
func (m *Memory) SetLastStudentID(id string) error   { return m.set(keyLastStudent, id) }
func (m *Memory) DeviceID() (string, error)          { return m.get(keyDeviceID) }
func (m *Memory) SetDeviceID(id string) error        { return m.set(keyDeviceID, id) }
func (m *Memory) PendingPushIntent() (string, error) { return m.get(keyPendingIntent) }
func (m *Memory) SetPendingPushIntent(kind string) error {
	return m.set(keyPendingIntent, kind)
}
func (m *Memory) ClearPendingPushIntent() error { return m.set(keyPendingIntent, "") }

func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range sessionKeys {
		delete(m.values, key)
	}
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
