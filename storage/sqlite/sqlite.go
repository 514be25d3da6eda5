// File: scuolaguida/storage/sqlite/sqlite.go
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"scuolaguida/storage"
)

const (
	keyToken         = "auth_token"
	keyActiveCompany = "active_company_id"
	keyLastStudent   = "last_student_id"
	keyDeviceID      = "device_id"
	keyPendingIntent = "pending_push_intent"
)

// Storage implements storage.Store on a single-file sqlite database in the
// app's data directory. The auth token is sealed at rest.
type Storage struct {
	db     *sql.DB
	sealer *sealer
}

// New opens (or creates) the local database under dir.
func New(dir string) (*Storage, error) {
	db, err := sql.Open("sqlite", filepath.Join(dir, "scuolaguida.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite supports a single writer; one connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sl, err := newSealer(dir)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Storage{db: db, sealer: sl}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *Storage) migrate() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}
	query := `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to execute migration query: %w", err)
	}
	return nil
}

func (s *Storage) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *Storage) set(key, value string) error {
	query := `INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Storage) del(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Token returns the auth token, unsealing it first. A value that no longer
// opens (key file replaced, corrupt row) reads as an error; the session
// coordinator treats that as a reason to reset.
func (s *Storage) Token() (string, error) {
	sealed, err := s.get(keyToken)
	if err != nil || sealed == "" {
		return "", err
	}
	return s.sealer.open(sealed)
}

func (s *Storage) SetToken(token string) error {
	if token == "" {
		return s.del(keyToken)
	}
	sealed, err := s.sealer.seal(token)
	if err != nil {
		return err
	}
	return s.set(keyToken, sealed)
}

func (s *Storage) ActiveCompanyID() (string, error)   { return s.get(keyActiveCompany) }
func (s *Storage) SetActiveCompanyID(id string) error { return s.set(keyActiveCompany, id) }

func (s *Storage) LastStudentID() (string, error)   { return s.get(keyLastStudent) }
func (s *Storage) SetLastStudentID(id string) error { return s.set(keyLastStudent, id) }

func (s *Storage) DeviceID() (string, error)   { return s.get(keyDeviceID) }
func (s *Storage) SetDeviceID(id string) error { return s.set(keyDeviceID, id) }

func (s *Storage) PendingPushIntent() (string, error)     { return s.get(keyPendingIntent) }
func (s *Storage) SetPendingPushIntent(kind string) error { return s.set(keyPendingIntent, kind) }
func (s *Storage) ClearPendingPushIntent() error          { return s.del(keyPendingIntent) }

// Reset wipes every session-scoped value in one transaction. The device id
// stays: it identifies the install, not the user.
func (s *Storage) Reset() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin reset: %w", err)
	}
	for _, key := range []string{keyToken, keyActiveCompany, keyLastStudent, keyPendingIntent} {
		if _, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ storage.Store = (*Storage)(nil)
