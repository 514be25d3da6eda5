package sqlite

import (
	"os"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T, dir string) *Storage {
	t.Helper()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTripAllKeys(t *testing.T) {
	s := newStore(t, t.TempDir())

	if err := s.SetToken("tok-1"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := s.SetActiveCompanyID("c1"); err != nil {
		t.Fatalf("SetActiveCompanyID: %v", err)
	}
	if err := s.SetLastStudentID("stu-1"); err != nil {
		t.Fatalf("SetLastStudentID: %v", err)
	}
	if err := s.SetDeviceID("dev-1"); err != nil {
		t.Fatalf("SetDeviceID: %v", err)
	}
	if err := s.SetPendingPushIntent("slot_fill_offer"); err != nil {
		t.Fatalf("SetPendingPushIntent: %v", err)
	}

	if got, _ := s.Token(); got != "tok-1" {
		t.Fatalf("Token = %q", got)
	}
	if got, _ := s.ActiveCompanyID(); got != "c1" {
		t.Fatalf("ActiveCompanyID = %q", got)
	}
	if got, _ := s.LastStudentID(); got != "stu-1" {
		t.Fatalf("LastStudentID = %q", got)
	}
	if got, _ := s.DeviceID(); got != "dev-1" {
		t.Fatalf("DeviceID = %q", got)
	}
	if got, _ := s.PendingPushIntent(); got != "slot_fill_offer" {
		t.Fatalf("PendingPushIntent = %q", got)
	}
}

func TestMissingKeysReadEmpty(t *testing.T) {
	s := newStore(t, t.TempDir())

	if got, err := s.Token(); got != "" || err != nil {
		t.Fatalf("Token = %q, %v", got, err)
	}
	if got, err := s.DeviceID(); got != "" || err != nil {
		t.Fatalf("DeviceID = %q, %v", got, err)
	}
}

func TestTokenSealedAtRest(t *testing.T) {
	dir := t.TempDir()
	s := newStore(t, dir)
	const token = "eyJhbGciOiJIUzI1NiJ9.payload.sig"

	if err := s.SetToken(token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	raw, err := s.get(keyToken)
	if err != nil {
		t.Fatalf("reading raw row: %v", err)
	}
	if raw == "" || raw == token {
		t.Fatalf("expected a sealed row, got %q", raw)
	}
	if got, err := s.Token(); err != nil || got != token {
		t.Fatalf("Token = %q, %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(dir, keyFileName)); err != nil {
		t.Fatalf("expected the sealing key file on disk: %v", err)
	}
}

func TestEmptyTokenDeletesRow(t *testing.T) {
	s := newStore(t, t.TempDir())
	if err := s.SetToken("tok-1"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	if err := s.SetToken(""); err != nil {
		t.Fatalf("SetToken(\"\"): %v", err)
	}

	if got, err := s.Token(); got != "" || err != nil {
		t.Fatalf("Token = %q, %v", got, err)
	}
	if raw, _ := s.get(keyToken); raw != "" {
		t.Fatalf("expected the row gone, got %q", raw)
	}
}

func TestResetKeepsDeviceID(t *testing.T) {
	s := newStore(t, t.TempDir())
	s.SetToken("tok-1")
	s.SetActiveCompanyID("c1")
	s.SetLastStudentID("stu-1")
	s.SetDeviceID("dev-1")
	s.SetPendingPushIntent("appointment_proposal")

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if got, _ := s.Token(); got != "" {
		t.Fatalf("expected the token wiped, got %q", got)
	}
	if got, _ := s.ActiveCompanyID(); got != "" {
		t.Fatalf("expected the company wiped, got %q", got)
	}
	if got, _ := s.LastStudentID(); got != "" {
		t.Fatalf("expected the student wiped, got %q", got)
	}
	if got, _ := s.PendingPushIntent(); got != "" {
		t.Fatalf("expected the intent wiped, got %q", got)
	}
	if got, _ := s.DeviceID(); got != "dev-1" {
		t.Fatalf("expected the device id kept, got %q", got)
	}
}

func TestTokenSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	const token = "tok-persisted"

	first, err := New(dir)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := first.SetToken(token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := first.SetActiveCompanyID("c1"); err != nil {
		t.Fatalf("SetActiveCompanyID: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := newStore(t, dir)
	if got, err := second.Token(); err != nil || got != token {
		t.Fatalf("Token after reopen = %q, %v", got, err)
	}
	if got, _ := second.ActiveCompanyID(); got != "c1" {
		t.Fatalf("ActiveCompanyID after reopen = %q", got)
	}
}

func TestClearPendingIntent(t *testing.T) {
	s := newStore(t, t.TempDir())
	s.SetPendingPushIntent("slot_fill_offer")

	if err := s.ClearPendingPushIntent(); err != nil {
		t.Fatalf("ClearPendingPushIntent: %v", err)
	}
	if got, _ := s.PendingPushIntent(); got != "" {
		t.Fatalf("expected the intent cleared, got %q", got)
	}
}

func TestTamperedTokenReadsAsError(t *testing.T) {
	s := newStore(t, t.TempDir())
	if err := s.SetToken("tok-1"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	if err := s.set(keyToken, "bm90IGEgc2VhbGVkIHZhbHVl"); err != nil {
		t.Fatalf("overwriting row: %v", err)
	}

	if _, err := s.Token(); err == nil {
		t.Fatalf("expected a tampered token to fail to open")
	}
}
