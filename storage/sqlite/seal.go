package sqlite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"
)

// sealer encrypts values at rest. The auth token is the only secret the store
// holds, and the database file travels with device backups, so the token is
// sealed with a key that never leaves the data directory. This is local
// sealing, not an OS keychain: it keeps the token out of casual backup
// inspection, nothing more.
type sealer struct {
	aead cipher.AEAD
}

const keyFileName = "scuolaguida.key"

// newSealer loads the install's sealing secret, minting one on first run,
// and derives the cipher key from it.
func newSealer(dir string) (*sealer, error) {
	secret, err := loadOrMintSecret(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, err
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, secret, nil, []byte("scuolaguida/storage token sealing"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive sealing key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &sealer{aead: aead}, nil
}

func loadOrMintSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil && len(secret) == 32 {
		return secret, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read sealing secret: %w", err)
	}

	secret = make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, fmt.Errorf("failed to generate sealing secret: %w", err)
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("failed to persist sealing secret: %w", err)
	}
	return secret, nil
}

// seal encrypts a value for the TEXT column. The nonce is prepended to the
// ciphertext so it can be recovered during open.
func (s *sealer) seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *sealer) open(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("sealed value is not valid base64: %w", err)
	}
	if len(sealed) < s.aead.NonceSize() {
		return "", fmt.Errorf("sealed value too short")
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed value: %w", err)
	}
	return string(plaintext), nil
}
