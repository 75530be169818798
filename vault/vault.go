package vault

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// KeySize is the symmetric key length in bytes (AES-256).
const KeySize = 32

// KeyFileName is the name of the persisted key file inside the vault directory.
const KeyFileName = "encryption.key"

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// Vault owns the installation's symmetric encryption key.
//
// Contract:
// - Concurrency: safe for concurrent use after Open; the key is immutable.
// - Ownership: Key returns a copy; callers may not recover the internal slice.
// - Lifecycle: the key is created once and reused across process restarts.
type Vault struct {
	dir string
	key []byte
}

// Open loads the key from dir, generating and persisting a new one if none
// exists. The directory is created if missing.
func Open(dir string) (*Vault, error) {
	if dir == "" {
		return nil, ErrEmptyDir
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("vault: create directory: %w", err)
	}

	v := &Vault{dir: dir}
	path := filepath.Join(dir, KeyFileName)

	encoded, err := os.ReadFile(path)
	switch {
	case err == nil:
		key, decErr := decodeKey(encoded)
		if decErr != nil {
			return nil, decErr
		}
		v.key = key
		return v, nil
	case os.IsNotExist(err):
		key, genErr := generateKey()
		if genErr != nil {
			return nil, genErr
		}
		if wrErr := writeKey(path, key); wrErr != nil {
			return nil, wrErr
		}
		v.key = key
		return v, nil
	default:
		return nil, fmt.Errorf("vault: read key file: %w", err)
	}
}

// Key returns a copy of the raw key material.
func (v *Vault) Key() []byte {
	out := make([]byte, len(v.key))
	copy(out, v.key)
	return out
}

// Dir returns the vault directory.
func (v *Vault) Dir() string {
	return v.dir
}

func generateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("vault: generate key: %w", err)
	}
	return key, nil
}

func decodeKey(encoded []byte) ([]byte, error) {
	key, err := base64.URLEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyCorrupt, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrKeyCorrupt, len(key), KeySize)
	}
	return key, nil
}

func writeKey(path string, key []byte) error {
	encoded := base64.URLEncoding.EncodeToString(key)
	if err := os.WriteFile(path, []byte(encoded), filePerm); err != nil {
		return fmt.Errorf("vault: write key file: %w", err)
	}
	return nil
}
