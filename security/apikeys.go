package security

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// APIKeysFileName is the name of the encrypted key document inside the
// security directory.
const APIKeysFileName = "api_keys.json"

const keysFilePerm = 0o600

// APIKeyStore persists service credentials encrypted with the installation
// key. Values are stored as base64 ciphertext; the plaintext never touches
// disk.
type APIKeyStore struct {
	mu   sync.Mutex
	path string
	gate *Gate
	keys map[string]string
}

// NewAPIKeyStore opens the key document under dir, decoding what exists.
// An unreadable or malformed document yields an empty store rather than an
// error; credentials can be re-added.
func NewAPIKeyStore(dir string, gate *Gate) *APIKeyStore {
	s := &APIKeyStore{
		path: filepath.Join(dir, APIKeysFileName),
		gate: gate,
		keys: make(map[string]string),
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return s
	}
	var keys map[string]string
	if err := json.Unmarshal(data, &keys); err != nil {
		return s
	}
	s.keys = keys
	return s
}

// Add encrypts and persists the key for a service, replacing any previous
// value.
func (s *APIKeyStore) Add(service, key string) error {
	sealed, err := s.gate.Encrypt([]byte(key))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[service] = base64.StdEncoding.EncodeToString(sealed)
	return s.save()
}

// Get decrypts and returns the key for a service.
func (s *APIKeyStore) Get(service string) (string, error) {
	s.mu.Lock()
	encoded, ok := s.keys[service]
	s.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAPIKeyNotFound, service)
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertextInvalid, err)
	}
	plain, err := s.gate.Decrypt(sealed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Remove deletes the key for a service. Idempotent.
func (s *APIKeyStore) Remove(service string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[service]; !ok {
		return nil
	}
	delete(s.keys, service)
	return s.save()
}

// save rewrites the document in full. Caller holds the lock.
func (s *APIKeyStore) save() error {
	data, err := json.Marshal(s.keys)
	if err != nil {
		return fmt.Errorf("security: marshal api keys: %w", err)
	}
	if err := os.WriteFile(s.path, data, keysFilePerm); err != nil {
		return fmt.Errorf("security: write api keys: %w", err)
	}
	return nil
}
