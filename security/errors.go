package security

import "errors"

// Validation rejections. Each carries the reject reason; callers decide
// whether to skip the single input or abort.
var (
	ErrFileNotFound     = errors.New("security: file does not exist")
	ErrFileTooLarge     = errors.New("security: file exceeds size ceiling")
	ErrTypeNotAllowed   = errors.New("security: media type not allowed")
	ErrRiskyContent     = errors.New("security: risky content pattern detected")
	ErrSchemeNotAllowed = errors.New("security: url scheme not allowed")
	ErrBlockedDomain    = errors.New("security: domain is blocked")
	ErrProbeFailed      = errors.New("security: url probe failed")
	ErrResponseTooLarge = errors.New("security: response exceeds size ceiling")
	ErrUnreadable       = errors.New("security: input could not be read")
)

// Cryptographic faults.
var (
	// ErrCiphertextInvalid is returned when decryption fails: tampered,
	// truncated, or foreign ciphertext. It is typed so callers can
	// distinguish it from a cache miss or a validation rejection.
	ErrCiphertextInvalid = errors.New("security: ciphertext is invalid")
)

// Misuse errors.
var (
	ErrNilVault       = errors.New("security: vault is nil")
	ErrAPIKeyNotFound = errors.New("security: api key not found")
)
