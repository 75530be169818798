package security

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/jonwraymond/docmill/vault"
)

// Gate validates untrusted inputs and encrypts artifacts for the pipeline.
//
// Contract:
// - Concurrency: safe for concurrent use; the gate is immutable after
//   construction.
// - Blocking: ValidateURL blocks its caller for up to the policy's probe
//   timeout. Do not call it on a latency-sensitive path without a worker
//   pool in front.
// - Errors: validation failures are sentinel rejections wrapped with the
//   reject reason; they identify the input, never abort a batch by
//   themselves.
type Gate struct {
	policy  ValidationPolicy
	detect  TypeDetector
	scanner Scanner
	client  *http.Client
	sealer  *sealer
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithTypeDetector replaces the default media-type detector.
func WithTypeDetector(detect TypeDetector) GateOption {
	return func(g *Gate) {
		g.detect = detect
	}
}

// WithScanner replaces the default content scanner.
func WithScanner(s Scanner) GateOption {
	return func(g *Gate) {
		g.scanner = s
	}
}

// WithHTTPClient replaces the probe HTTP client. The policy's probe timeout
// is applied to the client unless it already has one.
func WithHTTPClient(client *http.Client) GateOption {
	return func(g *Gate) {
		g.client = client
	}
}

// NewGate creates a gate with the given vault and validation policy.
func NewGate(v *vault.Vault, policy ValidationPolicy, opts ...GateOption) (*Gate, error) {
	if v == nil {
		return nil, ErrNilVault
	}
	sealer, err := newSealer(v.Key())
	if err != nil {
		return nil, err
	}

	g := &Gate{
		policy:  policy.withDefaults(),
		detect:  DetectMediaType,
		scanner: NewPatternScanner(),
		sealer:  sealer,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		g.client = &http.Client{Timeout: g.policy.ProbeTimeout}
	} else if g.client.Timeout == 0 {
		g.client.Timeout = g.policy.ProbeTimeout
	}
	return g, nil
}

// ValidateFile checks a local file against the policy: existence, size
// ceiling, media-type allow-list, and the heuristic content scan. A nil
// return accepts the file.
func (g *Gate) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if info.Size() > g.policy.MaxFileBytes {
		return fmt.Errorf("%w: %s is %d bytes, ceiling %d", ErrFileTooLarge, path, info.Size(), g.policy.MaxFileBytes)
	}

	mediaType, err := g.detect(path)
	if err != nil {
		return err
	}
	if !g.policy.AllowedTypes[mediaType] {
		return fmt.Errorf("%w: %s", ErrTypeNotAllowed, mediaType)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if rule := g.scanner.Scan(data); rule != "" {
		return fmt.Errorf("%w: %s in %s", ErrRiskyContent, rule, path)
	}
	return nil
}

// ValidateURL checks a remote input. The scheme and blocked-domain checks
// run before any network I/O; the header-only HEAD probe then verifies
// status, content length, and content type, bounding wasted bandwidth on
// rejected inputs.
func (g *Gate) ValidateURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemeNotAllowed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrSchemeNotAllowed, u.Scheme)
	}
	if g.policy.BlockedDomains[u.Hostname()] {
		return fmt.Errorf("%w: %s", ErrBlockedDomain, u.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProbeFailed, resp.StatusCode)
	}
	if resp.ContentLength > g.policy.MaxResponseBytes {
		return fmt.Errorf("%w: %d bytes, ceiling %d", ErrResponseTooLarge, resp.ContentLength, g.policy.MaxResponseBytes)
	}
	mediaType := stripParams(resp.Header.Get("Content-Type"))
	if !g.policy.AllowedTypes[mediaType] {
		return fmt.Errorf("%w: %s", ErrTypeNotAllowed, mediaType)
	}
	return nil
}

// FetchURL downloads the body of a previously validated URL. The read is
// hard-capped at the response ceiling regardless of the advertised length.
func (g *Gate) FetchURL(ctx context.Context, raw string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProbeFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, g.policy.MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if int64(len(data)) > g.policy.MaxResponseBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrResponseTooLarge, g.policy.MaxResponseBytes)
	}
	return data, nil
}

// Encrypt seals plaintext with the installation key.
func (g *Gate) Encrypt(plaintext []byte) ([]byte, error) {
	return g.sealer.seal(plaintext)
}

// Decrypt opens ciphertext sealed by Encrypt. Tampered or foreign
// ciphertext fails with ErrCiphertextInvalid; partial output is never
// returned.
func (g *Gate) Decrypt(ciphertext []byte) ([]byte, error) {
	return g.sealer.open(ciphertext)
}

// Policy returns the gate's validation policy.
func (g *Gate) Policy() ValidationPolicy {
	return g.policy
}
