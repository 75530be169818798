package security

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jonwraymond/docmill/vault"
)

func newTestGate(t *testing.T, policy ValidationPolicy, opts ...GateOption) *Gate {
	t.Helper()
	v, err := vault.Open(t.TempDir())
	if err != nil {
		t.Fatalf("vault.Open failed: %v", err)
	}
	g, err := NewGate(v, policy, opts...)
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}
	return g
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewGate_NilVault(t *testing.T) {
	if _, err := NewGate(nil, DefaultValidationPolicy()); !errors.Is(err, ErrNilVault) {
		t.Errorf("NewGate(nil) error = %v, want ErrNilVault", err)
	}
}

func TestValidateFile_Accepts(t *testing.T) {
	g := newTestGate(t, DefaultValidationPolicy())
	path := writeFile(t, "doc.txt", []byte("plain document body"))

	if err := g.ValidateFile(path); err != nil {
		t.Errorf("ValidateFile rejected a clean file: %v", err)
	}
}

func TestValidateFile_NotFound(t *testing.T) {
	g := newTestGate(t, DefaultValidationPolicy())

	err := g.ValidateFile(filepath.Join(t.TempDir(), "absent.pdf"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("error = %v, want ErrFileNotFound", err)
	}
}

func TestValidateFile_SizeBoundary(t *testing.T) {
	policy := DefaultValidationPolicy()
	policy.MaxFileBytes = 16
	g := newTestGate(t, policy)

	// Exactly at the ceiling: accepted.
	atCeiling := writeFile(t, "at.txt", bytes.Repeat([]byte("a"), 16))
	if err := g.ValidateFile(atCeiling); err != nil {
		t.Errorf("file exactly at ceiling rejected: %v", err)
	}

	// One byte over: rejected.
	over := writeFile(t, "over.txt", bytes.Repeat([]byte("a"), 17))
	if err := g.ValidateFile(over); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("error = %v, want ErrFileTooLarge", err)
	}
}

func TestValidateFile_TypeNotAllowed(t *testing.T) {
	g := newTestGate(t, DefaultValidationPolicy())
	path := writeFile(t, "image.png", []byte{0x89, 'P', 'N', 'G'})

	if err := g.ValidateFile(path); !errors.Is(err, ErrTypeNotAllowed) {
		t.Errorf("error = %v, want ErrTypeNotAllowed", err)
	}
}

func TestValidateFile_RiskyContent(t *testing.T) {
	g := newTestGate(t, DefaultValidationPolicy())

	for _, payload := range []string{
		"before <script>alert(1)</script> after",
		"href=javascript:void(0)",
		"x = eval(input)",
		"shell_exec('rm')",
	} {
		path := writeFile(t, "doc.txt", []byte(payload))
		if err := g.ValidateFile(path); !errors.Is(err, ErrRiskyContent) {
			t.Errorf("payload %q: error = %v, want ErrRiskyContent", payload, err)
		}
	}
}

func TestValidateFile_CustomDetector(t *testing.T) {
	calls := 0
	detect := func(path string) (string, error) {
		calls++
		return "application/pdf", nil
	}
	g := newTestGate(t, DefaultValidationPolicy(), WithTypeDetector(detect))
	path := writeFile(t, "weird.bin", []byte("%PDF-1.7 content"))

	if err := g.ValidateFile(path); err != nil {
		t.Errorf("ValidateFile with custom detector rejected: %v", err)
	}
	if calls != 1 {
		t.Errorf("detector called %d times, want 1", calls)
	}
}

func TestValidateURL_SchemeRejectedWithoutNetwork(t *testing.T) {
	// A client whose transport panics proves no network call is made.
	client := &http.Client{Transport: panicTransport{}}
	g := newTestGate(t, DefaultValidationPolicy(), WithHTTPClient(client))

	for _, raw := range []string{"ftp://host/file.pdf", "file:///etc/passwd", "gopher://x"} {
		if err := g.ValidateURL(context.Background(), raw); !errors.Is(err, ErrSchemeNotAllowed) {
			t.Errorf("ValidateURL(%q) error = %v, want ErrSchemeNotAllowed", raw, err)
		}
	}
}

func TestValidateURL_BlockedDomainWithoutNetwork(t *testing.T) {
	policy := DefaultValidationPolicy()
	policy.BlockedDomains = map[string]bool{"evil.example.com": true}
	client := &http.Client{Transport: panicTransport{}}
	g := newTestGate(t, policy, WithHTTPClient(client))

	err := g.ValidateURL(context.Background(), "https://evil.example.com/doc.pdf")
	if !errors.Is(err, ErrBlockedDomain) {
		t.Errorf("error = %v, want ErrBlockedDomain", err)
	}
}

type panicTransport struct{}

func (panicTransport) RoundTrip(*http.Request) (*http.Response, error) {
	panic("network call during a pre-probe rejection")
}

func TestValidateURL_Probe(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		length  int
		ctype   string
		wantErr error
	}{
		{"accepted", http.StatusOK, 1024, "application/pdf", nil},
		{"with params", http.StatusOK, 1024, "text/html; charset=utf-8", nil},
		{"not found", http.StatusNotFound, 0, "application/pdf", ErrProbeFailed},
		{"redirect-ish", http.StatusAccepted, 0, "application/pdf", ErrProbeFailed},
		{"too large", http.StatusOK, 64 << 20, "application/pdf", ErrResponseTooLarge},
		{"bad type", http.StatusOK, 1024, "application/zip", ErrTypeNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead {
					t.Errorf("probe used %s, want HEAD", r.Method)
				}
				w.Header().Set("Content-Type", tt.ctype)
				w.Header().Set("Content-Length", strconv.Itoa(tt.length))
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			g := newTestGate(t, DefaultValidationPolicy())
			err := g.ValidateURL(context.Background(), srv.URL)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateURL = %v, want accept", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateURL = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetchURL(t *testing.T) {
	body := []byte("downloaded document body")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	g := newTestGate(t, DefaultValidationPolicy())
	got, err := g.FetchURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchURL failed: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("FetchURL = %q, want %q", got, body)
	}
}

func TestFetchURL_BodyOverCeiling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Advertise nothing; stream more than the ceiling.
		w.Write(bytes.Repeat([]byte("x"), 128))
	}))
	defer srv.Close()

	policy := DefaultValidationPolicy()
	policy.MaxResponseBytes = 64
	g := newTestGate(t, policy)

	if _, err := g.FetchURL(context.Background(), srv.URL); !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("error = %v, want ErrResponseTooLarge", err)
	}
}
