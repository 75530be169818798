package render

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/docmill/convert"
)

func writeText(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write text file: %v", err)
	}
	return path
}

func pngSpec() convert.RenderSpec {
	return convert.RenderSpec{Format: "png", Quality: 95, DPI: 100}
}

// TestTextRenderer_SinglePage verifies a short document yields one valid PNG.
func TestTextRenderer_SinglePage(t *testing.T) {
	r := NewTextRenderer()
	path := writeText(t, "hello world\nsecond line")

	pages, err := r.Render(context.Background(), path, pngSpec())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}

	img, err := png.Decode(bytes.NewReader(pages[0]))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 850 || img.Bounds().Dy() != 1100 {
		t.Errorf("expected 850x1100 page at 100 DPI, got %v", img.Bounds())
	}
}

// TestTextRenderer_Paginates verifies long documents split across pages.
func TestTextRenderer_Paginates(t *testing.T) {
	r := NewTextRenderer(TextConfig{PageHeight: 200})
	content := strings.Repeat("line of text\n", 60)
	path := writeText(t, content)

	pages, err := r.Render(context.Background(), path, pngSpec())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(pages) < 2 {
		t.Errorf("expected multiple pages for 60 lines on short pages, got %d", len(pages))
	}
}

// TestTextRenderer_DPIScalesPageSize verifies higher DPI grows the raster.
func TestTextRenderer_DPIScalesPageSize(t *testing.T) {
	r := NewTextRenderer()
	path := writeText(t, "content")

	spec := pngSpec()
	spec.DPI = 200
	pages, err := r.Render(context.Background(), path, spec)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(pages[0]))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 1700 || img.Bounds().Dy() != 2200 {
		t.Errorf("expected 1700x2200 page at 200 DPI, got %v", img.Bounds())
	}
}

// TestTextRenderer_JPEG verifies jpeg encoding is accepted.
func TestTextRenderer_JPEG(t *testing.T) {
	r := NewTextRenderer()
	path := writeText(t, "jpeg content")

	spec := convert.RenderSpec{Format: "jpeg", Quality: 80, DPI: 100}
	pages, err := r.Render(context.Background(), path, spec)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	// JPEG SOI marker
	if len(pages[0]) < 2 || pages[0][0] != 0xFF || pages[0][1] != 0xD8 {
		t.Error("output does not start with a JPEG marker")
	}
}

// TestTextRenderer_UnsupportedFormat verifies formats it cannot encode.
func TestTextRenderer_UnsupportedFormat(t *testing.T) {
	r := NewTextRenderer()
	path := writeText(t, "content")

	spec := convert.RenderSpec{Format: "tiff", Quality: 95, DPI: 100}
	_, err := r.Render(context.Background(), path, spec)
	if !errors.Is(err, convert.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got: %v", err)
	}
}

// TestTextRenderer_BinaryRejected verifies NUL bytes are refused.
func TestTextRenderer_BinaryRejected(t *testing.T) {
	r := NewTextRenderer()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("text\x00binary"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := r.Render(context.Background(), path, pngSpec())
	if !errors.Is(err, ErrNotText) {
		t.Errorf("expected ErrNotText, got: %v", err)
	}
}

// TestTextRenderer_EmptyFile verifies an empty document still yields a page.
func TestTextRenderer_EmptyFile(t *testing.T) {
	r := NewTextRenderer()
	path := writeText(t, "")

	pages, err := r.Render(context.Background(), path, pngSpec())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("expected 1 blank page, got %d", len(pages))
	}
}
