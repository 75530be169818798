package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/jonwraymond/docmill/convert"
)

// ErrNotText indicates the input is not renderable as plain text.
var ErrNotText = errors.New("render: input is not plain text")

// TextConfig controls text page layout.
type TextConfig struct {
	// PageWidth and PageHeight are the page size in pixels at 100 DPI.
	// They scale linearly with the requested DPI.
	// Defaults: 850x1100 (US letter).
	PageWidth  int
	PageHeight int

	// Margin is the page margin in pixels at 100 DPI. Default: 50.
	Margin int
}

func (c TextConfig) withDefaults() TextConfig {
	if c.PageWidth <= 0 {
		c.PageWidth = 850
	}
	if c.PageHeight <= 0 {
		c.PageHeight = 1100
	}
	if c.Margin <= 0 {
		c.Margin = 50
	}
	return c
}

// TextRenderer rasterizes plain-text documents onto paginated images.
type TextRenderer struct {
	cfg  TextConfig
	face font.Face
}

// NewTextRenderer creates a text renderer with the given layout.
func NewTextRenderer(cfg ...TextConfig) *TextRenderer {
	c := TextConfig{}
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return &TextRenderer{
		cfg:  c.withDefaults(),
		face: basicfont.Face7x13,
	}
}

// Render reads the file as UTF-8 text and draws it line by line onto as many
// pages as needed.
func (r *TextRenderer) Render(ctx context.Context, path string, spec convert.RenderSpec) ([][]byte, error) {
	if spec.Format != "png" && spec.Format != "jpeg" {
		return nil, fmt.Errorf("%w: text renderer encodes png and jpeg only, got %q", convert.ErrUnsupportedFormat, spec.Format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: read %s: %w", path, err)
	}
	if bytes.ContainsRune(data, 0) {
		return nil, fmt.Errorf("%w: %s contains binary data", ErrNotText, path)
	}

	scale := float64(spec.DPI) / 100.0
	width := int(float64(r.cfg.PageWidth) * scale)
	height := int(float64(r.cfg.PageHeight) * scale)
	margin := int(float64(r.cfg.Margin) * scale)

	lineHeight := r.face.Metrics().Height.Ceil() + 2
	linesPerPage := (height - 2*margin) / lineHeight
	if linesPerPage < 1 {
		linesPerPage = 1
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	var pages [][]byte
	for start := 0; start < len(lines); start += linesPerPage {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+linesPerPage, len(lines))
		page, err := r.drawPage(lines[start:end], width, height, margin, lineHeight, spec)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (r *TextRenderer) drawPage(lines []string, width, height, margin, lineHeight int, spec convert.RenderSpec) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: r.face,
	}

	y := margin + lineHeight
	for _, line := range lines {
		drawer.Dot = fixed.P(margin, y)
		drawer.DrawString(line)
		y += lineHeight
		if y > height-margin {
			break
		}
	}

	var buf bytes.Buffer
	switch spec.Format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("render: encode png: %w", err)
		}
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: spec.Quality}); err != nil {
			return nil, fmt.Errorf("render: encode jpeg: %w", err)
		}
	}
	return buf.Bytes(), nil
}

var _ convert.Renderer = (*TextRenderer)(nil)
