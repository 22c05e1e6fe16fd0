// Package textfit measures text against a font, wraps it into lines and
// finds the largest font size that fits a box.
package textfit

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Measurer is the text measuring surface. Implementations are owned by the
// caller of a conversion run and passed in explicitly.
type Measurer interface {
	// Advance returns the width in pixels of text set at fontPx.
	Advance(text string, fontPx float64) float64
	// LineHeight returns the distance between baselines at fontPx.
	LineHeight(fontPx float64) float64
}

// FontMeasurer measures with a real outline font. Faces are cached per size;
// it is safe for concurrent use.
type FontMeasurer struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[fixed.Int26_6]font.Face
}

// NewFontMeasurer loads the TrueType/OpenType font at path, or the embedded
// Go Regular face when path is empty.
func NewFontMeasurer(path string) (*FontMeasurer, error) {
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read font file: %w", err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse font: %w", err)
	}
	return &FontMeasurer{font: f, faces: make(map[fixed.Int26_6]font.Face)}, nil
}

// face returns the cached face for size. Callers must hold mu.
func (m *FontMeasurer) face(size fixed.Int26_6) (font.Face, error) {
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	// At 72 DPI one point is one pixel, so Size is in pixels.
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    float64(size) / 64,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[size] = f
	return f, nil
}

func toFixed(px float64) fixed.Int26_6 {
	return fixed.Int26_6(px*64 + 0.5)
}

// Advance implements Measurer. Zero-width break markers measure as zero.
func (m *FontMeasurer) Advance(text string, fontPx float64) float64 {
	if fontPx <= 0 || text == "" {
		return 0
	}
	text = stripSoftBreaks(text)
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.face(toFixed(fontPx))
	if err != nil {
		return fallbackAdvance(text, fontPx)
	}
	return float64(font.MeasureString(f, text)) / 64
}

// LineHeight implements Measurer.
func (m *FontMeasurer) LineHeight(fontPx float64) float64 {
	if fontPx <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.face(toFixed(fontPx))
	if err != nil {
		return fontPx * DefaultLineRatio
	}
	return float64(f.Metrics().Height) / 64
}

// Close releases cached faces.
func (m *FontMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, f := range m.faces {
		f.Close()
		delete(m.faces, k)
	}
	return nil
}

// DefaultLineRatio is the line height to font size ratio used by
// FixedMeasurer and as a fallback.
const DefaultLineRatio = 1.2

// FixedMeasurer gives every rune the same advance, CharWidth * fontPx.
// It is deterministic and intended for tests.
type FixedMeasurer struct {
	CharWidth float64
	LineRatio float64
}

// Advance implements Measurer.
func (m FixedMeasurer) Advance(text string, fontPx float64) float64 {
	n := utf8.RuneCountInString(stripSoftBreaks(text))
	return float64(n) * m.CharWidth * fontPx
}

// LineHeight implements Measurer.
func (m FixedMeasurer) LineHeight(fontPx float64) float64 {
	ratio := m.LineRatio
	if ratio <= 0 {
		ratio = DefaultLineRatio
	}
	return fontPx * ratio
}

func fallbackAdvance(text string, fontPx float64) float64 {
	return float64(utf8.RuneCountInString(text)) * fontPx * 0.55
}

func stripSoftBreaks(s string) string {
	if !strings.Contains(s, SoftBreak) {
		return s
	}
	return strings.ReplaceAll(s, SoftBreak, "")
}
