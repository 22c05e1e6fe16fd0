package textfit

import (
	"strings"
	"unicode"
)

// SoftBreak is the zero-width space used to mark break opportunities.
const SoftBreak = "\u200b"

const (
	softBreakRune = '\u200b'
	// LongRunThreshold is the length from which an unbroken run is chunked.
	LongRunThreshold = 20
	// LongRunChunk is the chunk size used inside long runs.
	LongRunChunk = 10
)

// InsertSoftBreaks adds break opportunities at camelCase boundaries,
// letter/digit boundaries and every LongRunChunk runes inside unbroken runs
// of at least LongRunThreshold runes. Applying it twice changes nothing.
func InsertSoftBreaks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var seg []rune

	flush := func() {
		if len(seg) >= LongRunThreshold {
			for i := 0; i < len(seg); i += LongRunChunk {
				if i > 0 {
					b.WriteString(SoftBreak)
				}
				b.WriteString(string(seg[i:min(i+LongRunChunk, len(seg))]))
			}
		} else {
			b.WriteString(string(seg))
		}
		seg = seg[:0]
	}

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
			b.WriteRune(r)
		case r == softBreakRune:
			flush()
			b.WriteRune(r)
		default:
			if len(seg) > 0 && isBoundary(seg[len(seg)-1], r) {
				flush()
				b.WriteString(SoftBreak)
			}
			seg = append(seg, r)
		}
	}
	flush()
	return b.String()
}

func isBoundary(prev, r rune) bool {
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(r):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(r):
		return true
	case unicode.IsDigit(prev) && unicode.IsLetter(r):
		return true
	}
	return false
}

// Layout is the result of wrapping text at a width.
type Layout struct {
	Lines      []string `json:"lines"`
	Width      float64  `json:"widthPx"`
	Height     float64  `json:"heightPx"`
	LineHeight float64  `json:"lineHeightPx"`
}

// Measure wraps text greedily at widthPx using m. Words move to the next
// line whole; soft break opportunities are used only when a word alone is
// wider than the line, and a word with no usable opportunity is broken
// between runes. widthPx <= 0 disables wrapping. Explicit newlines always
// start a new line. Returned lines contain no break markers.
func Measure(m Measurer, text string, widthPx, fontPx float64) Layout {
	lh := m.LineHeight(fontPx)
	if text == "" {
		return Layout{LineHeight: lh}
	}
	w := &wrapper{m: m, width: widthPx, fontPx: fontPx}
	for _, para := range strings.Split(InsertSoftBreaks(text), "\n") {
		w.paragraph(para)
	}
	out := Layout{Lines: w.lines, LineHeight: lh, Height: float64(len(w.lines)) * lh}
	for _, l := range out.Lines {
		out.Width = max(out.Width, m.Advance(l, fontPx))
	}
	return out
}

type wrapper struct {
	m      Measurer
	width  float64
	fontPx float64
	lines  []string
	line   string
}

func (w *wrapper) fits(s string) bool {
	return w.width <= 0 || w.m.Advance(s, w.fontPx) <= w.width
}

func (w *wrapper) emit() {
	w.lines = append(w.lines, stripSoftBreaks(w.line))
	w.line = ""
}

func (w *wrapper) paragraph(para string) {
	words := strings.Fields(para)
	if len(words) == 0 {
		w.lines = append(w.lines, "")
		return
	}
	for _, word := range words {
		if w.line != "" {
			if cand := w.line + " " + word; w.fits(cand) {
				w.line = cand
				continue
			}
			w.emit()
		}
		if w.fits(word) {
			w.line = word
			continue
		}
		w.breakWord(word)
	}
	if w.line != "" {
		w.emit()
	}
}

// breakWord lays out a word wider than the line, starting on an empty line.
func (w *wrapper) breakWord(word string) {
	for _, piece := range strings.Split(word, SoftBreak) {
		if piece == "" {
			continue
		}
		if cand := w.line + piece; w.fits(cand) {
			w.line = cand
			continue
		}
		if w.line != "" {
			w.emit()
		}
		if w.fits(piece) {
			w.line = piece
			continue
		}
		for _, r := range piece {
			if cand := w.line + string(r); w.line == "" || w.fits(cand) {
				w.line = cand
				continue
			}
			w.emit()
			w.line = string(r)
		}
	}
}
