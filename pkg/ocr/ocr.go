// Package ocr defines how the pipeline asks for the text of a page region.
//
// A Recognizer answers for a page number and a Region given as fractions of
// the page, so the same selection applies to pages of any resolution. The
// providers live in their own packages: pkg/hocr (pre-computed hOCR),
// pkg/gdocai (Google Document AI) and pkg/ocr/tesseract (local Tesseract,
// behind the "ocr" build tag). ImageRecognizer glues page images and an
// image Engine into a Recognizer.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRegion is returned for regions outside the unit square or
	// too small to hold text.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrNoPage is returned when a recognizer has no data for a page.
	ErrNoPage = errors.New("page not available")
)

// LowConfidence is the confidence below which a result deserves review.
const LowConfidence = 30

// Result is the recognized text of a region. Confidence ranges from 0 to
// 100 and is advisory.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognizer reads the text of a region of a page. Pages are numbered
// from 1.
type Recognizer interface {
	Recognize(ctx context.Context, page int, region Region) (Result, error)
}

// Region is a rectangle in page fractions: X and Y locate the top-left
// corner, W and H the size, all within [0, 1].
type Region struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// FullPage selects the whole page.
var FullPage = Region{X: 0, Y: 0, W: 1, H: 1}

// Validate checks that r is a non-empty rectangle inside the page.
func (r Region) Validate() error {
	switch {
	case r.W <= 0 || r.H <= 0:
		return fmt.Errorf("%w: empty region %v", ErrInvalidRegion, r)
	case r.X < 0 || r.Y < 0 || r.X+r.W > 1+1e-9 || r.Y+r.H > 1+1e-9:
		return fmt.Errorf("%w: %v outside the page", ErrInvalidRegion, r)
	}
	return nil
}

// Contains reports whether the point (x, y), in page fractions, is inside r.
func (r Region) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func (r Region) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", r.X, r.Y, r.W, r.H)
}

// ParseRegion reads "x,y,w,h" fractions.
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("%w: %q is not x,y,w,h", ErrInvalidRegion, s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Region{}, fmt.Errorf("%w: %q: %w", ErrInvalidRegion, s, err)
		}
		v[i] = f
	}
	r := Region{X: v[0], Y: v[1], W: v[2], H: v[3]}
	return r, r.Validate()
}

// CleanText trims OCR output and normalises typographic quotes, keeping
// line breaks that separate coordinate values.
func CleanText(s string) string {
	s = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"\r\n", "\n",
	).Replace(s)

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
