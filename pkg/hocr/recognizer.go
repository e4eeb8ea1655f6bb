package hocr

import (
	"context"
	"fmt"

	"github.com/gardar/ocrcoords/pkg/ocr"
)

// Recognizer answers region queries from pre-computed hOCR. Pages are
// numbered from 1 in document order.
type Recognizer struct {
	Pages []Page
}

// NewRecognizer reads one or more hOCR files; their pages are numbered in
// the order given.
func NewRecognizer(paths ...string) (*Recognizer, error) {
	r := &Recognizer{}
	for _, path := range paths {
		doc, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		r.Pages = append(r.Pages, doc.Pages...)
	}
	return r, nil
}

// PageCount returns the number of pages available.
func (r *Recognizer) PageCount() int { return len(r.Pages) }

// Recognize implements ocr.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context, page int, region ocr.Region) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	if page < 1 || page > len(r.Pages) {
		return ocr.Result{}, fmt.Errorf("%w: page %d of %d", ocr.ErrNoPage, page, len(r.Pages))
	}
	if err := region.Validate(); err != nil {
		return ocr.Result{}, err
	}
	return r.Pages[page-1].TextIn(region), nil
}
