package gdocai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	_ "golang.org/x/image/tiff"

	"github.com/gardar/ocrcoords/pkg/hocr"
	"github.com/gardar/ocrcoords/pkg/ocr"
)

// ErrNoImage is returned when the response carries no image for a page.
var ErrNoImage = errors.New("no image found in Document AI page")

// Recognizer answers region queries from a processed document. It also
// serves the page images returned by the API.
type Recognizer struct {
	hocr.Recognizer
	Raw *documentaipb.Document
}

// NewRecognizer wraps a Document AI response.
func NewRecognizer(doc *documentaipb.Document) *Recognizer {
	return &Recognizer{
		Recognizer: hocr.Recognizer{Pages: DocumentFromProto(doc).Pages},
		Raw:        doc,
	}
}

// Process sends content to Document AI and returns a Recognizer over the
// response.
func Process(ctx context.Context, content []byte, mimeType string, cfg *Config) (*Recognizer, error) {
	doc, err := ProcessDocument(ctx, content, mimeType, cfg)
	if err != nil {
		return nil, err
	}
	return NewRecognizer(doc), nil
}

// PageImage returns the encoded image of a page, numbered from 1.
func (r *Recognizer) PageImage(page int) ([]byte, error) {
	pages := r.Raw.GetPages()
	if page < 1 || page > len(pages) {
		return nil, fmt.Errorf("%w: page %d of %d", ocr.ErrNoPage, page, len(pages))
	}
	content := pages[page-1].GetImage().GetContent()
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: page %d", ErrNoImage, page)
	}
	return content, nil
}

// Page implements ocr.PageSource.
func (r *Recognizer) Page(ctx context.Context, page int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := r.PageImage(page)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image of page %d: %w", page, err)
	}
	return img, nil
}
