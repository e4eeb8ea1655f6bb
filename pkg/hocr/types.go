package hocr

// Document is a parsed hOCR file.
type Document struct {
	Title    string            // Document title
	Language string            // Document language
	Metadata map[string]string // ocr-system, ocr-capabilities, ...
	Pages    []Page            // Pages in document order
}

// Page is one page of recognized text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID        string      // Unique identifier
	Number    int         // ppageno property, 0 when absent
	ImageName string      // Source image filename
	BBox      BoundingBox // Page coordinates, in pixels
	Lines     []Line      // Lines in document order
}

// Line is a line of text
// Corresponds to hOCR element with class: 'ocr_line' (or a bare run of words)
type Line struct {
	ID    string
	BBox  BoundingBox
	Words []Word
}

// Word is a recognized word with bounding box
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID         string
	Text       string
	BBox       BoundingBox
	Confidence float64 // x_wconf, 0-100
}

// BoundingBox is a rectangle in page pixels, from the hOCR 'bbox' property.
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right one.
type BoundingBox struct {
	X1, Y1, X2, Y2 float64
}

// Width returns the horizontal extent of b.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of b.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// Center returns the midpoint of b.
func (b BoundingBox) Center() (float64, float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// IsZero reports whether b was never set.
func (b BoundingBox) IsZero() bool { return b == BoundingBox{} }

// union grows b to cover o.
func (b BoundingBox) union(o BoundingBox) BoundingBox {
	if b.IsZero() {
		return o
	}
	if o.IsZero() {
		return b
	}
	return BoundingBox{
		X1: min(b.X1, o.X1), Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2), Y2: max(b.Y2, o.Y2),
	}
}
