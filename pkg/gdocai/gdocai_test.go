package gdocai

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/google/go-cmp/cmp"

	"github.com/gardar/ocrcoords/pkg/ocr"
)

func anchor(start, end int64) *documentaipb.Document_TextAnchor {
	return &documentaipb.Document_TextAnchor{
		TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
	}
}

// layout builds a layout over text[start:end] with a normalized box.
func layout(start, end int64, x1, y1, x2, y2 float32, conf float32) *documentaipb.Document_Page_Layout {
	return &documentaipb.Document_Page_Layout{
		TextAnchor: anchor(start, end),
		Confidence: conf,
		BoundingPoly: &documentaipb.BoundingPoly{
			NormalizedVertices: []*documentaipb.NormalizedVertex{
				{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
			},
		},
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	img.SetGray(0, 0, color.Gray{Y: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// Text: "Lambert II\nX: 594368.498\nY: 1843413.039\n"
//
//	0         1         2         3         4
//	0123456789012345678901234567890123456789012
func sampleDoc(t *testing.T) *documentaipb.Document {
	text := "Lambert II\nX: 594368.498\nY: 1843413.039\n"
	return &documentaipb.Document{
		Text: text,
		Pages: []*documentaipb.Document_Page{{
			PageNumber: 1,
			Dimension:  &documentaipb.Document_Page_Dimension{Width: 1000, Height: 2000, Unit: "pixels"},
			Image:      &documentaipb.Document_Page_Image{Content: pngBytes(t), MimeType: "image/png"},
			DetectedLanguages: []*documentaipb.Document_Page_DetectedLanguage{
				{LanguageCode: "fr"},
			},
			Lines: []*documentaipb.Document_Page_Line{
				{Layout: layout(0, 11, 0.05, 0.05, 0.3, 0.08, 0.9)},
				{Layout: layout(11, 25, 0.6, 0.8, 0.95, 0.82, 0.9)},
				{Layout: layout(25, 40, 0.6, 0.85, 0.95, 0.87, 0.9)},
			},
			Tokens: []*documentaipb.Document_Page_Token{
				{Layout: layout(0, 8, 0.05, 0.05, 0.15, 0.08, 0.99)},
				{Layout: layout(8, 11, 0.16, 0.05, 0.3, 0.08, 0.97)},
				{Layout: layout(11, 14, 0.6, 0.8, 0.65, 0.82, 0.8)},
				{Layout: layout(14, 25, 0.66, 0.8, 0.95, 0.82, 0.9)},
				{Layout: layout(25, 28, 0.6, 0.85, 0.65, 0.87, 0.8)},
				{Layout: layout(28, 40, 0.66, 0.85, 0.95, 0.87, 0.9)},
			},
			FormFields: []*documentaipb.Document_Page_FormField{
				{FieldName: &documentaipb.Document_Page_Layout{TextAnchor: anchor(11, 13)}, FieldValue: &documentaipb.Document_Page_Layout{TextAnchor: anchor(14, 24)}},
				{FieldName: &documentaipb.Document_Page_Layout{TextAnchor: anchor(25, 27)}, FieldValue: &documentaipb.Document_Page_Layout{TextAnchor: anchor(28, 39)}},
			},
		}},
	}
}

func TestDocumentFromProto(t *testing.T) {
	doc := DocumentFromProto(sampleDoc(t))
	if doc.Language != "fr" || len(doc.Pages) != 1 {
		t.Fatalf("doc = %q, %d pages", doc.Language, len(doc.Pages))
	}
	p := doc.Pages[0]
	if p.Number != 1 || p.BBox.Width() != 1000 || p.BBox.Height() != 2000 {
		t.Errorf("page = %d %v", p.Number, p.BBox)
	}
	var lines []string
	for _, l := range p.Lines {
		var words []string
		for _, w := range l.Words {
			words = append(words, w.Text)
		}
		lines = append(lines, strings.Join(words, "|"))
	}
	want := []string{"Lambert|II", "X:|594368.498", "Y:|1843413.039"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
}

func TestRecognizer(t *testing.T) {
	r := NewRecognizer(sampleDoc(t))
	res, err := r.Recognize(context.Background(), 1, ocr.Region{X: 0.5, Y: 0.75, W: 0.5, H: 0.25})
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "X: 594368.498\nY: 1843413.039" {
		t.Errorf("text = %q", res.Text)
	}
	if res.Confidence < 84.9 || res.Confidence > 85.1 {
		t.Errorf("confidence = %v, want 85", res.Confidence)
	}

	if _, err := r.Recognize(context.Background(), 2, ocr.FullPage); !errors.Is(err, ocr.ErrNoPage) {
		t.Errorf("page 2: err = %v", err)
	}
}

func TestRecognizerPageImage(t *testing.T) {
	r := NewRecognizer(sampleDoc(t))
	img, err := r.Page(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("image bounds = %v", img.Bounds())
	}

	doc := sampleDoc(t)
	doc.Pages[0].Image = nil
	if _, err := NewRecognizer(doc).PageImage(1); !errors.Is(err, ErrNoImage) {
		t.Errorf("err = %v, want ErrNoImage", err)
	}
}

func TestPageWithoutDimension(t *testing.T) {
	doc := sampleDoc(t)
	doc.Pages[0].Dimension = nil
	p := DocumentFromProto(doc).Pages[0]
	if p.BBox.Width() != 1 || p.BBox.Height() != 1 {
		t.Fatalf("bbox = %v", p.BBox)
	}
	res := p.TextIn(ocr.Region{X: 0, Y: 0, W: 0.5, H: 0.1})
	if res.Text != "Lambert II" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestUnassignedTokens(t *testing.T) {
	doc := sampleDoc(t)
	doc.Pages[0].Lines = nil
	p := DocumentFromProto(doc).Pages[0]
	if len(p.Lines) != 6 {
		t.Errorf("lines = %d, want one per token", len(p.Lines))
	}
}

func TestExtractFormFields(t *testing.T) {
	got := ExtractFormFields(sampleDoc(t))
	want := map[string][]string{"X": {"594368.498"}, "Y": {"1843413.039"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestTextFromAnchorClamps(t *testing.T) {
	if got := textFromAnchor(anchor(5, 100), "héllo wörld"); got != " wörld" {
		t.Errorf("got %q", got)
	}
	if got := textFromAnchor(nil, "abc"); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestToJSON(t *testing.T) {
	s, err := ToJSON(&documentaipb.Document{Text: "X: 1"})
	if err != nil || !strings.Contains(s, `"text"`) {
		t.Errorf("ToJSON(proto) = %q, %v", s, err)
	}
	s, err = ToJSON(map[string][]string{"X": {"1"}})
	if err != nil || !strings.Contains(s, `"X"`) {
		t.Errorf("ToJSON(map) = %q, %v", s, err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (&Config{ProjectID: "p", Location: "eu"}).Validate(); !errors.Is(err, ErrMissingConfig) {
		t.Errorf("err = %v", err)
	}
	c := &Config{ProjectID: "p", Location: "eu", ProcessorID: "abc"}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := c.processorName(); got != "projects/p/locations/eu/processors/abc" {
		t.Errorf("processorName = %q", got)
	}
	if _, err := ProcessDocument(context.Background(), nil, "", &Config{}); !errors.Is(err, ErrMissingConfig) {
		t.Errorf("ProcessDocument err = %v", err)
	}
}
