package gdocai

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrcoords/pkg/hocr"
)

// DocumentFromProto converts a Document AI response into hOCR pages
func DocumentFromProto(docProto *documentaipb.Document) hocr.Document {
	doc := hocr.Document{
		Title:    "Document OCR",
		Language: getDocumentLanguage(docProto),
		Metadata: map[string]string{
			"ocr-system":          "Document AI OCR",
			"ocr-number-of-pages": fmt.Sprintf("%d", len(docProto.GetPages())),
		},
	}
	for i, page := range docProto.GetPages() {
		number := int(page.GetPageNumber())
		if number == 0 {
			number = i + 1
		}
		doc.Pages = append(doc.Pages, PageFromProto(page, docProto.GetText(), number))
	}

	// Sort pages by number if there are multiple
	sort.SliceStable(doc.Pages, func(i, j int) bool {
		return doc.Pages[i].Number < doc.Pages[j].Number
	})
	return doc
}

// PageFromProto converts a single Document AI page to an hOCR page. Tokens
// are grouped under the line whose text anchor contains them; tokens
// outside every line form their own line.
func PageFromProto(page *documentaipb.Document_Page, fullText string, pageNumber int) hocr.Page {
	dim := page.GetDimension()
	ocrPage := hocr.Page{
		ID:     fmt.Sprintf("page_%d", pageNumber),
		Number: pageNumber,
	}
	if dim.GetWidth() > 0 && dim.GetHeight() > 0 {
		ocrPage.BBox = hocr.BoundingBox{X2: float64(dim.GetWidth()), Y2: float64(dim.GetHeight())}
	} else {
		// Without dimensions, work in normalized page space
		ocrPage.BBox = hocr.BoundingBox{X2: 1, Y2: 1}
	}

	assigned := make(map[int]bool)
	for lidx, line := range page.GetLines() {
		ocrLine := hocr.Line{
			ID:   fmt.Sprintf("line_%d_%d", pageNumber, lidx),
			BBox: boundingBox(line.GetLayout(), ocrPage.BBox),
		}
		for tidx, token := range page.GetTokens() {
			if assigned[tidx] || !isElementInParent(token.GetLayout(), line.GetLayout()) {
				continue
			}
			assigned[tidx] = true
			if w, ok := wordFromToken(token, fullText, ocrPage.BBox, pageNumber, tidx); ok {
				ocrLine.Words = append(ocrLine.Words, w)
			}
		}
		if len(ocrLine.Words) > 0 {
			ocrPage.Lines = append(ocrPage.Lines, ocrLine)
		}
	}

	for tidx, token := range page.GetTokens() {
		if assigned[tidx] {
			continue
		}
		if w, ok := wordFromToken(token, fullText, ocrPage.BBox, pageNumber, tidx); ok {
			ocrPage.Lines = append(ocrPage.Lines, hocr.Line{
				ID:    fmt.Sprintf("line_%d_t%d", pageNumber, tidx),
				BBox:  w.BBox,
				Words: []hocr.Word{w},
			})
		}
	}
	return ocrPage
}

func wordFromToken(token *documentaipb.Document_Page_Token, fullText string, page hocr.BoundingBox, pageNumber, idx int) (hocr.Word, bool) {
	text := strings.TrimSpace(textFromLayout(token.GetLayout(), fullText))
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return hocr.Word{}, false
	}
	return hocr.Word{
		ID:         fmt.Sprintf("word_%d_%d", pageNumber, idx),
		Text:       text,
		BBox:       boundingBox(token.GetLayout(), page),
		Confidence: float64(token.GetLayout().GetConfidence()) * 100,
	}, true
}

// boundingBox converts Document AI coordinates to page pixels. Normalized
// vertices (0-1) are scaled to the page; pixel vertices are used as is.
func boundingBox(layout *documentaipb.Document_Page_Layout, page hocr.BoundingBox) hocr.BoundingBox {
	poly := layout.GetBoundingPoly()
	if poly == nil {
		return hocr.BoundingBox{}
	}

	var xs, ys []float64
	if nv := poly.GetNormalizedVertices(); len(nv) > 0 {
		for _, v := range nv {
			xs = append(xs, float64(v.GetX())*page.Width())
			ys = append(ys, float64(v.GetY())*page.Height())
		}
	} else {
		for _, v := range poly.GetVertices() {
			xs = append(xs, float64(v.GetX()))
			ys = append(ys, float64(v.GetY()))
		}
	}
	if len(xs) == 0 {
		return hocr.BoundingBox{}
	}

	b := hocr.BoundingBox{X1: math.Inf(1), Y1: math.Inf(1), X2: math.Inf(-1), Y2: math.Inf(-1)}
	for i := range xs {
		b.X1, b.X2 = min(b.X1, xs[i]), max(b.X2, xs[i])
		b.Y1, b.Y2 = min(b.Y1, ys[i]), max(b.Y2, ys[i])
	}
	return b
}

// getDocumentLanguage finds the most common language in the document
// by counting language occurrences across pages and tokens
func getDocumentLanguage(doc *documentaipb.Document) string {
	langCount := make(map[string]int)
	for _, page := range doc.GetPages() {
		for _, lang := range page.GetDetectedLanguages() {
			langCount[lang.GetLanguageCode()]++
		}
		for _, token := range page.GetTokens() {
			for _, lang := range token.GetDetectedLanguages() {
				langCount[lang.GetLanguageCode()]++
			}
		}
	}

	var mostCommonLang string
	var highestCount int
	for lang, count := range langCount {
		if lang == "" {
			continue
		}
		if count > highestCount || (count == highestCount && lang < mostCommonLang) {
			highestCount = count
			mostCommonLang = lang
		}
	}
	return mostCommonLang
}

// isElementInParent checks if an element's text anchor lies within the parent's
func isElementInParent(elementLayout, parentLayout *documentaipb.Document_Page_Layout) bool {
	element := elementLayout.GetTextAnchor().GetTextSegments()
	parent := parentLayout.GetTextAnchor().GetTextSegments()
	if len(element) == 0 || len(parent) == 0 {
		return false
	}
	return element[0].GetStartIndex() >= parent[0].GetStartIndex() &&
		element[0].GetEndIndex() <= parent[0].GetEndIndex()
}
