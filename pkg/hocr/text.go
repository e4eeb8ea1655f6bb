package hocr

import (
	"strings"

	"github.com/gardar/ocrcoords/pkg/ocr"
)

// Text returns the page text, one line per hOCR line.
func (p Page) Text() string {
	res := p.TextIn(ocr.FullPage)
	return res.Text
}

// TextIn returns the words whose centre lies inside region, line by line,
// with their mean confidence. Region fractions are taken relative to the
// page bounding box.
func (p Page) TextIn(region ocr.Region) ocr.Result {
	w, h := p.BBox.Width(), p.BBox.Height()
	if w <= 0 || h <= 0 {
		return ocr.Result{}
	}

	var lines []string
	var sum float64
	var n int
	for _, line := range p.Lines {
		var words []string
		for _, word := range line.Words {
			cx, cy := word.BBox.Center()
			if !region.Contains((cx-p.BBox.X1)/w, (cy-p.BBox.Y1)/h) {
				continue
			}
			words = append(words, word.Text)
			sum += word.Confidence
			n++
		}
		if len(words) > 0 {
			lines = append(lines, strings.Join(words, " "))
		}
	}

	res := ocr.Result{Text: strings.Join(lines, "\n")}
	if n > 0 {
		res.Confidence = sum / float64(n)
	}
	return res
}

// Text returns the text of all pages, separated by blank lines.
func (d Document) Text() string {
	pages := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		pages[i] = p.Text()
	}
	return strings.Join(pages, "\n\n")
}
