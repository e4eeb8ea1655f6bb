package gdocai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	return textFromAnchor(layout.GetTextAnchor(), fullText)
}

// textFromAnchor concatenates the segments of a text anchor. Indexes are
// rune offsets into the document text and are clamped to it.
func textFromAnchor(anchor *documentaipb.Document_TextAnchor, fullText string) string {
	if anchor == nil {
		return ""
	}
	runes := []rune(fullText)
	total := len(runes)

	var result strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start := int(seg.GetStartIndex())
		end := int(seg.GetEndIndex())
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start > end {
			start = end
		}
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}
