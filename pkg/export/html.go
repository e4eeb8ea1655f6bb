package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/pipeline"
)

// Markdown renders the coordinate table of records as a Markdown document
// with a GFM table.
func Markdown(document string, records []pipeline.Record) string {
	var b strings.Builder
	s := pipeline.Summarize(records)

	fmt.Fprintf(&b, "# Coordinates: %s\n\n", escapeCell(DocumentName(document)))
	fmt.Fprintf(&b, "%d page(s), %d extracted, %d converted", s.Pages, s.Extracted, s.Converted)
	for _, tier := range []convert.Tier{convert.Exact, convert.High, convert.Approximate} {
		if n := s.ByTier[tier]; n > 0 {
			fmt.Fprintf(&b, ", %d %s", n, tier)
		}
	}
	b.WriteString(".\n\n")

	b.WriteString("| Page | X | Y | Precision | Method | Note |\n")
	b.WriteString("|---|--:|--:|:-:|---|---|\n")
	for _, row := range Rows(document, records) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			escapeCell(row.Name), row.X, row.Y, row.Tier, escapeCell(row.Method), escapeCell(row.Note))
	}
	return b.String()
}

// escapeCell keeps text from breaking the table or injecting markup.
func escapeCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = html.EscapeString(s)
	return strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`).Replace(s)
}

// WriteHTML writes a standalone HTML page summarizing records.
func WriteHTML(w io.Writer, document string, records []pipeline.Record) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(document, records)), &body); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:2px 6px}</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString("Coordinates: "+DocumentName(document)), body.String())
	if err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	return nil
}
