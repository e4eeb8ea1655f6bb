package export

import (
	"fmt"
	"io"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrcoords/pkg/pipeline"
)

// ReportConfig holds options for the PDF report
type ReportConfig struct {
	Title     string    // Report title (empty = document name)
	FontName  string    // Core font family
	FontSize  float64   // Body font size in points
	Generated time.Time // Date printed in the header (zero = now)
}

// DefaultReportConfig returns a config with sensible defaults
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		FontName: "Helvetica",
		FontSize: 9,
	}
}

// reportColumns are the table columns and their widths in millimetres.
var reportColumns = []struct {
	title string
	width float64
	align string
}{
	{"Page", 40, "L"},
	{"X", 28, "R"},
	{"Y", 30, "R"},
	{"Precision", 22, "C"},
	{"Method", 32, "L"},
	{"Conf.", 14, "R"},
	{"Note", 101, "L"},
}

// WritePDFReport writes a landscape A4 report of records.
func WritePDFReport(w io.Writer, document string, records []pipeline.Record, cfg ReportConfig) error {
	if cfg.FontName == "" {
		cfg.FontName = DefaultReportConfig().FontName
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = DefaultReportConfig().FontSize
	}
	if cfg.Title == "" {
		cfg.Title = "Coordinates: " + DocumentName(document)
	}
	if cfg.Generated.IsZero() {
		cfg.Generated = time.Now()
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(cfg.Title, true)
	pdf.SetCreator("ocrcoords", false)
	pdf.SetCreationDate(cfg.Generated)
	pdf.SetAutoPageBreak(true, 15)

	rows := Rows(document, records)
	summary := pipeline.Summarize(records)

	header := func() {
		pdf.SetFont(cfg.FontName, "B", cfg.FontSize)
		pdf.SetFillColor(220, 220, 220)
		for _, c := range reportColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(cfg.FontName, "", cfg.FontSize)
	}
	pdf.SetHeaderFunc(func() {
		pdf.SetFont(cfg.FontName, "B", cfg.FontSize+4)
		pdf.CellFormat(0, 8, latin1(cfg.Title), "", 1, "L", false, 0, "")
		pdf.SetFont(cfg.FontName, "", cfg.FontSize)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s - %d page(s), %d extracted, %d converted",
			cfg.Generated.Format("2006-01-02 15:04"), summary.Pages, summary.Extracted, summary.Converted),
			"", 1, "L", false, 0, "")
		pdf.Ln(2)
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(cfg.FontName, "I", cfg.FontSize-1)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	for i, row := range rows {
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		cells := []string{
			row.Name, row.X, row.Y, string(row.Tier), row.Method,
			fmt.Sprintf("%.0f", row.Confidence), truncate(row.Note, 70),
		}
		for j, c := range reportColumns {
			pdf.CellFormat(c.width, 6, latin1(cells[j]), "1", 0, c.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF report: %w", err)
	}
	return nil
}

// latin1 converts text to the single-byte encoding of the PDF core fonts.
// Characters outside it are replaced.
func latin1(s string) string {
	out, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		b := make([]rune, 0, len(s))
		for _, r := range s {
			if _, ok := charmap.Windows1252.EncodeRune(r); ok {
				b = append(b, r)
			} else {
				b = append(b, '?')
			}
		}
		out, _ = charmap.Windows1252.NewEncoder().String(string(b))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
