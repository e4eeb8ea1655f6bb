// Package export writes the per-page coordinate table of a batch.
//
// Numbers are written as fixed-decimal text with a point separator so
// spreadsheet tools never reinterpret them with a locale. Rows are named
// "<document>_<page>" and come out in page order. Pages without a
// coordinate pair keep their row with "0.000" values.
//
// Main Functions:
//
// - Rows: build the table from pipeline records
// - WriteCSV: the spreadsheet table
// - WritePDFReport: a printable report (fpdf)
// - WriteHTML: an HTML summary rendered from Markdown (goldmark)
package export

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/pipeline"
)

// Decimals is the number of decimals written for coordinate values.
const Decimals = 3

// Row is one line of the export table. X and Y are already formatted.
type Row struct {
	Name       string
	Page       int
	X, Y       string
	Tier       convert.Tier
	Method     string
	Source     string
	Target     string
	Confidence float64
	Note       string // Warning or error, if any
}

// DocumentName strips directories and the extension from a file name.
func DocumentName(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return "document"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Rows builds the table rows of records, sorted by page.
func Rows(document string, records []pipeline.Record) []Row {
	sorted := append([]pipeline.Record(nil), records...)
	pipeline.SortByPage(sorted)

	name := DocumentName(document)
	rows := make([]Row, 0, len(sorted))
	for _, rec := range sorted {
		row := Row{
			Name:       name + "_" + strconv.Itoa(rec.Page),
			Page:       rec.Page,
			X:          FormatValue(0),
			Y:          FormatValue(0),
			Tier:       convert.Unknown,
			Confidence: rec.Confidence,
		}
		switch {
		case rec.Err != nil:
			row.Note = rec.Err.Error()
		default:
			res := rec.Result
			row.X, row.Y = FormatValue(res.X), FormatValue(res.Y)
			row.Tier = res.Tier
			row.Method = res.Method
			row.Source, row.Target = res.Source, res.Target
			row.Note = res.Warning
			if res.Err != nil {
				row.Note = res.Err.Error()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatValue writes v with Decimals decimals and a point separator.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', Decimals, 64)
}
