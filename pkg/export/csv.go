package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gardar/ocrcoords/pkg/pipeline"
)

// CSVOptions shape the CSV output. The zero value writes the bare
// name, X, Y table.
type CSVOptions struct {
	Header   bool // Write a header line
	Detailed bool // Add precision, method, systems, confidence and notes
	Comma    rune // Field separator (0 = ',')
}

// WriteCSV writes the coordinate table of records.
func WriteCSV(w io.Writer, document string, records []pipeline.Record, opts CSVOptions) error {
	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}

	if opts.Header {
		header := []string{"name", "x", "y"}
		if opts.Detailed {
			header = append(header, "precision", "method", "source", "target", "confidence", "note")
		}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, row := range Rows(document, records) {
		line := []string{row.Name, row.X, row.Y}
		if opts.Detailed {
			line = append(line,
				string(row.Tier), row.Method, row.Source, row.Target,
				strconv.FormatFloat(row.Confidence, 'f', 1, 64), row.Note)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("failed to write CSV row %s: %w", row.Name, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
