package annotate

import (
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/ocrcoords/pkg/export"
	"github.com/gardar/ocrcoords/pkg/ocr"
	"github.com/gardar/ocrcoords/pkg/pipeline"
)

const (
	labelPadding = 4   // Points between the label border and its text
	labelGap     = 6   // Points between the region outline and the label
	lineSpacing  = 1.3 // Line height as a multiple of the font size
)

// Label returns the text lines drawn for a record.
func Label(rec pipeline.Record) []string {
	if rec.Err != nil {
		return []string{"No coordinates: " + rec.Err.Error()}
	}

	res := rec.Result
	lines := []string{fmt.Sprintf("Read (%s): X %s  Y %s",
		res.Source, export.FormatValue(rec.Match.X), export.FormatValue(rec.Match.Y))}
	switch {
	case res.OK():
		lines = append(lines, fmt.Sprintf("%s (%s): X %s  Y %s",
			res.Target, res.Tier, export.FormatValue(res.X), export.FormatValue(res.Y)))
	case res.Err != nil:
		lines = append(lines, "Not converted: "+res.Err.Error())
	}
	if res.Warning != "" {
		lines = append(lines, "Warning: "+res.Warning)
	}
	return lines
}

// drawCoordinateLayer draws the region outline and the coordinate label of
// rec onto a layer of the current page, w x h points in size. The page
// number makes the layer name unique.
func drawCoordinateLayer(
	pdf *fpdf.Fpdf,
	rec pipeline.Record,
	w, h float64,
	cfg Config,
	logger io.Writer,
) {
	layer := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", cfg.LayerName, rec.Page), true)
	pdf.BeginLayer(layer)
	defer pdf.EndLayer()

	// Region outline, in page points.
	rx, ry := cfg.Region.X*w, cfg.Region.Y*h
	rw, rh := cfg.Region.W*w, cfg.Region.H*h
	if cfg.Region != ocr.FullPage {
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(1.5)
		pdf.Rect(rx, ry, rw, rh, "D")
	}

	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
	lines := Label(rec)
	encoded := make([]string, len(lines))
	boxW := 0.0
	for i, l := range lines {
		var ok bool
		encoded[i], ok = latin1(l)
		if !ok {
			fmt.Fprintf(logger, "Warning: page %d: label characters replaced in %q\n", rec.Page, l)
		}
		boxW = max(boxW, pdf.GetStringWidth(encoded[i]))
		if cfg.Debug {
			fmt.Fprintf(logger, "Page %d: %s\n", rec.Page, l)
		}
	}
	lineH := cfg.Font.Size * lineSpacing
	boxW += 2 * labelPadding
	boxH := float64(len(lines))*lineH + 2*labelPadding

	// Below the region if it fits, otherwise above it, always on the page.
	lx, ly := rx, ry+rh+labelGap
	if cfg.Region == ocr.FullPage {
		lx, ly = labelGap, labelGap
	} else if ly+boxH > h {
		ly = ry - boxH - labelGap
	}
	lx = max(0, min(lx, w-boxW))
	ly = max(0, min(ly, h-boxH))

	pdf.SetAlpha(0.85, "Normal")
	pdf.SetFillColor(255, 255, 204)
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.5)
	border := "F"
	if cfg.Debug {
		border = "FD"
	}
	pdf.Rect(lx, ly, boxW, boxH, border)
	pdf.SetAlpha(1, "Normal")

	pdf.SetTextColor(0, 0, 128)
	for i, l := range encoded {
		baseline := ly + labelPadding + float64(i)*lineH + cfg.Font.Size*cfg.Font.AscentRatio
		pdf.Text(lx+labelPadding, baseline, l)
	}
}
