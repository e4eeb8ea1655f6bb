// Package annotate writes an annotated copy of a processed document.
//
// Each page with a record gets an optional content layer named
// "Coordinates (Page N)" that outlines the region that was read and shows
// the coordinates found there next to their converted values. Layers can be
// toggled off in compatible PDF readers to see the untouched page.
//
// Main Functions:
//
// - ApplyToPDF: annotates a copy of an existing PDF
// - AssembleFromImages: builds an annotated PDF from page images
// - CheckExistingLayers: detects earlier annotations to prevent duplication
package annotate

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/ocrcoords/pkg/pipeline"
)

// ErrLayerExists is returned when the input already carries coordinate
// layers and Config.Force is not set.
var ErrLayerExists = errors.New("document already annotated")

// ApplyToPDF imports every page of inputPDFData and draws the coordinate
// layer of the matching record on top. Pages without a record are copied
// unchanged.
func ApplyToPDF(inputPDFData []byte, records []pipeline.Record, config Config) ([]byte, error) {
	if len(inputPDFData) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to annotate")
	}
	if err := config.Region.Validate(); err != nil {
		return nil, err
	}
	logger := getLogger(config)

	layerResult, err := CheckExistingLayers(inputPDFData, config.LayerName)
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	if config.Debug && len(layerResult.Layers) > 0 {
		fmt.Fprintln(logger, "Existing layers detected in PDF:")
		for i, layer := range layerResult.Layers {
			fmt.Fprintf(logger, "  %d. %q\n", i+1, layer)
		}
	}
	for _, warning := range layerResult.Warnings {
		fmt.Fprintln(logger, "Warning:", warning)
	}
	if layerResult.HasLayer && !config.Force {
		return nil, fmt.Errorf("%w (layer '%s'): use -force to annotate again", ErrLayerExists, layerResult.LayerName)
	} else if layerResult.HasLayer {
		fmt.Fprintln(logger, "Warning: file already annotated; annotating again due to -force will duplicate the labels")
	}

	return modifyExistingPDF(inputPDFData, byPage(records), config, logger)
}

// modifyExistingPDF imports pages from an existing PDF and overlays the
// coordinate layers.
func modifyExistingPDF(
	inputPDFData []byte,
	records map[int]pipeline.Record,
	config Config,
	logger io.Writer,
) (out []byte, err error) {
	// gofpdi panics on input it cannot parse.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to import PDF: %v", r)
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(inputPDFData))

	tpl := importer.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	sizes := importer.GetPageSizes()
	for page := 1; page <= len(sizes); page++ {
		if page > 1 {
			tpl = importer.ImportPageFromStream(pdf, &rs, page, "/MediaBox")
		}
		w, h := sizes[page]["/MediaBox"]["w"], sizes[page]["/MediaBox"]["h"]
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, h)

		if rec, ok := records[page]; ok {
			drawCoordinateLayer(pdf, rec, w, h, config, logger)
		}
	}
	for page := range records {
		if page > len(sizes) {
			fmt.Fprintf(logger, "Warning: record for page %d but the PDF has %d page(s)\n", page, len(sizes))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error writing annotated PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// AssembleFromImages builds a PDF with one page per image, sized in points
// after the image pixels, and draws the coordinate layers on top. Images
// may be PNG, JPEG, GIF or TIFF.
func AssembleFromImages(imagesData [][]byte, records []pipeline.Record, config Config) ([]byte, error) {
	if len(imagesData) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}
	if err := config.Region.Validate(); err != nil {
		return nil, err
	}
	logger := getLogger(config)
	byNum := byPage(records)

	pdf := fpdf.New("P", "pt", "A4", "")
	for i, data := range imagesData {
		if len(data) == 0 {
			return nil, fmt.Errorf("image %d is empty", i+1)
		}
		data, imageType, size, err := pageImage(data)
		if err != nil {
			return nil, fmt.Errorf("image %d has invalid format: %w", i+1, err)
		}
		if config.Debug {
			fmt.Fprintf(logger, "Image %d is of type: %s\n", i+1, imageType)
		}
		w, h := float64(size.X), float64(size.Y)
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		imageName := fmt.Sprintf("img%d", i)
		opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
		pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(data))
		pdf.ImageOptions(imageName, 0, 0, w, h, false, opts, 0, "")

		if rec, ok := byNum[i+1]; ok {
			drawCoordinateLayer(pdf, rec, w, h, config, logger)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func byPage(records []pipeline.Record) map[int]pipeline.Record {
	m := make(map[int]pipeline.Record, len(records))
	for _, rec := range records {
		m[rec.Page] = rec
	}
	return m
}
