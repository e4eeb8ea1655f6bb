// Package gdocai reads coordinate regions from documents processed by
// Google Document AI.
//
// A PDF (or page image) is sent once to a Document AI OCR processor. The
// response is converted into hOCR pages, so region queries behave exactly
// like pre-computed hOCR input: words are selected by the centre of their
// bounding box and confidences come from the token layouts.
//
// Key Features:
//
// - Process PDFs and images with a Document AI processor
// - Answer ocr.Recognizer queries from the processed document
// - Serve the page images returned by the API as an ocr.PageSource
// - Extract form fields (Form Parser processors) as a name/value map
// - Dump raw API responses as JSON for debugging
//
// Main Functions:
//
// - ProcessDocument: Sends a document to Google Document AI for processing
// - DocumentFromProto: Converts a Document AI response into hOCR pages
// - Process: ProcessDocument followed by NewRecognizer
// - ExtractFormFields: Gets form fields from the document as a map
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR
// - Authentication via GOOGLE_APPLICATION_CREDENTIALS environment variable
// (or Config.CredentialsFile)
package gdocai

import (
	"errors"
	"fmt"
)

// ErrMissingConfig is returned when a required processor setting is empty.
var ErrMissingConfig = errors.New("incomplete Document AI configuration")

// Config identifies the Document AI processor to call.
type Config struct {
	ProjectID       string // Google Cloud project
	Location        string // Processor region, e.g. "us" or "eu"
	ProcessorID     string // OCR or Form Parser processor
	CredentialsFile string // Service account key; empty = GOOGLE_APPLICATION_CREDENTIALS
}

// Validate checks that the processor can be addressed.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrMissingConfig)
	}
	var missing []string
	if c.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if c.Location == "" {
		missing = append(missing, "location")
	}
	if c.ProcessorID == "" {
		missing = append(missing, "processor_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrMissingConfig, missing)
	}
	return nil
}

// processorName builds the resource name of the processor.
func (c *Config) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}
