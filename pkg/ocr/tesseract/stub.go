//go:build !ocr

// Package tesseract runs the local Tesseract engine on page crops.
//
// This is the stub used when the "ocr" build tag is not set; New returns
// ErrOCRNotEnabled. Rebuild with:
//
//	go build -tags ocr
package tesseract

import (
	"context"
	"image"

	"github.com/gardar/ocrcoords/pkg/ocr"
)

// Engine is a stub that never recognizes anything.
type Engine struct {
	Languages []string
	Whitelist string
}

// New returns ErrOCRNotEnabled.
func New(langs ...string) (*Engine, error) {
	return nil, ErrOCRNotEnabled
}

// RecognizeImage returns ErrOCRNotEnabled.
func (e *Engine) RecognizeImage(ctx context.Context, img image.Image) (ocr.Result, error) {
	return ocr.Result{}, ErrOCRNotEnabled
}
