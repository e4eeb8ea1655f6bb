//go:build ocr

// Package tesseract runs the local Tesseract engine on page crops.
//
// It wraps gosseract and requires Tesseract with the English and French
// language data. On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-fra
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/ocrcoords/pkg/ocr"
)

// Engine recognizes page crops with Tesseract. A fresh gosseract client is
// used per call, so an Engine is safe for concurrent use.
type Engine struct {
	Languages []string
	Whitelist string
	Mode      gosseract.PageSegMode
}

// New returns an Engine tuned for coordinate blocks: a single block of
// text, digits plus the letters of French labels.
func New(langs ...string) (*Engine, error) {
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	return &Engine{
		Languages: langs,
		Whitelist: DefaultWhitelist,
		Mode:      gosseract.PSM_SINGLE_BLOCK,
	}, nil
}

// RecognizeImage implements ocr.Engine.
func (e *Engine) RecognizeImage(ctx context.Context, img image.Image) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to encode crop: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.Languages...); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to set languages: %w", err)
	}
	if err := client.SetPageSegMode(e.Mode); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if e.Whitelist != "" {
		if err := client.SetWhitelist(e.Whitelist); err != nil {
			return ocr.Result{}, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to set variable: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("OCR failed: %w", err)
	}

	// Confidence is the mean over recognized words.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("failed to read word confidences: %w", err)
	}
	var sum float64
	var n int
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		sum += b.Confidence
		n++
	}
	var conf float64
	if n > 0 {
		conf = sum / float64(n)
	}
	return ocr.Result{Text: text, Confidence: conf}, nil
}
