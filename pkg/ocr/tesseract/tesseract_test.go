package tesseract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"golang.org/x/image/draw"

	"github.com/gardar/ocrcoords/pkg/ocr"
)

func TestDefaultWhitelist(t *testing.T) {
	for _, r := range "0123456789.,:-()XYEN éè" {
		if !strings.ContainsRune(DefaultWhitelist, r) {
			t.Errorf("whitelist misses %q", r)
		}
	}
}

func TestNew(t *testing.T) {
	e, err := New()
	if err != nil {
		if errors.Is(err, ErrOCRNotEnabled) {
			t.Skipf("Tesseract not compiled in: %v", err)
		}
		t.Fatal(err)
	}
	if len(e.Languages) != 2 || e.Languages[0] != "eng" || e.Languages[1] != "fra" {
		t.Errorf("languages = %v", e.Languages)
	}
}

func TestRecognizeBlankImage(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, ocr.MinCropWidth, ocr.MinCropHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	res, err := e.RecognizeImage(context.Background(), img)
	if err != nil {
		t.Skipf("Tesseract failed, language data may be missing: %v", err)
	}
	if strings.TrimSpace(res.Text) != "" {
		t.Errorf("blank image gave %q", res.Text)
	}
}

func TestRecognizeCancelled(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.RecognizeImage(ctx, image.NewGray(image.Rect(0, 0, 10, 10))); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
