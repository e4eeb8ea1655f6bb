package ocr

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Minimum size of a crop handed to an OCR engine. Smaller selections are
// stretched; Tesseract reads small print poorly.
const (
	MinCropWidth  = 300
	MinCropHeight = 150

	// minRegionPixels rejects selections too small to hold a digit.
	minRegionPixels = 10
)

// Engine recognizes the text of a whole image.
type Engine interface {
	RecognizeImage(ctx context.Context, img image.Image) (Result, error)
}

// CropRegion cuts region out of img and scales it up to at least
// MinCropWidth x MinCropHeight on a white background.
func CropRegion(img image.Image, region Region) (image.Image, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	rect := image.Rect(
		b.Min.X+int(region.X*float64(b.Dx())),
		b.Min.Y+int(region.Y*float64(b.Dy())),
		b.Min.X+int((region.X+region.W)*float64(b.Dx())),
		b.Min.Y+int((region.Y+region.H)*float64(b.Dy())),
	).Intersect(b)
	if rect.Dx() < minRegionPixels || rect.Dy() < minRegionPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels is too small", ErrInvalidRegion, rect.Dx(), rect.Dy())
	}

	w := max(rect.Dx(), MinCropWidth)
	h := max(rect.Dy(), MinCropHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == rect.Dx() && h == rect.Dy() {
		draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
	}
	return dst, nil
}

// PageSource returns the image of a page, numbered from 1.
type PageSource interface {
	Page(ctx context.Context, page int) (image.Image, error)
}

// ImageFiles is a PageSource over image files, one per page.
type ImageFiles []string

// Page decodes the file of the given page (PNG, JPEG or TIFF).
func (f ImageFiles) Page(ctx context.Context, page int) (image.Image, error) {
	if page < 1 || page > len(f) {
		return nil, fmt.Errorf("%w: page %d of %d", ErrNoPage, page, len(f))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f[page-1])
	if err != nil {
		return nil, fmt.Errorf("failed to open page %d: %w", page, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f[page-1], err)
	}
	return img, nil
}

// ImageRecognizer crops page images and runs an Engine on the crop.
type ImageRecognizer struct {
	Pages  PageSource
	Engine Engine
}

// Recognize implements Recognizer.
func (r *ImageRecognizer) Recognize(ctx context.Context, page int, region Region) (Result, error) {
	img, err := r.Pages.Page(ctx, page)
	if err != nil {
		return Result{}, err
	}
	crop, err := CropRegion(img, region)
	if err != nil {
		return Result{}, fmt.Errorf("page %d: %w", page, err)
	}
	res, err := r.Engine.RecognizeImage(ctx, crop)
	if err != nil {
		return Result{}, fmt.Errorf("page %d: %w", page, err)
	}
	res.Text = CleanText(res.Text)
	return res, nil
}
