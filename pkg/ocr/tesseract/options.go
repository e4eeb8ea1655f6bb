package tesseract

import "errors"

// ErrOCRNotEnabled is returned when Tesseract support was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// DefaultLanguages are the Tesseract language packs used when none are given.
var DefaultLanguages = []string{"eng", "fra"}

// DefaultWhitelist restricts recognition to digits, separators and the
// letters that appear in coordinate labels.
const DefaultWhitelist = "0123456789" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz" +
	"àáâäæçéèêëíìîïñóòôöùúûüýÿ" +
	" .,:-()\n"
