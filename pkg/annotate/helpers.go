package annotate

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/tiff"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func unescapePDFString(s string) string {
	s = strings.ReplaceAll(s, "\\(", "(")
	s = strings.ReplaceAll(s, "\\)", ")")
	s = strings.ReplaceAll(s, "\\\\", "\\")
	return s
}

// decodeUTF16BE decodes a PDF text string that starts with a UTF-16BE BOM.
func decodeUTF16BE(b []byte) (string, error) {
	if len(b) < 2 || b[0] != 0xFE || b[1] != 0xFF {
		return "", fmt.Errorf("no BOM detected, cannot confirm UTF-16BE")
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", fmt.Errorf("invalid UTF-16BE: %w", err)
	}
	return string(out), nil
}

// latin1 converts text to the single-byte encoding of the PDF core fonts.
// Characters outside it become '?' and ok is false.
func latin1(s string) (out string, ok bool) {
	enc, err := charmap.Windows1252.NewEncoder().String(s)
	if err == nil {
		return enc, true
	}
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if c, found := charmap.Windows1252.EncodeRune(r); found {
			b = append(b, c)
		} else {
			b = append(b, '?')
		}
	}
	return string(b), false
}

// getLogger returns the appropriate io.Writer to use for logging
// based on the configuration settings, defaulting to os.Stdout if nil.
func getLogger(config Config) io.Writer {
	if config.Logger == nil {
		return os.Stdout
	}
	return config.Logger
}

// pageImage returns image data fpdf can embed with its type and pixel
// size. TIFF pages are re-encoded as PNG.
func pageImage(data []byte) ([]byte, string, image.Point, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", image.Point{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	size := image.Pt(cfg.Width, cfg.Height)
	switch format {
	case "png", "jpeg", "gif":
		return data, strings.ToUpper(format), size, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", image.Point{}, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", image.Point{}, fmt.Errorf("failed to re-encode %s image: %w", format, err)
	}
	return buf.Bytes(), "PNG", size, nil
}
