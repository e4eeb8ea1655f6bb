package annotate

import (
	"io"

	"github.com/gardar/ocrcoords/pkg/ocr"
)

// Config holds user options for annotating a document
type Config struct {
	Debug     bool       // Log every label and outline the label box
	Force     bool       // Annotate even if the layer already exists
	LayerName string     // Base name of the layer (page number will be appended)
	Region    ocr.Region // Region that was read; outlined unless it is the full page
	Logger    io.Writer  // Custom logger for warnings (nil = stdout)
	Font      FontConfig
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		LayerName: "Coordinates", // Will be formatted as "Coordinates (Page X)" in the final PDF
		Region:    ocr.FullPage,
		Font:      DefaultFont,
	}
}

// FontConfig contains font settings for the label text
type FontConfig struct {
	Name        string  // Core font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Font size in points
	AscentRatio float64 // Vertical positioning ratio
}

// DefaultFont is Helvetica, which every PDF reader ships
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "B",
	Size:        10,
	AscentRatio: 0.718,
}
