package pipeline

import (
	"io"
	"os"
	"time"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/crs"
	"github.com/gardar/ocrcoords/pkg/ocr"
)

// AutoDetect as Config.SourceID detects the system of every pair.
const AutoDetect = "auto"

// Config holds user options for a batch run
type Config struct {
	Document      string        // Document name, used for checkpoints and row names
	Region        ocr.Region    // Selection applied to every page
	SourceID      string        // System of the extracted values (AutoDetect = per pair)
	TargetID      string        // System of the exported values
	AllowExternal bool          // Try the external conversion service first
	Timeout       time.Duration // Bound on each external call
	Workers       int           // Pages processed concurrently
	MinConfidence float64       // OCR confidence below which a warning is logged
	Debug         bool          // Log every page
	Logger        io.Writer     // Custom logger for warnings (nil = stdout)
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Region:        ocr.FullPage,
		SourceID:      crs.Lambert2E,
		TargetID:      crs.Lambert93,
		AllowExternal: false,
		Timeout:       convert.DefaultTimeout,
		Workers:       4,
		MinConfidence: ocr.LowConfidence,
		Debug:         false,
		Logger:        nil, // stdout
	}
}

// getLogger returns the configured logger or stdout
func (c Config) getLogger() io.Writer {
	if c.Logger != nil {
		return c.Logger
	}
	return os.Stdout
}

func (c Config) convertOptions() convert.Options {
	return convert.Options{AllowExternal: c.AllowExternal, Timeout: c.Timeout}
}
