package crs

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gardar/ocrcoords/pkg/geodesy"
)

// Kind distinguishes projected systems (metres) from geographic ones (degrees).
type Kind string

const (
	Projected  Kind = "projected"
	Geographic Kind = "geographic"
)

// Bounds is the rectangle of plausible coordinates of a system, used for
// auto-detection and validation.
type Bounds struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MinY float64 `yaml:"min_y" json:"min_y"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
}

// Contains reports whether (x, y) lies inside b, edges included.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// System is a coordinate reference system known to the registry.
type System struct {
	ID     string
	Name   string
	Code   string // External registry code, e.g. "EPSG:2154"
	Kind   Kind
	Bounds Bounds

	// Projection is nil for geographic systems and for systems that can
	// only be converted through an external service or fixed offsets.
	Projection *geodesy.LCC

	// Ellipsoid of a geographic system.
	Ellipsoid geodesy.Ellipsoid

	// ToCommon relates the system's datum to RGF93/WGS84.
	ToCommon geodesy.Helmert
}

// IsGeographic reports whether coordinates are longitude/latitude degrees.
func (s System) IsGeographic() bool {
	return s.Kind == Geographic
}

// HasParams reports whether the projection engine can handle the system.
func (s System) HasParams() bool {
	if s.IsGeographic() {
		return s.Ellipsoid.A > 0
	}
	return s.Projection != nil
}

// Definition returns the engine view of the system.
func (s System) Definition() (geodesy.Definition, error) {
	if !s.HasParams() {
		return geodesy.Definition{}, fmt.Errorf("%s: no projection parameters", s.ID)
	}
	def := geodesy.Definition{Ellipsoid: s.Ellipsoid, ToCommon: s.ToCommon}
	if !s.IsGeographic() {
		p := *s.Projection
		def.Projection = &p
	}
	return def, nil
}

// Format renders a coordinate pair for display: hemispheres for geographic
// systems, grouped metres for projected ones. An undetermined tag formats
// with English grouping.
func (s System) Format(x, y float64, tag language.Tag) string {
	if s.IsGeographic() {
		ns, ew := "N", "E"
		if y < 0 {
			ns = "S"
		}
		if x < 0 {
			ew = "W"
		}
		return fmt.Sprintf("%.6f° %s, %.6f° %s", math.Abs(y), ns, math.Abs(x), ew)
	}
	if tag == language.Und {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	return p.Sprintf("X: %d m, Y: %d m", int64(math.Round(x)), int64(math.Round(y)))
}

func (s System) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Code)
}
