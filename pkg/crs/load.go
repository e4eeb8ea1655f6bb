package crs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrcoords/pkg/geodesy"
)

// ErrInvalidDefinition is returned by LoadSystems for unusable entries.
var ErrInvalidDefinition = errors.New("invalid system definition")

// yamlSystems is the document read by LoadSystems:
//
//	systems:
//	  - id: CC46_LOCAL
//	    name: Conique Conforme 46
//	    code: EPSG:3946
//	    kind: projected
//	    ellipsoid: GRS80
//	    projection: {lat0: 46, lat1: 45.25, lat2: 46.75, lon0: 3, x0: 1700000, y0: 5200000}
//	    towgs84: [0, 0, 0]
//	    bounds: {min_x: 1000000, max_x: 2400000, min_y: 4600000, max_y: 5800000}
type yamlSystems struct {
	Systems []yamlSystem `yaml:"systems"`
}

type yamlSystem struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Code       string          `yaml:"code"`
	Kind       string          `yaml:"kind"`
	Ellipsoid  yaml.Node       `yaml:"ellipsoid"`
	Projection *yamlProjection `yaml:"projection"`
	ToWGS84    []float64       `yaml:"towgs84"`
	Bounds     Bounds          `yaml:"bounds"`
}

type yamlProjection struct {
	Lat0          float64  `yaml:"lat0"`
	Lat1          *float64 `yaml:"lat1"`
	Lat2          *float64 `yaml:"lat2"`
	Lon0          float64  `yaml:"lon0"`
	PrimeMeridian string   `yaml:"prime_meridian"`
	K0            float64  `yaml:"k0"`
	X0            float64  `yaml:"x0"`
	Y0            float64  `yaml:"y0"`
}

type yamlEllipsoid struct {
	A    float64 `yaml:"a"`
	B    float64 `yaml:"b"`
	InvF float64 `yaml:"inv_f"`
}

var namedEllipsoids = map[string]geodesy.Ellipsoid{
	"grs80":     geodesy.GRS80,
	"wgs84":     geodesy.WGS84,
	"clrk80ign": geodesy.Clarke1880IGN,
}

// LoadSystems reads system definitions from YAML. The result is meant to
// be appended to DefaultSystems before calling NewRegistry.
func LoadSystems(r io.Reader) ([]System, error) {
	var doc yamlSystems
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse systems: %w", err)
	}

	systems := make([]System, 0, len(doc.Systems))
	for i, ys := range doc.Systems {
		s, err := ys.system()
		if err != nil {
			return nil, fmt.Errorf("system %d (%s): %w", i, ys.ID, err)
		}
		systems = append(systems, s)
	}
	return systems, nil
}

// LoadRegistry returns the default registry extended with the systems
// defined in the YAML file at path. An empty path yields Default().
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open systems file: %w", err)
	}
	defer f.Close()

	extra, err := LoadSystems(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewRegistry(append(DefaultSystems(), extra...)...)
}

func (ys yamlSystem) system() (System, error) {
	if ys.ID == "" {
		return System{}, fmt.Errorf("missing id: %w", ErrInvalidDefinition)
	}
	s := System{
		ID:     ys.ID,
		Name:   ys.Name,
		Code:   ys.Code,
		Kind:   Kind(strings.ToLower(ys.Kind)),
		Bounds: ys.Bounds,
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Kind == "" {
		s.Kind = Projected
	}
	if s.Kind != Projected && s.Kind != Geographic {
		return System{}, fmt.Errorf("kind %q: %w", ys.Kind, ErrInvalidDefinition)
	}
	if s.Bounds.MinX > s.Bounds.MaxX || s.Bounds.MinY > s.Bounds.MaxY {
		return System{}, fmt.Errorf("inverted bounds: %w", ErrInvalidDefinition)
	}

	ell, err := decodeEllipsoid(&ys.Ellipsoid)
	if err != nil {
		return System{}, err
	}

	if len(ys.ToWGS84) != 0 {
		if len(ys.ToWGS84) != 3 && len(ys.ToWGS84) != 7 {
			return System{}, fmt.Errorf("towgs84 needs 3 or 7 values, got %d: %w", len(ys.ToWGS84), ErrInvalidDefinition)
		}
		p := append(ys.ToWGS84, make([]float64, 7-len(ys.ToWGS84))...)
		s.ToCommon = geodesy.Helmert{TX: p[0], TY: p[1], TZ: p[2], RX: p[3], RY: p[4], RZ: p[5], S: p[6]}
	}

	if s.Kind == Geographic {
		s.Ellipsoid = ell
		return s, nil
	}
	if ys.Projection == nil {
		// Known to external services only.
		return s, nil
	}

	yp := ys.Projection
	lcc := &geodesy.LCC{
		Lat0: yp.Lat0, Lat1: yp.Lat0, Lat2: yp.Lat0,
		Lon0: yp.Lon0,
		K0:   yp.K0, X0: yp.X0, Y0: yp.Y0,
		Ellipsoid: ell,
	}
	if yp.Lat1 != nil {
		lcc.Lat1 = *yp.Lat1
		lcc.Lat2 = *yp.Lat1
	}
	if yp.Lat2 != nil {
		lcc.Lat2 = *yp.Lat2
	}
	switch strings.ToLower(yp.PrimeMeridian) {
	case "", "greenwich":
	case "paris":
		lcc.PrimeMeridian = ParisMeridian
	default:
		return System{}, fmt.Errorf("prime meridian %q: %w", yp.PrimeMeridian, ErrInvalidDefinition)
	}
	if lcc.K0 == 0 {
		lcc.K0 = 1
	}
	if _, _, err := lcc.Unproject(lcc.X0, lcc.Y0); err != nil {
		return System{}, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	s.Projection = lcc
	return s, nil
}

// decodeEllipsoid accepts a name ("GRS80") or a mapping with a and one of
// b or inv_f. An absent value means GRS80.
func decodeEllipsoid(n *yaml.Node) (geodesy.Ellipsoid, error) {
	switch n.Kind {
	case 0:
		return geodesy.GRS80, nil
	case yaml.ScalarNode:
		e, ok := namedEllipsoids[strings.ToLower(n.Value)]
		if !ok {
			return geodesy.Ellipsoid{}, fmt.Errorf("ellipsoid %q: %w", n.Value, ErrInvalidDefinition)
		}
		return e, nil
	case yaml.MappingNode:
		var ye yamlEllipsoid
		if err := n.Decode(&ye); err != nil {
			return geodesy.Ellipsoid{}, fmt.Errorf("ellipsoid: %w", err)
		}
		switch {
		case ye.A <= 0:
			return geodesy.Ellipsoid{}, fmt.Errorf("ellipsoid without semi-major axis: %w", ErrInvalidDefinition)
		case ye.B > 0:
			return geodesy.EllipsoidFromAxes(ye.A, ye.B), nil
		case ye.InvF > 0:
			return geodesy.Ellipsoid{A: ye.A, F: 1 / ye.InvF}, nil
		default:
			return geodesy.Ellipsoid{A: ye.A}, nil
		}
	default:
		return geodesy.Ellipsoid{}, fmt.Errorf("ellipsoid: unexpected YAML node: %w", ErrInvalidDefinition)
	}
}
