package geodesy

import (
	"errors"
	"math"
	"testing"
)

const parisMeridian = 2.337229166667

var (
	lambert93 = LCC{Lat0: 46.5, Lat1: 49, Lat2: 44, Lon0: 3, K0: 1, X0: 700000, Y0: 6600000, Ellipsoid: GRS80}
	lambert2e = LCC{Lat0: 46.8, Lat1: 46.8, Lat2: 46.8, PrimeMeridian: parisMeridian, K0: 0.99987742, X0: 600000, Y0: 2200000, Ellipsoid: Clarke1880IGN}
	lambert4  = LCC{Lat0: 42.165, Lat1: 42.165, Lat2: 42.165, PrimeMeridian: parisMeridian, K0: 0.99994471, X0: 234.358, Y0: 4185861.369, Ellipsoid: Clarke1880IGN}
	reunion   = LCC{Lat0: -21.5, Lat1: -22.5, Lat2: -20.5, Lon0: 55.5, K0: 1, X0: 1700000, Y0: 1200000, Ellipsoid: GRS80}
	wallis    = LCC{Lat0: -13.5, Lat1: -14.5, Lat2: -12.5, Lon0: -178, K0: 1, X0: 1700000, Y0: 1200000, Ellipsoid: GRS80}

	ntf = Helmert{TX: -168, TY: -60, TZ: 320}
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestProjectKnownPoints(t *testing.T) {
	tests := []struct {
		name     string
		proj     LCC
		lat, lon float64
		x, y     float64
	}{
		{"lambert93 paris", lambert93, 48.8566, 2.3522, 652469.023, 6862035.259},
		{"lambert2e origin", lambert2e, 46.8, parisMeridian, 600000, 2200000},
		{"lambert4 corsica", lambert4, 42.165, 9.0, 550255.483, 4207339.581},
		{"reunion", reunion, -21.1, 55.6, 1710388.778, 1244278.712},
		{"wallis", wallis, -13.3, -176.2, 1895005.274, 1221408.369},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, err := tt.proj.Project(tt.lat, tt.lon)
			if err != nil {
				t.Fatalf("Project(%v, %v) error: %v", tt.lat, tt.lon, err)
			}
			if !near(x, tt.x, 0.01) || !near(y, tt.y, 0.01) {
				t.Errorf("Project(%v, %v) = (%.3f, %.3f), want (%.3f, %.3f)", tt.lat, tt.lon, x, y, tt.x, tt.y)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		proj LCC
		x, y float64
	}{
		{"lambert93", lambert93, 652469.023, 6862035.259},
		{"lambert2e", lambert2e, 594368.498, 1843413.039},
		{"lambert4", lambert4, 550255.483, 4207339.581},
		{"reunion", reunion, 1710388.778, 1244278.712},
		{"wallis", wallis, 1700000, 1200000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, err := tt.proj.Unproject(tt.x, tt.y)
			if err != nil {
				t.Fatalf("Unproject error: %v", err)
			}
			x, y, err := tt.proj.Project(lat, lon)
			if err != nil {
				t.Fatalf("Project error: %v", err)
			}
			if !near(x, tt.x, 1e-3) || !near(y, tt.y, 1e-3) {
				t.Errorf("round trip (%.3f, %.3f) -> (%.6f, %.6f) -> (%.4f, %.4f)", tt.x, tt.y, lat, lon, x, y)
			}

			lat2, lon2, err := tt.proj.Unproject(x, y)
			if err != nil {
				t.Fatalf("second Unproject error: %v", err)
			}
			if !near(lat, lat2, 1e-6) || !near(lon, lon2, 1e-6) {
				t.Errorf("geographic drift: (%v, %v) vs (%v, %v)", lat, lon, lat2, lon2)
			}
		})
	}
}

func TestUnprojectOrigin(t *testing.T) {
	lat, lon, err := reunion.Unproject(1700000, 1200000)
	if err != nil {
		t.Fatal(err)
	}
	if !near(lat, -21.5, 1e-9) || !near(lon, 55.5, 1e-9) {
		t.Errorf("origin = (%v, %v), want (-21.5, 55.5)", lat, lon)
	}
}

func TestProjectInvalid(t *testing.T) {
	bad := LCC{Lat0: 0, Lat1: 0, Lat2: 0, Ellipsoid: GRS80}
	if _, _, err := bad.Project(10, 10); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("equatorial cone: got %v, want ErrInvalidParams", err)
	}
	if _, _, err := lambert93.Project(-90, 0); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("south pole in northern cone: got %v, want ErrOutOfDomain", err)
	}
	if _, _, err := lambert93.Unproject(math.NaN(), 0); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("NaN: got %v, want ErrOutOfDomain", err)
	}
}

func TestGeocentricRoundTrip(t *testing.T) {
	for _, e := range []Ellipsoid{GRS80, WGS84, Clarke1880IGN} {
		for _, p := range [][3]float64{{48.8566, 2.3522, 0}, {-21.1, 55.6, 120}, {0, -178, 0}, {89.9, 10, 0}} {
			x, y, z := e.ToGeocentric(p[0], p[1], p[2])
			lat, lon, h := e.FromGeocentric(x, y, z)
			if !near(lat, p[0], 1e-9) || !near(lon, p[1], 1e-9) || !near(h, p[2], 1e-4) {
				t.Errorf("%v: %v -> (%v, %v, %v)", e, p, lat, lon, h)
			}
		}
	}
}

func TestFromGeocentricPole(t *testing.T) {
	b := GRS80.A * (1 - GRS80.F)
	lat, _, h := GRS80.FromGeocentric(0, 0, b+10)
	if lat != 90 || !near(h, 10, 1e-6) {
		t.Errorf("north pole = (%v, h=%v)", lat, h)
	}
}

func TestHelmertInverse(t *testing.T) {
	h := Helmert{TX: -168, TY: -60, TZ: 320, RX: 0.5, RY: -0.2, RZ: 0.8, S: 1.2}
	x, y, z := 4201000.0, 177000.0, 4779000.0
	fx, fy, fz := h.Forward(x, y, z)
	bx, by, bz := h.Inverse(fx, fy, fz)
	if !near(bx, x, 1e-3) || !near(by, y, 1e-3) || !near(bz, z, 1e-3) {
		t.Errorf("inverse(forward) = (%v, %v, %v)", bx, by, bz)
	}

	fx, fy, fz = ntf.Forward(x, y, z)
	if fx != x-168 || fy != y-60 || fz != z+320 {
		t.Errorf("translation only = (%v, %v, %v)", fx, fy, fz)
	}
	if !(Helmert{}).IsZero() || ntf.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestTransformLambert2eToLambert93(t *testing.T) {
	src := Definition{Projection: &lambert2e, ToCommon: ntf}
	dst := Definition{Projection: &lambert93}

	x, y, err := Transform(src, dst, 594368.498, 1843413.039)
	if err != nil {
		t.Fatal(err)
	}
	// Helmert-only residual against the official grid is a few metres.
	if !near(x, 640784.56, 3) || !near(y, 6277336.83, 3) {
		t.Errorf("Transform = (%.3f, %.3f), want within 3 m of (640784.56, 6277336.83)", x, y)
	}

	bx, by, err := Transform(dst, src, x, y)
	if err != nil {
		t.Fatal(err)
	}
	if !near(bx, 594368.498, 0.01) || !near(by, 1843413.039, 0.01) {
		t.Errorf("reverse = (%.3f, %.3f)", bx, by)
	}
}

func TestTransformToGeographic(t *testing.T) {
	src := Definition{Projection: &lambert2e, ToCommon: ntf}
	dst := Definition{Ellipsoid: GRS80}

	lon, lat, err := Transform(src, dst, 594368.498, 1843413.039)
	if err != nil {
		t.Fatal(err)
	}
	if !near(lat, 43.592626, 1e-5) || !near(lon, 2.266933, 1e-5) {
		t.Errorf("geographic = (%v, %v), want (43.592626, 2.266933)", lat, lon)
	}

	if _, _, err := Transform(dst, src, 2.3, 95); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("latitude 95: got %v, want ErrOutOfDomain", err)
	}
}

func TestDegRad(t *testing.T) {
	if !near(DegToRad(180), math.Pi, 1e-15) || !near(RadToDeg(math.Pi/2), 90, 1e-12) {
		t.Error("angle conversion mismatch")
	}
}
