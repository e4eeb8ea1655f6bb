package geodesy

import "math"

// Ellipsoid is a reference ellipsoid of revolution.
type Ellipsoid struct {
	A float64 // Semi-major axis in metres
	F float64 // Flattening
}

// Ellipsoids used by the French national systems.
var (
	// GRS80 carries RGF93 and the Conique Conforme zones.
	GRS80 = Ellipsoid{A: 6378137.0, F: 1 / 298.257222101}

	// WGS84 is the satellite datum ellipsoid.
	WGS84 = Ellipsoid{A: 6378137.0, F: 1 / 298.257223563}

	// Clarke1880IGN carries NTF, the datum of the Lambert I-IV zones.
	Clarke1880IGN = EllipsoidFromAxes(6378249.2, 6356515.0)
)

// EllipsoidFromAxes builds an ellipsoid from its semi-major and semi-minor axes.
func EllipsoidFromAxes(a, b float64) Ellipsoid {
	return Ellipsoid{A: a, F: (a - b) / a}
}

// E2 returns the square of the first eccentricity.
func (e Ellipsoid) E2() float64 {
	return e.F * (2 - e.F)
}

// Eccentricity returns the first eccentricity.
func (e Ellipsoid) Eccentricity() float64 {
	return math.Sqrt(e.E2())
}

// ToGeocentric converts geodetic latitude, longitude (degrees) and
// ellipsoidal height (metres) to earth-centred cartesian coordinates.
func (e Ellipsoid) ToGeocentric(lat, lon, h float64) (x, y, z float64) {
	phi := DegToRad(lat)
	lambda := DegToRad(lon)
	e2 := e.E2()
	sinPhi := math.Sin(phi)
	n := e.A / math.Sqrt(1-e2*sinPhi*sinPhi)

	x = (n + h) * math.Cos(phi) * math.Cos(lambda)
	y = (n + h) * math.Cos(phi) * math.Sin(lambda)
	z = (n*(1-e2) + h) * sinPhi
	return x, y, z
}

// FromGeocentric converts earth-centred cartesian coordinates back to
// geodetic latitude, longitude (degrees) and height (metres).
func (e Ellipsoid) FromGeocentric(x, y, z float64) (lat, lon, h float64) {
	e2 := e.E2()
	lambda := math.Atan2(y, x)
	p := math.Hypot(x, y)

	// Polar axis: latitude is ±90 and the iteration below would divide by cos(phi) = 0.
	if p < 1e-9 {
		b := e.A * (1 - e.F)
		if z < 0 {
			return -90, RadToDeg(lambda), -z - b
		}
		return 90, RadToDeg(lambda), z - b
	}

	phi := math.Atan2(z, p*(1-e2))
	for i := 0; i < 20; i++ {
		sinPhi := math.Sin(phi)
		n := e.A / math.Sqrt(1-e2*sinPhi*sinPhi)
		h = p/math.Cos(phi) - n
		next := math.Atan2(z, p*(1-e2*n/(n+h)))
		if math.Abs(next-phi) < 1e-14 {
			phi = next
			break
		}
		phi = next
	}
	sinPhi := math.Sin(phi)
	n := e.A / math.Sqrt(1-e2*sinPhi*sinPhi)
	h = p/math.Cos(phi) - n
	return RadToDeg(phi), RadToDeg(lambda), h
}
