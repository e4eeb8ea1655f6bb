package geodesy

import (
	"fmt"
	"math"
)

// LCC is a Lambert Conformal Conic projection definition (EPSG methods 9801
// and 9802). A one-standard-parallel (1SP) projection sets Lat1 == Lat2 ==
// Lat0 and carries its scale in K0; a two-standard-parallel (2SP) projection
// leaves K0 at 1.
type LCC struct {
	Lat0          float64 // Latitude of origin, degrees
	Lat1          float64 // First standard parallel, degrees
	Lat2          float64 // Second standard parallel, degrees
	Lon0          float64 // Central meridian, degrees east of PrimeMeridian
	PrimeMeridian float64 // Prime meridian, degrees east of Greenwich
	K0            float64 // Scale factor at the origin
	X0            float64 // False easting, metres
	Y0            float64 // False northing, metres
	Ellipsoid     Ellipsoid
}

// cone caches the derived constants of a projection.
type cone struct {
	e    float64
	n    float64
	aF   float64 // a·k0·F
	r0   float64
	lam0 float64 // central meridian relative to Greenwich, radians
}

func (p *LCC) cone() (cone, error) {
	if p.Ellipsoid.A <= 0 {
		return cone{}, fmt.Errorf("semi-major axis %v: %w", p.Ellipsoid.A, ErrInvalidParams)
	}
	k0 := p.K0
	if k0 == 0 {
		k0 = 1
	}
	e := p.Ellipsoid.Eccentricity()
	phi0 := DegToRad(p.Lat0)
	phi1 := DegToRad(p.Lat1)
	phi2 := DegToRad(p.Lat2)

	m1 := msfn(phi1, e)
	t1 := tsfn(phi1, e)

	var n float64
	if math.Abs(phi1-phi2) < 1e-10 {
		n = math.Sin(phi1)
	} else {
		n = (math.Log(m1) - math.Log(msfn(phi2, e))) / (math.Log(t1) - math.Log(tsfn(phi2, e)))
	}
	if n == 0 || math.IsNaN(n) {
		return cone{}, fmt.Errorf("cone constant %v: %w", n, ErrInvalidParams)
	}

	aF := p.Ellipsoid.A * k0 * m1 / (n * math.Pow(t1, n))
	return cone{
		e:    e,
		n:    n,
		aF:   aF,
		r0:   aF * math.Pow(tsfn(phi0, e), n),
		lam0: DegToRad(p.Lon0 + p.PrimeMeridian),
	}, nil
}

// Project converts geodetic latitude and longitude (degrees east of
// Greenwich) to projected easting and northing in metres.
func (p *LCC) Project(lat, lon float64) (x, y float64, err error) {
	c, err := p.cone()
	if err != nil {
		return 0, 0, err
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, 0, fmt.Errorf("NaN input: %w", ErrOutOfDomain)
	}
	phi := DegToRad(lat)

	// The pole opposite the cone apex maps to infinity.
	if math.Abs(math.Abs(phi)-math.Pi/2) < 1e-12 && phi*c.n < 0 {
		return 0, 0, fmt.Errorf("latitude %v: %w", lat, ErrOutOfDomain)
	}

	var r float64
	if math.Abs(math.Abs(phi)-math.Pi/2) >= 1e-12 {
		r = c.aF * math.Pow(tsfn(phi, c.e), c.n)
	}
	theta := c.n * adjlon(DegToRad(lon)-c.lam0)

	x = p.X0 + r*math.Sin(theta)
	y = p.Y0 + c.r0 - r*math.Cos(theta)
	return x, y, nil
}

// Unproject converts projected easting and northing in metres back to
// geodetic latitude and longitude (degrees east of Greenwich).
func (p *LCC) Unproject(x, y float64) (lat, lon float64, err error) {
	c, err := p.cone()
	if err != nil {
		return 0, 0, err
	}
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, fmt.Errorf("NaN input: %w", ErrOutOfDomain)
	}

	dx := x - p.X0
	dy := c.r0 - (y - p.Y0)
	sign := 1.0
	if c.n < 0 {
		sign = -1
	}
	r := sign * math.Hypot(dx, dy)

	var phi float64
	if r == 0 {
		phi = math.Copysign(math.Pi/2, c.n)
	} else {
		t := math.Pow(r/c.aF, 1/c.n)
		phi, err = phi2(t, c.e)
		if err != nil {
			return 0, 0, err
		}
	}
	theta := math.Atan2(sign*dx, sign*dy)
	lambda := theta/c.n + c.lam0

	return RadToDeg(phi), RadToDeg(adjlon(lambda)), nil
}

// msfn returns m = cos φ / sqrt(1 - e² sin² φ).
func msfn(phi, e float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-e*e*s*s)
}

// tsfn returns the isometric-latitude helper t of EPSG guidance note 7-2.
func tsfn(phi, e float64) float64 {
	s := e * math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-s)/(1+s), e/2)
}

// phi2 inverts tsfn by fixed-point iteration.
func phi2(t, e float64) (float64, error) {
	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < 30; i++ {
		s := e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-s)/(1+s), e/2))
		if math.Abs(next-phi) < 1e-12 {
			return next, nil
		}
		phi = next
	}
	return 0, fmt.Errorf("latitude iteration did not converge: %w", ErrOutOfDomain)
}

// adjlon wraps a longitude in radians to [-π, π].
func adjlon(lon float64) float64 {
	for lon > math.Pi {
		lon -= 2 * math.Pi
	}
	for lon < -math.Pi {
		lon += 2 * math.Pi
	}
	return lon
}
