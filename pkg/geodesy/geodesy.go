// Package geodesy implements the projection mathematics used to move points
// between the supported reference systems.
//
// The package is deliberately small: it knows one map projection family,
// the Lambert Conformal Conic (one or two standard parallels), and one datum
// transformation, the 7-parameter Helmert transform applied through
// geocentric cartesian coordinates.
//
// Key Types:
//
// - Ellipsoid: reference ellipsoid given by semi-major axis and flattening
// - LCC: a Lambert Conformal Conic definition with Project/Unproject
// - Helmert: 7-parameter shift from a local datum to the common frame
// - Definition: a projected or geographic system as seen by Transform
//
// Main Functions:
//
// - Transform: unproject from one definition, shift datums, project into another
// - DegToRad / RadToDeg: angle helpers
//
// Accuracy: a closed-form Helmert transform only approximates the official
// NTF to RGF93 grid. Residuals of several decimetres up to a few metres are
// expected for legacy Lambert coordinates. Grid-based correction would be
// applied between the Helmert step and the final projection.
package geodesy

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOutOfDomain is returned when a coordinate cannot be represented in
	// the requested projection (poles, antipodal cone side, NaN input).
	ErrOutOfDomain = errors.New("coordinate outside projection domain")

	// ErrInvalidParams is returned when a projection definition is degenerate.
	ErrInvalidParams = errors.New("invalid projection parameters")
)

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 {
	return deg / 180 * math.Pi
}

// RadToDeg converts radians to degrees
func RadToDeg(rad float64) float64 {
	return rad / math.Pi * 180
}

// Definition describes a coordinate system for Transform.
// A nil Projection means the system is geographic: x is the longitude and
// y the latitude, both in degrees, on Ellipsoid.
type Definition struct {
	Projection *LCC
	Ellipsoid  Ellipsoid
	ToCommon   Helmert
}

// ellipsoid returns the ellipsoid the definition's coordinates live on.
func (d Definition) ellipsoid() Ellipsoid {
	if d.Projection != nil {
		return d.Projection.Ellipsoid
	}
	return d.Ellipsoid
}

// Geographic returns the latitude and longitude (degrees, on the
// definition's own datum) of the point (x, y).
func (d Definition) Geographic(x, y float64) (lat, lon float64, err error) {
	if d.Projection == nil {
		if math.Abs(y) > 90 || math.IsNaN(x) || math.IsNaN(y) {
			return 0, 0, fmt.Errorf("latitude %v: %w", y, ErrOutOfDomain)
		}
		return y, x, nil
	}
	return d.Projection.Unproject(x, y)
}

// Planar returns the (x, y) representation of a geographic point in the
// definition, inverse of Geographic.
func (d Definition) Planar(lat, lon float64) (x, y float64, err error) {
	if d.Projection == nil {
		return lon, lat, nil
	}
	return d.Projection.Project(lat, lon)
}

// Transform converts (x, y) expressed in src into dst.
//
// The point is first brought to geographic coordinates on the source datum,
// moved through geocentric space with both systems' Helmert parameters and
// finally projected in the target system. Heights are assumed to be zero on
// the source ellipsoid and discarded on the target one.
func Transform(src, dst Definition, x, y float64) (float64, float64, error) {
	lat, lon, err := src.Geographic(x, y)
	if err != nil {
		return 0, 0, fmt.Errorf("source: %w", err)
	}

	if !src.ToCommon.IsZero() || !dst.ToCommon.IsZero() || src.ellipsoid() != dst.ellipsoid() {
		X, Y, Z := src.ellipsoid().ToGeocentric(lat, lon, 0)
		X, Y, Z = src.ToCommon.Forward(X, Y, Z)
		X, Y, Z = dst.ToCommon.Inverse(X, Y, Z)
		lat, lon, _ = dst.ellipsoid().FromGeocentric(X, Y, Z)
	}

	outX, outY, err := dst.Planar(lat, lon)
	if err != nil {
		return 0, 0, fmt.Errorf("target: %w", err)
	}
	if math.IsNaN(outX) || math.IsNaN(outY) || math.IsInf(outX, 0) || math.IsInf(outY, 0) {
		return 0, 0, fmt.Errorf("target: %w", ErrOutOfDomain)
	}
	return outX, outY, nil
}
