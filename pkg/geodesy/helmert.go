package geodesy

// arcsecond in radians
const arcsec = 4.84813681109536e-6

// Helmert holds the 7 parameters (proj "towgs84") that move geocentric
// coordinates from a local datum to the common frame, position-vector
// convention.
type Helmert struct {
	TX, TY, TZ float64 // Translations in metres
	RX, RY, RZ float64 // Rotations in arc-seconds
	S          float64 // Scale difference in ppm
}

// IsZero reports whether the transform is the identity.
func (h Helmert) IsZero() bool {
	return h == Helmert{}
}

// Forward applies the transform: local datum to common frame.
func (h Helmert) Forward(x, y, z float64) (float64, float64, float64) {
	if h.IsZero() {
		return x, y, z
	}
	m := 1 + h.S*1e-6
	rx, ry, rz := h.RX*arcsec, h.RY*arcsec, h.RZ*arcsec

	ox := h.TX + m*(x-rz*y+ry*z)
	oy := h.TY + m*(rz*x+y-rx*z)
	oz := h.TZ + m*(-ry*x+rx*y+z)
	return ox, oy, oz
}

// Inverse applies the reverse transform: common frame to local datum.
// The small-angle rotation matrix is inverted by its transpose, which is
// exact to first order like the forward transform itself.
func (h Helmert) Inverse(x, y, z float64) (float64, float64, float64) {
	if h.IsZero() {
		return x, y, z
	}
	m := 1 + h.S*1e-6
	rx, ry, rz := h.RX*arcsec, h.RY*arcsec, h.RZ*arcsec

	dx := (x - h.TX) / m
	dy := (y - h.TY) / m
	dz := (z - h.TZ) / m

	ox := dx + rz*dy - ry*dz
	oy := -rz*dx + dy + rx*dz
	oz := ry*dx - rx*dy + dz
	return ox, oy, oz
}
