package convert

import (
	"fmt"

	"github.com/gardar/ocrcoords/pkg/crs"
)

// Offsets from Lambert II étendu to Lambert 93, calibrated on a reference
// point near Toulouse. Error grows to tens of metres away from it.
const (
	offsetL2EToL93X = 46416.062
	offsetL2EToL93Y = 4433923.781
)

// OffsetWarning is attached to every approximate result.
const OffsetWarning = "approximate conversion by fixed offsets, expect errors of tens of metres"

// Fallback converts between Lambert II étendu and Lambert 93 with fixed
// offsets. It is the only pair supported without the projection engine.
func Fallback(x, y float64, fromID, toID string) (float64, float64, error) {
	switch {
	case fromID == crs.Lambert2E && toID == crs.Lambert93:
		return round(x+offsetL2EToL93X, 3), round(y+offsetL2EToL93Y, 3), nil
	case fromID == crs.Lambert93 && toID == crs.Lambert2E:
		return round(x-offsetL2EToL93X, 3), round(y-offsetL2EToL93Y, 3), nil
	default:
		return x, y, fmt.Errorf("%s -> %s: %w", fromID, toID, ErrUnsupportedPair)
	}
}
