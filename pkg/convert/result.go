package convert

import (
	"encoding/json"
	"errors"
	"math"
)

// Tier grades how far a converted coordinate can be trusted.
type Tier string

const (
	Exact       Tier = "exact"       // Identity or authoritative external service
	High        Tier = "high"        // Local projection engine
	Approximate Tier = "approximate" // Fixed offsets, tens of metres
	Unknown     Tier = "unknown"     // Not converted
)

// Method names recorded in Result.Method.
const (
	MethodIdentity   = "identity"
	MethodExternal   = "external service"
	MethodProjection = "projection engine"
	MethodOffsets    = "approximate offsets"
)

var (
	// ErrUnsupportedPair is returned when neither the engine nor a fallback
	// can convert between two systems.
	ErrUnsupportedPair = errors.New("unsupported system pair")

	// ErrUnknownSystem is returned for identifiers missing from the registry.
	ErrUnknownSystem = errors.New("unknown coordinate system")

	// ErrExternalUnavailable marks failures of the external service. It
	// never reaches a Result; the converter falls back to the engine.
	ErrExternalUnavailable = errors.New("external conversion service unavailable")
)

// Result is the outcome of one conversion. When Err is set, X and Y are the
// input coordinates.
type Result struct {
	X          float64 // Converted easting or longitude
	Y          float64 // Converted northing or latitude
	Tier       Tier
	Source     string // Source system identifier
	Target     string // Target system identifier
	Method     string
	Provenance string // Who produced the numbers (service name, engine)
	Warning    string
	Err        error
}

// OK reports whether the result holds converted coordinates.
func (r Result) OK() bool {
	return r.Err == nil && r.Tier != Unknown
}

type jsonResult struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Tier       Tier    `json:"precision"`
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Method     string  `json:"method,omitempty"`
	Provenance string  `json:"provenance,omitempty"`
	Warning    string  `json:"warning,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// MarshalJSON renders Err as a string field.
func (r Result) MarshalJSON() ([]byte, error) {
	j := jsonResult{
		X: r.X, Y: r.Y, Tier: r.Tier,
		Source: r.Source, Target: r.Target,
		Method: r.Method, Provenance: r.Provenance, Warning: r.Warning,
	}
	if r.Err != nil {
		j.Error = r.Err.Error()
	}
	return json.Marshal(j)
}

// UnmarshalJSON restores a result written by MarshalJSON. The error text
// comes back as an opaque error.
func (r *Result) UnmarshalJSON(data []byte) error {
	var j jsonResult
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*r = Result{
		X: j.X, Y: j.Y, Tier: j.Tier,
		Source: j.Source, Target: j.Target,
		Method: j.Method, Provenance: j.Provenance, Warning: j.Warning,
	}
	if j.Error != "" {
		r.Err = errors.New(j.Error)
	}
	return nil
}

// round rounds v to the given number of decimals.
func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
