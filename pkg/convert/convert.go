// Package convert moves coordinate pairs between the systems of a registry.
//
// A conversion tries, in order: the identity (same system), an optional
// external service, the local projection engine, and finally fixed offsets
// for the Lambert II étendu / Lambert 93 pair. Every Result carries a Tier
// telling how far the numbers can be trusted, and nothing here aborts: a
// conversion that cannot be done comes back as an Unknown result with Err
// set and the input coordinates untouched.
//
// Main Functions:
//
// - Converter.Convert: convert a pair between two system identifiers
// - Converter.ConvertSystems: same with resolved systems
// - Converter.ConvertAuto: detect the source system first
// - Fallback: the fixed-offset conversion
package convert

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gardar/ocrcoords/pkg/coords"
	"github.com/gardar/ocrcoords/pkg/crs"
	"github.com/gardar/ocrcoords/pkg/geodesy"
)

// DefaultTimeout bounds a call to the external service.
const DefaultTimeout = 5 * time.Second

// Service is an external high-accuracy conversion service addressed by
// registry codes such as "EPSG:27572".
type Service interface {
	Convert(ctx context.Context, x, y float64, fromCode, toCode string) (float64, float64, error)
}

// Options control a single conversion.
type Options struct {
	AllowExternal bool          // Try Converter.Service before the engine
	Timeout       time.Duration // Bound on the external call (0 = DefaultTimeout)
}

// Converter converts coordinates. It holds no mutable state and is safe for
// concurrent use.
type Converter struct {
	Registry *crs.Registry
	Service  Service   // Optional external service
	Logger   io.Writer // Fallback notices (nil = discarded)
	Debug    bool      // Log every decision
}

// New returns a converter over reg. svc may be nil.
func New(reg *crs.Registry, svc Service, logger io.Writer) *Converter {
	return &Converter{Registry: reg, Service: svc, Logger: logger}
}

func (c *Converter) logger() io.Writer {
	if c.Logger == nil {
		return io.Discard
	}
	return c.Logger
}

// Convert converts pair from the system fromID to the system toID.
func (c *Converter) Convert(ctx context.Context, pair coords.Pair, fromID, toID string, opts Options) Result {
	from, ok := c.Registry.Lookup(fromID)
	if !ok {
		return unconverted(pair.X, pair.Y, fromID, toID, fmt.Errorf("%q: %w", fromID, ErrUnknownSystem))
	}
	to, ok := c.Registry.Lookup(toID)
	if !ok {
		return unconverted(pair.X, pair.Y, fromID, toID, fmt.Errorf("%q: %w", toID, ErrUnknownSystem))
	}
	return c.ConvertSystems(ctx, pair.X, pair.Y, from, to, opts)
}

// ConvertAuto detects the system of pair and converts it to toID.
func (c *Converter) ConvertAuto(ctx context.Context, pair coords.Pair, toID string, opts Options) Result {
	from := c.Registry.Detect(pair.X, pair.Y)
	if c.Debug {
		fmt.Fprintf(c.logger(), "Detected %s for (%g, %g)\n", from.ID, pair.X, pair.Y)
	}
	return c.Convert(ctx, pair, from.ID, toID, opts)
}

// ConvertSystems converts (x, y) from one system to another.
func (c *Converter) ConvertSystems(ctx context.Context, x, y float64, from, to crs.System, opts Options) Result {
	// Same system: nothing to compute
	if from.ID == to.ID {
		return Result{
			X: x, Y: y, Tier: Exact,
			Source: from.ID, Target: to.ID,
			Method: MethodIdentity,
		}
	}

	// External service first when allowed
	if opts.AllowExternal && c.Service != nil {
		res, err := c.external(ctx, x, y, from, to, opts)
		if err == nil {
			return res
		}
		fmt.Fprintf(c.logger(), "Warning: external conversion %s -> %s failed, using projection engine: %v\n",
			from.ID, to.ID, err)
	}

	// Local projection engine
	res, engineErr := c.project(x, y, from, to)
	if engineErr == nil {
		return res
	}
	fmt.Fprintf(c.logger(), "Warning: projection %s -> %s failed: %v\n", from.ID, to.ID, engineErr)

	// Fixed offsets for the one supported pair
	fx, fy, err := Fallback(x, y, from.ID, to.ID)
	if err != nil {
		return unconverted(x, y, from.ID, to.ID, fmt.Errorf("%w (projection: %w)", err, engineErr))
	}
	return Result{
		X: fx, Y: fy, Tier: Approximate,
		Source: from.ID, Target: to.ID,
		Method:  MethodOffsets,
		Warning: OffsetWarning,
	}
}

func (c *Converter) external(ctx context.Context, x, y float64, from, to crs.System, opts Options) (Result, error) {
	if from.Code == "" || to.Code == "" {
		return Result{}, fmt.Errorf("system without registry code: %w", ErrExternalUnavailable)
	}
	for _, code := range []string{from.Code, to.Code} {
		if c.Registry.AmbiguousCode(code) {
			return Result{}, fmt.Errorf("code %s names several systems: %w", code, ErrExternalUnavailable)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ox, oy, err := c.Service.Convert(ctx, x, y, from.Code, to.Code)
	if err != nil {
		return Result{}, err
	}
	if !finite(ox) || !finite(oy) {
		return Result{}, fmt.Errorf("non-finite result (%v, %v): %w", ox, oy, ErrExternalUnavailable)
	}

	return Result{
		X: ox, Y: oy, Tier: Exact,
		Source: from.ID, Target: to.ID,
		Method:     MethodExternal,
		Provenance: serviceName(c.Service),
	}, nil
}

func (c *Converter) project(x, y float64, from, to crs.System) (Result, error) {
	src, err := from.Definition()
	if err != nil {
		return Result{}, err
	}
	dst, err := to.Definition()
	if err != nil {
		return Result{}, err
	}

	ox, oy, err := geodesy.Transform(src, dst, x, y)
	if err != nil {
		return Result{}, err
	}

	decimals := 3
	if to.IsGeographic() {
		decimals = 6
	}
	if c.Debug {
		fmt.Fprintf(c.logger(), "Projected (%g, %g) %s -> (%.6f, %.6f) %s\n", x, y, from.ID, ox, oy, to.ID)
	}
	return Result{
		X: round(ox, decimals), Y: round(oy, decimals), Tier: High,
		Source: from.ID, Target: to.ID,
		Method:     MethodProjection,
		Provenance: "helmert 7-parameter datum shift",
	}, nil
}

func unconverted(x, y float64, fromID, toID string, err error) Result {
	return Result{X: x, Y: y, Tier: Unknown, Source: fromID, Target: toID, Err: err}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// serviceName names s in Result.Provenance.
func serviceName(s Service) string {
	if n, ok := s.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", s)
}
