// Package crs holds the reference systems a coordinate can be expressed in.
//
// A Registry is built once, never modified, and handed to whoever needs it.
// Default returns the French national and overseas systems; LoadSystems
// reads additional definitions from YAML.
package crs

import (
	"errors"
	"fmt"
	"math"
)

// System identifiers of the default registry.
const (
	Lambert93 = "LAMBERT93"
	Lambert2E = "LAMBERT2E"
	Lambert1  = "LAMBERT1"
	Lambert2  = "LAMBERT2"
	Lambert3  = "LAMBERT3"
	Lambert4  = "LAMBERT4"
	CC42      = "CC42"
	CC43      = "CC43"
	CC44      = "CC44"
	CC45      = "CC45"
	CC46      = "CC46"
	CC47      = "CC47"
	CC48      = "CC48"
	CC49      = "CC49"
	CC50      = "CC50"
	WGS84     = "WGS84"
	RGF93Geo  = "RGF93_GEO"
)

var (
	ErrEmptyID     = errors.New("system without identifier")
	ErrDuplicateID = errors.New("duplicate system identifier")
)

// Registry is an ordered, read-only set of systems. It is safe for
// concurrent use.
type Registry struct {
	systems  []System
	byID     map[string]int
	fallback string
}

// NewRegistry builds a registry; detection tries systems in the given order.
// The fallback for points matching nothing is Lambert II étendu when present,
// otherwise the first projected system.
func NewRegistry(systems ...System) (*Registry, error) {
	r := &Registry{
		systems: make([]System, 0, len(systems)),
		byID:    make(map[string]int, len(systems)),
	}
	for _, s := range systems {
		if s.ID == "" {
			return nil, fmt.Errorf("%q: %w", s.Name, ErrEmptyID)
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("%s: %w", s.ID, ErrDuplicateID)
		}
		r.byID[s.ID] = len(r.systems)
		r.systems = append(r.systems, s)
	}

	if _, ok := r.byID[Lambert2E]; ok {
		r.fallback = Lambert2E
	} else {
		for _, s := range r.systems {
			if !s.IsGeographic() {
				r.fallback = s.ID
				break
			}
		}
	}
	return r, nil
}

// Default returns a fresh registry holding DefaultSystems.
func Default() *Registry {
	r, err := NewRegistry(DefaultSystems()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the system with the given identifier.
func (r *Registry) Lookup(id string) (System, bool) {
	i, ok := r.byID[id]
	if !ok {
		return System{}, false
	}
	return r.systems[i], true
}

// MustLookup is Lookup for identifiers known to exist.
func (r *Registry) MustLookup(id string) System {
	s, ok := r.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("crs: unknown system %q", id))
	}
	return s
}

// Systems returns a copy of the systems in detection order.
func (r *Registry) Systems() []System {
	out := make([]System, len(r.systems))
	copy(out, r.systems)
	return out
}

// AmbiguousCode reports whether code is carried by systems with different
// definitions, in which case an external service cannot know which one is
// meant.
func (r *Registry) AmbiguousCode(code string) bool {
	var first *System
	for i := range r.systems {
		s := &r.systems[i]
		if s.Code != code {
			continue
		}
		if first == nil {
			first = s
			continue
		}
		if !sameDefinition(*first, *s) {
			return true
		}
	}
	return false
}

func sameDefinition(a, b System) bool {
	if a.Kind != b.Kind || a.Ellipsoid != b.Ellipsoid || a.ToCommon != b.ToCommon {
		return false
	}
	if a.Projection == nil || b.Projection == nil {
		return a.Projection == b.Projection
	}
	return *a.Projection == *b.Projection
}

// Fallback returns the system Detect answers when nothing else fits.
func (r *Registry) Fallback() (System, bool) {
	return r.Lookup(r.fallback)
}

// Detect guesses the system of (x, y): the first system whose bounds hold
// the point, then WGS84 for anything that looks like degrees, and finally
// the registry fallback (Lambert II étendu for the default registry, the
// most common system on legacy metropolitan survey plans).
func (r *Registry) Detect(x, y float64) System {
	for _, s := range r.systems {
		if s.Bounds.Contains(x, y) {
			return s
		}
	}
	if math.Abs(x) <= 180 && math.Abs(y) <= 90 {
		if s, ok := r.Lookup(WGS84); ok {
			return s
		}
		for _, s := range r.systems {
			if s.IsGeographic() {
				return s
			}
		}
	}
	s, _ := r.Fallback()
	return s
}

// Validation is the outcome of checking a point against an expected system.
type Validation struct {
	Valid    bool   `json:"valid"`
	Detected System `json:"-"`
	Expected System `json:"-"`
	Message  string `json:"message,omitempty"`
}

// Validate checks whether (x, y) plausibly belongs to expected.
// A point outside expected's bounds is invalid and Detected names the
// system it most likely comes from instead.
func (r *Registry) Validate(x, y float64, expected System) Validation {
	v := Validation{Expected: expected}
	if expected.Bounds.Contains(x, y) {
		v.Valid = true
		v.Detected = expected
		return v
	}
	v.Detected = r.Detect(x, y)
	v.Message = fmt.Sprintf("(%g, %g) is outside %s bounds, looks like %s", x, y, expected.ID, v.Detected.ID)
	return v
}
