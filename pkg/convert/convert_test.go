package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gardar/ocrcoords/pkg/coords"
	"github.com/gardar/ocrcoords/pkg/crs"
)

var legacyPoint = coords.Pair{X: 594368.498, Y: 1843413.039}

type fakeService struct {
	x, y  float64
	err   error
	block bool
	calls int
}

func (f *fakeService) Convert(ctx context.Context, x, y float64, fromCode, toCode string) (float64, float64, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return 0, 0, errors.Join(ErrExternalUnavailable, ctx.Err())
	}
	return f.x, f.y, f.err
}

func (f *fakeService) String() string { return "fake" }

func TestIdentityIsExact(t *testing.T) {
	c := New(crs.Default(), nil, nil)
	for _, s := range c.Registry.Systems() {
		res := c.Convert(context.Background(), coords.Pair{X: 123.456789, Y: 987.654321}, s.ID, s.ID, Options{})
		if res.Tier != Exact || res.X != 123.456789 || res.Y != 987.654321 || res.Method != MethodIdentity || res.Err != nil {
			t.Errorf("%s identity = %+v", s.ID, res)
		}
	}
}

func TestProjectionKnownVector(t *testing.T) {
	c := New(crs.Default(), nil, nil)
	res := c.Convert(context.Background(), legacyPoint, crs.Lambert2E, crs.Lambert93, Options{})
	if !res.OK() || res.Tier != High || res.Method != MethodProjection {
		t.Fatalf("result = %+v", res)
	}
	// Helmert parameters alone land within a few metres of the official grid.
	const tolerance = 3.0
	if math.Abs(res.X-640784.56) > tolerance || math.Abs(res.Y-6277336.83) > tolerance {
		t.Errorf("got (%.3f, %.3f), want within %v m of (640784.56, 6277336.83)", res.X, res.Y, tolerance)
	}
	if res.X != round(res.X, 3) || res.Y != round(res.Y, 3) {
		t.Errorf("projected result not rounded to millimetres: %v, %v", res.X, res.Y)
	}
}

func TestProjectionToGeographic(t *testing.T) {
	c := New(crs.Default(), nil, nil)
	res := c.Convert(context.Background(), legacyPoint, crs.Lambert2E, crs.WGS84, Options{})
	if !res.OK() {
		t.Fatal(res.Err)
	}
	if math.Abs(res.Y-43.592626) > 1e-5 || math.Abs(res.X-2.266933) > 1e-5 {
		t.Errorf("got lon %v lat %v", res.X, res.Y)
	}
	if res.X != round(res.X, 6) {
		t.Errorf("geographic result not rounded to 6 decimals: %v", res.X)
	}
}

func TestExternalService(t *testing.T) {
	svc := &fakeService{x: 640784.56, y: 6277336.83}
	c := New(crs.Default(), svc, nil)

	res := c.Convert(context.Background(), legacyPoint, crs.Lambert2E, crs.Lambert93, Options{AllowExternal: true})
	if res.Tier != Exact || res.Method != MethodExternal || res.Provenance != "fake" {
		t.Errorf("result = %+v", res)
	}
	if res.X != 640784.56 || res.Y != 6277336.83 {
		t.Errorf("got (%v, %v)", res.X, res.Y)
	}

	// Disabled per call.
	res = c.Convert(context.Background(), legacyPoint, crs.Lambert2E, crs.Lambert93, Options{})
	if res.Tier != High || svc.calls != 1 {
		t.Errorf("service used while disabled: %+v calls=%d", res, svc.calls)
	}
}

func TestExternalFailureFallsThrough(t *testing.T) {
	var log bytes.Buffer
	svc := &fakeService{err: ErrExternalUnavailable}
	c := New(crs.Default(), svc, &log)

	res := c.Convert(context.Background(), legacyPoint, crs.Lambert2E, crs.Lambert93, Options{AllowExternal: true})
	if res.Tier != High || res.Err != nil {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(log.String(), "external conversion") {
		t.Errorf("failure not logged: %q", log.String())
	}

	svc = &fakeService{x: math.NaN(), y: 1}
	c.Service = svc
	if res := c.Convert(context.Background(), legacyPoint, crs.Lambert2E, crs.Lambert93, Options{AllowExternal: true}); res.Tier != High {
		t.Errorf("NaN from service accepted: %+v", res)
	}
}

func TestExternalTimeout(t *testing.T) {
	svc := &fakeService{block: true}
	c := New(crs.Default(), svc, nil)

	start := time.Now()
	res := c.Convert(context.Background(), legacyPoint, crs.Lambert2E, crs.Lambert93,
		Options{AllowExternal: true, Timeout: 20 * time.Millisecond})
	if res.Tier != High {
		t.Errorf("result = %+v", res)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not applied, took %v", elapsed)
	}
}

func TestExternalSkippedForAmbiguousCodes(t *testing.T) {
	svc := &fakeService{x: 1, y: 1}
	c := New(crs.Default(), svc, nil)

	res := c.Convert(context.Background(), coords.Pair{X: 1710388.778, Y: 1244278.712}, crs.CC44, crs.WGS84, Options{AllowExternal: true})
	if svc.calls != 0 {
		t.Errorf("service called for a shared code")
	}
	if res.Tier != High || math.Abs(res.Y+21.1) > 1e-6 || math.Abs(res.X-55.6) > 1e-6 {
		t.Errorf("result = %+v", res)
	}
}

func bareRegistry(t *testing.T, ids ...string) *crs.Registry {
	t.Helper()
	var systems []crs.System
	for _, id := range ids {
		systems = append(systems, crs.System{ID: id, Kind: crs.Projected})
	}
	r, err := crs.NewRegistry(systems...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestApproximateFallback(t *testing.T) {
	var log bytes.Buffer
	c := New(bareRegistry(t, crs.Lambert2E, crs.Lambert93), nil, &log)

	res := c.Convert(context.Background(), legacyPoint, crs.Lambert2E, crs.Lambert93, Options{})
	if res.Tier != Approximate || res.Warning == "" || res.Err != nil || res.Method != MethodOffsets {
		t.Fatalf("result = %+v", res)
	}
	if math.Abs(res.X-640784.56) > 1e-6 || math.Abs(res.Y-6277336.82) > 1e-6 {
		t.Errorf("got (%v, %v)", res.X, res.Y)
	}

	back := c.Convert(context.Background(), coords.Pair{X: res.X, Y: res.Y}, crs.Lambert93, crs.Lambert2E, Options{})
	if back.Tier != Approximate || math.Abs(back.X-legacyPoint.X) > 1e-6 || math.Abs(back.Y-legacyPoint.Y) > 1e-6 {
		t.Errorf("reverse = %+v", back)
	}
	if log.Len() == 0 {
		t.Error("engine failure not logged")
	}
}

func TestUnsupportedPair(t *testing.T) {
	c := New(bareRegistry(t, "A", "B"), nil, nil)
	res := c.Convert(context.Background(), coords.Pair{X: 5, Y: 6}, "A", "B", Options{})
	if res.Tier != Unknown || !errors.Is(res.Err, ErrUnsupportedPair) || res.OK() {
		t.Errorf("result = %+v", res)
	}
	if res.X != 5 || res.Y != 6 {
		t.Errorf("coordinates changed: %v, %v", res.X, res.Y)
	}
}

func TestUnknownSystem(t *testing.T) {
	c := New(crs.Default(), nil, nil)
	for _, ids := range [][2]string{{"NOPE", crs.Lambert93}, {crs.Lambert93, "NOPE"}} {
		res := c.Convert(context.Background(), legacyPoint, ids[0], ids[1], Options{})
		if res.Tier != Unknown || !errors.Is(res.Err, ErrUnknownSystem) {
			t.Errorf("%v: result = %+v", ids, res)
		}
	}
}

func TestConvertAuto(t *testing.T) {
	c := New(crs.Default(), nil, nil)
	res := c.ConvertAuto(context.Background(), legacyPoint, crs.Lambert93, Options{})
	if res.Source != crs.Lambert2E || res.Tier != High {
		t.Errorf("result = %+v", res)
	}
}

func TestFallbackOnlyLambertPair(t *testing.T) {
	if _, _, err := Fallback(1, 2, crs.Lambert1, crs.Lambert93); !errors.Is(err, ErrUnsupportedPair) {
		t.Errorf("Fallback(LAMBERT1) = %v", err)
	}
}

func TestResultJSON(t *testing.T) {
	in := Result{X: 1, Y: 2, Tier: Unknown, Source: "A", Target: "B", Err: ErrUnsupportedPair}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"error":"unsupported system pair"`)) || !bytes.Contains(data, []byte(`"precision":"unknown"`)) {
		t.Errorf("json = %s", data)
	}

	var out Result
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Err == nil || out.Err.Error() != in.Err.Error() || out.Source != "A" {
		t.Errorf("decoded = %+v", out)
	}
}
