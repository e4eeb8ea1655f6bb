package geofree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gardar/ocrcoords/pkg/convert"
)

// DefaultEPSGIOURL is the epsg.io transformation endpoint.
const DefaultEPSGIOURL = "https://epsg.io/trans"

// EPSGIO is the epsg.io JSON transformation service.
type EPSGIO struct {
	URL    string       // Endpoint (empty = DefaultEPSGIOURL)
	Client *http.Client // nil = package default client
}

func (e *EPSGIO) String() string { return "epsg.io" }

// Convert implements convert.Service.
func (e *EPSGIO) Convert(ctx context.Context, x, y float64, fromCode, toCode string) (float64, float64, error) {
	endpoint := e.URL
	if endpoint == "" {
		endpoint = DefaultEPSGIOURL
	}

	q := url.Values{}
	q.Set("data", formatPair(x, y))
	q.Set("s_srs", epsgNumber(fromCode))
	q.Set("t_srs", epsgNumber(toCode))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := do(e.Client, req)
	if err != nil {
		return 0, 0, err
	}

	p, err := parseTransResponse(body)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", convert.ErrExternalUnavailable, err)
	}
	return float64(p.X), float64(p.Y), nil
}

// transPoint is one point of a trans response. Coordinates come back as
// strings or numbers depending on the endpoint version.
type transPoint struct {
	X flexFloat `json:"x"`
	Y flexFloat `json:"y"`
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("coordinate %s: %w", data, err)
	}
	*f = flexFloat(v)
	return nil
}

// parseTransResponse accepts {"x":..,"y":..} or a list of such objects.
func parseTransResponse(body []byte) (transPoint, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return transPoint{}, fmt.Errorf("empty response")
	}

	var raw map[string]json.RawMessage
	if body[0] == '[' {
		var list []map[string]json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return transPoint{}, fmt.Errorf("invalid response: %w", err)
		}
		if len(list) == 0 {
			return transPoint{}, fmt.Errorf("empty result list")
		}
		raw = list[0]
	} else if err := json.Unmarshal(body, &raw); err != nil {
		return transPoint{}, fmt.Errorf("invalid response: %w", err)
	}

	if _, ok := raw["x"]; !ok {
		return transPoint{}, fmt.Errorf("response without coordinates: %s", body)
	}
	if _, ok := raw["y"]; !ok {
		return transPoint{}, fmt.Errorf("response without coordinates: %s", body)
	}
	var p transPoint
	if err := json.Unmarshal(raw["x"], &p.X); err != nil {
		return transPoint{}, err
	}
	if err := json.Unmarshal(raw["y"], &p.Y); err != nil {
		return transPoint{}, err
	}
	return p, nil
}

// epsgNumber strips the "EPSG:" prefix of a registry code.
func epsgNumber(code string) string {
	if i := strings.IndexByte(code, ':'); i >= 0 && strings.EqualFold(code[:i], "EPSG") {
		return code[i+1:]
	}
	return code
}
