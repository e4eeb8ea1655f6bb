// Package geofree provides external coordinate conversion services.
//
// Two services are supported:
//
// - Form: the Geofree coordinate converter, an HTML form answered with an
// HTML page; the converted pair is read back from the result page
// - EPSGIO: the epsg.io "trans" JSON endpoint
//
// Chain tries several services in order. All of them satisfy
// convert.Service and report failures wrapped in
// convert.ErrExternalUnavailable so the converter falls back to the local
// projection engine.
package geofree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gardar/ocrcoords/pkg/convert"
)

// UserAgent is sent with every request.
const UserAgent = "ocrcoords/1.0"

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

// defaultClient is used when a service has no HTTP client configured.
var defaultClient = &http.Client{Timeout: 30 * time.Second}

// Chain tries each service in turn and returns the first success.
type Chain []convert.Service

// DefaultChain tries the Geofree form, then epsg.io, on their public
// endpoints.
func DefaultChain() Chain {
	return Chain{&Form{}, &EPSGIO{}}
}

// Convert implements convert.Service.
func (c Chain) Convert(ctx context.Context, x, y float64, fromCode, toCode string) (float64, float64, error) {
	if len(c) == 0 {
		return 0, 0, fmt.Errorf("no services configured: %w", convert.ErrExternalUnavailable)
	}
	var errs []error
	for _, s := range c {
		ox, oy, err := s.Convert(ctx, x, y, fromCode, toCode)
		if err == nil {
			return ox, oy, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name(s), err))
		if ctx.Err() != nil {
			break
		}
	}
	return 0, 0, errors.Join(errs...)
}

func (c Chain) String() string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = name(s)
	}
	return strings.Join(names, ", ")
}

func name(s convert.Service) string {
	if n, ok := s.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", s)
}

// do sends req and returns the body of a 2xx response.
func do(client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = defaultClient
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", convert.ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", convert.ErrExternalUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %s", convert.ErrExternalUnavailable, resp.Status)
	}
	return body, nil
}
