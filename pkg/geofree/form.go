package geofree

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/coords"
)

// DefaultFormURL is the Geofree converter endpoint.
const DefaultFormURL = "https://geofree.fr/gf/coordinateconv.asp"

// formSystems maps registry codes to Geofree system names.
var formSystems = map[string]string{
	"EPSG:27572": "L2E",
	"EPSG:2154":  "L93",
	"EPSG:4326":  "WGS84",
}

// Form is the Geofree HTML form service.
type Form struct {
	URL    string       // Endpoint (empty = DefaultFormURL)
	Client *http.Client // nil = package default client
}

func (f *Form) String() string { return "geofree" }

// Convert implements convert.Service.
func (f *Form) Convert(ctx context.Context, x, y float64, fromCode, toCode string) (float64, float64, error) {
	sd, ok := formSystems[fromCode]
	if !ok {
		return 0, 0, fmt.Errorf("%w: geofree does not know %s", convert.ErrExternalUnavailable, fromCode)
	}
	sa, ok := formSystems[toCode]
	if !ok {
		return 0, 0, fmt.Errorf("%w: geofree does not know %s", convert.ErrExternalUnavailable, toCode)
	}

	endpoint := f.URL
	if endpoint == "" {
		endpoint = DefaultFormURL
	}

	form := url.Values{}
	form.Set("pays", "FRA")
	form.Set("sd", sd)
	form.Set("sa", sa)
	form.Set("donnees", formatPair(x, y))
	form.Set("format", "dec")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := do(f.Client, req)
	if err != nil {
		return 0, 0, err
	}

	pair, err := parseFormResult(body)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", convert.ErrExternalUnavailable, err)
	}
	return pair.X, pair.Y, nil
}

// parseFormResult reads the converted pair from a result page. The
// result is looked for in a textarea other than the echoed "donnees" input,
// then in the text of an element whose id or class mentions "result", then
// in the whole page text with the echoed input removed.
func parseFormResult(page []byte) (coords.Pair, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return coords.Pair{}, fmt.Errorf("failed to parse result page: %w", err)
	}

	var areas, results []string
	var all strings.Builder
	var walk func(n *html.Node, skip bool)
	walk = func(n *html.Node, skip bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "textarea", "input":
				if attr(n, "name") == "donnees" {
					skip = true
				} else if n.Data == "textarea" {
					areas = append(areas, textOf(n))
				}
			}
			if strings.Contains(strings.ToLower(attr(n, "id")+" "+attr(n, "class")), "result") {
				results = append(results, textOf(n))
			}
		}
		if n.Type == html.TextNode && !skip {
			all.WriteString(n.Data)
			all.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	for _, group := range [][]string{areas, results, {all.String()}} {
		for _, text := range group {
			if m, err := coords.ExtractMatch(text); err == nil {
				return m.Pair, nil
			}
		}
	}
	return coords.Pair{}, fmt.Errorf("no converted coordinates in result page: %w", coords.ErrNoCoordinates)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func formatPair(x, y float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64)
}
