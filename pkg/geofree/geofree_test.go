package geofree

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/coords"
	"github.com/gardar/ocrcoords/pkg/crs"
)

const resultPage = `<html><body>
<form method="post">
<textarea name="donnees">594368.498,1843413.039</textarea>
<select name="sd"><option value="L2E" selected>Lambert II étendu</option></select>
</form>
<div class="resultats">Résultat : X = 640784.56 ; Y = 6277336.83</div>
</body></html>`

func TestFormConvert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		want := map[string]string{"pays": "FRA", "sd": "L2E", "sa": "L93", "donnees": "594368.498,1843413.039", "format": "dec"}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("form %s = %q, want %q", k, got, v)
			}
		}
		if r.UserAgent() != UserAgent {
			t.Errorf("user agent = %q", r.UserAgent())
		}
		fmt.Fprint(w, resultPage)
	}))
	defer srv.Close()

	f := &Form{URL: srv.URL, Client: srv.Client()}
	x, y, err := f.Convert(context.Background(), 594368.498, 1843413.039, "EPSG:27572", "EPSG:2154")
	if err != nil {
		t.Fatal(err)
	}
	if x != 640784.56 || y != 6277336.83 {
		t.Errorf("got (%v, %v)", x, y)
	}
}

func TestFormResultInTextarea(t *testing.T) {
	page := `<textarea name="donnees">594368.498,1843413.039</textarea>
<textarea name="sortie">640784.56,6277336.83</textarea>`
	p, err := parseFormResult([]byte(page))
	if err != nil {
		t.Fatal(err)
	}
	if p != (coords.Pair{X: 640784.56, Y: 6277336.83}) {
		t.Errorf("got %v", p)
	}
}

func TestFormErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/down":
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		default:
			fmt.Fprint(w, `<html><body><textarea name="donnees">594368.498,1843413.039</textarea>Erreur</body></html>`)
		}
	}))
	defer srv.Close()

	for _, path := range []string{"/down", "/empty"} {
		f := &Form{URL: srv.URL + path, Client: srv.Client()}
		if _, _, err := f.Convert(context.Background(), 594368.498, 1843413.039, "EPSG:27572", "EPSG:2154"); !errors.Is(err, convert.ErrExternalUnavailable) {
			t.Errorf("%s: err = %v", path, err)
		}
	}

	f := &Form{URL: srv.URL}
	if _, _, err := f.Convert(context.Background(), 1, 2, "EPSG:5490", "EPSG:2154"); !errors.Is(err, convert.ErrExternalUnavailable) {
		t.Errorf("unsupported code: err = %v", err)
	}
}

func TestEPSGIO(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object with strings", `{"x": "640784.56", "y": "6277336.83", "z": "0"}`},
		{"list with numbers", `[{"x": 640784.56, "y": 6277336.83}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("s_srs") != "27572" || q.Get("t_srs") != "2154" || q.Get("data") != "594368.498,1843413.039" || q.Get("format") != "json" {
					t.Errorf("query = %v", q)
				}
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			e := &EPSGIO{URL: srv.URL, Client: srv.Client()}
			x, y, err := e.Convert(context.Background(), 594368.498, 1843413.039, "EPSG:27572", "EPSG:2154")
			if err != nil {
				t.Fatal(err)
			}
			if x != 640784.56 || y != 6277336.83 {
				t.Errorf("got (%v, %v)", x, y)
			}
		})
	}
}

func TestParseTransResponseInvalid(t *testing.T) {
	for _, body := range []string{"", "[]", `{"status":"error"}`, `{"x":"abc","y":"1"}`, "<html>"} {
		if _, err := parseTransResponse([]byte(body)); err == nil {
			t.Errorf("parseTransResponse(%q) succeeded", body)
		}
	}
}

func TestChain(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"x":"640784.56","y":"6277336.83"}`)
	}))
	defer up.Close()

	chain := Chain{
		&Form{URL: down.URL, Client: down.Client()},
		&EPSGIO{URL: up.URL, Client: up.Client()},
	}
	if chain.String() != "geofree, epsg.io" {
		t.Errorf("String() = %q", chain.String())
	}
	x, y, err := chain.Convert(context.Background(), 594368.498, 1843413.039, "EPSG:27572", "EPSG:2154")
	if err != nil || x != 640784.56 || y != 6277336.83 {
		t.Errorf("Convert = (%v, %v, %v)", x, y, err)
	}

	if _, _, err := (Chain{}).Convert(context.Background(), 1, 2, "a", "b"); !errors.Is(err, convert.ErrExternalUnavailable) {
		t.Errorf("empty chain err = %v", err)
	}
}

func TestConverterWithChain(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	c := convert.New(crs.Default(), Chain{&EPSGIO{URL: slow.URL, Client: slow.Client()}}, nil)
	res := c.Convert(context.Background(), coords.Pair{X: 594368.498, Y: 1843413.039}, crs.Lambert2E, crs.Lambert93,
		convert.Options{AllowExternal: true, Timeout: 50 * time.Millisecond})
	if res.Tier != convert.High || res.Method != convert.MethodProjection {
		t.Errorf("result = %+v", res)
	}
}
