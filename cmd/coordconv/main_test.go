package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/text/language"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/coords"
	"github.com/gardar/ocrcoords/pkg/crs"
)

func TestReadPair(t *testing.T) {
	tests := []struct {
		name    string
		x, y    string
		text    string
		want    coords.Pair
		wantErr bool
	}{
		{"values", "594 368,498", "1 843 413,039", "", coords.Pair{X: 594368.498, Y: 1843413.039}, false},
		{"text", "", "", "X = 594368.498 Y = 1843413.039", coords.Pair{X: 594368.498, Y: 1843413.039}, false},
		{"bad value", "abc", "1", "", coords.Pair{}, true},
		{"hex value", "0x1p4", "1843413", "", coords.Pair{}, true},
		{"text without pair", "", "", "Échelle 1/2000", coords.Pair{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readPair(tt.x, tt.y, tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-9)); !tt.wantErr && diff != "" {
				t.Errorf("pair mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrintResult(t *testing.T) {
	reg := crs.Default()
	c := convert.New(reg, nil, nil)
	in := coords.Pair{X: 594368.498, Y: 1843413.039}
	res := c.Convert(context.Background(), in, crs.Lambert2E, crs.Lambert93, convert.Options{})

	var buf bytes.Buffer
	printResult(&buf, reg, in, res, language.English)
	out := buf.String()
	for _, want := range []string{"Input:  X: 594,368 m, Y: 1,843,413 m", "Precision: high (projection engine)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	buf.Reset()
	bad := c.Convert(context.Background(), in, "NOPE", crs.Lambert93, convert.Options{})
	printResult(&buf, reg, in, bad, language.English)
	if !strings.Contains(buf.String(), "Error:") {
		t.Errorf("output lacks the error:\n%s", buf.String())
	}
}

func TestListSystems(t *testing.T) {
	var buf bytes.Buffer
	listSystems(&buf, crs.Default())
	if !strings.Contains(buf.String(), "LAMBERT93") || !strings.Contains(buf.String(), "EPSG:2154") {
		t.Errorf("listing:\n%s", buf.String())
	}
}
