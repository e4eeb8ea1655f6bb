package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/coords"
	"github.com/gardar/ocrcoords/pkg/crs"
	"github.com/gardar/ocrcoords/pkg/pipeline"
)

func sampleRecords() []pipeline.Record {
	return []pipeline.Record{
		{
			Page: 3, Confidence: 12,
			Match:  coords.Match{Pair: coords.Pair{X: 594368.498, Y: 1843413.039}},
			Result: convert.Result{X: 640784.056, Y: 6277338.1, Tier: convert.High, Source: crs.Lambert2E, Target: crs.Lambert93, Method: convert.MethodProjection},
		},
		{Page: 1, Confidence: 90, Err: coords.ErrNoCoordinates},
		{
			Page: 2, Confidence: 80,
			Result: convert.Result{X: 1700000, Y: 1200000, Tier: convert.Unknown, Source: "CC46", Target: crs.Lambert93,
				Err: errors.New("unsupported system pair")},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows("/scans/plan_cadastral.pdf", sampleRecords())
	var got [][3]string
	for _, r := range rows {
		got = append(got, [3]string{r.Name, r.X, r.Y})
	}
	want := [][3]string{
		{"plan_cadastral_1", "0.000", "0.000"},
		{"plan_cadastral_2", "1700000.000", "1200000.000"},
		{"plan_cadastral_3", "640784.056", "6277338.100"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
	if rows[0].Note != coords.ErrNoCoordinates.Error() || rows[1].Note != "unsupported system pair" {
		t.Errorf("notes = %q, %q", rows[0].Note, rows[1].Note)
	}
}

func TestFormatValue(t *testing.T) {
	tests := map[float64]string{
		0:              "0.000",
		594368.4986:    "594368.499",
		1843413:        "1843413.000",
		48.8566:        "48.857",
		-21.1:          "-21.100",
		12345678.12345: "12345678.123",
	}
	for in, want := range tests {
		if got := FormatValue(in); got != want {
			t.Errorf("FormatValue(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestDocumentName(t *testing.T) {
	for in, want := range map[string]string{
		"plan.pdf":         "plan",
		"/a/b/plan.v2.pdf": "plan.v2",
		"scan":             "scan",
		"":                 "document",
	} {
		if got := DocumentName(in); got != want {
			t.Errorf("DocumentName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, "plan.pdf", sampleRecords(), CSVOptions{}); err != nil {
		t.Fatal(err)
	}
	want := "plan_1,0.000,0.000\nplan_2,1700000.000,1200000.000\nplan_3,640784.056,6277338.100\n"
	if got := buf.String(); got != want {
		t.Errorf("CSV =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteCSVDetailed(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, "plan.pdf", sampleRecords(), CSVOptions{Header: true, Detailed: true, Comma: ';'}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "name;x;y;precision;method;source;target;confidence;note" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[3] != "plan_3;640784.056;6277338.100;high;projection engine;LAMBERT2E;LAMBERT93;12.0;" {
		t.Errorf("row = %q", lines[3])
	}
}

func TestWritePDFReport(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultReportConfig()
	cfg.Generated = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := WritePDFReport(&buf, "plan étendu.pdf", sampleRecords(), cfg); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:min(buf.Len(), 16)])
	}
}

func TestLatin1(t *testing.T) {
	if got := latin1("étendu"); got != "\xe9tendu" {
		t.Errorf("latin1 = %q", got)
	}
	if got := latin1("X → Y"); got != "X ? Y" {
		t.Errorf("latin1 = %q", got)
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, "plan_<b>.pdf", sampleRecords()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"<table>",
		"<td>plan_&lt;b&gt;_3</td>",
		`<td style="text-align:right">640784.056</td>`,
		"3 page(s), 2 extracted, 1 converted, 1 high.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<b>") {
		t.Error("document name not escaped")
	}
}
