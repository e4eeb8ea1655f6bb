// pdfcoords is a command-line tool for reading coordinates off scanned
// documents and converting them to a target reference system.
//
// Every selected page is read in the same region, through one of three
// OCR providers. The first coordinate pair of the region is extracted,
// converted (locally, or through an online service with -online) and
// written to a CSV table, a PDF report, an HTML summary and/or an annotated
// copy of the document.
//
// Configuration:
//
// An optional YAML configuration file holds the Google Document AI
// settings (needed for -pdf) and batch defaults:
//
//	project_id: "your-gcp-project-id"
//	location: "eu"
//	processor_id: "your-processor-id"
//	region: {x: 0.6, y: 0.8, w: 0.35, h: 0.15}
//	from: LAMBERT2E
//	to: LAMBERT93
//	online: false
//	workers: 4
//	timeout: 5s
//
// Usage:
//
//	pdfcoords [-config config.yml] (-hocr file | -images dir | -pdf file) [options]
//
// Input options (exactly one required):
//
//	-hocr string    Comma separated hOCR files, pages in order
//	-images string  Directory (or comma separated list) of page images, read with Tesseract
//	-pdf string     PDF processed with Google Document AI
//
// Processing options:
//
//	-pages string       Pages to process, e.g. "1-3,7" (default all)
//	-region string      Region to read as x,y,w,h page fractions (default whole page)
//	-from string        Source system, or "auto" to detect it per page (default LAMBERT2E)
//	-to string          Target system (default LAMBERT93)
//	-online             Try the online conversion services first
//	-systems string     YAML file with additional reference systems
//	-workers int        Pages processed concurrently
//	-lang string        Tesseract languages for -images (default eng,fra)
//	-checkpoint string  Progress file used to resume an interrupted batch
//	-review             Confirm or correct the OCR text of each page
//	-debug              Log every page
//
// Output options (CSV on stdout when none is given):
//
//	-csv string          Path to save the coordinate table ("-" for stdout)
//	-detailed            Add precision, method and notes to the CSV
//	-report string       Path to save a PDF report
//	-html string         Path to save an HTML summary
//	-json string         Path to save the page records as JSON
//	-annotate string     Path to save the annotated document
//	-source string       PDF to annotate when the input is hOCR
//	-force               Annotate even if the document already carries coordinate layers
//	-debug-api string    Path to save the Document AI response as JSON
//	-form-fields string  Path to save Document AI form fields as JSON
//
// Example:
//
//	pdfcoords -hocr plan.hocr -region 0.6,0.8,0.35,0.15 -csv plan.csv
//	pdfcoords -config config.yml -pdf plan.pdf -from auto -online -report plan_report.pdf -annotate plan_coords.pdf
//	pdfcoords -images ./scans -checkpoint scans.json -review -csv scans.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/gardar/ocrcoords/pkg/annotate"
	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/crs"
	"github.com/gardar/ocrcoords/pkg/export"
	"github.com/gardar/ocrcoords/pkg/gdocai"
	"github.com/gardar/ocrcoords/pkg/geofree"
	"github.com/gardar/ocrcoords/pkg/hocr"
	"github.com/gardar/ocrcoords/pkg/ocr"
	"github.com/gardar/ocrcoords/pkg/ocr/tesseract"
	"github.com/gardar/ocrcoords/pkg/pipeline"
)

// input is the opened document.
type input struct {
	name       string // Path used for the document name
	pages      int
	recognizer ocr.Recognizer
	pdf        []byte   // Original PDF (-pdf or -source)
	images     []string // Page image files (-images)
}

func main() {
	// Input flags
	configPath := flag.String("config", "", "Path to the config YAML file")
	hocrPaths := flag.String("hocr", "", "Comma-separated hOCR files, pages in order")
	imagesArg := flag.String("images", "", "Directory or comma-separated list of page images (Tesseract)")
	pdfPath := flag.String("pdf", "", "Path to a PDF processed with Google Document AI")

	// Processing flags
	pagesArg := flag.String("pages", "", "Pages to process, e.g. 1-3,7 (default all)")
	regionArg := flag.String("region", "", "Region to read as x,y,w,h page fractions (default whole page)")
	from := flag.String("from", "", "Source system, or \"auto\" to detect it per page (default LAMBERT2E)")
	to := flag.String("to", "", "Target system (default LAMBERT93)")
	online := flag.Bool("online", false, "Try the online conversion services first")
	systemsPath := flag.String("systems", "", "YAML file with additional reference systems")
	workers := flag.Int("workers", 0, "Pages processed concurrently")
	langs := flag.String("lang", "", "Comma-separated Tesseract languages for -images (default eng,fra)")
	checkpointPath := flag.String("checkpoint", "", "Progress file used to resume an interrupted batch")
	review := flag.Bool("review", false, "Confirm or correct the OCR text of each page")
	debug := flag.Bool("debug", false, "Enable debug mode")

	// Output flags
	csvPath := flag.String("csv", "", "Path to save the coordinate table (- for stdout)")
	detailed := flag.Bool("detailed", false, "Add precision, method and notes to the CSV")
	reportPath := flag.String("report", "", "Path to save a PDF report")
	htmlPath := flag.String("html", "", "Path to save an HTML summary")
	jsonPath := flag.String("json", "", "Path to save the page records as JSON")
	annotatePath := flag.String("annotate", "", "Path to save the annotated document")
	sourcePath := flag.String("source", "", "PDF to annotate when the input is hOCR")
	force := flag.Bool("force", false, "Annotate even if coordinate layers are already detected")
	debugAPIPath := flag.String("debug-api", "", "Path to save the Document AI response as JSON for debugging purposes")
	formFieldsPath := flag.String("form-fields", "", "Path to save Document AI form fields JSON")

	flag.Parse()

	// Create a map of provided flags to validate
	providedFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		providedFlags[f.Name] = true
	})

	usageError := func(msg string) {
		fmt.Fprintln(os.Stderr, "Error:", msg)
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Validate that exactly one input is provided
	inputs := 0
	for _, v := range []string{*hocrPaths, *imagesArg, *pdfPath} {
		if v != "" {
			inputs++
		}
	}
	if inputs != 1 {
		usageError("Exactly one of -hocr, -images or -pdf must be provided")
	}

	// Validate that provided path flags have values
	hasError := false
	validateFlag := func(name string, value string) {
		if providedFlags[name] && value == "" {
			fmt.Fprintf(os.Stderr, "Error: -%s flag requires a value\n", name)
			hasError = true
		}
	}
	validateFlag("config", *configPath)
	validateFlag("systems", *systemsPath)
	validateFlag("checkpoint", *checkpointPath)
	validateFlag("csv", *csvPath)
	validateFlag("report", *reportPath)
	validateFlag("html", *htmlPath)
	validateFlag("json", *jsonPath)
	validateFlag("annotate", *annotatePath)
	validateFlag("source", *sourcePath)
	validateFlag("debug-api", *debugAPIPath)
	validateFlag("form-fields", *formFieldsPath)
	if hasError {
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if (*debugAPIPath != "" || *formFieldsPath != "") && *pdfPath == "" {
		usageError("-debug-api and -form-fields need -pdf")
	}
	if *annotatePath != "" && *hocrPaths != "" && *sourcePath == "" {
		usageError("-annotate with -hocr needs the scanned PDF in -source")
	}
	if *sourcePath != "" && *hocrPaths == "" {
		fmt.Println("Warning: -source is only applicable with -hocr. Ignoring -source.")
	}

	// Load config from file, then let flags override it
	yc, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := yc.pipelineConfig()
	if *regionArg != "" {
		if cfg.Region, err = ocr.ParseRegion(*regionArg); err != nil {
			log.Fatalf("Invalid -region: %v", err)
		}
	}
	if *from != "" {
		cfg.SourceID = strings.ToUpper(*from)
		if strings.EqualFold(*from, pipeline.AutoDetect) {
			cfg.SourceID = pipeline.AutoDetect
		}
	}
	if *to != "" {
		cfg.TargetID = strings.ToUpper(*to)
	}
	if providedFlags["online"] {
		cfg.AllowExternal = *online
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	cfg.Debug = *debug

	systems := yc.Systems
	if *systemsPath != "" {
		systems = *systemsPath
	}
	registry, err := crs.LoadRegistry(systems)
	if err != nil {
		log.Fatalf("Failed to load reference systems: %v", err)
	}
	for _, id := range []string{cfg.SourceID, cfg.TargetID} {
		if id == pipeline.AutoDetect {
			continue
		}
		if _, ok := registry.Lookup(id); !ok {
			log.Fatalf("Unknown reference system %q", id)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the document with the selected OCR provider
	var in input
	switch {
	case *hocrPaths != "":
		paths := splitList(*hocrPaths)
		if len(paths) == 0 {
			usageError("-hocr lists no files")
		}
		fmt.Printf("Reading %d hOCR file(s)\n", len(paths))
		rec, err := hocr.NewRecognizer(paths...)
		if err != nil {
			log.Fatalf("Failed to read hOCR: %v", err)
		}
		in = input{name: paths[0], pages: rec.PageCount(), recognizer: rec}
		if *sourcePath != "" {
			if in.pdf, err = os.ReadFile(*sourcePath); err != nil {
				log.Fatalf("Failed to read source PDF: %v", err)
			}
		}

	case *imagesArg != "":
		paths, err := imageFiles(*imagesArg)
		if err != nil {
			log.Fatalf("Error accessing images: %v", err)
		}
		fmt.Printf("Found %d image file(s)\n", len(paths))
		languages := yc.Languages
		if *langs != "" {
			languages = splitList(*langs)
		}
		engine, err := tesseract.New(languages...)
		if err != nil {
			log.Fatalf("Failed to start Tesseract: %v", err)
		}
		in = input{
			name:       filepath.Dir(paths[0]),
			pages:      len(paths),
			recognizer: &ocr.ImageRecognizer{Pages: ocr.ImageFiles(paths), Engine: engine},
			images:     paths,
		}
		if info, err := os.Stat(*imagesArg); err == nil && !info.IsDir() {
			in.name = paths[0]
		}

	default:
		docCfg := yc.documentAI()
		if err := docCfg.Validate(); err != nil {
			log.Fatalf("Document AI needs -config: %v", err)
		}
		pdfBytes, err := os.ReadFile(*pdfPath)
		if err != nil {
			log.Fatalf("Failed to read PDF file: %v", err)
		}
		fmt.Println("Processing PDF with Document AI:", *pdfPath)
		rec, err := gdocai.Process(ctx, pdfBytes, gdocai.MimePDF, docCfg)
		if err != nil {
			log.Fatalf("Error processing document: %v", err)
		}
		in = input{name: *pdfPath, pages: rec.PageCount(), recognizer: rec, pdf: pdfBytes}

		if *debugAPIPath != "" {
			writeJSON(*debugAPIPath, "API response", rec.Raw)
		}
		if *formFieldsPath != "" {
			writeJSON(*formFieldsPath, "Form fields", gdocai.ExtractFormFields(rec.Raw))
		}
	}

	pages, err := parsePages(*pagesArg, in.pages)
	if err != nil {
		log.Fatalf("Invalid -pages: %v", err)
	}
	cfg.Document = export.DocumentName(in.name)

	var svc convert.Service
	if cfg.AllowExternal {
		svc = geofree.DefaultChain()
	}
	converter := convert.New(registry, svc, os.Stdout)
	converter.Debug = cfg.Debug

	runner := &pipeline.Runner{Recognizer: in.recognizer, Converter: converter, Config: cfg}
	if *checkpointPath != "" {
		runner.Checkpoint = pipeline.NewCheckpoint(*checkpointPath)
	}
	if *review {
		reviewer, err := newTerminalReviewer()
		if err != nil {
			log.Fatal(err)
		}
		runner.Reviewer = reviewer
	}

	fmt.Printf("Processing %d page(s) of %s\n", len(pages), cfg.Document)
	records, runErr := runner.Run(ctx, pages)
	if runErr != nil {
		fmt.Println("Warning:", runErr)
	}

	// Write outputs
	noOutput := *csvPath == "" && *reportPath == "" && *htmlPath == "" && *jsonPath == "" && *annotatePath == ""
	if *csvPath != "" || noOutput {
		path := *csvPath
		if path == "" {
			path = "-"
		}
		opts := export.CSVOptions{Header: *detailed, Detailed: *detailed}
		writeOutput(path, "Coordinate table", func(w io.Writer) error {
			return export.WriteCSV(w, cfg.Document, records, opts)
		})
	}
	if *reportPath != "" {
		writeOutput(*reportPath, "PDF report", func(w io.Writer) error {
			return export.WritePDFReport(w, cfg.Document, records, export.DefaultReportConfig())
		})
	}
	if *htmlPath != "" {
		writeOutput(*htmlPath, "HTML summary", func(w io.Writer) error {
			return export.WriteHTML(w, cfg.Document, records)
		})
	}
	if *jsonPath != "" {
		writeJSON(*jsonPath, "Page records", records)
	}
	if *annotatePath != "" {
		writeAnnotated(*annotatePath, in, records, cfg, *force)
	}

	printSummary(records)
	if runErr != nil {
		if *checkpointPath != "" {
			fmt.Println("Run the same command again to resume from", *checkpointPath)
		}
		os.Exit(1)
	}
}

// writeAnnotated saves the annotated copy of the document.
func writeAnnotated(path string, in input, records []pipeline.Record, cfg pipeline.Config, force bool) {
	acfg := annotate.DefaultConfig()
	acfg.Region = cfg.Region
	acfg.Force = force
	acfg.Debug = cfg.Debug

	if len(records) == 0 {
		fmt.Println("Warning: no pages processed, skipping -annotate")
		return
	}

	var out []byte
	var err error
	if in.pdf != nil {
		fmt.Println("Annotating a copy of the PDF...")
		out, err = annotate.ApplyToPDF(in.pdf, records, acfg)
	} else {
		fmt.Printf("Assembling annotated PDF from %d image(s)...\n", len(in.images))
		images := make([][]byte, 0, len(in.images))
		for _, p := range in.images {
			data, err := os.ReadFile(p)
			if err != nil {
				log.Fatalf("Failed to read image %s: %v", p, err)
			}
			images = append(images, data)
		}
		out, err = annotate.AssembleFromImages(images, records, acfg)
	}
	if err != nil {
		log.Fatalf("Failed to annotate document: %v", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		log.Fatalf("Failed to write annotated PDF: %v", err)
	}
	fmt.Println("Annotated PDF saved to:", path)
}

// writeOutput runs write on the file at path, or on stdout for "-".
func writeOutput(path, what string, write func(w io.Writer) error) {
	if path == "-" {
		if err := write(os.Stdout); err != nil {
			log.Fatalf("Failed to write %s: %v", strings.ToLower(what), err)
		}
		return
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		log.Fatalf("Failed to write %s: %v", strings.ToLower(what), err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	fmt.Printf("%s saved to: %s\n", what, path)
}

// writeJSON saves v as indented JSON; protobuf messages keep their field
// names.
func writeJSON(path, what string, v any) {
	data, err := gdocai.ToJSON(v)
	if err != nil {
		log.Fatalf("Failed to convert %s to JSON: %v", strings.ToLower(what), err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	fmt.Printf("%s JSON saved to: %s\n", what, path)
}

func printSummary(records []pipeline.Record) {
	s := pipeline.Summarize(records)
	fmt.Printf("Processed %d page(s): %d with coordinates, %d converted\n", s.Pages, s.Extracted, s.Converted)
	for _, tier := range []convert.Tier{convert.Exact, convert.High, convert.Approximate} {
		if n := s.ByTier[tier]; n > 0 {
			fmt.Printf("  %-12s %d\n", tier, n)
		}
	}
}

// imageFiles lists the page images of a directory, sorted by name, or
// splits a comma-separated list.
func imageFiles(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if err != nil || !info.IsDir() {
		paths := splitList(arg)
		if len(paths) == 0 {
			return nil, fmt.Errorf("no image files in %q", arg)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(arg)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
			if !e.IsDir() {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files in %s", arg)
	}
	sort.Strings(paths)
	return paths, nil
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
