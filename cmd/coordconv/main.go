// coordconv is a command-line tool for converting a single coordinate pair.
//
// The pair is given as two values, in any of the notations found on plans
// ("594 368,498", "594368.498"), or as free text the pair is extracted
// from. Without -from the source system is detected from the values.
//
// Usage:
//
//	coordconv (-x value -y value | -text string) [options]
//
// Options:
//
//	-from string     Source system, or "auto" (default auto)
//	-to string       Target system (default LAMBERT93)
//	-online          Try the online conversion services first
//	-systems string  YAML file with additional reference systems
//	-lang string     Language used to format the result (default en)
//	-json            Print the result as JSON
//	-list            List the known reference systems
//	-debug           Log every decision
//
// Example:
//
//	coordconv -x "594 368,498" -y "1 843 413,039"
//	coordconv -text "X = 594368.498 Y = 1843413.039" -from LAMBERT2E -to WGS84 -lang fr
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/text/language"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/coords"
	"github.com/gardar/ocrcoords/pkg/crs"
	"github.com/gardar/ocrcoords/pkg/geofree"
	"github.com/gardar/ocrcoords/pkg/pipeline"
)

func main() {
	x := flag.String("x", "", "Easting or longitude")
	y := flag.String("y", "", "Northing or latitude")
	text := flag.String("text", "", "Free text to extract the pair from")
	from := flag.String("from", pipeline.AutoDetect, "Source system, or \"auto\" to detect it")
	to := flag.String("to", crs.Lambert93, "Target system")
	online := flag.Bool("online", false, "Try the online conversion services first")
	systemsPath := flag.String("systems", "", "YAML file with additional reference systems")
	lang := flag.String("lang", "en", "Language used to format the result")
	asJSON := flag.Bool("json", false, "Print the result as JSON")
	list := flag.Bool("list", false, "List the known reference systems")
	debug := flag.Bool("debug", false, "Log every decision")
	flag.Parse()

	registry, err := crs.LoadRegistry(*systemsPath)
	if err != nil {
		log.Fatalf("Failed to load reference systems: %v", err)
	}
	if *list {
		listSystems(os.Stdout, registry)
		return
	}

	if (*x == "" || *y == "") == (*text == "") {
		fmt.Fprintln(os.Stderr, "Error: Either -x and -y or -text must be provided (but not both)")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	tag, err := language.Parse(*lang)
	if err != nil {
		log.Fatalf("Invalid -lang: %v", err)
	}

	pair, err := readPair(*x, *y, *text)
	if err != nil {
		log.Fatalf("Failed to read coordinates: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var svc convert.Service
	if *online {
		svc = geofree.DefaultChain()
	}
	logger := io.Discard
	if *debug {
		logger = os.Stderr
	}
	converter := convert.New(registry, svc, logger)
	converter.Debug = *debug
	opts := convert.Options{AllowExternal: *online}

	var res convert.Result
	if strings.EqualFold(*from, pipeline.AutoDetect) {
		res = converter.ConvertAuto(ctx, pair, strings.ToUpper(*to), opts)
	} else {
		fromID := strings.ToUpper(*from)
		if sys, ok := registry.Lookup(fromID); ok {
			if v := registry.Validate(pair.X, pair.Y, sys); !v.Valid {
				fmt.Fprintln(os.Stderr, "Warning:", v.Message)
			}
		}
		res = converter.Convert(ctx, pair, fromID, strings.ToUpper(*to), opts)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
	} else {
		printResult(os.Stdout, registry, pair, res, tag)
	}
	if res.Err != nil {
		os.Exit(1)
	}
}

// readPair normalizes the -x/-y values or extracts the pair from text.
func readPair(x, y, text string) (coords.Pair, error) {
	if text != "" {
		m, err := coords.ExtractMatch(text)
		if err != nil {
			return coords.Pair{}, err
		}
		return m.Pair, nil
	}
	return coords.Normalize(x, y)
}

func printResult(w io.Writer, reg *crs.Registry, in coords.Pair, res convert.Result, tag language.Tag) {
	format := func(id string, x, y float64) string {
		if sys, ok := reg.Lookup(id); ok {
			return fmt.Sprintf("%s  [%s]", sys.Format(x, y, tag), sys.Name)
		}
		return fmt.Sprintf("%.3f, %.3f  [%s]", x, y, id)
	}

	fmt.Fprintln(w, "Input: ", format(res.Source, in.X, in.Y))
	if res.Err != nil {
		fmt.Fprintln(w, "Error: ", res.Err)
		return
	}
	fmt.Fprintln(w, "Output:", format(res.Target, res.X, res.Y))
	fmt.Fprintf(w, "        %.3f, %.3f\n", res.X, res.Y)
	fmt.Fprintf(w, "Precision: %s (%s)\n", res.Tier, res.Method)
	if res.Provenance != "" {
		fmt.Fprintln(w, "Source:", res.Provenance)
	}
	if res.Warning != "" {
		fmt.Fprintln(w, "Warning:", res.Warning)
	}
}

func listSystems(w io.Writer, reg *crs.Registry) {
	for _, s := range reg.Systems() {
		code := s.Code
		if code == "" {
			code = "-"
		}
		fmt.Fprintf(w, "%-12s %-12s %s\n", s.ID, code, s.Name)
	}
}
