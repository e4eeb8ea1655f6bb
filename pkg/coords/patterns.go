package coords

import "regexp"

// number is a coordinate value of at least four integer digits with an
// optional decimal part.
const number = `(\d{4,}(?:[.,]\d+)?)`

// grouped is a value written with space-separated thousands, as in
// "1 843 413,04".
const grouped = `(\d{1,3}(?: \d{3})+(?:[.,]\d+)?)`

// pattern is a named expression capturing an X and a Y value.
type pattern struct {
	name string
	re   *regexp.Regexp
}

// patterns is the search order, most specific first.
var patterns = []pattern{
	{"lambert-label", regexp.MustCompile(`(?i)(?:Lambert\s*2?\s*)?(?:étendu|etend[iu])\s*:?\s*` + number + `\s*m?[,\s;]+` + number + `\s*m?`)},
	{"xy-label", regexp.MustCompile(`(?i)X\s*[:=]\s*` + number + `[,\s;]+Y\s*[:=]\s*` + number)},
	{"en-label", regexp.MustCompile(`(?i)E\s*[:=]\s*` + number + `[,\s;]+N\s*[:=]\s*` + number)},
	{"xy-label-grouped", regexp.MustCompile(`(?i)X\s*[:=]\s*` + grouped + `[,\s;]+Y\s*[:=]\s*` + grouped)},
	{"en-label-grouped", regexp.MustCompile(`(?i)E\s*[:=]\s*` + grouped + `[,\s;]+N\s*[:=]\s*` + grouped)},
	{"metre-unit", regexp.MustCompile(`(?i)` + number + `\s*m?[,\s;]+` + number + `\s*m`)},
	{"french-grouped", regexp.MustCompile(`(\d{1,3}(?: \d{3})*[.,]\d+)[,\s;]+(\d{1,3}(?: \d{3})*[.,]\d+)`)},
	{"long-decimal", regexp.MustCompile(`(\d{4,}[.,]\d+)[,\s;]+(\d{4,}[.,]\d+)`)},
	{"line-break", regexp.MustCompile(`(\d{5,7}(?:[.,]\d{1,3})?)[ \t]*[\r\n]+\s*(\d{6,8}(?:[.,]\d{1,3})?)`)},
	{"wide-space", regexp.MustCompile(`(\d{5,7}(?:[.,]\d{1,3})?)\s{2,}(\d{6,8}(?:[.,]\d{1,3})?)`)},
	{"bracketed", regexp.MustCompile(`[(\[]?\s*(\d{5,7}(?:[.,]\d+)?)\s*[,;]\s*(\d{6,8}(?:[.,]\d+)?)\s*[)\]]?`)},
	{"bracketed-loose", regexp.MustCompile(`[(\[]\s*` + number + `\s*[,;\s]+\s*` + number + `\s*[)\]]`)},
	{"bare-integer", regexp.MustCompile(`(\d{4,})[,\s;]+(\d{4,})`)},
}

// candidate matches any long number anywhere in the text.
var candidate = regexp.MustCompile(`\d{4,}(?:[.,]\d+)?`)

// PatternNames returns the extraction patterns in the order they are tried.
// The last entry, "fallback", names the permissive scan.
func PatternNames() []string {
	names := make([]string, 0, len(patterns)+1)
	for _, p := range patterns {
		names = append(names, p.name)
	}
	return append(names, FallbackPattern)
}
