package coords

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrNoCoordinates is returned when neither the patterns nor the fallback
// scan find a coordinate pair.
var ErrNoCoordinates = errors.New("no coordinates found")

// FallbackPattern is the Match.Pattern value of a pair found by the
// permissive scan.
const FallbackPattern = "fallback"

// minMagnitude rejects small numbers such as page numbers and dates.
const minMagnitude = 1000

// Match is an extracted pair together with the text it came from, so a
// caller can re-parse RawX and RawY when the separator guess is wrong.
type Match struct {
	Pair
	RawX    string `json:"raw_x"`
	RawY    string `json:"raw_y"`
	Pattern string `json:"pattern"`
}

// Extract returns the first coordinate pair found in text, or the zero
// Pair when there is none.
func Extract(text string) Pair {
	m, err := ExtractMatch(text)
	if err != nil {
		return Pair{}
	}
	return m.Pair
}

// ExtractMatch searches text with each pattern in turn and returns the
// first match whose normalized values both exceed 1000. When nothing
// qualifies, it falls back to the first two long numbers anywhere in the
// text, preferring numbers that carry a decimal part.
func ExtractMatch(text string) (Match, error) {
	clean := prepare(text)

	for _, p := range patterns {
		for _, sm := range p.re.FindAllStringSubmatch(clean, -1) {
			pair, err := Normalize(sm[1], sm[2])
			if err != nil {
				continue
			}
			if pair.X > minMagnitude && pair.Y > minMagnitude {
				return Match{Pair: pair, RawX: sm[1], RawY: sm[2], Pattern: p.name}, nil
			}
		}
	}

	return fallback(clean)
}

func fallback(text string) (Match, error) {
	found := candidate.FindAllString(text, -1)
	if len(found) < 2 {
		return Match{}, ErrNoCoordinates
	}

	var decimals []string
	for _, s := range found {
		if strings.ContainsAny(s, ".,") {
			decimals = append(decimals, s)
		}
	}
	if len(decimals) >= 2 {
		found = decimals
	}

	pair, err := Normalize(found[0], found[1])
	if err != nil {
		return Match{}, errors.Join(ErrNoCoordinates, err)
	}
	return Match{Pair: pair, RawX: found[0], RawY: found[1], Pattern: FallbackPattern}, nil
}

// prepare composes accents and turns non-ASCII spaces into plain spaces so
// the ASCII-only \s class sees them.
func prepare(text string) string {
	text = norm.NFC.String(text)
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
}
