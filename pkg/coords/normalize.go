package coords

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidFormat is returned when a raw coordinate string cannot be parsed.
var ErrInvalidFormat = errors.New("invalid coordinate format")

// plainDecimal is what a value must look like once separators are
// resolved. It keeps ParseFloat from accepting hex, exponents or
// underscores.
var plainDecimal = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?$`)

// Pair is a raw coordinate pair, in metres for projected systems or in
// degrees (X = longitude, Y = latitude) for geographic ones.
type Pair struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsZero reports whether p is the "nothing found" sentinel.
func (p Pair) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Normalize converts two raw OCR strings to floats.
//
// Separators are guessed per value: a point always marks the decimal part
// (commas next to it are thousands separators); a lone comma followed by one
// to three digits is a decimal comma; any other commas group thousands.
// "1,234" is therefore read as 1.234, which is the French reading and
// the common case on the scanned plans this targets. Callers that know
// better should use ExtractMatch and re-parse the raw strings.
func Normalize(rawX, rawY string) (Pair, error) {
	x, err := NormalizeValue(rawX)
	if err != nil {
		return Pair{}, err
	}
	y, err := NormalizeValue(rawY)
	if err != nil {
		return Pair{}, err
	}
	return Pair{X: x, Y: y}, nil
}

// NormalizeValue applies the Normalize heuristic to a single value.
func NormalizeValue(raw string) (float64, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, raw)

	hasPoint := strings.Contains(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case hasPoint && commas > 0:
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1 && decimalComma(s):
		s = strings.Replace(s, ",", ".", 1)
	case commas > 0:
		s = strings.ReplaceAll(s, ",", "")
	}

	if !plainDecimal.MatchString(s) {
		return 0, fmt.Errorf("%q: %w", raw, ErrInvalidFormat)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q: %w", raw, ErrInvalidFormat)
	}
	return v, nil
}

// decimalComma reports whether the only comma of s is followed by 1-3 digits.
func decimalComma(s string) bool {
	tail := s[strings.IndexByte(s, ',')+1:]
	if len(tail) < 1 || len(tail) > 3 {
		return false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
