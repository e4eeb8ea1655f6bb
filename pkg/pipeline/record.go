package pipeline

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/coords"
)

// Record is the outcome of one page. Err reports why a page produced no
// coordinates; conversion problems stay in Result.Err.
type Record struct {
	Page       int
	Text       string
	Confidence float64
	Reviewed   bool // Text was confirmed or edited by a Reviewer
	Match      coords.Match
	Result     convert.Result
	Err        error
}

// OK reports whether the page yielded converted coordinates.
func (r Record) OK() bool {
	return r.Err == nil && r.Result.OK()
}

type jsonRecord struct {
	Page       int            `json:"page"`
	Text       string         `json:"text"`
	Confidence float64        `json:"confidence"`
	Reviewed   bool           `json:"reviewed,omitempty"`
	Match      coords.Match   `json:"match"`
	Result     convert.Result `json:"result"`
	Error      string         `json:"error,omitempty"`
}

// MarshalJSON renders Err as a string field.
func (r Record) MarshalJSON() ([]byte, error) {
	j := jsonRecord{
		Page: r.Page, Text: r.Text, Confidence: r.Confidence, Reviewed: r.Reviewed,
		Match: r.Match, Result: r.Result,
	}
	if r.Err != nil {
		j.Error = r.Err.Error()
	}
	return json.Marshal(j)
}

// UnmarshalJSON restores a record written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var j jsonRecord
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*r = Record{
		Page: j.Page, Text: j.Text, Confidence: j.Confidence, Reviewed: j.Reviewed,
		Match: j.Match, Result: j.Result,
	}
	if j.Error != "" {
		r.Err = errors.New(j.Error)
	}
	return nil
}

// SortByPage orders records by page number.
func SortByPage(records []Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].Page < records[j].Page })
}

// Summary counts the outcome of a run.
type Summary struct {
	Pages     int
	Extracted int // Pages with a coordinate pair
	Converted int // Pages with converted coordinates
	ByTier    map[convert.Tier]int
}

// Summarize counts records by outcome.
func Summarize(records []Record) Summary {
	s := Summary{Pages: len(records), ByTier: make(map[convert.Tier]int)}
	for _, r := range records {
		if r.Err == nil {
			s.Extracted++
		}
		if r.OK() {
			s.Converted++
			s.ByTier[r.Result.Tier]++
		}
	}
	return s
}
