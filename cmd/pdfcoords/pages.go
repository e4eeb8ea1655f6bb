package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// parsePages reads a page selection such as "1-3,7,10-" for a document of
// count pages. An empty selection means every page.
func parsePages(s string, count int) ([]int, error) {
	if count < 1 {
		return nil, fmt.Errorf("document has no pages")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		pages := make([]int, count)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		last := first
		if isRange {
			last = count
			if hi = strings.TrimSpace(hi); hi != "" {
				if last, err = strconv.Atoi(hi); err != nil {
					return nil, fmt.Errorf("invalid page range %q", part)
				}
			}
		}
		if first < 1 || last > count || first > last {
			return nil, fmt.Errorf("page range %q outside 1-%d", part, count)
		}
		for p := first; p <= last; p++ {
			seen[p] = true
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}
