// Package pages parses user-facing page selections into zero-based indices.
package pages

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidSelection indicates a malformed or non-positive page selection.
var ErrInvalidSelection = errors.New("invalid page selection")

// Parse converts a selection string like "1-3,5,7-9" into an ascending,
// duplicate-free list of zero-based page indices bounded by totalPages.
// An empty selection means all pages. Page numbers are one-based and must
// be strictly positive; overlapping ranges collapse.
func Parse(selection string, totalPages int) ([]int, error) {
	if totalPages < 0 {
		totalPages = 0
	}
	if strings.TrimSpace(selection) == "" {
		all := make([]int, totalPages)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			startStr, endStr, _ := strings.Cut(part, "-")
			start, err := parsePageNumber(startStr, part)
			if err != nil {
				return nil, err
			}
			end, err := parsePageNumber(endStr, part)
			if err != nil {
				return nil, err
			}
			for page := start; page <= end; page++ {
				seen[page-1] = struct{}{}
			}
		} else {
			page, err := parsePageNumber(part, part)
			if err != nil {
				return nil, err
			}
			seen[page-1] = struct{}{}
		}
	}

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		if idx >= 0 && idx < totalPages {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	return indices, nil
}

func parsePageNumber(value, part string) (int, error) {
	page, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelection, part)
	}
	if page <= 0 {
		return 0, fmt.Errorf("%w: page numbers must be positive in %q", ErrInvalidSelection, part)
	}
	return page, nil
}
