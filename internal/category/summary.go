package category

import (
	"fmt"
	"sort"
	"strings"

	"github.com/existflow/ideabox/internal/model"
)

// SortKey orders a category summary
type SortKey string

const (
	SortCountDesc SortKey = "count-desc"
	SortCountAsc  SortKey = "count-asc"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"

	DefaultSort = SortCountDesc
)

// ParseSortKey validates a sort key name
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortCountDesc, SortCountAsc, SortNameAsc, SortNameDesc:
		return k, nil
	case "":
		return DefaultSort, nil
	}
	return DefaultSort, fmt.Errorf("invalid sort key: %q (expected count-desc|count-asc|name-asc|name-desc)", s)
}

// Count is the number of ideas filed under one category
type Count struct {
	Name  string
	Count int
}

// Summary aggregates categories over a set of ideas
type Summary struct {
	Categories    []Count
	Total         int
	Uncategorized int
}

// Summarize counts ideas per category. Spellings are merged case-insensitively
// under the first one seen.
func Summarize(ideas []model.Idea, key SortKey) Summary {
	s := Summary{Total: len(ideas)}
	index := map[string]int{}
	for _, idea := range ideas {
		cats := Normalize(append(append([]string{}, idea.Categories...), idea.Category))
		if len(cats) == 0 {
			s.Uncategorized++
			continue
		}
		for _, c := range cats {
			k := Key(c)
			if i, ok := index[k]; ok {
				s.Categories[i].Count++
				continue
			}
			index[k] = len(s.Categories)
			s.Categories = append(s.Categories, Count{Name: c, Count: 1})
		}
	}

	byName := func(a, b Count) int {
		return strings.Compare(Key(a.Name), Key(b.Name))
	}
	sort.SliceStable(s.Categories, func(i, j int) bool {
		a, b := s.Categories[i], s.Categories[j]
		switch key {
		case SortCountAsc:
			if a.Count != b.Count {
				return a.Count < b.Count
			}
			return byName(a, b) < 0
		case SortNameAsc:
			return byName(a, b) < 0
		case SortNameDesc:
			return byName(a, b) > 0
		default:
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return byName(a, b) < 0
		}
	})
	return s
}
