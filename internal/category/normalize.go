// Package category canonicalizes category names and palette settings and
// tracks how recently each category was used.
package category

import (
	"regexp"
	"strings"

	"github.com/existflow/ideabox/internal/model"
	"golang.org/x/text/cases"
)

// HexColorPattern matches a "#rrggbb" colour, case-insensitively
var HexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Key returns the case-insensitive identity of a category name
func Key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// EqualFold reports whether a and b name the same category
func EqualFold(a, b string) bool {
	return Key(a) == Key(b)
}

// Contains reports whether list references name, ignoring case and padding
func Contains(list []string, name string) bool {
	key := Key(name)
	if key == "" {
		return false
	}
	for _, c := range list {
		if Key(c) == key {
			return true
		}
	}
	return false
}

// Normalize trims every entry, drops blanks and removes case-insensitive
// duplicates, keeping the first spelling seen. The result is never nil.
func Normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, raw := range list {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		key := Key(value)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

// NormalizeColor lowercases a valid colour. ok is false for anything else.
func NormalizeColor(color string) (string, bool) {
	c := strings.TrimSpace(color)
	if !HexColorPattern.MatchString(c) {
		return "", false
	}
	return strings.ToLower(c), true
}

// NormalizeIdea enforces the category invariants of an idea. The legacy
// primary category is appended so documents carrying only Category keep it.
func NormalizeIdea(idea model.Idea) model.Idea {
	out := idea.Clone()
	out.Categories = Normalize(append(out.Categories, out.Category))
	out.Category = ""
	if len(out.Categories) > 0 {
		out.Category = out.Categories[0]
	}
	if out.CreatedAt == 0 {
		out.CreatedAt = model.NowMillis()
	}
	return out
}

// NormalizeIdeas normalizes every idea and drops entries without an id.
func NormalizeIdeas(ideas []model.Idea) []model.Idea {
	out := make([]model.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if strings.TrimSpace(idea.ID) == "" {
			continue
		}
		out = append(out, NormalizeIdea(idea))
	}
	return out
}

// NormalizePalette trims names, drops blank ones, discards invalid colours
// and keeps visibility as given. Entries never fail validation.
func NormalizePalette(p model.Palette) model.Palette {
	out := make(model.Palette, len(p))
	for rawName, entry := range p {
		name := strings.TrimSpace(rawName)
		if name == "" {
			continue
		}
		color, _ := NormalizeColor(entry.Color)
		out[name] = model.PaletteEntry{Color: color, Visible: entry.Visible}
	}
	return out
}

// Compact normalizes p and prunes entries that only carry defaults.
func Compact(p model.Palette) model.Palette {
	out := NormalizePalette(p)
	for name, entry := range out {
		if entry.IsEmpty() {
			delete(out, name)
		}
	}
	return out
}

// Replace swaps every occurrence of from (case-insensitive) with to and
// normalizes the result.
func Replace(list []string, from, to string) []string {
	replaced := make([]string, 0, len(list))
	for _, c := range list {
		if EqualFold(c, from) {
			replaced = append(replaced, to)
			continue
		}
		replaced = append(replaced, c)
	}
	return Normalize(replaced)
}
