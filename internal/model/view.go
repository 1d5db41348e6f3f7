package model

import (
	"fmt"
	"strings"
)

// View selects which slice of the idea collection is browsed
type View int

const (
	ViewActive   View = iota // Not archived, not hidden, excluding the pinned idea
	ViewPinned               // The pinned idea, if it is active
	ViewHidden               // Hidden but not archived
	ViewArchived             // Archived
)

// String returns the view name
func (v View) String() string {
	switch v {
	case ViewActive:
		return "active"
	case ViewPinned:
		return "pinned"
	case ViewHidden:
		return "hidden"
	case ViewArchived:
		return "archived"
	default:
		return "unknown"
	}
}

// ParseView converts a name to a View
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return ViewActive, nil
	case "pinned":
		return ViewPinned, nil
	case "hidden":
		return ViewHidden, nil
	case "archived":
		return ViewArchived, nil
	}
	return ViewActive, fmt.Errorf("invalid view: %q (expected active|pinned|hidden|archived)", s)
}

// FilterView returns the ideas belonging to view, preserving input order
func FilterView(ideas []Idea, view View) []Idea {
	var pinnedID string
	for _, idea := range ideas {
		if idea.Pinned && !idea.Archived && !idea.Hidden {
			pinnedID = idea.ID
			break
		}
	}

	out := []Idea{}
	for _, idea := range ideas {
		var keep bool
		switch view {
		case ViewPinned:
			keep = pinnedID != "" && idea.ID == pinnedID
		case ViewActive:
			keep = !idea.Archived && !idea.Hidden && idea.ID != pinnedID
		case ViewHidden:
			keep = idea.Hidden && !idea.Archived
		case ViewArchived:
			keep = idea.Archived
		}
		if keep {
			out = append(out, idea)
		}
	}
	return out
}
