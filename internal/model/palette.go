package model

import (
	"net/url"
	"strings"
)

// PaletteEntry is the display setting of one category
type PaletteEntry struct {
	Color   string `json:"color,omitempty"` // "#rrggbb" lowercase, empty when unset
	Visible bool   `json:"visible"`
}

// IsEmpty reports whether the entry carries nothing beyond defaults
func (e PaletteEntry) IsEmpty() bool {
	return e.Visible && e.Color == ""
}

// Palette maps a trimmed category name to its display setting
type Palette map[string]PaletteEntry

// Clone returns a shallow copy of p
func (p Palette) Clone() Palette {
	out := make(Palette, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// CategorySetting is the remote document holding a palette entry
type CategorySetting struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
	Visible *bool  `json:"visible,omitempty"`

	// ClearColor removes a stored color during a merge write
	ClearColor bool `json:"clearColor,omitempty"`
}

// CategoryDocID returns the document key of a category name
func CategoryDocID(name string) string {
	return url.PathEscape(strings.ToLower(strings.TrimSpace(name)))
}

// UsageMap records the last time each category was used (Unix ms)
type UsageMap map[string]int64

// CategoryDeleted is emitted when no idea references a category anymore
type CategoryDeleted struct {
	Category string
}
