package category

import (
	"strconv"
	"strings"

	"github.com/existflow/ideabox/internal/model"
)

// FallbackColors are assigned to categories without a custom colour
var FallbackColors = []string{"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4", "#ffeead", "#d4a5a5", "#9b89b3", "#77dd77"}

const (
	darkText  = "#1b1b1f"
	lightText = "#fdfdfd"
)

// Display describes how a category is drawn
type Display struct {
	Color     string // Active colour: custom if set, otherwise fallback
	TextColor string // Readable foreground on Color
	Custom    bool
	Visible   bool
	Slot      int // 1-based fallback slot
}

// FallbackIndex picks a stable fallback slot from the name's code points
func FallbackIndex(name string) int {
	safe := strings.TrimSpace(name)
	if safe == "" {
		return 0
	}
	sum := 0
	for _, r := range safe {
		sum += int(r)
	}
	return sum % len(FallbackColors)
}

// Appearance resolves the display colour of a category against a palette
func Appearance(name string, palette model.Palette) Display {
	idx := FallbackIndex(name)
	d := Display{
		Color:   FallbackColors[idx],
		Visible: true,
		Slot:    idx + 1,
	}
	if entry, ok := palette[strings.TrimSpace(name)]; ok {
		if color, valid := NormalizeColor(entry.Color); valid {
			d.Color = color
			d.Custom = true
		}
		d.Visible = entry.Visible
	}
	d.TextColor = ReadableTextColor(d.Color)
	return d
}

// ReadableTextColor returns a dark or light foreground for a "#rrggbb" background
func ReadableTextColor(hex string) string {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return darkText
	}
	r, errR := strconv.ParseUint(h[0:2], 16, 8)
	g, errG := strconv.ParseUint(h[2:4], 16, 8)
	b, errB := strconv.ParseUint(h[4:6], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return darkText
	}
	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if luminance > 0.6 {
		return darkText
	}
	return lightText
}
