package category

import (
	"encoding/json"

	"github.com/existflow/ideabox/internal/model"
)

// wireEntry is the persisted palette shape. Visible is optional there and
// defaults to true, which a plain bool field cannot express.
type wireEntry struct {
	Color   *string `json:"color,omitempty"`
	Visible *bool   `json:"visible,omitempty"`
}

// MarshalPalette encodes the compact form: no empty entries, visible only when false.
func MarshalPalette(p model.Palette) ([]byte, error) {
	compact := Compact(p)
	wire := make(map[string]wireEntry, len(compact))
	for name, entry := range compact {
		var w wireEntry
		if entry.Color != "" {
			w.Color = model.String(entry.Color)
		}
		if !entry.Visible {
			w.Visible = model.Bool(false)
		}
		wire[name] = w
	}
	return json.Marshal(wire)
}

// UnmarshalPalette decodes a persisted palette. Values of the wrong type are
// treated as absent; a malformed document is an error.
func UnmarshalPalette(data []byte) (model.Palette, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	p := make(model.Palette, len(raw))
	for name, msg := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg, &fields); err != nil {
			continue
		}
		entry := model.PaletteEntry{Visible: true}
		var color string
		if err := json.Unmarshal(fields["color"], &color); err == nil {
			entry.Color = color
		}
		visible := true
		if err := json.Unmarshal(fields["visible"], &visible); err == nil {
			entry.Visible = visible
		}
		p[name] = entry
	}
	return NormalizePalette(p), nil
}
