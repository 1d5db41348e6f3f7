package category

import (
	"testing"

	"github.com/existflow/ideabox/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"dedupes case-insensitively", []string{"Work", " work ", "WORK", "Home", ""}, []string{"Work", "Home"}},
		{"nil input", nil, []string{}},
		{"keeps order", []string{"b", "a", "c"}, []string{"b", "a", "c"}},
		{"blank only", []string{"  ", "\t"}, []string{}},
		{"unicode folding", []string{"Ärger", "ÄRGER", "ärger"}, []string{"Ärger"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestContainsAndEqualFold(t *testing.T) {
	assert.True(t, Contains([]string{"Errands", "Home"}, " errands"))
	assert.False(t, Contains([]string{"Errands"}, "Err"))
	assert.False(t, Contains([]string{""}, ""))
	assert.True(t, EqualFold("Work", "wORK "))
}

func TestNormalizeIdea(t *testing.T) {
	idea := NormalizeIdea(model.Idea{ID: "1", Category: "Legacy", Categories: []string{" Work", "work", ""}})

	assert.Equal(t, []string{"Work", "Legacy"}, idea.Categories)
	assert.Equal(t, "Work", idea.Category)
	assert.NotZero(t, idea.CreatedAt)

	empty := NormalizeIdea(model.Idea{ID: "2", CreatedAt: 42})
	assert.Equal(t, "", empty.Category)
	assert.Equal(t, []string{}, empty.Categories)
	assert.Equal(t, int64(42), empty.CreatedAt)
}

func TestNormalizeIdeas_DropsMissingIDs(t *testing.T) {
	got := NormalizeIdeas([]model.Idea{{ID: ""}, {ID: "a", CreatedAt: 1}})
	assert.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestNormalizePalette(t *testing.T) {
	got := NormalizePalette(model.Palette{
		" Work ":  {Color: "#AABBCC", Visible: true},
		"Home":    {Color: "red", Visible: false},
		"   ":     {Color: "#000000", Visible: true},
		"Errands": {Color: "#12345", Visible: true},
	})

	assert.Equal(t, model.Palette{
		"Work":    {Color: "#aabbcc", Visible: true},
		"Home":    {Visible: false},
		"Errands": {Visible: true},
	}, got)
}

func TestCompact(t *testing.T) {
	got := Compact(model.Palette{
		"Work":  {Color: "#aabbcc", Visible: true},
		"Home":  {Visible: false},
		"Empty": {Visible: true},
	})
	assert.Len(t, got, 2)
	assert.NotContains(t, got, "Empty")
}

func TestReplace(t *testing.T) {
	assert.Equal(t, []string{"Job", "Home"}, Replace([]string{"work", "Home", "Job"}, "Work", "Job"))
}

func TestPaletteWire_RoundTrip(t *testing.T) {
	data, err := MarshalPalette(model.Palette{
		"Hidden": {Visible: false},
		"Work":   {Color: "#AABBCC", Visible: true},
		"Empty":  {Visible: true},
	})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"Hidden":{"visible":false},"Work":{"color":"#aabbcc"}}`, string(data))

	got, err := UnmarshalPalette(data)
	assert.NoError(t, err)
	assert.Equal(t, model.PaletteEntry{Visible: false}, got["Hidden"])
	assert.Equal(t, "", got["Hidden"].Color)
	assert.Equal(t, model.PaletteEntry{Color: "#aabbcc", Visible: true}, got["Work"])
}

func TestUnmarshalPalette_ToleratesBadValues(t *testing.T) {
	got, err := UnmarshalPalette([]byte(`{"A":{"visible":"no","color":3},"B":"junk","C":{"visible":null}}`))
	assert.NoError(t, err)
	assert.Equal(t, model.PaletteEntry{Visible: true}, got["A"])
	assert.NotContains(t, got, "B")
	assert.Equal(t, model.PaletteEntry{Visible: true}, got["C"])

	_, err = UnmarshalPalette([]byte(`[1,2]`))
	assert.Error(t, err)
}
