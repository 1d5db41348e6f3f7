package model

import "time"

// Idea represents a single captured note
type Idea struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Category   string   `json:"category"`   // Legacy primary category, mirrors Categories[0]
	Categories []string `json:"categories"` // Case-insensitive unique, insertion order
	CreatedAt  int64    `json:"createdAt"`  // Unix milliseconds
	Archived   bool     `json:"archived"`
	Hidden     bool     `json:"hidden"`
	Pinned     bool     `json:"pinned"`
}

// NowMillis returns the current time in Unix milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewIdea creates a new idea with defaults
func NewIdea(id, text string, categories []string) Idea {
	return Idea{
		ID:         id,
		Text:       text,
		Categories: categories,
		CreatedAt:  NowMillis(),
	}
}

// Clone returns a copy that shares no slices with i
func (i Idea) Clone() Idea {
	out := i
	out.Categories = append([]string(nil), i.Categories...)
	return out
}

// IdeaPatch is a partial update of an idea document. Nil fields are left untouched.
type IdeaPatch struct {
	Text       *string   `json:"text,omitempty"`
	Category   *string   `json:"category,omitempty"`
	Categories *[]string `json:"categories,omitempty"`
	Archived   *bool     `json:"archived,omitempty"`
	Hidden     *bool     `json:"hidden,omitempty"`
	Pinned     *bool     `json:"pinned,omitempty"`
}

// Apply returns a copy of idea with the patch applied
func (p IdeaPatch) Apply(idea Idea) Idea {
	out := idea.Clone()
	if p.Text != nil {
		out.Text = *p.Text
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Categories != nil {
		out.Categories = append([]string{}, (*p.Categories)...)
	}
	if p.Archived != nil {
		out.Archived = *p.Archived
	}
	if p.Hidden != nil {
		out.Hidden = *p.Hidden
	}
	if p.Pinned != nil {
		out.Pinned = *p.Pinned
	}
	return out
}

// IdeaUpdate targets one document inside an atomic batch
type IdeaUpdate struct {
	ID    string    `json:"id"`
	Patch IdeaPatch `json:"patch"`
}

// Bool returns a pointer to b
func Bool(b bool) *bool { return &b }

// String returns a pointer to s
func String(s string) *string { return &s }

// Strings returns a pointer to a copy of list, never nil
func Strings(list []string) *[]string {
	out := append([]string{}, list...)
	return &out
}
