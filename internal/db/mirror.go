package db

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
	"github.com/google/uuid"
)

// ReadIdeas returns the cached idea list, empty when absent or corrupt
func (m *Mirror) ReadIdeas() []model.Idea {
	raw, ok := m.get(KeyIdeas)
	if !ok {
		return []model.Idea{}
	}

	var ideas []model.Idea
	if err := json.Unmarshal([]byte(raw), &ideas); err != nil {
		m.log.Warn("Unable to read local cache", logger.F("error", err))
		return []model.Idea{}
	}
	for i := range ideas {
		if strings.TrimSpace(ideas[i].ID) == "" {
			ideas[i].ID = uuid.NewString()
		}
	}
	return category.NormalizeIdeas(ideas)
}

// WriteIdeas replaces the cached idea list
func (m *Mirror) WriteIdeas(ideas []model.Idea) {
	data, err := json.Marshal(category.NormalizeIdeas(ideas))
	if err != nil {
		m.log.Warn("Unable to encode local cache", logger.F("error", err))
		return
	}
	if err := m.set(KeyIdeas, string(data)); err != nil {
		m.log.Warn("Unable to write to local cache", logger.F("error", err), logger.F("count", len(ideas)))
		return
	}
	m.log.Debug("Wrote idea cache", logger.F("count", len(ideas)))
}

// ReadPalette returns the cached category settings
func (m *Mirror) ReadPalette() model.Palette {
	raw, ok := m.get(KeyPalette)
	if !ok {
		return model.Palette{}
	}
	p, err := category.UnmarshalPalette([]byte(raw))
	if err != nil {
		m.log.Warn("Unable to read category settings cache", logger.F("error", err))
		return model.Palette{}
	}
	return p
}

// WritePalette replaces the cached category settings with their compact form
func (m *Mirror) WritePalette(p model.Palette) {
	data, err := category.MarshalPalette(p)
	if err != nil {
		m.log.Warn("Unable to encode category settings cache", logger.F("error", err))
		return
	}
	if err := m.set(KeyPalette, string(data)); err != nil {
		m.log.Warn("Unable to write category settings cache", logger.F("error", err))
	}
}

// ReadUsage returns the category usage map
func (m *Mirror) ReadUsage() model.UsageMap {
	raw, ok := m.get(KeyUsage)
	if !ok {
		return model.UsageMap{}
	}
	var usage model.UsageMap
	if err := json.Unmarshal([]byte(raw), &usage); err != nil || usage == nil {
		return model.UsageMap{}
	}
	return usage
}

// WriteUsage replaces the category usage map
func (m *Mirror) WriteUsage(usage model.UsageMap) {
	clean := make(model.UsageMap, len(usage))
	for name, ts := range usage {
		if name = strings.TrimSpace(name); name != "" {
			clean[name] = ts
		}
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return
	}
	if err := m.set(KeyUsage, string(data)); err != nil {
		m.log.Warn("Unable to track category usage", logger.F("error", err))
	}
}

// ReadSortPreference returns the stored category sort key, or the default
func (m *Mirror) ReadSortPreference() category.SortKey {
	raw, _ := m.get(KeySortPreference)
	key, err := category.ParseSortKey(raw)
	if err != nil {
		return category.DefaultSort
	}
	return key
}

// WriteSortPreference stores a valid category sort key
func (m *Mirror) WriteSortPreference(key category.SortKey) {
	if _, err := category.ParseSortKey(string(key)); err != nil {
		return
	}
	if err := m.set(KeySortPreference, string(key)); err != nil {
		m.log.Warn("Unable to store category sort preference", logger.F("error", err))
	}
}

// Keys lists the stored keys, for diagnostics
func (m *Mirror) Keys() []string {
	rows, err := m.db.Query(`SELECT key FROM mirror WHERE key <> ?`, keyLastWriter)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err == nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
