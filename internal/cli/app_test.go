package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/ideabox/internal/config"
	"github.com/existflow/ideabox/internal/identity"
	"github.com/existflow/ideabox/internal/model"
)

func TestResolveID(t *testing.T) {
	ideas := []model.Idea{
		{ID: "abc12345-1111", Text: "first"},
		{ID: "abc99999-2222", Text: "second"},
		{ID: "abc", Text: "exact"},
		{ID: "f00d", Text: "food"},
	}

	tests := []struct {
		name    string
		prefix  string
		want    string
		wantErr string
	}{
		{"exact match wins over prefixes", "abc", "exact", ""},
		{"unique prefix", "abc1", "first", ""},
		{"surrounding space is ignored", "  f0 ", "food", ""},
		{"longer prefix", "abc9", "second", ""},
		{"ambiguous", "ab", "", "ambiguous"},
		{"no match", "zzz", "", "no idea matches"},
		{"blank", "  ", "", "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveID(ideas, tt.prefix)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
		})
	}
}

func TestSplitCategories(t *testing.T) {
	got := splitCategories([]string{"Work, home", " Work ", "", "Errands,,"})
	assert.Equal(t, []string{"Work", "home", "Errands"}, got)

	assert.Empty(t, splitCategories(nil))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "01234567", shortID("0123456789"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestServerURL_PrefersSession(t *testing.T) {
	saved := cfg
	t.Cleanup(func() { cfg = saved })
	cfg = &config.Config{ServerURL: "http://configured"}

	assert.Equal(t, "http://configured", serverURL(identity.Session{}))
	assert.Equal(t, "http://session", serverURL(identity.Session{ServerURL: "http://session"}))
}
