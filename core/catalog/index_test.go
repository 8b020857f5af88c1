package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `[
	{"name": "Grafana", "description": "Dashboards", "category": "Monitoring", "icon": "grafana.png", "website": "https://grafana.com"},
	{"name": "Home Assistant", "description": "Home automation", "category": "Automation", "icon": "hass.png"},
	{"name": "Jellyfin", "description": "Media server", "category": "Media"},
	{"name": "Jellyseerr", "description": "Requests", "category": "Media"},
	{"name": "", "description": "skipped"},
	{"name": "grafana", "description": "duplicate"}
]`

func mustIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := ParseIndex([]byte(testDocument), time.Unix(0, 0))
	require.NoError(t, err)
	return idx
}

func TestParseIndex(t *testing.T) {
	idx := mustIndex(t)
	assert.Equal(t, 5, idx.Len())

	_, err := ParseIndex([]byte(`{"not":"an array"}`), time.Now())
	assert.Error(t, err)
}

func TestIndex_Lookup(t *testing.T) {
	idx := mustIndex(t)

	tests := []struct {
		name     string
		query    string
		wantName string
		wantKind MatchKind
		wantOK   bool
	}{
		{"exact case-insensitive", "grafana", "Grafana", MatchExact, true},
		{"normalized", "Home-Assistant", "Home Assistant", MatchNormalized, true},
		{"normalized title", "Grafana - Login", "Grafana", MatchNormalized, true},
		{"substring prefers shortest key", "jelly", "Jellyfin", MatchSubstring, true},
		{"query contains key", "My Jellyfin Server", "Jellyfin", MatchSubstring, true},
		{"too short for substring", "je", "", "", false},
		{"unknown", "Nextcloud", "", "", false},
		{"blank", "  ", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := idx.Lookup(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantName, r.Name)
				assert.Equal(t, tt.wantKind, r.Match)
			}
		})
	}
}

func TestIndex_LookupPrefersMostSpecificContainedKey(t *testing.T) {
	idx, err := ParseIndex([]byte(`[{"name": "Cloud"}, {"name": "Nextcloud"}]`), time.Unix(0, 0))
	require.NoError(t, err)

	r, ok := idx.Lookup("Nextcloud Hub")
	require.True(t, ok)
	assert.Equal(t, "Nextcloud", r.Name)
	assert.Equal(t, MatchSubstring, r.Match)

	r, ok = idx.Lookup("clou")
	require.True(t, ok)
	assert.Equal(t, "Cloud", r.Name)
}

func TestIndex_Search(t *testing.T) {
	idx := mustIndex(t)

	results := idx.Search("jelly", 10)
	require.Len(t, results, 2)
	assert.Equal(t, "Jellyfin", results[0].Name)
	assert.Equal(t, "Jellyseerr", results[1].Name)

	assert.Len(t, idx.Search("jelly", 1), 1)
	assert.Empty(t, idx.Search("", 5))

	exact := idx.Search("Grafana", 0)
	require.NotEmpty(t, exact)
	assert.Equal(t, MatchExact, exact[0].Match)
	assert.Len(t, exact, 1)
}

func TestIndex_NilSafe(t *testing.T) {
	var idx *Index
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Lookup("grafana")
	assert.False(t, ok)
	assert.Nil(t, idx.Search("grafana", 5))
}
