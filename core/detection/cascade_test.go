package detection

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"proxydash/core/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	page  *Page
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context, string) (*Page, error) {
	s.calls++
	return s.page, s.err
}

type stubCatalog struct {
	entries map[string]catalog.Result
	queries []string
}

func (s *stubCatalog) Lookup(_ context.Context, name string) (*catalog.Result, error) {
	s.queries = append(s.queries, name)
	if r, ok := s.entries[name]; ok {
		return &r, nil
	}
	return nil, nil
}

const cascadeTable = `
version: "test"
heuristics:
  - {type: photoprism, name: PhotoPrism, keywords: [photoprism, photos]}
  - {type: immich, name: Immich, keywords: [photos, immich]}
  - {type: grafana, name: Grafana, keywords: [grafana]}
fingerprints:
  - {type: gitea, field: title, pattern: 'git', confidence: 0.8}
  - {type: gitlab, field: body, pattern: 'gitlab', confidence: 0.9}
  - {type: forgejo, field: header, header: X-Forge, pattern: '.+', confidence: 0.75}
  - {type: wordpress, field: generator, pattern: 'wordpress', confidence: 0.95}
`

func newTestCascade(t *testing.T, f PageFetcher, c Lookuper) *Cascade {
	t.Helper()
	table, err := ParseTable([]byte(cascadeTable))
	require.NoError(t, err)
	return NewCascade(table, f, c, 0.7, nil)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"my-photos_app", "my", "photos", "app"}, Labels("My-Photos_App.example.com"))
	assert.Equal(t, []string{"photos"}, Labels("https://photos.example.com/path"))
	assert.Equal(t, []string{"localhost"}, Labels("localhost:8080"))
	assert.Nil(t, Labels(""))
}

func TestCascade_TierOneOrdering(t *testing.T) {
	fetcher := &stubFetcher{}
	c := newTestCascade(t, fetcher, nil)

	r := c.Detect(context.Background(), Target{Domain: "photos.example.com", URL: "https://photos.example.com"}, true)
	require.NotNil(t, r)
	assert.Equal(t, "photoprism", r.Type)
	assert.Equal(t, MethodSubdomain, r.Method)
	assert.Equal(t, 0.9, r.Confidence)
	assert.Zero(t, fetcher.calls)
}

func TestCascade_TierOneMatchesToken(t *testing.T) {
	c := newTestCascade(t, nil, nil)

	r := c.Heuristic(context.Background(), "family-immich.example.com")
	require.NotNil(t, r)
	assert.Equal(t, "immich", r.Type)
}

func TestCascade_TierTwoBestMatch(t *testing.T) {
	fetcher := &stubFetcher{page: &Page{
		Title:   "My git server",
		Body:    "powered by gitlab",
		Headers: http.Header{"X-Forge": []string{"1"}},
	}}
	c := newTestCascade(t, fetcher, nil)

	r := c.Detect(context.Background(), Target{Domain: "code.example.com", URL: "https://code.example.com"}, false)
	require.NotNil(t, r)
	assert.Equal(t, "gitlab", r.Type)
	assert.Equal(t, 0.9, r.Confidence)
	assert.Equal(t, MethodFingerprint, r.Method)
}

func TestCascade_TierThreeOnlyWithoutFingerprint(t *testing.T) {
	cat := &stubCatalog{entries: map[string]catalog.Result{
		"Mealie": {Entry: catalog.Entry{Name: "Mealie", Category: "Food"}, Key: "mealie"},
	}}

	t.Run("fingerprint wins", func(t *testing.T) {
		fetcher := &stubFetcher{page: &Page{Title: "Mealie", Generator: "WordPress 6"}}
		c := newTestCascade(t, fetcher, cat)

		r := c.Detect(context.Background(), Target{Domain: "food.example.com", URL: "https://food.example.com"}, true)
		require.NotNil(t, r)
		assert.Equal(t, "wordpress", r.Type)
	})

	t.Run("online fallback", func(t *testing.T) {
		cat.queries = nil
		fetcher := &stubFetcher{page: &Page{Title: "Mealie"}}
		c := newTestCascade(t, fetcher, cat)

		r := c.Detect(context.Background(), Target{Domain: "food.example.com", URL: "https://food.example.com"}, true)
		require.NotNil(t, r)
		assert.Equal(t, "mealie", r.Type)
		assert.Equal(t, "Food", r.Category)
		assert.Equal(t, MethodOnline, r.Method)
		assert.Equal(t, 0.5, r.Confidence)
		assert.Equal(t, []string{"Mealie"}, cat.queries)
	})

	t.Run("online disabled", func(t *testing.T) {
		fetcher := &stubFetcher{page: &Page{Title: "Mealie"}}
		c := newTestCascade(t, fetcher, cat)

		r := c.Detect(context.Background(), Target{Domain: "food.example.com", URL: "https://food.example.com"}, false)
		assert.Nil(t, r)
	})

	t.Run("nothing extracted", func(t *testing.T) {
		cat.queries = nil
		fetcher := &stubFetcher{page: &Page{}}
		c := newTestCascade(t, fetcher, cat)

		assert.Nil(t, c.Detect(context.Background(), Target{Domain: "x.example.com", URL: "https://x.example.com"}, true))
		assert.Empty(t, cat.queries)
	})
}

func TestCascade_FetchFailureIsNotAnError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	cat := &stubCatalog{}
	c := newTestCascade(t, fetcher, cat)

	r := c.Detect(context.Background(), Target{Domain: "unknown.example.com", URL: "https://unknown.example.com"}, true)
	assert.Nil(t, r)
	assert.Equal(t, 1, fetcher.calls)
	assert.Empty(t, cat.queries)
}

func TestCascade_DetectStrictFloor(t *testing.T) {
	cat := &stubCatalog{entries: map[string]catalog.Result{
		"Mealie": {Entry: catalog.Entry{Name: "Mealie"}, Key: "mealie"},
	}}

	fetcher := &stubFetcher{page: &Page{Title: "Mealie"}}
	c := newTestCascade(t, fetcher, cat)

	r, ok := c.DetectStrict(context.Background(), Target{Domain: "food.example.com", URL: "https://food.example.com"}, true)
	require.NotNil(t, r)
	assert.False(t, ok)

	r, ok = c.DetectStrict(context.Background(), Target{Domain: "grafana.example.com"}, true)
	require.NotNil(t, r)
	assert.True(t, ok)

	r, ok = c.DetectStrict(context.Background(), Target{Domain: "nothing.example.com"}, true)
	assert.Nil(t, r)
	assert.False(t, ok)
}

func TestCascade_DefaultTablePhotos(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)
	c := NewCascade(table, nil, nil, 0.7, nil)

	r := c.Detect(context.Background(), Target{Domain: "photos.example.com"}, false)
	require.NotNil(t, r)
	assert.Equal(t, "photoprism", r.Type)
}
