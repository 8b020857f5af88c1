package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func linkedApp(id uint, url string, instance uint, routeID int) Application {
	return Application{ID: id, URL: url, NPMInstanceID: ptr(instance), NPMProxyID: ptr(routeID)}
}

func TestMatcher_Strategies(t *testing.T) {
	tests := []struct {
		name   string
		apps   []Application
		route  Route
		wantID uint
	}{
		{
			name:   "exact url",
			apps:   []Application{linkedApp(1, "http://app.example.com", 9, 99)},
			route:  route(1, 1, 5, "app.example.com"),
			wantID: 1,
		},
		{
			name:   "scheme swapped",
			apps:   []Application{linkedApp(2, "https://app.example.com", 9, 99)},
			route:  route(1, 1, 5, "app.example.com"),
			wantID: 2,
		},
		{
			name:   "route pair after rename",
			apps:   []Application{linkedApp(3, "http://old.example.com", 1, 5)},
			route:  route(1, 1, 5, "new.example.com"),
			wantID: 3,
		},
		{
			name:   "host match with port and path",
			apps:   []Application{linkedApp(4, "https://app.example.com:8443/ui", 7, 70)},
			route:  route(1, 1, 5, "app.example.com"),
			wantID: 4,
		},
		{
			name:  "host must be whole",
			apps:  []Application{linkedApp(5, "https://myapp.example.com.evil.io", 7, 70)},
			route: route(1, 1, 5, "app.example.com"),
		},
		{
			name:   "manual by url",
			apps:   []Application{{ID: 6, URL: "http://app.example.com", IsManual: true}},
			route:  route(1, 1, 5, "app.example.com"),
			wantID: 6,
		},
		{
			name: "manual never by pair",
			apps: []Application{{
				ID: 7, URL: "http://other.example.com", IsManual: true,
				NPMInstanceID: ptr(uint(1)), NPMProxyID: ptr(5),
			}},
			route: route(1, 1, 5, "app.example.com"),
		},
		{
			name:  "manual never by host",
			apps:  []Application{{ID: 8, URL: "https://app.example.com/admin", IsManual: true}},
			route: route(1, 1, 5, "app.example.com"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.apps)
			app := m.Match(tt.route)
			if tt.wantID == 0 {
				assert.Nil(t, app)
				return
			}
			require.NotNil(t, app)
			assert.Equal(t, tt.wantID, app.ID)
		})
	}
}

func TestMatcher_PrefersNonManualThenLowestID(t *testing.T) {
	apps := []Application{
		{ID: 1, URL: "http://app.example.com", IsManual: true},
		linkedApp(5, "http://app.example.com", 2, 2),
		linkedApp(3, "http://app.example.com", 2, 3),
	}
	m := NewMatcher(apps)

	first := m.Match(route(1, 1, 10, "app.example.com"))
	require.NotNil(t, first)
	assert.Equal(t, uint(3), first.ID)
}

func TestMatcher_ClaimsOnce(t *testing.T) {
	apps := []Application{linkedApp(1, "http://app.example.com", 1, 5)}
	m := NewMatcher(apps)

	require.NotNil(t, m.Match(route(1, 1, 5, "app.example.com")))
	assert.True(t, m.Claimed(1))
	assert.Nil(t, m.Match(route(1, 1, 5, "renamed.example.com")))
}

func TestContainsHost(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://app.example.com", true},
		{"https://app.example.com/", true},
		{"https://app.example.com:443", true},
		{"https://app.example.com?x=1", true},
		{"https://sub.app.example.com", false},
		{"https://app.example.com.cn", false},
		{"app.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, containsHost(tt.url, "app.example.com"))
		})
	}
}
