package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func route(instance uint, priority, id int, domains ...string) Route {
	return Route{
		DomainNames:      domains,
		ForwardHost:      "10.0.0.1",
		ForwardPort:      8080,
		ForwardScheme:    "http",
		Enabled:          true,
		InstanceID:       instance,
		InstancePriority: priority,
		RouteID:          id,
	}
}

func arrive(routes ...Route) []Route {
	for i := range routes {
		routes[i].Arrival = i
	}
	return routes
}

func TestResolve_PriorityIndependentOfOrder(t *testing.T) {
	main := route(1, 1, 10, "photos.example.com")
	backup := route(2, 2, 20, "Photos.Example.com")

	for name, input := range map[string][]Route{
		"main first":   arrive(main, backup),
		"backup first": arrive(backup, main),
	} {
		t.Run(name, func(t *testing.T) {
			res := Resolve(input)
			w, ok := res.Winner("photos.example.com")
			require.True(t, ok)
			assert.Equal(t, uint(1), w.InstanceID)
			assert.Equal(t, 1, res.Len())
		})
	}
}

func TestResolve_TieKeepsFirstArrival(t *testing.T) {
	a := route(1, 5, 10, "app.example.com")
	b := route(2, 5, 20, "app.example.com")

	w, _ := Resolve(arrive(a, b)).Winner("app.example.com")
	assert.Equal(t, uint(1), w.InstanceID)

	w, _ = Resolve(arrive(b, a)).Winner("app.example.com")
	assert.Equal(t, uint(2), w.InstanceID)
}

func TestResolve_Deterministic(t *testing.T) {
	input := arrive(
		route(1, 3, 1, "a.example.com"),
		route(2, 1, 2, "a.example.com"),
		route(3, 1, 3, "a.example.com"),
		route(1, 3, 4, "b.example.com"),
	)
	first := Resolve(input).Winners()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(input).Winners())
	}
	require.Len(t, first, 2)
	assert.Equal(t, uint(2), first[0].InstanceID)
	assert.Equal(t, "b.example.com", first[1].PrimaryDomain())
}

func TestResolve_SkipsDisabledAndEmpty(t *testing.T) {
	disabled := route(1, 1, 1, "off.example.com")
	disabled.Enabled = false
	empty := route(1, 1, 2)
	lower := route(2, 9, 3, "off.example.com")

	res := Resolve(arrive(disabled, empty, lower))
	assert.Equal(t, 1, res.Len())
	w, ok := res.Winner("off.example.com")
	require.True(t, ok)
	assert.Equal(t, uint(2), w.InstanceID)
}

func TestRoute_Derived(t *testing.T) {
	r := route(1, 1, 7, "Secure.Example.com", "alias.example.com")
	assert.Equal(t, "http://secure.example.com", r.URL())

	r.CertificateID = 3
	assert.Equal(t, "https://secure.example.com", r.URL())
	assert.Equal(t, RouteKey{InstanceID: 1, RouteID: 7}, r.Key())
	assert.Equal(t, "1/7", r.Key().String())

	assert.False(t, r.Protected())
	r.AdvancedConfig = "location / {\n  auth_request /outpost.goauthentik.io/auth/nginx;\n}"
	assert.True(t, r.Protected())

	r.AdvancedConfig = ""
	r.AccessListID = 2
	assert.True(t, r.Protected())
}
