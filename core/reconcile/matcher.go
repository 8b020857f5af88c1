package reconcile

import (
	"sort"
	"strings"
)

// Matcher finds the existing Application for a resolved route. Each
// Application is handed out at most once per run.
type Matcher struct {
	apps    []*Application
	byURL   map[string][]*Application
	byRoute map[RouteKey][]*Application
	claimed map[uint]struct{}
}

// NewMatcher indexes apps. The slice elements are referenced, not copied.
func NewMatcher(apps []Application) *Matcher {
	m := &Matcher{
		byURL:   make(map[string][]*Application),
		byRoute: make(map[RouteKey][]*Application),
		claimed: make(map[uint]struct{}),
	}
	for i := range apps {
		app := &apps[i]
		m.apps = append(m.apps, app)
		m.byURL[strings.ToLower(app.URL)] = append(m.byURL[strings.ToLower(app.URL)], app)
		if key, ok := app.RouteKey(); ok && !app.IsManual {
			m.byRoute[key] = append(m.byRoute[key], app)
		}
	}
	sort.SliceStable(m.apps, func(i, j int) bool { return preferred(m.apps[i], m.apps[j]) })
	for _, list := range m.byURL {
		sort.SliceStable(list, func(i, j int) bool { return preferred(list[i], list[j]) })
	}
	for _, list := range m.byRoute {
		sort.SliceStable(list, func(i, j int) bool { return preferred(list[i], list[j]) })
	}
	return m
}

// preferred orders non-manual before manual, then lower id first.
func preferred(a, b *Application) bool {
	if a.IsManual != b.IsManual {
		return !a.IsManual
	}
	return a.ID < b.ID
}

// Match runs the strategies in order: exact URL, URL with the scheme
// swapped, (instance, route) pair, then host match against non-manual
// URLs. Manual applications only match by URL.
func (m *Matcher) Match(route Route) *Application {
	url := strings.ToLower(route.URL())

	if app := m.claim(m.byURL[url]); app != nil {
		return app
	}
	if app := m.claim(m.byURL[swapScheme(url)]); app != nil {
		return app
	}
	if app := m.claim(m.byRoute[route.Key()]); app != nil {
		return app
	}

	domain := route.PrimaryDomain()
	if domain == "" {
		return nil
	}
	for _, app := range m.apps {
		if app.IsManual {
			continue
		}
		if _, taken := m.claimed[app.ID]; taken {
			continue
		}
		if containsHost(strings.ToLower(app.URL), domain) {
			m.claimed[app.ID] = struct{}{}
			return app
		}
	}
	return nil
}

// Claimed reports whether app was matched during this run.
func (m *Matcher) Claimed(id uint) bool {
	_, ok := m.claimed[id]
	return ok
}

func (m *Matcher) claim(candidates []*Application) *Application {
	for _, app := range candidates {
		if _, taken := m.claimed[app.ID]; taken {
			continue
		}
		m.claimed[app.ID] = struct{}{}
		return app
	}
	return nil
}

func swapScheme(url string) string {
	switch {
	case strings.HasPrefix(url, "https://"):
		return "http://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		return "https://" + strings.TrimPrefix(url, "http://")
	}
	return url
}

// containsHost reports whether domain occurs in url as the whole host:
// preceded by "//" and followed by the end, a port, a path, a query or a fragment.
func containsHost(url, domain string) bool {
	for offset := 0; ; {
		i := strings.Index(url[offset:], domain)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(domain)
		before := start >= 2 && url[start-2:start] == "//"
		after := end == len(url) || strings.ContainsRune(":/?#", rune(url[end]))
		if before && after {
			return true
		}
		offset = start + 1
	}
}
