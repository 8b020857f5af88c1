package detection

import (
	"context"
	"strings"

	"proxydash/core/catalog"
)

// onlineConfidence is the fixed confidence of catalog matches.
const onlineConfidence = 0.5

// Labels returns the leading domain label and its tokens split on '-' and '_'.
func Labels(domain string) []string {
	host := strings.ToLower(strings.TrimSpace(domain))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, ".:/"); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return nil
	}

	labels := []string{host}
	for _, tok := range strings.FieldsFunc(host, func(r rune) bool { return r == '-' || r == '_' }) {
		if tok != host {
			labels = append(labels, tok)
		}
	}
	return labels
}

// heuristicStrategies builds one tier 1 strategy per heuristic, in table order.
func heuristicStrategies(t *Table) []Strategy[[]string] {
	strategies := make([]Strategy[[]string], 0, len(t.Heuristics))
	for i := range t.Heuristics {
		h := &t.Heuristics[i]
		strategies = append(strategies, func(_ context.Context, labels []string) *Result {
			for _, l := range labels {
				if _, ok := h.keywords[l]; ok {
					return h.result(MethodSubdomain)
				}
			}
			return nil
		})
	}
	return strategies
}

// fingerprintStrategies builds one tier 2 strategy per fingerprint, in table order.
func fingerprintStrategies(t *Table) []Strategy[*Page] {
	strategies := make([]Strategy[*Page], 0, len(t.Fingerprints))
	for i := range t.Fingerprints {
		f := &t.Fingerprints[i]
		strategies = append(strategies, func(_ context.Context, p *Page) *Result {
			if f.matches(p) {
				return f.result(MethodFingerprint)
			}
			return nil
		})
	}
	return strategies
}

func (f *Fingerprint) matches(p *Page) bool {
	switch f.Field {
	case FieldTitle:
		return p.Title != "" && f.re.MatchString(p.Title)
	case FieldGenerator:
		return p.Generator != "" && f.re.MatchString(p.Generator)
	case FieldApplicationName:
		return p.ApplicationName != "" && f.re.MatchString(p.ApplicationName)
	case FieldBody:
		return p.Body != "" && f.re.MatchString(p.Body)
	case FieldHeader:
		if f.Header != "" {
			for _, v := range p.Headers.Values(f.Header) {
				if f.re.MatchString(v) {
					return true
				}
			}
			return false
		}
		for name, values := range p.Headers {
			for _, v := range values {
				if f.re.MatchString(name + ": " + v) {
					return true
				}
			}
		}
	}
	return false
}

// Lookuper resolves a name against the online catalog.
type Lookuper interface {
	Lookup(ctx context.Context, name string) (*catalog.Result, error)
}

// onlineStrategies builds tier 3 strategies, one per page name in order.
func onlineStrategies(lookup Lookuper, names []string) []Strategy[*Page] {
	strategies := make([]Strategy[*Page], 0, len(names))
	for _, name := range names {
		strategies = append(strategies, func(ctx context.Context, _ *Page) *Result {
			r, err := lookup.Lookup(ctx, name)
			if err != nil || r == nil {
				return nil
			}
			return &Result{
				Type:        r.Key,
				Name:        r.Name,
				Icon:        r.Icon,
				Category:    r.Category,
				Description: r.Description,
				Confidence:  onlineConfidence,
				Method:      MethodOnline,
			}
		})
	}
	return strategies
}
