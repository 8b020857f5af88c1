package reconcile

// Resolution maps each primary domain to the route that serves it.
type Resolution struct {
	winners map[string]Route
	order   []string
}

// Resolve picks one route per primary domain. The route from the instance
// with the lowest priority number wins; equal priorities fall back to the
// lowest arrival index. Disabled routes and routes without a domain are
// ignored. The input is not modified.
func Resolve(routes []Route) Resolution {
	res := Resolution{winners: make(map[string]Route)}
	for _, r := range routes {
		if !r.Enabled {
			continue
		}
		domain := r.PrimaryDomain()
		if domain == "" {
			continue
		}
		current, seen := res.winners[domain]
		if !seen {
			res.order = append(res.order, domain)
		}
		if !seen || outranks(r, current) {
			res.winners[domain] = r
		}
	}
	return res
}

func outranks(a, b Route) bool {
	if a.InstancePriority != b.InstancePriority {
		return a.InstancePriority < b.InstancePriority
	}
	return a.Arrival < b.Arrival
}

// Winner returns the route resolved for domain.
func (r Resolution) Winner(domain string) (Route, bool) {
	route, ok := r.winners[domain]
	return route, ok
}

// Winners returns the resolved routes ordered by first appearance of their domain.
func (r Resolution) Winners() []Route {
	out := make([]Route, 0, len(r.order))
	for _, d := range r.order {
		out = append(out, r.winners[d])
	}
	return out
}

// Len returns the number of resolved domains.
func (r Resolution) Len() int {
	return len(r.order)
}
