package catalog

// Entry is one application listed in the online catalog.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`
	Website     string `json:"website"`
}

// MatchKind reports which lookup strategy produced a Result.
type MatchKind string

const (
	MatchExact      MatchKind = "exact"
	MatchNormalized MatchKind = "normalized"
	MatchSubstring  MatchKind = "substring"
)

// Result is a catalog entry returned by Lookup or Search.
type Result struct {
	Entry
	// Key is the normalized catalog key that matched.
	Key string `json:"key"`
	// Match is the strategy that found the entry.
	Match MatchKind `json:"match"`
}
