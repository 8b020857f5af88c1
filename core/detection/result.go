package detection

// Method names the tier that produced a Result.
type Method string

const (
	MethodSubdomain   Method = "subdomain"
	MethodFingerprint Method = "fingerprint"
	MethodOnline      Method = "online"
)

// Result is a classification of one route.
type Result struct {
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Method      Method  `json:"method"`
}

// Target is what the cascade classifies.
type Target struct {
	// Domain is the public hostname, e.g. photos.example.com.
	Domain string
	// URL is the public URL fetched by the fingerprint tier.
	URL string
}
