package reconcile

import (
	"fmt"
	"strings"
	"time"
)

// InstanceMode is the transport used to read an instance's routes.
type InstanceMode string

const (
	// ModeDatabase reads the proxy manager's database directly.
	ModeDatabase InstanceMode = "database"
	// ModeAPI crawls the proxy manager's management API.
	ModeAPI InstanceMode = "api"
)

// Instance is a configured upstream proxy manager.
type Instance struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	Name     string       `gorm:"size:128;not null" json:"name"`
	Mode     InstanceMode `gorm:"size:16;not null" json:"mode"`
	Priority int          `gorm:"not null" json:"priority"`
	Active   bool         `gorm:"not null" json:"active"`

	// Direct database connection, used in database mode.
	DBDriver   string `gorm:"size:16" json:"db_driver,omitempty"`
	DBHost     string `gorm:"size:255" json:"db_host,omitempty"`
	DBPort     int    `json:"db_port,omitempty"`
	DBUser     string `gorm:"size:128" json:"db_user,omitempty"`
	DBPassword string `gorm:"size:255" json:"-"`
	DBName     string `gorm:"size:255" json:"db_name,omitempty"`

	// Management API access, used in api mode.
	APIURL      string `gorm:"size:512" json:"api_url,omitempty"`
	APIIdentity string `gorm:"size:255" json:"api_identity,omitempty"`
	APISecret   string `gorm:"size:255" json:"-"`

	IsOnline     bool       `json:"is_online"`
	IsDegraded   bool       `json:"is_degraded"`
	LastError    string     `gorm:"type:text" json:"last_error"`
	LastSyncedAt *time.Time `json:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName overrides the table name used by gorm.
func (Instance) TableName() string {
	return "npm_instances"
}

// InstanceStatus is the per-run outcome written back to an instance.
type InstanceStatus struct {
	IsOnline     bool
	IsDegraded   bool
	LastError    string
	LastSyncedAt *time.Time
}

// RouteKey identifies a route within its instance.
type RouteKey struct {
	InstanceID uint
	RouteID    int
}

func (k RouteKey) String() string {
	return fmt.Sprintf("%d/%d", k.InstanceID, k.RouteID)
}

// Route is one proxy host reported by an instance. Routes live for one run.
type Route struct {
	DomainNames   []string
	ForwardHost   string
	ForwardPort   int
	ForwardScheme string
	Enabled       bool

	InstanceID       uint
	InstancePriority int
	// Arrival is the position in the concatenated route list of a run.
	Arrival int
	RouteID int

	// Only populated by the direct database source.
	AdvancedConfig string
	AccessListID   int

	CertificateID int
	SSLForced     bool
}

// authMarkers in advanced nginx config mean an auth gateway fronts the route.
var authMarkers = []string{"auth_request", "authelia", "authentik", "oauth2-proxy", "vouch"}

// PrimaryDomain returns the first domain name, lowercased.
func (r Route) PrimaryDomain() string {
	if len(r.DomainNames) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(r.DomainNames[0]))
}

// Scheme returns the public scheme of the route.
func (r Route) Scheme() string {
	if r.CertificateID > 0 || r.SSLForced {
		return "https"
	}
	return "http"
}

// URL returns the public URL of the route.
func (r Route) URL() string {
	return r.Scheme() + "://" + r.PrimaryDomain()
}

// Key returns the (instance, route) pair.
func (r Route) Key() RouteKey {
	return RouteKey{InstanceID: r.InstanceID, RouteID: r.RouteID}
}

// Protected reports whether an access list or an auth gateway guards the route.
func (r Route) Protected() bool {
	if r.AccessListID > 0 {
		return true
	}
	cfg := strings.ToLower(r.AdvancedConfig)
	for _, m := range authMarkers {
		if strings.Contains(cfg, m) {
			return true
		}
	}
	return false
}

// Application is a canonical dashboard entry.
type Application struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	URL           string   `gorm:"size:512;index" json:"url"`
	Name          string   `gorm:"size:255" json:"name"`
	Icon          string   `gorm:"size:255" json:"icon"`
	Description   string   `gorm:"type:text" json:"description"`
	Category      string   `gorm:"size:128" json:"category"`
	DetectedType  string   `gorm:"size:128" json:"detected_type"`
	IsProtected   bool     `json:"is_protected"`
	ForwardHost   string   `gorm:"size:255" json:"forward_host"`
	ForwardPort   int      `json:"forward_port"`
	ForwardScheme string   `gorm:"size:8" json:"forward_scheme"`
	NPMInstanceID *uint    `gorm:"index:idx_applications_route" json:"npm_instance_id"`
	NPMProxyID    *int     `gorm:"index:idx_applications_route" json:"npm_proxy_id"`
	IsManual      bool     `json:"is_manual"`
	IsVisible     bool     `json:"is_visible"`
	Overrides     Override `gorm:"not null;default:0" json:"overrides"`

	LastSyncedAt *time.Time `json:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName overrides the table name used by gorm.
func (Application) TableName() string {
	return "applications"
}

// RouteKey returns the owning (instance, route) pair, if linked.
func (a *Application) RouteKey() (RouteKey, bool) {
	if a.NPMInstanceID == nil || a.NPMProxyID == nil {
		return RouteKey{}, false
	}
	return RouteKey{InstanceID: *a.NPMInstanceID, RouteID: *a.NPMProxyID}, true
}

// Stats is the outcome of one reconciliation run.
type Stats struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	TotalRoutes int `json:"total_routes"`
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Unchanged   int `json:"unchanged"`
	Errored     int `json:"errored"`
	Removed     int `json:"removed"`

	InstancesSynced   int `json:"instances_synced"`
	InstancesFailed   int `json:"instances_failed"`
	InstancesDegraded int `json:"instances_degraded"`

	Tier2Detections int `json:"tier2_detections"`

	Errors []string `json:"errors"`
}

func (s *Stats) addError(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// Outcomes returns the per-route counters keyed by outcome name.
func (s Stats) Outcomes() map[string]int {
	return map[string]int{
		"created":   s.Created,
		"updated":   s.Updated,
		"unchanged": s.Unchanged,
		"errored":   s.Errored,
		"removed":   s.Removed,
	}
}
