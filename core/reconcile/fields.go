package reconcile

import (
	"strings"
	"time"
	"unicode"

	"proxydash/core/detection"
)

// Override marks fields a human has edited. Sync never writes a field
// whose bit is set.
type Override uint8

const (
	OverrideName Override = 1 << iota
	OverrideIcon
	OverrideDescription
	OverrideCategory

	OverrideAll = OverrideName | OverrideIcon | OverrideDescription | OverrideCategory
)

// Has reports whether every bit in f is set.
func (o Override) Has(f Override) bool {
	return o&f == f
}

// With returns o with f set.
func (o Override) With(f Override) Override {
	return o | f
}

// Without returns o with f cleared.
func (o Override) Without(f Override) Override {
	return o &^ f
}

var overrideColumns = map[string]Override{
	"name":        OverrideName,
	"icon":        OverrideIcon,
	"description": OverrideDescription,
	"category":    OverrideCategory,
}

// OverrideFor returns the override bit guarding column.
func OverrideFor(column string) (Override, bool) {
	o, ok := overrideColumns[column]
	return o, ok
}

// Candidate holds the values sync would like an Application to have.
type Candidate struct {
	URL           string
	IsProtected   bool
	ForwardHost   string
	ForwardPort   int
	ForwardScheme string
	InstanceID    uint
	RouteID       int

	// Classification is nil when detection did not run or found nothing.
	Classification *detection.Result
	// FallbackName is used on create when there is no classification.
	FallbackName string
}

// CandidateFor derives candidate values from a winning route and its detection.
func CandidateFor(route Route, det *detection.Result) Candidate {
	return Candidate{
		URL:            route.URL(),
		IsProtected:    route.Protected(),
		ForwardHost:    route.ForwardHost,
		ForwardPort:    route.ForwardPort,
		ForwardScheme:  route.ForwardScheme,
		InstanceID:     route.InstanceID,
		RouteID:        route.RouteID,
		Classification: det,
		FallbackName:   FallbackName(route.PrimaryDomain()),
	}
}

// FallbackName title-cases the leading domain label: "photo-vault" becomes "Photo Vault".
func FallbackName(domain string) string {
	label := domain
	if i := strings.IndexByte(label, '.'); i >= 0 {
		label = label[:i]
	}
	words := strings.FieldsFunc(label, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// NewApplication builds a fresh Application from a candidate. All override
// bits start cleared.
func NewApplication(c Candidate, visible bool, now time.Time) *Application {
	instanceID := c.InstanceID
	routeID := c.RouteID
	app := &Application{
		URL:           c.URL,
		Name:          c.FallbackName,
		IsProtected:   c.IsProtected,
		ForwardHost:   c.ForwardHost,
		ForwardPort:   c.ForwardPort,
		ForwardScheme: c.ForwardScheme,
		NPMInstanceID: &instanceID,
		NPMProxyID:    &routeID,
		IsVisible:     visible,
		LastSyncedAt:  &now,
	}
	if det := c.Classification; det != nil {
		app.DetectedType = det.Type
		if det.Name != "" {
			app.Name = det.Name
		}
		app.Icon = det.Icon
		app.Description = det.Description
		app.Category = det.Category
	}
	return app
}

// Diff returns the column changes needed to bring app in line with c.
// Overridden fields are never included; classification fields are only
// considered when c carries one. The second return lists changed field
// names for reporting; it never includes last_synced_at.
func Diff(app *Application, c Candidate) (map[string]any, []string) {
	changes := make(map[string]any)
	var fields []string

	set := func(column string, current, next any) {
		if current != next {
			changes[column] = next
			fields = append(fields, column)
		}
	}

	if det := c.Classification; det != nil {
		if !app.Overrides.Has(OverrideName) && det.Name != "" {
			set("name", app.Name, det.Name)
		}
		if !app.Overrides.Has(OverrideIcon) {
			set("icon", app.Icon, det.Icon)
		}
		if !app.Overrides.Has(OverrideDescription) {
			set("description", app.Description, det.Description)
		}
		if !app.Overrides.Has(OverrideCategory) {
			set("category", app.Category, det.Category)
		}
		set("detected_type", app.DetectedType, det.Type)
	}

	set("is_protected", app.IsProtected, c.IsProtected)
	set("forward_host", app.ForwardHost, c.ForwardHost)
	set("forward_port", app.ForwardPort, c.ForwardPort)
	set("forward_scheme", app.ForwardScheme, c.ForwardScheme)
	set("url", app.URL, c.URL)

	if !app.IsManual {
		if app.NPMInstanceID == nil || *app.NPMInstanceID != c.InstanceID {
			changes["npm_instance_id"] = c.InstanceID
			fields = append(fields, "npm_instance_id")
		}
		if app.NPMProxyID == nil || *app.NPMProxyID != c.RouteID {
			changes["npm_proxy_id"] = c.RouteID
			fields = append(fields, "npm_proxy_id")
		}
	}

	return changes, fields
}

// ApplyChanges copies a Diff result onto app in memory.
func ApplyChanges(app *Application, changes map[string]any) {
	for column, v := range changes {
		switch column {
		case "name":
			app.Name = v.(string)
		case "icon":
			app.Icon = v.(string)
		case "description":
			app.Description = v.(string)
		case "category":
			app.Category = v.(string)
		case "detected_type":
			app.DetectedType = v.(string)
		case "is_protected":
			app.IsProtected = v.(bool)
		case "forward_host":
			app.ForwardHost = v.(string)
		case "forward_port":
			app.ForwardPort = v.(int)
		case "forward_scheme":
			app.ForwardScheme = v.(string)
		case "url":
			app.URL = v.(string)
		case "npm_instance_id":
			id := v.(uint)
			app.NPMInstanceID = &id
		case "npm_proxy_id":
			id := v.(int)
			app.NPMProxyID = &id
		case "last_synced_at":
			t := v.(time.Time)
			app.LastSyncedAt = &t
		case "is_visible":
			app.IsVisible = v.(bool)
		case "overrides":
			app.Overrides = v.(Override)
		}
	}
}
