package reconcile

import (
	"time"

	"proxydash/core/detection"
)

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreate inserts a new application.
	ActionCreate ActionType = "create"
	// ActionUpdate writes changed, non-overridden fields.
	ActionUpdate ActionType = "update"
	// ActionUnchanged only refreshes the sync timestamp.
	ActionUnchanged ActionType = "unchanged"
	// ActionDelete removes an orphaned application.
	ActionDelete ActionType = "delete"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Domain is the primary domain of the route, empty for deletes.
	Domain string `json:"domain,omitempty"`

	// ApplicationID is the target application; zero for creates.
	ApplicationID uint `json:"application_id,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Fields lists the columns an update changes.
	Fields []string `json:"fields,omitempty"`

	// Detection is the classification used, if detection ran and matched.
	Detection *detection.Result `json:"detection,omitempty"`

	// Application is the row to insert. Only populated for ActionCreate.
	Application *Application `json:"-"`

	// Changes holds column values. Only populated for ActionUpdate.
	Changes map[string]any `json:"-"`
}

// InstanceReport is the fetch outcome of one instance.
type InstanceReport struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Online   bool   `json:"online"`
	Degraded bool   `json:"degraded"`
	Routes   int    `json:"routes"`
	Error    string `json:"error,omitempty"`
}

// Plan contains the outcome of collection, resolution, matching and
// detection, and the actions that would reconcile the inventory.
type Plan struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	// Instances lists fetch outcomes in priority order.
	Instances []InstanceReport `json:"instances"`

	// Actions contains planned mutation operations.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`

	// Errors collects failures that happened while planning.
	Errors []string `json:"errors,omitempty"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	TotalRoutes       int `json:"total_routes"`
	ResolvedDomains   int `json:"resolved_domains"`
	Creates           int `json:"creates"`
	Updates           int `json:"updates"`
	Unchanged         int `json:"unchanged"`
	Deletes           int `json:"deletes"`
	InstancesSynced   int `json:"instances_synced"`
	InstancesFailed   int `json:"instances_failed"`
	InstancesDegraded int `json:"instances_degraded"`
	Tier2Detections   int `json:"tier2_detections"`
}

func (p *Plan) add(a Action) {
	p.Actions = append(p.Actions, a)
	switch a.Type {
	case ActionCreate:
		p.Summary.Creates++
	case ActionUpdate:
		p.Summary.Updates++
	case ActionUnchanged:
		p.Summary.Unchanged++
	case ActionDelete:
		p.Summary.Deletes++
	}
	if a.Detection != nil && a.Detection.Method == detection.MethodFingerprint {
		p.Summary.Tier2Detections++
	}
}

// deleteIDs returns the application ids of all delete actions.
func (p *Plan) deleteIDs() []uint {
	var ids []uint
	for _, a := range p.Actions {
		if a.Type == ActionDelete {
			ids = append(ids, a.ApplicationID)
		}
	}
	return ids
}
