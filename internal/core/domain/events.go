package domain

import "time"

// ChangeEvent notifies downstream pipeline consumers that an analyst touched
// a record. Delivery is best-effort; the API write never depends on it.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	ProjectID string    `json:"project_id"`
	Action    string    `json:"action"`
	At        time.Time `json:"at"`
}

const (
	EntityFinding       = "finding"
	EntityContradiction = "contradiction"
	EntityGap           = "gap"

	ActionCreated   = "created"
	ActionEdited    = "edited"
	ActionValidated = "validated"
	ActionRejected  = "rejected"
	ActionResolved  = "resolved"
	ActionUpdated   = "updated"
)
