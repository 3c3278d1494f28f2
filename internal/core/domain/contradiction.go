package domain

import (
	"strings"
	"time"
)

type ResolutionStatus string

const (
	ContradictionUnresolved    ResolutionStatus = "unresolved"
	ContradictionResolved      ResolutionStatus = "resolved"
	ContradictionInvestigating ResolutionStatus = "investigating"
	ContradictionNoted         ResolutionStatus = "noted"
)

func ParseResolutionStatus(raw string) (ResolutionStatus, bool) {
	switch ResolutionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ContradictionUnresolved:
		return ContradictionUnresolved, true
	case ContradictionResolved:
		return ContradictionResolved, true
	case ContradictionInvestigating:
		return ContradictionInvestigating, true
	case ContradictionNoted:
		return ContradictionNoted, true
	default:
		return "", false
	}
}

// Contradiction pairs two findings whose content conflicts, pending analyst
// resolution.
type Contradiction struct {
	ID             string           `json:"id"`
	ProjectID      string           `json:"project_id"`
	FindingAID     string           `json:"finding_a_id"`
	FindingBID     string           `json:"finding_b_id"`
	Description    string           `json:"description,omitempty"`
	Status         ResolutionStatus `json:"status"`
	ResolutionNote string           `json:"resolution_note,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
