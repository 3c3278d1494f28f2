package domain

import (
	"strings"
	"time"
)

type ValidationStatus string

const (
	FindingPending   ValidationStatus = "pending"
	FindingValidated ValidationStatus = "validated"
	FindingRejected  ValidationStatus = "rejected"
)

func ParseValidationStatus(raw string) (ValidationStatus, bool) {
	switch ValidationStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case FindingPending:
		return FindingPending, true
	case FindingValidated:
		return FindingValidated, true
	case FindingRejected:
		return FindingRejected, true
	default:
		return "", false
	}
}

// SourceRef points at the place in a deal-room document a finding was
// extracted from. Page is used for paged documents, Cell for spreadsheets.
type SourceRef struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name,omitempty"`
	Page         int    `json:"page,omitempty"`
	Cell         string `json:"cell,omitempty"`
}

// Finding is an atomic extracted fact. Findings are produced by the external
// extraction pipeline and only ever status-flagged afterwards, never deleted.
type Finding struct {
	ID              string           `json:"id"`
	ProjectID       string           `json:"project_id"`
	Text            string           `json:"text"`
	Domain          string           `json:"domain,omitempty"`
	Confidence      float64          `json:"confidence"`
	Status          ValidationStatus `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	Source          SourceRef        `json:"source"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ClampConfidence keeps extractor scores inside [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

type FindingFilter struct {
	Status string
	Domain string
	Limit  int
	Offset int
}

type FindingPatch struct {
	Text   *string `json:"text,omitempty"`
	Domain *string `json:"domain,omitempty"`
}
