package domain

import (
	"strings"
	"time"
)

type GapCategory string

const (
	GapIRLMissing         GapCategory = "irl_missing"
	GapInformationGap     GapCategory = "information_gap"
	GapIncompleteAnalysis GapCategory = "incomplete_analysis"
)

func ParseGapCategory(raw string) (GapCategory, bool) {
	switch GapCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case GapIRLMissing:
		return GapIRLMissing, true
	case GapInformationGap:
		return GapInformationGap, true
	case GapIncompleteAnalysis:
		return GapIncompleteAnalysis, true
	default:
		return "", false
	}
}

type GapStatus string

const (
	GapActive        GapStatus = "active"
	GapResolved      GapStatus = "resolved"
	GapNotApplicable GapStatus = "not_applicable"
)

func ParseGapStatus(raw string) (GapStatus, bool) {
	switch GapStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case GapActive:
		return GapActive, true
	case GapResolved:
		return GapResolved, true
	case GapNotApplicable:
		return GapNotApplicable, true
	default:
		return "", false
	}
}

type GapPriority string

const (
	GapPriorityHigh   GapPriority = "high"
	GapPriorityMedium GapPriority = "medium"
	GapPriorityLow    GapPriority = "low"
)

func ParseGapPriority(raw string) (GapPriority, bool) {
	switch GapPriority(strings.ToLower(strings.TrimSpace(raw))) {
	case GapPriorityHigh:
		return GapPriorityHigh, true
	case GapPriorityMedium:
		return GapPriorityMedium, true
	case GapPriorityLow:
		return GapPriorityLow, true
	default:
		return "", false
	}
}

// Gap records an expected piece of information the deal room does not answer.
type Gap struct {
	ID          string      `json:"id"`
	ProjectID   string      `json:"project_id"`
	Description string      `json:"description"`
	Category    GapCategory `json:"category"`
	Priority    GapPriority `json:"priority"`
	Status      GapStatus   `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type GapPatch struct {
	Status   *string `json:"status,omitempty"`
	Priority *string `json:"priority,omitempty"`
}
