package domain

import "time"

// Report is the flattened snapshot behind the HTML export.
type Report struct {
	ProjectID      string
	GeneratedAt    time.Time
	Findings       []Finding
	Contradictions []Contradiction
	Gaps           []Gap
}
