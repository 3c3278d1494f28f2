package domain

import "time"

type Conversation struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type ConversationMessage struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	ProjectID      string      `json:"project_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}

// OutlineSection is one ordered entry of the CIM outline the agent assembles.
type OutlineSection struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary,omitempty"`
	Position int    `json:"position"`
}

type Outline struct {
	ID       string           `json:"id,omitempty"`
	Title    string           `json:"title,omitempty"`
	Sections []OutlineSection `json:"sections"`
}

// UpsertSection replaces the section with a matching id in place, or appends
// when the id is new. Order of existing sections is preserved.
func (o *Outline) UpsertSection(section OutlineSection) {
	for i := range o.Sections {
		if o.Sections[i].ID == section.ID {
			o.Sections[i] = section
			return
		}
	}
	o.Sections = append(o.Sections, section)
}

type WorkflowProgress struct {
	CurrentStage    string         `json:"current_stage,omitempty"`
	CompletedStages []string       `json:"completed_stages,omitempty"`
	CurrentSection  string         `json:"current_section,omitempty"`
	SectionPercent  map[string]int `json:"section_percent,omitempty"`
}

// MarkStageCompleted unions the stage into the completed set without
// duplicating entries that already arrived in an earlier progress event.
func (p *WorkflowProgress) MarkStageCompleted(stage string) {
	for _, s := range p.CompletedStages {
		if s == stage {
			return
		}
	}
	p.CompletedStages = append(p.CompletedStages, stage)
}

// Founder is intentionally an object entry, not a string: two founders with
// identical fields are still distinct records in the gathered context.
type Founder struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// GatheredContext is the company fact sheet the agent accumulates across a
// conversation. Merge semantics per field: scalars are last-write-wins,
// string lists are set unions, object lists are plain appends.
type GatheredContext struct {
	CompanyName string    `json:"company_name,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Revenue     string    `json:"revenue,omitempty"`
	Employees   string    `json:"employees,omitempty"`
	Notes       []string  `json:"notes,omitempty"`
	Risks       []string  `json:"risks,omitempty"`
	Founders    []Founder `json:"founders,omitempty"`
}

// Merge folds an incoming partial update into the receiver and returns the
// result. Scalar fields take the incoming value only when it is non-empty.
func (c GatheredContext) Merge(in GatheredContext) GatheredContext {
	out := c
	if in.CompanyName != "" {
		out.CompanyName = in.CompanyName
	}
	if in.Industry != "" {
		out.Industry = in.Industry
	}
	if in.Revenue != "" {
		out.Revenue = in.Revenue
	}
	if in.Employees != "" {
		out.Employees = in.Employees
	}
	out.Notes = unionStrings(out.Notes, in.Notes)
	out.Risks = unionStrings(out.Risks, in.Risks)
	out.Founders = append(out.Founders, in.Founders...)
	return out
}

func unionStrings(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	out := base
	for _, s := range extra {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
