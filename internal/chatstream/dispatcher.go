package chatstream

import (
	"github.com/dealdesk/diligence/internal/core/domain"
)

// dispatch applies one stream event to the session state and fires the
// matching callback. Events are handled strictly in arrival order; there is
// no reordering and no retry.
func (s *Session) dispatch(event domain.StreamEvent) {
	s.mu.Lock()

	if event.Context != nil {
		s.state.Context = s.state.Context.Merge(*event.Context)
	}

	switch event.Type {
	case domain.EventToken:
		s.state.Draft += event.Content
		s.mu.Unlock()
		if s.callbacks.OnToken != nil {
			s.callbacks.OnToken(event.Content)
		}

	case domain.EventToolStart:
		s.state.CurrentTool = event.Tool
		s.mu.Unlock()

	case domain.EventToolEnd:
		s.state.CurrentTool = ""
		s.mu.Unlock()

	case domain.EventPhaseChange:
		s.state.Phase = event.Phase
		s.mu.Unlock()
		if s.callbacks.OnPhaseChange != nil {
			s.callbacks.OnPhaseChange(event.Phase)
		}

	case domain.EventWorkflowProgress:
		// Progress events are deltas: completed stages accumulate across
		// events, scalars take the latest non-empty value.
		if event.Progress != nil {
			in := *event.Progress
			if in.CurrentStage != "" {
				s.state.Progress.CurrentStage = in.CurrentStage
			}
			if in.CurrentSection != "" {
				s.state.Progress.CurrentSection = in.CurrentSection
			}
			for _, stage := range in.CompletedStages {
				s.state.Progress.MarkStageCompleted(stage)
			}
			for section, pct := range in.SectionPercent {
				if s.state.Progress.SectionPercent == nil {
					s.state.Progress.SectionPercent = make(map[string]int)
				}
				s.state.Progress.SectionPercent[section] = pct
			}
		}
		progress := s.state.Progress
		s.mu.Unlock()
		if s.callbacks.OnWorkflowProgress != nil {
			s.callbacks.OnWorkflowProgress(progress)
		}

	case domain.EventOutlineCreated:
		var outline domain.Outline
		if event.Outline != nil {
			outline = *event.Outline
		}
		s.state.Outline = outline
		s.mu.Unlock()
		if s.callbacks.OnOutline != nil {
			s.callbacks.OnOutline(outline)
		}

	case domain.EventOutlineUpdated:
		// Updates carry only the changed sections; sections already built
		// keep their place and the incoming ones are upserted by id.
		if event.Outline != nil {
			if event.Outline.ID != "" {
				s.state.Outline.ID = event.Outline.ID
			}
			if event.Outline.Title != "" {
				s.state.Outline.Title = event.Outline.Title
			}
			for _, section := range event.Outline.Sections {
				s.state.Outline.UpsertSection(section)
			}
		}
		outline := s.state.Outline
		s.mu.Unlock()
		if s.callbacks.OnOutline != nil {
			s.callbacks.OnOutline(outline)
		}

	case domain.EventSectionStarted:
		s.state.Progress.CurrentSection = event.Section
		s.mu.Unlock()
		if s.callbacks.OnSectionStarted != nil {
			s.callbacks.OnSectionStarted(event.Section)
		}

	case domain.EventSlideUpdate:
		s.mu.Unlock()
		if s.callbacks.OnSlideUpdate != nil {
			s.callbacks.OnSlideUpdate(event.Slide)
		}

	case domain.EventDone:
		if event.ConversationID != "" {
			s.state.ConversationID = event.ConversationID
		}
		if s.state.Draft != "" {
			s.state.Transcript = append(s.state.Transcript, domain.ConversationMessage{
				Role:    domain.RoleAssistant,
				Content: s.state.Draft,
			})
			s.state.Draft = ""
		}
		conversationID := s.state.ConversationID
		s.mu.Unlock()
		if s.callbacks.OnDone != nil {
			s.callbacks.OnDone(conversationID)
		}

	case domain.EventError:
		s.state.Err = &StreamError{Message: event.Message}
		s.mu.Unlock()

	default:
		// Unknown event kinds are ignored so the protocol can grow.
		s.mu.Unlock()
	}
}

// StreamError is a terminal error event pushed by the service.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	if e == nil || e.Message == "" {
		return "chat stream error"
	}
	return "chat stream error: " + e.Message
}
