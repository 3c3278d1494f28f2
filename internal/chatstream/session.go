// Package chatstream is the client side of the chat SSE protocol: it sends
// analyst turns, consumes the event stream, and accumulates conversation
// state the way the web client does.
package chatstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/dealdesk/diligence/internal/core/domain"
	"github.com/dealdesk/diligence/internal/sse"
)

// systemMessagePrefix marks control turns that are sent to the service but
// never shown in the visible transcript.
const systemMessagePrefix = "[SYSTEM]"

// ErrSendInFlight rejects a second send while one is still streaming.
var ErrSendInFlight = errors.New("chatstream: a send is already in flight")

type Callbacks struct {
	OnToken            func(token string)
	OnPhaseChange      func(phase string)
	OnWorkflowProgress func(progress domain.WorkflowProgress)
	OnOutline          func(outline domain.Outline)
	OnSectionStarted   func(section string)
	OnSlideUpdate      func(slide json.RawMessage)
	OnDone             func(conversationID string)
}

// State is a point-in-time copy of the session's accumulated view.
type State struct {
	Transcript     []domain.ConversationMessage
	Draft          string
	CurrentTool    string
	Phase          string
	Progress       domain.WorkflowProgress
	Outline        domain.Outline
	Context        domain.GatheredContext
	ConversationID string
	Err            error
}

type Session struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
	callbacks  Callbacks

	mu       sync.Mutex
	inFlight bool
	cancel   context.CancelFunc
	state    State
}

func NewSession(baseURL, projectID string, httpClient *http.Client, callbacks Callbacks) *Session {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Session{
		baseURL:    strings.TrimRight(baseURL, "/"),
		projectID:  projectID,
		httpClient: httpClient,
		callbacks:  callbacks,
	}
}

// Send runs one chat turn and blocks until the stream finishes. Whitespace
// only input is a no-op: no request is issued. A send that is superseded by
// Cancel (or a dead ctx) ends silently without touching the error state.
func (s *Session) Send(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return nil
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	sendCtx, cancel := context.WithCancel(ctx)
	s.inFlight = true
	s.cancel = cancel
	s.state.Err = nil
	s.state.Draft = ""
	conversationID := s.state.ConversationID
	if !strings.HasPrefix(message, systemMessagePrefix) {
		s.state.Transcript = append(s.state.Transcript, domain.ConversationMessage{
			Role:    domain.RoleUser,
			Content: message,
		})
	}
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.inFlight = false
		s.cancel = nil
		s.mu.Unlock()
	}()

	body, err := s.open(sendCtx, message, conversationID)
	if err != nil {
		return s.finish(sendCtx, err)
	}
	defer body.Close()

	decoder := sse.NewDecoder(body)
	for {
		event, err := decoder.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return s.finish(sendCtx, nil)
			}
			return s.finish(sendCtx, fmt.Errorf("read stream: %w", err))
		}
		s.dispatch(event)
	}
}

// Cancel aborts the in-flight send, if any. It is safe to call at any time.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	out.Transcript = append([]domain.ConversationMessage(nil), s.state.Transcript...)
	out.Progress.CompletedStages = append([]string(nil), s.state.Progress.CompletedStages...)
	out.Outline.Sections = append([]domain.OutlineSection(nil), s.state.Outline.Sections...)
	return out
}

func (s *Session) open(ctx context.Context, message, conversationID string) (io.ReadCloser, error) {
	payload, err := json.Marshal(map[string]string{
		"message":        message,
		"conversationId": conversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/api/projects/%s/chat", s.baseURL, s.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("chat request status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

// finish settles the terminal state of a send. Cancellation is silent by
// contract: it never populates Err.
func (s *Session) finish(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return nil
	}

	s.mu.Lock()
	s.state.Err = err
	s.mu.Unlock()
	return err
}
