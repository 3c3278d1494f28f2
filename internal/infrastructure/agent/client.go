// Package agent is the HTTP client for the external agent-graph service
// that drives CIM assembly. The service is a black box: this client only
// opens chat turns and relays the SSE events it pushes back.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dealdesk/diligence/internal/core/domain"
	"github.com/dealdesk/diligence/internal/core/ports"
	"github.com/dealdesk/diligence/internal/infrastructure/resilience"
	"github.com/dealdesk/diligence/internal/sse"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	APIKey             string
	RequestTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL string, options Options) *Client {
	timeout := options.RequestTimeout
	if timeout <= 0 {
		// Streams can be long; the per-connect timeout lives in the
		// transport, not the overall request.
		timeout = 0
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     options.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

var _ ports.AgentStream = (*Client)(nil)

// Stream opens one chat turn and forwards every event to emit in arrival
// order. Connecting goes through the resilience executor (the stream body
// itself is never retried: replays would duplicate tokens).
func (c *Client) Stream(ctx context.Context, req ports.AgentRequest, emit func(domain.StreamEvent) error) error {
	body, err := c.connect(ctx, req)
	if err != nil {
		return wrapTemporaryIfNeeded("agent chat", err)
	}
	defer body.Close()

	decoder := sse.NewDecoder(body)
	for {
		event, err := decoder.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("agent stream read: %w", err)
		}
		if err := emit(event); err != nil {
			return err
		}
		if event.Type == domain.EventDone || event.Type == domain.EventError {
			return nil
		}
	}
}

func (c *Client) connect(ctx context.Context, req ports.AgentRequest) (io.ReadCloser, error) {
	var body io.ReadCloser
	call := func(callCtx context.Context) error {
		opened, err := c.openStream(callCtx, req)
		if err != nil {
			return err
		}
		body = opened
		return nil
	}

	if c.executor == nil {
		if err := call(ctx); err != nil {
			return nil, err
		}
		return body, nil
	}
	if err := c.executor.Execute(ctx, "agent.chat", call, classifyAgentError); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) openStream(ctx context.Context, req ports.AgentRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("agent chat request: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		defer resp.Body.Close()
		return nil, domain.WrapError(domain.ErrUnauthorized, "agent chat", statusError("chat", resp))
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, statusError("chat", resp)
	}
	return resp.Body, nil
}

func statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
