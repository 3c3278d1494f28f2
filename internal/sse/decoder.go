// Package sse decodes the newline-delimited "data: <json>" frames used by
// the chat streaming endpoints. The protocol carries no ids, no retries, and
// no multiplexing: frames are processed strictly in arrival order.
package sse

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/dealdesk/diligence/internal/core/domain"
)

// doneSentinel terminates a stream explicitly. Plain EOF is also accepted.
const doneSentinel = "[DONE]"

type Decoder struct {
	scanner *bufio.Scanner
	data    []string
}

func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Decoder{scanner: scanner}
}

// Next returns the next well-formed event. Malformed JSON frames are logged
// and skipped, the stream keeps going. io.EOF signals a clean end.
func (d *Decoder) Next() (domain.StreamEvent, error) {
	for d.scanner.Scan() {
		line := strings.TrimRight(d.scanner.Text(), "\r")

		if line == "" {
			payload := strings.Join(d.data, "\n")
			d.data = d.data[:0]
			if payload == "" {
				continue
			}
			if payload == doneSentinel {
				return domain.StreamEvent{}, io.EOF
			}

			var event domain.StreamEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				slog.Warn("sse_frame_skipped", "error", err, "payload_bytes", len(payload))
				continue
			}
			return event, nil
		}

		if value, ok := strings.CutPrefix(line, "data:"); ok {
			d.data = append(d.data, strings.TrimPrefix(value, " "))
		}
		// Comment lines and unknown fields are ignored.
	}

	if err := d.scanner.Err(); err != nil {
		return domain.StreamEvent{}, err
	}

	// Flush a final frame whose terminating blank line never arrived.
	if len(d.data) > 0 {
		payload := strings.Join(d.data, "\n")
		d.data = nil
		if payload != "" && payload != doneSentinel {
			var event domain.StreamEvent
			if err := json.Unmarshal([]byte(payload), &event); err == nil {
				return event, nil
			}
			slog.Warn("sse_frame_skipped", "error", "unterminated frame", "payload_bytes", len(payload))
		}
	}
	return domain.StreamEvent{}, io.EOF
}
