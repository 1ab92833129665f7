package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
)

// streamState accumulates one logical message across Messages API
// events for the lifetime of a single stream.
type streamState struct {
	providerName string
	model        string

	traceID  string
	role     string
	content  strings.Builder
	usage    api.Usage
	finished bool
	emitted  bool
}

// parseSSEStream reads Messages API SSE blocks from body and sends
// normalized stream events on ch. The framing differs from the
// OpenAI-compatible providers (typed events instead of chunk deltas and
// a [DONE] sentinel) but the output contract is identical: ordered
// deltas carrying only new fragments, then exactly one completion.
//
// The channel is NOT closed here; the caller owns it.
func parseSSEStream(ctx context.Context, body io.Reader, providerName, model string, ch chan<- api.StreamEvent) {
	st := &streamState{providerName: providerName, model: model}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var dataLines []string
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()
		if line == "" {
			if done := st.processBlock(ctx, dataLines, ch); done {
				return
			}
			dataLines = dataLines[:0]
			continue
		}
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			dataLines = append(dataLines, strings.TrimPrefix(payload, " "))
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		emit(ctx, ch, api.ErrorEvent(st.traceID, provider.WrapNetwork(err)))
		return
	}

	if st.processBlock(ctx, dataLines, ch) {
		return
	}
	st.finish(ctx, ch)
}

// processBlock handles one framed block. Returns true when iteration
// should stop.
func (st *streamState) processBlock(ctx context.Context, dataLines []string, ch chan<- api.StreamEvent) bool {
	if len(dataLines) == 0 {
		return false
	}

	var ev streamEvent
	if err := json.Unmarshal([]byte(strings.Join(dataLines, "\n")), &ev); err != nil {
		streamErr := &provider.Error{
			Class:   provider.ClassTemporary,
			Message: "malformed upstream stream chunk",
			Cause:   err,
		}
		emit(ctx, ch, api.ErrorEvent(st.traceID, streamErr))
		return true
	}

	switch ev.Type {
	case "message_start":
		if ev.Message != nil {
			st.traceID = ev.Message.ID
			if ev.Message.Model != "" {
				st.model = ev.Message.Model
			}
			if ev.Message.Role != "" && ev.Message.Role != st.role {
				st.role = ev.Message.Role
				emit(ctx, ch, api.DeltaEvent(st.traceID, st.role, ""))
			}
			if ev.Message.Usage != nil {
				st.usage = provider.NormalizeUsage(ev.Message.Usage, usageInputKeys, usageOutputKeys, usageTotalKeys)
			}
		}

	case "content_block_delta":
		if ev.Delta != nil && ev.Delta.Text != "" {
			st.content.WriteString(ev.Delta.Text)
			emit(ctx, ch, api.DeltaEvent(st.traceID, "", ev.Delta.Text))
		}

	case "message_delta":
		// Carries the output-side usage and the stop reason.
		if ev.Usage != nil {
			out := provider.NormalizeUsage(ev.Usage, usageInputKeys, usageOutputKeys, usageTotalKeys)
			st.usage.OutputTokens = out.OutputTokens
			total := st.usage.InputTokens + st.usage.OutputTokens
			st.usage.TotalTokens = &total
		}
		if ev.Delta != nil && ev.Delta.StopReason != "" {
			st.finished = true
		}

	case "message_stop":
		st.finished = true
		st.finish(ctx, ch)
		return true

	case "error":
		streamErr := provider.NewError(provider.ClassTemporary, "upstream reported a stream error")
		if ev.Error != nil {
			streamErr.Cause = fmt.Errorf("upstream error %s: %s", ev.Error.Type, ev.Error.Message)
		}
		emit(ctx, ch, api.ErrorEvent(st.traceID, streamErr))
		return true
	}
	// ping, content_block_start, content_block_stop: nothing to emit.

	return false
}

// finish emits the single completion event.
func (st *streamState) finish(ctx context.Context, ch chan<- api.StreamEvent) {
	if !st.finished || st.emitted {
		return
	}
	st.emitted = true

	role := st.role
	if role == "" {
		role = "assistant"
	}

	emit(ctx, ch, api.CompletionEvent(
		st.traceID,
		api.Message{Role: role, Content: st.content.String()},
		st.usage,
		api.ProviderInfo{Name: st.providerName, Model: st.model},
	))
}

func emit(ctx context.Context, ch chan<- api.StreamEvent, ev api.StreamEvent) {
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}
