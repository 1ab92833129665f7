package openaicompat

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
)

// doneSentinel terminates an OpenAI-style SSE stream. The sentinel
// itself never produces an event.
const doneSentinel = "[DONE]"

// streamState accumulates one logical message across SSE chunks for the
// lifetime of a single stream. It is discarded on completion or error.
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

// ParseSSEStream reads Chat Completions SSE blocks from body and sends
// normalized stream events on ch. The channel is NOT closed here; the
// caller owns it.
//
// Framing: blocks are separated by blank lines, each block carries zero
// or more "data:" lines whose payloads are joined before parsing. The
// [DONE] sentinel ends iteration without emitting an event. A block that
// fails to parse as JSON fails the whole stream as TEMPORARY: retry at
// the caller level is the intended recovery path.
//
// Within one stream, delta events are emitted in generation order and
// the single completion event is always last. Context cancellation stops
// reading between blocks so an abandoned consumer releases the
// connection promptly.
func ParseSSEStream(ctx context.Context, body io.Reader, providerName, model string, ch chan<- api.StreamEvent) {
	st := &streamState{providerName: providerName, model: model}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var dataLines []string
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()

		// Blank line ends the current block.
		if line == "" {
			if done := processBlock(ctx, st, dataLines, ch); done {
				return
			}
			dataLines = dataLines[:0]
			continue
		}

		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			dataLines = append(dataLines, strings.TrimPrefix(payload, " "))
		}
		// Other SSE fields (event:, id:, comments) are ignored.
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		emit(ctx, ch, api.ErrorEvent(st.traceID, provider.WrapNetwork(err)))
		return
	}

	// Trailing block without a final blank line.
	if processBlock(ctx, st, dataLines, ch) {
		return
	}

	st.finish(ctx, ch)
}

// processBlock handles one framed block. Returns true when iteration
// should stop (sentinel reached or the stream failed).
func processBlock(ctx context.Context, st *streamState, dataLines []string, ch chan<- api.StreamEvent) bool {
	if len(dataLines) == 0 {
		return false
	}

	payload := strings.Join(dataLines, "\n")
	if payload == doneSentinel {
		st.finish(ctx, ch)
		return true
	}

	var chunk ChatCompletionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		streamErr := &provider.Error{
			Class:   provider.ClassTemporary,
			Message: "malformed upstream stream chunk",
			Cause:   err,
		}
		emit(ctx, ch, api.ErrorEvent(st.traceID, streamErr))
		return true
	}

	st.apply(ctx, &chunk, ch)
	return false
}

// apply folds one chunk into the accumulation state, emitting a delta
// event when the chunk actually changed role or content.
func (st *streamState) apply(ctx context.Context, chunk *ChatCompletionChunk, ch chan<- api.StreamEvent) {
	if st.traceID == "" {
		st.traceID = chunk.ID
	}
	if chunk.Model != "" {
		st.model = chunk.Model
	}
	if chunk.Usage != nil {
		st.usage = provider.NormalizeUsage(chunk.Usage, UsageInputKeys, UsageOutputKeys, UsageTotalKeys)
	}

	if len(chunk.Choices) == 0 {
		return
	}
	choice := chunk.Choices[0]

	var roleDelta, contentDelta string
	if choice.Delta.Role != "" && choice.Delta.Role != st.role {
		st.role = choice.Delta.Role
		roleDelta = choice.Delta.Role
	}
	if choice.Delta.Content != nil && *choice.Delta.Content != "" {
		contentDelta = *choice.Delta.Content
		st.content.WriteString(contentDelta)
	}

	// An empty delta produces no event.
	if roleDelta != "" || contentDelta != "" {
		emit(ctx, ch, api.DeltaEvent(st.traceID, roleDelta, contentDelta))
	}

	if choice.FinishReason != nil && *choice.FinishReason != "" {
		st.finished = true
	}
}

// finish emits the single completion event once the terminal marker has
// been observed. The role defaults to assistant when never set.
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

// emit sends an event unless the consumer is gone.
func emit(ctx context.Context, ch chan<- api.StreamEvent, ev api.StreamEvent) {
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}
