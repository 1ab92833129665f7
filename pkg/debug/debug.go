// Package debug gates verbose diagnostic output behind named
// categories so a single hot path can be inspected without drowning
// the log. Categories are read once from LLMCALLER_DEBUG at startup
// (comma-separated, case-insensitive); "all" enables everything.
//
// The gateway emits three categories today:
//
//	providers  upstream request/response summaries
//	routing    provider selection decisions
//	streaming  stream lifecycle
//
// Output volume is a separate axis: category messages log at DEBUG,
// and raw wire bodies only appear when the process log level is at
// TRACE (LevelTrace, below slog's DEBUG).
package debug

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// LevelTrace sits below slog.LevelDebug. At this level Raw emits full
// untruncated wire bodies.
const LevelTrace = slog.LevelDebug - 4

// enabled is fixed at process start; reads need no synchronization.
var enabled = fromEnv(os.Getenv("LLMCALLER_DEBUG"))

// Enabled reports whether a category is active.
func Enabled(category string) bool {
	return enabled["all"] || enabled[category]
}

// Log emits a DEBUG record tagged with the category. A disabled
// category costs one map lookup and nothing else.
func Log(category, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a TRACE-level record tagged with the category.
func Trace(category, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(nil, LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether the category is active and the
// default logger admits TRACE records.
func TraceIsEnabled(category string) bool {
	return Enabled(category) && slog.Default().Enabled(nil, LevelTrace)
}

// Raw writes text straight to stderr, bypassing slog formatting, so
// wire bodies stay copy-pasteable. Gated on TraceIsEnabled.
func Raw(category, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(os.Stderr, text)
}

// Categories returns the active categories sorted, for startup
// reporting.
func Categories() []string {
	out := make([]string, 0, len(enabled))
	for c := range enabled {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func fromEnv(v string) map[string]bool {
	set := make(map[string]bool)
	for _, c := range strings.Split(v, ",") {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			set[c] = true
		}
	}
	return set
}
