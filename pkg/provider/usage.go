package provider

import (
	"encoding/json"
	"math"

	"github.com/llmcaller/llmcaller/pkg/api"
)

// NormalizeUsage coerces upstream usage figures into canonical form.
// Providers disagree on field naming, so adapters pass the raw usage
// object along with the candidate key lists for each figure. Counts are
// parsed as numbers, clamped to a minimum of zero, and rounded to the
// nearest integer. A total supplied by the upstream is reported verbatim;
// otherwise it is derived as input+output when both keys were present,
// else omitted.
func NormalizeUsage(raw map[string]any, inputKeys, outputKeys, totalKeys []string) api.Usage {
	input, hasInput := coerceTokenCount(raw, inputKeys)
	output, hasOutput := coerceTokenCount(raw, outputKeys)

	usage := api.Usage{
		InputTokens:  input,
		OutputTokens: output,
	}

	if total, ok := coerceTokenCount(raw, totalKeys); ok {
		usage.TotalTokens = &total
	} else if hasInput && hasOutput {
		derived := input + output
		usage.TotalTokens = &derived
	}

	return usage
}

// coerceTokenCount finds the first present key and coerces its value to a
// non-negative integer. Non-numeric values count as present but normalize
// to zero.
func coerceTokenCount(raw map[string]any, keys []string) (int, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		return clampTokenCount(v), true
	}
	return 0, false
}

// clampTokenCount converts an arbitrary JSON value to a token count.
func clampTokenCount(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return int(math.Round(f))
}
