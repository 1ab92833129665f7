package provider

import "testing"

func TestNormalizeUsage_OpenAIFieldNames(t *testing.T) {
	raw := map[string]any{
		"prompt_tokens":     float64(12),
		"completion_tokens": float64(34),
		"total_tokens":      float64(46),
	}
	usage := NormalizeUsage(raw,
		[]string{"prompt_tokens"}, []string{"completion_tokens"}, []string{"total_tokens"})

	if usage.InputTokens != 12 || usage.OutputTokens != 34 {
		t.Errorf("unexpected counts: %+v", usage)
	}
	if usage.TotalTokens == nil || *usage.TotalTokens != 46 {
		t.Errorf("expected total 46, got %v", usage.TotalTokens)
	}
}

func TestNormalizeUsage_TotalPreservedVerbatim(t *testing.T) {
	// An upstream total disagreeing with input+output is still reported as-is.
	raw := map[string]any{
		"input_tokens":  float64(10),
		"output_tokens": float64(10),
		"total_tokens":  float64(99),
	}
	usage := NormalizeUsage(raw,
		[]string{"input_tokens"}, []string{"output_tokens"}, []string{"total_tokens"})

	if usage.TotalTokens == nil || *usage.TotalTokens != 99 {
		t.Errorf("expected verbatim total 99, got %v", usage.TotalTokens)
	}
}

func TestNormalizeUsage_TotalDerived(t *testing.T) {
	raw := map[string]any{
		"input_tokens":  float64(7),
		"output_tokens": float64(3),
	}
	usage := NormalizeUsage(raw,
		[]string{"input_tokens"}, []string{"output_tokens"}, []string{"total_tokens"})

	if usage.TotalTokens == nil || *usage.TotalTokens != 10 {
		t.Errorf("expected derived total 10, got %v", usage.TotalTokens)
	}
}

func TestNormalizeUsage_TotalOmitted(t *testing.T) {
	raw := map[string]any{"input_tokens": float64(7)}
	usage := NormalizeUsage(raw,
		[]string{"input_tokens"}, []string{"output_tokens"}, []string{"total_tokens"})

	if usage.TotalTokens != nil {
		t.Errorf("expected no total, got %v", *usage.TotalTokens)
	}
}

func TestNormalizeUsage_ClampingAndRounding(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want int
	}{
		{"negative clamps to zero", float64(-5), 0},
		{"non-numeric normalizes to zero", "twelve", 0},
		{"nil normalizes to zero", nil, 0},
		{"fraction rounds to nearest", float64(2.6), 3},
		{"fraction rounds down", float64(2.4), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{"n": tt.val}
			usage := NormalizeUsage(raw, []string{"n"}, nil, nil)
			if usage.InputTokens != tt.want {
				t.Errorf("expected %d, got %d", tt.want, usage.InputTokens)
			}
		})
	}
}

func TestNormalizeUsage_FirstPresentKeyWins(t *testing.T) {
	raw := map[string]any{"completion_tokens": float64(4), "output_tokens": float64(9)}
	usage := NormalizeUsage(raw, nil, []string{"output_tokens", "completion_tokens"}, nil)
	if usage.OutputTokens != 9 {
		t.Errorf("expected first candidate key to win, got %d", usage.OutputTokens)
	}
}
