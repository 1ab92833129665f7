package provider

import (
	"errors"
	"testing"
)

func TestFromStatus_Mapping(t *testing.T) {
	tests := []struct {
		status int
		class  Classification
	}{
		{401, ClassAuth},
		{403, ClassAuth},
		{429, ClassRateLimit},
		{500, ClassTemporary},
		{502, ClassTemporary},
		{503, ClassTemporary},
		{400, ClassPermanent},
		{404, ClassPermanent},
		{422, ClassPermanent},
		// Unexpected statuses default toward retry, not silent drop.
		{302, ClassTemporary},
		{0, ClassTemporary},
	}

	for _, tt := range tests {
		err := FromStatus(tt.status, "boom")
		if err.Class != tt.class {
			t.Errorf("status %d: expected %s, got %s", tt.status, tt.class, err.Class)
		}
	}
}

func TestClassification_Retryable(t *testing.T) {
	retryable := map[Classification]bool{
		ClassTemporary: true,
		ClassRateLimit: true,
		ClassPermanent: false,
		ClassAuth:      false,
		ClassConfig:    false,
	}
	for class, want := range retryable {
		if class.Retryable() != want {
			t.Errorf("%s: expected retryable=%v", class, want)
		}
	}
}

func TestWrapNetwork(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := WrapNetwork(cause)

	if err.Class != ClassTemporary {
		t.Errorf("expected TEMPORARY, got %s", err.Class)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	// The human-safe message must not leak upstream detail.
	if err.Message != "upstream connection failed" {
		t.Errorf("unexpected message: %q", err.Message)
	}
}

func TestError_ErrorString(t *testing.T) {
	err := NewError(ClassRateLimit, "throttled")
	if got := err.Error(); got != "RATE_LIMIT: throttled" {
		t.Errorf("unexpected error string: %q", got)
	}
}
