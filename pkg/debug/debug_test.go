package debug

import (
	"reflect"
	"testing"
)

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "providers", map[string]bool{"providers": true}},
		{"multiple", "providers,routing", map[string]bool{"providers": true, "routing": true}},
		{"all", "all", map[string]bool{"all": true}},
		{"with spaces", " providers , routing ", map[string]bool{"providers": true, "routing": true}},
		{"uppercase normalized", "PROVIDERS,Routing", map[string]bool{"providers": true, "routing": true}},
		{"empty segments", "providers,,routing", map[string]bool{"providers": true, "routing": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromEnv(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("fromEnv(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func setCategories(t *testing.T, v string) {
	t.Helper()
	orig := enabled
	t.Cleanup(func() { enabled = orig })
	enabled = fromEnv(v)
}

func TestEnabled(t *testing.T) {
	setCategories(t, "providers,routing")

	if !Enabled("providers") || !Enabled("routing") {
		t.Error("listed categories should be enabled")
	}
	if Enabled("streaming") {
		t.Error("streaming should not be enabled")
	}
	if Enabled("all") {
		t.Error("all was not listed and should not read as enabled")
	}
}

func TestEnabledAll(t *testing.T) {
	setCategories(t, "all")

	for _, c := range []string{"providers", "routing", "streaming", "anything"} {
		if !Enabled(c) {
			t.Errorf("%q should be enabled via all", c)
		}
	}
}

func TestEnabledEmpty(t *testing.T) {
	setCategories(t, "")

	if Enabled("providers") {
		t.Error("nothing should be enabled when no categories are set")
	}
}

func TestCategoriesSorted(t *testing.T) {
	setCategories(t, "streaming,providers,routing")

	got := Categories()
	want := []string{"providers", "routing", "streaming"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
}

func TestLogDisabledCategory(t *testing.T) {
	setCategories(t, "")

	// Must be a no-op rather than panic on a nil-ish default setup.
	Log("providers", "message", "key", "value")
	Trace("providers", "message", "key", "value")
	Raw("providers", "body")
}
