package secrets

// Secret wraps a sensitive string so it cannot leak through logging or
// serialization. String, GoString, JSON, and text marshaling all emit a
// redacted placeholder; Expose returns the real value for the one place
// that genuinely needs it (an Authorization header).
type Secret struct {
	value string
}

// New creates a Secret from a raw value.
func New(value string) Secret {
	return Secret{value: value}
}

// String implements fmt.Stringer with a redacted placeholder.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer with a redacted placeholder.
func (s Secret) GoString() string {
	return "secrets.Secret{[REDACTED]}"
}

// MarshalJSON redacts the value.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// MarshalText redacts the value.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// Expose returns the underlying value.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty reports whether the secret holds no value.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}
