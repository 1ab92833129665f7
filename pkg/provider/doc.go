// Package provider defines the adapter contract for upstream inference
// backends, the closed error taxonomy governing retries, and shared
// normalization helpers used by every adapter.
package provider
