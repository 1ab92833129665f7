// Package anthropic implements the provider adapter for Anthropic-style
// Messages API backends. The chunk framing differs structurally from
// the OpenAI-compatible providers, so this package carries its own
// stream normalizer implementing the same output contract.
package anthropic
