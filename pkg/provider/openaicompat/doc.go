// Package openaicompat implements the OpenAI-style Chat Completions and
// Embeddings wire protocol shared by the openai and lmstudio adapters.
// Both backends use structurally identical request framing and SSE chunk
// framing, so the translation and stream normalization live here once.
package openaicompat
