// Package openai implements the provider adapter for OpenAI-style
// hosted backends. The wire protocol lives in openaicompat; this
// package adds credential resolution and the capability surface.
package openai
