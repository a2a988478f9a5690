// Package ai provides interfaces and implementations for the generation and
// speech-to-text collaborators. The pipeline depends only on the Client
// interface; the concrete backend is selected by configuration.
package ai

import (
	"context"
)

// GenerateRequest describes one generation call. Decoding parameters
// (temperature, output token cap) are fixed at client construction from
// configuration; they are not per-request.
type GenerateRequest struct {
	Prompt    string
	ImageData []byte
	ImageMIME string
}

// Client is the contract for the external model collaborators.
//
// Generate is the single blocking, potentially multi-second step of the chat
// pipeline. Its failures are returned to the caller untouched: there is no
// retry or fallback at call sites, and no cancellation once the call is in
// flight beyond abandoning the result.
//
// Transcribe is best-effort speech-to-text: it returns an empty string for
// unrecognizable or silent audio and for backend failures, never an error
// for "no speech detected".
type Client interface {
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}
