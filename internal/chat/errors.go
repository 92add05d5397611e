package chat

import "errors"

// Answer failure classes. Authentication failures are reported as errors
// wrapping llm.ErrAuth and are never retried.
var (
	// ErrValidation indicates unusable user input, rejected before any
	// retrieval or generation work.
	ErrValidation = errors.New("chat: question must not be blank")

	// ErrGeneration indicates the backend failed or returned an invalid
	// or too-short answer.
	ErrGeneration = errors.New("chat: generation failed")
)
