// Package chat turns retrieved passages and bounded conversation history
// into a citation-compliant generated answer.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dan1sh0/Baseera-AI/internal/llm"
	"github.com/dan1sh0/Baseera-AI/internal/retriever"
)

// minAnswerChars is the shortest generation output accepted as a valid
// answer.
const minAnswerChars = 10

// Synthesizer composes generation requests and classifies their failures.
// Generation is invoked exactly once per question: backend failures are not
// assumed transient.
type Synthesizer struct {
	provider llm.Provider
	model    string
	history  *History
}

// NewSynthesizer creates a Synthesizer writing successful turns to history.
func NewSynthesizer(provider llm.Provider, model string, history *History) *Synthesizer {
	return &Synthesizer{provider: provider, model: model, history: history}
}

// Answer generates a grounded answer to question from the retrieved
// passages and the session's conversation window. On success the turn is
// appended to the session history; on any failure the history is untouched
// and the question can be retried unchanged by the caller.
//
// Errors wrap exactly one of ErrValidation, llm.ErrAuth or ErrGeneration.
func (s *Synthesizer) Answer(ctx context.Context, sessionID, question string, retrieved []retriever.Result) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrValidation
	}

	turns := s.history.Turns(sessionID)
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildPrompt(question, retrieved, turns)},
		},
		MaxTokens:   2048,
		Temperature: 0.2,
	})
	if err != nil {
		if errors.Is(err, llm.ErrAuth) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	answer := strings.TrimSpace(resp.Content)
	if len(answer) < minAnswerChars {
		return "", fmt.Errorf("%w: response too short (%d chars)", ErrGeneration, len(answer))
	}

	s.history.Append(sessionID, Turn{
		Question: question,
		Answer:   answer,
		Cited:    citations(retrieved),
	})
	return answer, nil
}
