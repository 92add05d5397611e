package chat

import (
	"context"
	"strings"

	"github.com/dan1sh0/Baseera-AI/internal/retriever"
)

// Retriever is the slice of retrieval the chat service needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, mode retriever.Mode) ([]retriever.Result, error)
}

// Service is the question-answering pipeline: retrieve in hybrid mode, then
// synthesize.
type Service struct {
	retriever Retriever
	synth     *Synthesizer
}

// NewService creates a chat Service.
func NewService(r Retriever, synth *Synthesizer) *Service {
	return &Service{retriever: r, synth: synth}
}

// Ask answers a question for the given session. Blank questions are
// rejected before any retrieval or generation work happens. Retrieval
// failures surface as ErrGeneration-free errors from the retriever;
// synthesis errors follow the Synthesizer's classification.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrValidation
	}

	retrieved, err := s.retriever.Retrieve(ctx, question, retriever.ModeHybrid)
	if err != nil {
		return "", err
	}
	return s.synth.Answer(ctx, sessionID, question, retrieved)
}
