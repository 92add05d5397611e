// Package expander rewrites user queries with related Islamic terminology to
// improve semantic recall.
package expander

import (
	"context"
	"log"
	"strings"

	"github.com/dan1sh0/Baseera-AI/internal/llm"
)

// systemPrompt instructs the backend to enumerate related canonical terms,
// synonyms and thematic concepts while keeping the original intent.
const systemPrompt = `You are an Islamic scholar helping to understand search queries for Islamic texts. Your role is to:
1. Understand the core meaning and intent of the query
2. Expand it to include:
   - Related Quranic concepts and terms
   - Relevant Hadith topics and themes
   - Arabic terminology (both Quranic and Hadith terms)
   - Common variations and synonyms
   - Related prophetic teachings and sunnah
3. Consider both direct references (specific verses/hadiths) and thematic connections (related principles/teachings)

Respond with a single expanded search query that captures these dimensions while maintaining the original intent. Do not add commentary.`

// Expander rewrites queries via a generation backend.
type Expander struct {
	provider llm.Provider
	model    string
}

// New creates an Expander using the given provider and model.
func New(provider llm.Provider, model string) *Expander {
	return &Expander{provider: provider, model: model}
}

// Expand returns the expanded form of query. Any backend failure degrades to
// the original query unchanged; expansion never blocks retrieval.
func (e *Expander) Expand(ctx context.Context, query string) string {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: "Understand and expand this query: " + query},
		},
		MaxTokens:   512,
		Temperature: 0.2,
	})
	if err != nil {
		log.Printf("expander: falling back to raw query: %v", err)
		return query
	}

	expanded := strings.TrimSpace(resp.Content)
	if expanded == "" {
		return query
	}
	return expanded
}
