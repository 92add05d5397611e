// Package retriever merges lexical and semantic ranking signals into a
// single deterministic result list.
package retriever

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/dan1sh0/Baseera-AI/internal/corpus"
	"github.com/dan1sh0/Baseera-AI/internal/vectorindex"
)

// Mode selects which ranking signals a query uses.
type Mode string

const (
	ModeLexical  Mode = "lexical"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// ParseMode maps a request string onto a Mode, defaulting to hybrid.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeLexical, ModeSemantic:
		return Mode(s)
	default:
		return ModeHybrid
	}
}

// MatchedBy records which signal(s) produced a result.
type MatchedBy string

const (
	MatchLexical  MatchedBy = "lexical"
	MatchSemantic MatchedBy = "semantic"
	MatchBoth     MatchedBy = "both"
)

// Result is one retrieved document with its merged score.
type Result struct {
	Document  corpus.Document
	Score     float64
	MatchedBy MatchedBy
}

// LexicalStore is the substring-search half of retrieval.
type LexicalStore interface {
	SearchText(ctx context.Context, query string) ([]corpus.Document, error)
	Get(ctx context.Context, id string) (*corpus.Document, error)
}

// SemanticIndex is the embedding-search half of retrieval.
type SemanticIndex interface {
	Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error)
}

// Expander rewrites a query with related domain terminology before semantic
// search. Implementations must degrade to returning the query unchanged.
type Expander interface {
	Expand(ctx context.Context, query string) string
}

// DefaultTopK is the semantic candidate count per query.
const DefaultTopK = 10

// Retriever serves queries over a lexical store and a semantic index.
type Retriever struct {
	store    LexicalStore
	index    SemanticIndex
	expander Expander // optional
	topK     int
}

// New creates a Retriever. expander may be nil to disable query expansion.
func New(store LexicalStore, index SemanticIndex, expander Expander, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{store: store, index: index, expander: expander, topK: topK}
}

// Retrieve runs a query in the given mode. Every literal substring match is
// guaranteed a place in hybrid output regardless of its semantic rank, and a
// cold semantic index degrades hybrid retrieval to lexical-only.
func (r *Retriever) Retrieve(ctx context.Context, query string, mode Mode) ([]Result, error) {
	switch mode {
	case ModeLexical:
		return r.lexical(ctx, query)
	case ModeSemantic:
		results, err := r.semantic(ctx, query)
		if err != nil {
			return nil, err
		}
		sortResults(results)
		return results, nil
	default:
		return r.hybrid(ctx, query)
	}
}

// lexical matches the raw query as a case-insensitive substring. All matches
// carry score 1.0; lexical matching alone has no ranking signal.
func (r *Retriever) lexical(ctx context.Context, query string) ([]Result, error) {
	docs, err := r.store.SearchText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	results := make([]Result, len(docs))
	for i, d := range docs {
		results[i] = Result{Document: d, Score: 1.0, MatchedBy: MatchLexical}
	}
	return results, nil
}

// semantic embeds the (optionally expanded) query and maps the top-k chunk
// hits back to their parent documents, keeping each document's best
// similarity.
func (r *Retriever) semantic(ctx context.Context, query string) ([]Result, error) {
	searchQuery := query
	if r.expander != nil {
		searchQuery = r.expander.Expand(ctx, query)
	}

	hits, err := r.index.Search(ctx, searchQuery, r.topK)
	if err != nil {
		// Semantic failures shrink the result set, they never block
		// retrieval.
		log.Printf("retriever: semantic search degraded: %v", err)
		return nil, nil
	}

	var results []Result
	seen := make(map[string]int)
	for _, hit := range hits {
		if idx, ok := seen[hit.DocumentID]; ok {
			if float64(hit.Similarity) > results[idx].Score {
				results[idx].Score = float64(hit.Similarity)
			}
			continue
		}

		doc, err := r.store.Get(ctx, hit.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("resolving document %s: %w", hit.DocumentID, err)
		}
		if doc == nil {
			log.Printf("retriever: indexed chunk references unknown document %s", hit.DocumentID)
			continue
		}

		seen[hit.DocumentID] = len(results)
		results = append(results, Result{
			Document:  *doc,
			Score:     float64(hit.Similarity),
			MatchedBy: MatchSemantic,
		})
	}
	return results, nil
}

// hybrid unions the lexical and semantic candidate sets keyed by document.
// A document matched by both signals scores 0.5 + 0.5*similarity; documents
// matched by one signal keep that signal's score.
func (r *Retriever) hybrid(ctx context.Context, query string) ([]Result, error) {
	lexical, err := r.lexical(ctx, query)
	if err != nil {
		return nil, err
	}
	semantic, err := r.semantic(ctx, query)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]Result, len(lexical)+len(semantic))
	for _, res := range lexical {
		merged[res.Document.ID] = res
	}
	for _, res := range semantic {
		if prev, ok := merged[res.Document.ID]; ok {
			prev.Score = 0.5*1.0 + 0.5*res.Score
			prev.MatchedBy = MatchBoth
			merged[res.Document.ID] = prev
			continue
		}
		merged[res.Document.ID] = res
	}

	results := make([]Result, 0, len(merged))
	for _, res := range merged {
		results = append(results, res)
	}
	sortResults(results)
	return results, nil
}

// sortResults orders by score descending, then verses before hadith, then
// ascending natural locator order, so identical inputs always rank
// identically.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		a, b := results[i].Document, results[j].Document
		if a.Kind != b.Kind {
			return a.Kind == corpus.SourceVerse
		}
		return a.Locator.Less(b.Locator)
	})
}
