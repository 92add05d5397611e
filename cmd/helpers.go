package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dan1sh0/Baseera-AI/internal/chat"
	"github.com/dan1sh0/Baseera-AI/internal/chunker"
	"github.com/dan1sh0/Baseera-AI/internal/config"
	"github.com/dan1sh0/Baseera-AI/internal/embeddings"
	"github.com/dan1sh0/Baseera-AI/internal/expander"
	"github.com/dan1sh0/Baseera-AI/internal/llm"
	"github.com/dan1sh0/Baseera-AI/internal/retriever"
	"github.com/dan1sh0/Baseera-AI/internal/store"
	"github.com/dan1sh0/Baseera-AI/internal/vectorindex"
)

// loadConfig loads and validates the config, providing a friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func corpusDBPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "corpus.db")
}

func indexDir(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "vectordb")
}

// createEmbedder creates an embeddings.Embedder based on config.
func createEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, cfg.OllamaHost), nil
	default:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, cfg.EmbeddingModel), nil
	}
}

// createProvider creates the generation backend based on config.
func createProvider(cfg *config.Config) (llm.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return llm.NewOllamaProvider(cfg.OllamaHost, cfg.Model), nil
	default:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
		return llm.NewOpenAIProvider(apiKey, cfg.Model), nil
	}
}

// passagesFromStore reads the whole corpus and chunks it into index
// passages.
func passagesFromStore(ctx context.Context, st *store.Store, cfg *config.Config) ([]vectorindex.Passage, error) {
	docs, err := st.All(ctx)
	if err != nil {
		return nil, err
	}

	splitter := chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	var passages []vectorindex.Passage
	for _, doc := range docs {
		for _, c := range splitter.Split(doc) {
			passages = append(passages, vectorindex.Passage{
				DocumentID: doc.ID,
				ChunkIndex: c.Index,
				Kind:       string(doc.Kind),
				Citation:   doc.Citation(),
				Text:       c.Text,
			})
		}
	}
	return passages, nil
}

// engine bundles the query-time services built from config.
type engine struct {
	store     *store.Store
	index     *vectorindex.Index
	retriever *retriever.Retriever
	service   *chat.Service
}

// buildEngine opens the corpus store, loads (or builds) the vector index,
// and wires the retrieval and answering services.
func buildEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	st, err := store.Open(corpusDBPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening corpus store: %w", err)
	}

	embedder, err := createEmbedder(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	index, err := vectorindex.New(embedder, indexDir(cfg))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating vector index: %w", err)
	}
	if err := index.LoadOrBuild(ctx, func(ctx context.Context) ([]vectorindex.Passage, error) {
		return passagesFromStore(ctx, st, cfg)
	}); err != nil {
		st.Close()
		return nil, fmt.Errorf("preparing vector index: %w", err)
	}

	provider, err := createProvider(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)

	var exp retriever.Expander
	if cfg.ExpandQueries {
		exp = expander.New(provider, cfg.Model)
	}

	retr := retriever.New(st, index, exp, cfg.TopK)
	synth := chat.NewSynthesizer(provider, cfg.Model, chat.NewHistory())

	return &engine{
		store:     st,
		index:     index,
		retriever: retr,
		service:   chat.NewService(retr, synth),
	}, nil
}

func (e *engine) Close() {
	e.store.Close()
}
