// Package vectorindex maintains the persisted semantic index over corpus
// chunks, backed by chromem-go.
package vectorindex

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/dan1sh0/Baseera-AI/internal/embeddings"
)

const (
	collectionName = "passages"
	exportFile     = "index.gob.gz"
)

// Passage is one chunk prepared for indexing: the text to embed plus enough
// metadata to map a search hit back to its parent document.
type Passage struct {
	DocumentID string
	ChunkIndex int
	Kind       string
	Citation   string
	Text       string
}

// Hit is a semantic search result.
type Hit struct {
	DocumentID string
	ChunkIndex int
	Text       string
	Similarity float32
}

// Index is a queryable embedding index. Searches may run concurrently;
// rebuilds construct a fresh store and swap it in atomically, so readers
// always see one consistent index version.
type Index struct {
	embedder embeddings.Embedder
	ef       chromem.EmbeddingFunc
	dir      string

	mu  sync.RWMutex
	db  *chromem.DB
	col *chromem.Collection
}

// New creates an empty index persisting under dir. The empty index is
// queryable and returns no results until built or loaded.
func New(embedder embeddings.Embedder, dir string) (*Index, error) {
	ef := embeddings.ToChromemFunc(embedder)
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{embedder: embedder, ef: ef, dir: dir, db: db, col: col}, nil
}

func (ix *Index) exportPath() string { return filepath.Join(ix.dir, exportFile) }

// Load restores the persisted index without re-embedding. The stored
// vectors are returned exactly as exported.
func (ix *Index) Load(ctx context.Context) error {
	db := chromem.NewDB()
	if err := db.ImportFromFile(ix.exportPath(), ""); err != nil {
		return fmt.Errorf("import index: %w", err)
	}
	col := db.GetCollection(collectionName, ix.ef)
	if col == nil {
		return fmt.Errorf("collection %q not found in persisted index", collectionName)
	}

	ix.swap(db, col)
	return nil
}

// Build embeds the given passages into a fresh store, persists it, and
// swaps it in. Building from identical input yields an equivalent index.
// An empty passage set produces an empty, queryable index.
func (ix *Index) Build(ctx context.Context, passages []Passage) error {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, ix.ef)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	if len(passages) > 0 {
		docs := make([]chromem.Document, len(passages))
		for i, p := range passages {
			docs[i] = chromem.Document{
				ID:      fmt.Sprintf("%s#%04d", p.DocumentID, p.ChunkIndex),
				Content: p.Citation + "\n" + p.Text,
				Metadata: map[string]string{
					"document_id": p.DocumentID,
					"chunk_index": strconv.Itoa(p.ChunkIndex),
					"kind":        p.Kind,
					"citation":    p.Citation,
				},
			}
		}
		if err := col.AddDocuments(ctx, docs, 1); err != nil {
			return fmt.Errorf("adding documents: %w", err)
		}
	}

	if err := ix.persist(db); err != nil {
		return err
	}

	ix.swap(db, col)
	return nil
}

// LoadOrBuild loads the persisted index if present, otherwise (or when the
// persisted state is unreadable) builds from scratch. A corrupted export is
// deleted and rebuilt rather than surfaced as an error.
func (ix *Index) LoadOrBuild(ctx context.Context, source func(context.Context) ([]Passage, error)) error {
	if _, err := os.Stat(ix.exportPath()); err == nil {
		loadErr := ix.Load(ctx)
		if loadErr == nil {
			return nil
		}
		log.Printf("vectorindex: persisted index unreadable, rebuilding: %v", loadErr)
		os.Remove(ix.exportPath())
	}

	passages, err := source(ctx)
	if err != nil {
		return fmt.Errorf("collecting passages: %w", err)
	}
	return ix.Build(ctx, passages)
}

// Search returns the top-k chunks by cosine similarity to the query text.
// A cold or empty index returns no hits and no error.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	ix.mu.RLock()
	col := ix.col
	ix.mu.RUnlock()

	if k <= 0 {
		k = 10
	}
	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := col.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("semantic query: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		idx, _ := strconv.Atoi(r.Metadata["chunk_index"])
		hits[i] = Hit{
			DocumentID: r.Metadata["document_id"],
			ChunkIndex: idx,
			Text:       r.Content,
			Similarity: r.Similarity,
		}
	}
	return hits, nil
}

// Count returns the number of indexed chunks.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.col.Count()
}

// persist exports db to a temporary file and renames it over the export
// path, so a crash mid-write never leaves a truncated index behind.
func (ix *Index) persist(db *chromem.DB) error {
	if err := os.MkdirAll(ix.dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp := ix.exportPath() + ".tmp"
	if err := db.ExportToFile(tmp, true, ""); err != nil {
		return fmt.Errorf("exporting index: %w", err)
	}
	if err := os.Rename(tmp, ix.exportPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}

func (ix *Index) swap(db *chromem.DB, col *chromem.Collection) {
	ix.mu.Lock()
	ix.db = db
	ix.col = col
	ix.mu.Unlock()
}
