// Package embeddings provides pluggable text-to-vector embedding backends.
package embeddings

import (
	"context"

	chromem "github.com/philippgille/chromem-go"
)

// Embedder maps text to fixed-dimension vectors.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// ToChromemFunc adapts an Embedder to chromem-go's single-text callback.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := e.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) == 0 {
			return nil, nil
		}
		return vecs[0], nil
	}
}
