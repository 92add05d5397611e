// Package chunker splits document text into overlapping bounded-size chunks
// for embedding, preferring natural boundaries over hard character cuts.
package chunker

import (
	"strings"

	"github.com/dan1sh0/Baseera-AI/internal/corpus"
)

// DefaultChunkSize is the target maximum chunk length in characters.
const DefaultChunkSize = 500

// DefaultOverlap is the number of characters shared between consecutive
// chunks to preserve context across boundaries.
const DefaultOverlap = 50

// separators is the boundary preference order: paragraph break, line break,
// word break, then a hard character cut as last resort.
var separators = []string{"\n\n", "\n", " "}

// Chunk is one slice of a document's English text.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
	Start, End int // byte offsets into the source text
}

// Splitter produces overlapping chunks using a separator preference list.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter creates a Splitter. Non-positive size or negative overlap fall
// back to the defaults; overlap is clamped below the chunk size.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split chunks the document's English text. Every character of the source is
// covered by at least one chunk; overlap regions appear in two.
func (s *Splitter) Split(doc corpus.Document) []Chunk {
	text := doc.English
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []Chunk
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = cutPoint(text, start, end)
		}

		chunks = append(chunks, Chunk{
			DocumentID: doc.ID,
			Index:      len(chunks),
			Text:       text[start:end],
			Start:      start,
			End:        end,
		})

		if end == len(text) {
			break
		}

		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// cutPoint finds the best boundary in text[start:limit], trying each
// separator in preference order. When no separator occurs past the window's
// midpoint, the hard limit is used.
func cutPoint(text string, start, limit int) int {
	window := text[start:limit]
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > len(window)/2 {
			return start + idx + len(sep)
		}
	}
	return limit
}
