package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

// Embedder produces embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Upserter is the slice of VectorStore the indexer writes through.
type Upserter interface {
	DeleteByManualID(ctx context.Context, manualID string) error
	Upsert(ctx context.Context, records []VectorRecord) error
}

// Indexer chunks extracted manual text, embeds each chunk, and stores
// the vectors keyed to the manual and appliance.
type Indexer struct {
	store     Upserter
	embedder  Embedder
	chunkSize int
	overlap   int
}

// NewIndexer creates an Indexer with default chunking parameters.
func NewIndexer(store Upserter, embedder Embedder) *Indexer {
	return &Indexer{
		store:     store,
		embedder:  embedder,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
}

// IndexManual replaces any previously indexed chunks for the manual and
// stores fresh embeddings for the given text. Returns the chunk count.
func (ix *Indexer) IndexManual(ctx context.Context, manualID string, app domain.Appliance, text string) (int, error) {
	chunks := ChunkText(manualID, text, ix.chunkSize, ix.overlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	if err := ix.store.DeleteByManualID(ctx, manualID); err != nil {
		return 0, fmt.Errorf("semantic: clear manual %s: %w", manualID, err)
	}

	records := make([]VectorRecord, 0, len(chunks))
	for _, c := range chunks {
		vec, err := ix.embedder.Embed(ctx, c.Text)
		if err != nil {
			return 0, fmt.Errorf("semantic: embed chunk %d: %w", c.Index, err)
		}
		records = append(records, VectorRecord{
			ID:        uuid.NewString(),
			Embedding: vec,
			Payload: map[string]any{
				"content":      c.Text,
				"manual_id":    manualID,
				"appliance_id": app.ID,
				"brand":        app.Brand,
				"model_number": app.ModelNumber,
				"chunk_index":  c.Index,
			},
		})
	}

	if err := ix.store.Upsert(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
