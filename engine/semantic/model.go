// Package semantic stores and searches manual text chunks in Qdrant so
// extracted manuals stay queryable by similarity after task mining.
package semantic

// SearchResult represents a single vector search hit.
type SearchResult struct {
	ID          string            `json:"id"`
	Score       float32           `json:"score"`
	Content     string            `json:"content"`
	ManualID    string            `json:"manual_id"`
	ApplianceID string            `json:"appliance_id"`
	Meta        map[string]string `json:"meta"`
}

// VectorRecord represents a single vector to store in Qdrant.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any // content, manual_id, appliance_id, brand, model_number, chunk_index
}
