package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

type fakeUpserter struct {
	deleted  []string
	upserted [][]VectorRecord
	delErr   error
}

func (f *fakeUpserter) DeleteByManualID(_ context.Context, manualID string) error {
	f.deleted = append(f.deleted, manualID)
	return f.delErr
}

func (f *fakeUpserter) Upsert(_ context.Context, records []VectorRecord) error {
	f.upserted = append(f.upserted, records)
	return nil
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

var indexApp = domain.Appliance{ID: "app-1", Brand: "Miele", ModelNumber: "G7106"}

func TestIndexManualReplacesExisting(t *testing.T) {
	store := &fakeUpserter{}
	emb := &fakeEmbedder{}
	ix := NewIndexer(store, emb)

	n, err := ix.IndexManual(context.Background(), "m1", indexApp,
		"Descale the machine monthly. Clean the salt reservoir weekly.")
	if err != nil {
		t.Fatalf("IndexManual: %v", err)
	}
	if n != 1 {
		t.Errorf("chunks = %d, want 1", n)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "m1" {
		t.Errorf("deleted = %v", store.deleted)
	}
	if len(store.upserted) != 1 || len(store.upserted[0]) != 1 {
		t.Fatalf("upserted = %v", store.upserted)
	}

	rec := store.upserted[0][0]
	if rec.ID == "" {
		t.Error("record has no ID")
	}
	if len(rec.Embedding) != 3 {
		t.Errorf("embedding = %v", rec.Embedding)
	}
	if rec.Payload["manual_id"] != "m1" || rec.Payload["appliance_id"] != "app-1" {
		t.Errorf("payload = %v", rec.Payload)
	}
	if rec.Payload["brand"] != "Miele" || rec.Payload["chunk_index"] != 0 {
		t.Errorf("payload = %v", rec.Payload)
	}
}

func TestIndexManualEmptyText(t *testing.T) {
	store := &fakeUpserter{}
	ix := NewIndexer(store, &fakeEmbedder{})

	n, err := ix.IndexManual(context.Background(), "m1", indexApp, "")
	if err != nil || n != 0 {
		t.Errorf("n = %d, err = %v", n, err)
	}
	if len(store.deleted) != 0 {
		t.Error("empty text triggered a delete")
	}
}

func TestIndexManualEmbedError(t *testing.T) {
	store := &fakeUpserter{}
	emb := &fakeEmbedder{err: errors.New("model not loaded")}
	ix := NewIndexer(store, emb)

	_, err := ix.IndexManual(context.Background(), "m1", indexApp, "Clean the filter monthly.")
	if err == nil {
		t.Fatal("embed error not propagated")
	}
	if len(store.upserted) != 0 {
		t.Error("upsert ran despite embed failure")
	}
}

func TestIndexManualDeleteError(t *testing.T) {
	store := &fakeUpserter{delErr: errors.New("collection missing")}
	ix := NewIndexer(store, &fakeEmbedder{})

	_, err := ix.IndexManual(context.Background(), "m1", indexApp, "Clean the filter monthly.")
	if err == nil {
		t.Fatal("delete error not propagated")
	}
}
