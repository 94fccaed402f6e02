package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain"
	dombatch "github.com/kailas-cloud/docsearch/internal/domain/batch"
)

// --- Mocks ---

type mockWriter struct {
	chunks [][]string
	failOn int // 1-based chunk number to fail; 0 = never
	err    error
}

func (m *mockWriter) Put(_ context.Context, _ string, docs ...domain.Document) error {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	m.chunks = append(m.chunks, ids)
	if m.failOn == len(m.chunks) {
		return m.err
	}
	return nil
}

func docs(ids ...string) []domain.Document {
	out := make([]domain.Document, len(ids))
	for i, id := range ids {
		out[i] = domain.NewDocument(id, map[string]any{"name": id})
	}
	return out
}

// --- Tests ---

func TestImport_AllOK(t *testing.T) {
	w := &mockWriter{}
	results := New(w).Import(context.Background(), "users", docs("a", "b", "c"))

	if s := dombatch.Summarize(results); s.OK != 3 || s.Failed != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if len(w.chunks) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(w.chunks))
	}
}

func TestImport_Chunks(t *testing.T) {
	w := &mockWriter{}
	New(w).WithMaxBatchSize(2).Import(context.Background(), "users", docs("a", "b", "c", "d", "e"))

	if len(w.chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(w.chunks))
	}
	if len(w.chunks[2]) != 1 || w.chunks[2][0] != "e" {
		t.Errorf("unexpected last chunk %v", w.chunks[2])
	}
}

func TestImport_FailedChunkContinues(t *testing.T) {
	boom := errors.New("store down")
	w := &mockWriter{failOn: 1, err: boom}
	results := New(w).WithMaxBatchSize(2).Import(context.Background(), "users", docs("a", "b", "c"))

	if results[0].Status() != dombatch.StatusError || results[1].Status() != dombatch.StatusError {
		t.Error("expected first chunk to fail")
	}
	if !errors.Is(results[0].Err(), boom) {
		t.Errorf("expected wrapped store error, got %v", results[0].Err())
	}
	if results[2].Status() != dombatch.StatusOK {
		t.Errorf("expected second chunk to succeed, got %v", results[2].Err())
	}
}

func TestImport_Validation(t *testing.T) {
	w := &mockWriter{}
	in := docs("a", "", "a", "b")
	results := New(w).Import(context.Background(), "users", in)

	if results[1].Status() != dombatch.StatusError || !errors.Is(results[1].Err(), domain.ErrValidation) {
		t.Errorf("expected missing id to fail validation, got %v", results[1].Err())
	}
	if results[2].Status() != dombatch.StatusError || !errors.Is(results[2].Err(), domain.ErrValidation) {
		t.Errorf("expected duplicate id to fail validation, got %v", results[2].Err())
	}
	if len(w.chunks) != 1 || len(w.chunks[0]) != 2 {
		t.Errorf("expected only valid docs written, got %v", w.chunks)
	}
}

func TestImport_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &mockWriter{}
	results := New(w).Import(ctx, "users", docs("a", "b"))

	if len(w.chunks) != 0 {
		t.Errorf("expected no writes, got %v", w.chunks)
	}
	for _, r := range results {
		if !errors.Is(r.Err(), context.Canceled) {
			t.Errorf("expected canceled, got %v", r.Err())
		}
	}
}
