package sqlite

import (
	"context"
	"testing"

	"github.com/certen/ledger-engine/pkg/record"
	"github.com/certen/ledger-engine/pkg/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = ":memory:"
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLitePutAndGetByHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := &record.Record{Hash: "h0", ChainID: "c1", Index: 0, CreatedAt: 1, Module: "oid", Body: map[string]interface{}{"name": "alice"}}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.GetByHash(ctx, "h0")
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if got == nil || got.Body["name"] != "alice" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestSQLiteDuplicateHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := &record.Record{Hash: "h0", ChainID: "c1", Index: 0, CreatedAt: 1, Module: "oid", Body: map[string]interface{}{}}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	dup := &record.Record{Hash: "h0", ChainID: "c2", Index: 0, CreatedAt: 1, Module: "oid", Body: map[string]interface{}{}}
	if err := s.Put(ctx, dup); err != store.ErrDuplicateHash {
		t.Fatalf("expected ErrDuplicateHash, got %v", err)
	}
}

func TestSQLiteDuplicateChainIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec0 := &record.Record{Hash: "h0", ChainID: "c1", Index: 0, CreatedAt: 1, Module: "oid", Body: map[string]interface{}{}}
	rec1 := &record.Record{Hash: "h1", ChainID: "c1", Index: 0, CreatedAt: 2, Module: "oid", Body: map[string]interface{}{}}
	if err := s.Put(ctx, rec0); err != nil {
		t.Fatalf("Put rec0: %v", err)
	}
	if err := s.Put(ctx, rec1); err != store.ErrDuplicateChainIndex {
		t.Fatalf("expected ErrDuplicateChainIndex, got %v", err)
	}
}

func TestSQLiteGetChainOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	h0 := "h0"
	_ = s.Put(ctx, &record.Record{Hash: "h0", ChainID: "c1", Index: 0, CreatedAt: 1, Module: "oid", Body: map[string]interface{}{}})
	_ = s.Put(ctx, &record.Record{Hash: "h1", ChainID: "c1", Index: 1, CreatedAt: 2, Module: "oid", Body: map[string]interface{}{}, PrevHash: &h0})

	chain, err := s.GetChain(ctx, "c1", record.ChainReadOptions{})
	if err != nil {
		t.Fatalf("GetChain: %v", err)
	}
	if len(chain) != 2 || chain[0].Index != 0 || chain[1].Index != 1 {
		t.Fatalf("unexpected order: %+v", chain)
	}
}
