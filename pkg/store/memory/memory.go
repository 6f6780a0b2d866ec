// Copyright 2025 Certen Protocol
//
// In-memory Record Store. Used by the embedded/WASM adapter and by tests.
// Every read returns a clone and every write stores a clone so callers can
// never alias internal state.

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/certen/ledger-engine/pkg/record"
	"github.com/certen/ledger-engine/pkg/store"
)

// Store is a sync.RWMutex-guarded, map-backed implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	byHash  map[string]*record.Record
	byChain map[string][]*record.Record // ordered by Index ascending
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		byHash:  make(map[string]*record.Record),
		byChain: make(map[string][]*record.Record),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Put(_ context.Context, rec *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byHash[rec.Hash]; exists {
		return store.ErrDuplicateHash
	}

	chain := s.byChain[rec.ChainID]
	for _, existing := range chain {
		if existing.Index == rec.Index {
			return store.ErrDuplicateChainIndex
		}
	}

	stored := rec.Clone()
	s.byHash[stored.Hash] = stored
	s.byChain[stored.ChainID] = append(chain, stored)
	return nil
}

func (s *Store) GetByHash(_ context.Context, hash string) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byHash[hash]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (s *Store) GetChain(_ context.Context, chainID string, opts record.ChainReadOptions) ([]*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.byChain[chainID]
	out := make([]*record.Record, len(chain))
	for i, r := range chain {
		out[i] = r.Clone()
	}

	if opts.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return applyWindow(out, opts.Offset, opts.Limit), nil
}

func applyWindow(recs []*record.Record, offset, limit int) []*record.Record {
	if offset > 0 {
		if offset >= len(recs) {
			return nil
		}
		recs = recs[offset:]
	}
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs
}

func (s *Store) GetHead(_ context.Context, chainID string) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.byChain[chainID]
	if len(chain) == 0 {
		return nil, nil
	}
	return chain[len(chain)-1].Clone(), nil
}

func (s *Store) Query(_ context.Context, filter record.QueryFilter) (*record.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*record.Record
	for _, rec := range s.byHash {
		if !matchesFilter(rec, filter) {
			continue
		}
		matches = append(matches, rec.Clone())
	}

	if filter.ChainID != "" {
		sort.Slice(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })
	} else {
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].CreatedAt != matches[j].CreatedAt {
				return matches[i].CreatedAt < matches[j].CreatedAt
			}
			return matches[i].Hash < matches[j].Hash
		})
	}

	total := len(matches)
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	windowed := applyWindow(matches, filter.Offset, limit)
	hasMore := filter.Offset+len(windowed) < total

	return &record.QueryResult{Records: windowed, Total: total, HasMore: hasMore}, nil
}

func matchesFilter(rec *record.Record, filter record.QueryFilter) bool {
	if filter.ChainID != "" && rec.ChainID != filter.ChainID {
		return false
	}
	if filter.Module != "" && rec.Module != filter.Module {
		return false
	}
	if filter.CreatedAtFrom != nil && rec.CreatedAt < *filter.CreatedAtFrom {
		return false
	}
	if filter.CreatedAtTo != nil && rec.CreatedAt > *filter.CreatedAtTo {
		return false
	}
	if filter.Module != "" {
		for k, v := range filter.ProjectionMatch {
			bodyVal, ok := rec.Body[k]
			if !ok || bodyVal != v {
				return false
			}
		}
	}
	return true
}

func (s *Store) Close() error { return nil }

// Overwrite replaces the stored copy of rec in place, keyed by hash and
// chain/index. It exists for test harnesses that need to simulate storage
// corruption; the engine itself never calls it.
func (s *Store) Overwrite(rec *record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := rec.Clone()
	s.byHash[stored.Hash] = stored
	chain := s.byChain[stored.ChainID]
	for i, existing := range chain {
		if existing.Index == stored.Index {
			chain[i] = stored
			return
		}
	}
	s.byChain[stored.ChainID] = append(chain, stored)
}
