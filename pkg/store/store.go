// Copyright 2025 Certen Protocol
//
// Record Store contract (§4.A). All implementations must present the same
// pre- and post-conditions: unique constraints on hash and on
// (chainId, index) are the authoritative enforcement point higher layers
// rely on to detect concurrent duplicate-append races.

package store

import (
	"context"

	"github.com/certen/ledger-engine/pkg/record"
)

// Store is the durable key/value contract over records.
type Store interface {
	// Put atomically inserts rec. Fails with ErrDuplicateHash if rec.Hash
	// already exists, ErrDuplicateChainIndex if (ChainID, Index) collides.
	Put(ctx context.Context, rec *record.Record) error

	// GetByHash returns the record with that hash, or (nil, nil) if absent.
	GetByHash(ctx context.Context, hash string) (*record.Record, error)

	// GetChain returns records in chainId ordered by Index ascending
	// unless opts.Reverse is set. Returns an empty slice for an unknown chain.
	GetChain(ctx context.Context, chainID string, opts record.ChainReadOptions) ([]*record.Record, error)

	// GetHead returns the record with maximal Index in chainID, or (nil, nil)
	// if the chain does not exist.
	GetHead(ctx context.Context, chainID string) (*record.Record, error)

	// Query returns records matching filter, AND-combined.
	Query(ctx context.Context, filter record.QueryFilter) (*record.QueryResult, error)

	// Close releases any resources the backend holds open.
	Close() error
}
