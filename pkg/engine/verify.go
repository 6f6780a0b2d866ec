// Copyright 2025 Certen Protocol
//
// Verify algorithm (§4.D). Recomputes each record's hash, checks the
// prevHash chain, checks index/offset, and checks non-decreasing
// createdAt. Verification is observational: the engine never repairs.

package engine

import (
	"context"

	"github.com/certen/ledger-engine/pkg/metrics"
	"github.com/certen/ledger-engine/pkg/record"
)

// VerifyOptions windows a verification pass over a chain.
type VerifyOptions struct {
	StartIndex uint64
	Limit      int
}

// VerifyChain checks invariants 1-5 of §8 for the window [StartIndex,
// StartIndex+Limit) of chainID (or the whole chain if Limit <= 0).
func (e *Engine) VerifyChain(ctx context.Context, chainID string, opts VerifyOptions) (*record.VerificationResult, error) {
	records, err := e.store.GetChain(ctx, chainID, record.ChainReadOptions{
		Offset: int(opts.StartIndex),
		Limit:  opts.Limit,
	})
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	if len(records) == 0 {
		return &record.VerificationResult{Valid: true}, nil
	}

	var prev *record.Record
	if opts.StartIndex > 0 {
		priorWindow, err := e.store.GetChain(ctx, chainID, record.ChainReadOptions{
			Offset: int(opts.StartIndex) - 1,
			Limit:  1,
		})
		if err != nil {
			return nil, ErrStorageUnavailable
		}
		if len(priorWindow) == 1 {
			prev = priorWindow[0]
		}
	}

	for i, rec := range records {
		wantIndex := opts.StartIndex + uint64(i)
		if rec.Index != wantIndex {
			return invalidAt(rec.Index, "index_mismatch"), nil
		}

		recomputed, err := e.hashFn(rec.HashInput())
		if err != nil {
			return nil, err
		}
		if recomputed != rec.Hash {
			return invalidAt(rec.Index, "hash_mismatch"), nil
		}

		if rec.Index == 0 {
			if rec.PrevHash != nil {
				return invalidAt(rec.Index, "prev_hash_mismatch"), nil
			}
		} else {
			if prev == nil || rec.PrevHash == nil || *rec.PrevHash != prev.Hash {
				return invalidAt(rec.Index, "prev_hash_mismatch"), nil
			}
		}

		if prev != nil && rec.CreatedAt < prev.CreatedAt {
			return invalidAt(rec.Index, "created_at_regression"), nil
		}

		prev = rec
	}

	return &record.VerificationResult{Valid: true}, nil
}

func invalidAt(idx uint64, reason string) *record.VerificationResult {
	metrics.RecordVerifyFailure(reason)
	i := idx
	return &record.VerificationResult{Valid: false, FirstInvalidIdx: &i, Reason: reason}
}
