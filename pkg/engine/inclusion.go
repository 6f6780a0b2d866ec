// Copyright 2025 Certen Protocol
//
// ProveInclusion is a supplemental read-only capability: a compact Merkle
// proof that a record is present in a chain's current extent, built over
// the chain's ordered record hashes.

package engine

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/certen/ledger-engine/pkg/merkle"
	"github.com/certen/ledger-engine/pkg/record"
)

// ProveInclusion returns a Merkle inclusion proof that the record with hash
// is present in chainID's current extent.
func (e *Engine) ProveInclusion(ctx context.Context, chainID, hash string) (*merkle.InclusionProof, error) {
	records, err := e.store.GetChain(ctx, chainID, record.ChainReadOptions{})
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	if len(records) == 0 {
		return nil, merkle.ErrLeafNotFound
	}

	leaves := make([][]byte, len(records))
	for i, rec := range records {
		h, err := hex.DecodeString(trimHexPrefix(rec.Hash))
		if err != nil || len(h) != 32 {
			// record hashes from a non-default HashFunc may not be
			// 32-byte hex digests; re-derive a leaf hash from the
			// record's own hash string instead.
			leaves[i] = merkle.HashData([]byte(rec.Hash))
			continue
		}
		leaves[i] = h
	}

	tree, err := merkle.BuildTree(leaves)
	if err != nil {
		return nil, fmt.Errorf("engine: build inclusion tree: %w", err)
	}

	var targetIndex = -1
	for i, rec := range records {
		if rec.Hash == hash {
			targetIndex = i
			break
		}
	}
	if targetIndex == -1 {
		return nil, merkle.ErrLeafNotFound
	}

	return tree.GenerateProof(targetIndex)
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
