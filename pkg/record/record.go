// Copyright 2025 Certen Protocol
//
// Record is the atomic unit of the ledger: a content-addressed, hash-linked
// entry belonging to a chain. See commitment.HashCanonical for how Hash is
// computed.

package record

// Record is one committed entry in a chain.
type Record struct {
	Hash      string                 `json:"hash" db:"hash"`
	ChainID   string                 `json:"chainId" db:"chain_id"`
	Index     uint64                 `json:"index" db:"index"`
	PrevHash  *string                `json:"prevHash" db:"prev_hash"`
	CreatedAt int64                  `json:"createdAt" db:"created_at"`
	Module    string                 `json:"module" db:"module"`
	Body      map[string]interface{} `json:"body" db:"body"`
	Context   map[string]interface{} `json:"context,omitempty" db:"context"`

	// Signature is an optional signature over Hash, attached by the engine
	// when it is constructed with a signer. Never part of HashInput: it is
	// a receipt over the hash, not an input to it.
	Signature []byte `json:"signature,omitempty" db:"signature"`
}

// hashInput is the projection of a Record that is fed to the hash function.
// It excludes Hash itself, per §4.B of the engine's hashing rule.
type hashInput struct {
	ChainID   string                 `json:"chainId"`
	Index     uint64                 `json:"index"`
	PrevHash  *string                `json:"prevHash"`
	CreatedAt int64                  `json:"createdAt"`
	Module    string                 `json:"module"`
	Body      map[string]interface{} `json:"body"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// HashInput returns the canonicalization-ready projection of r, excluding
// the Hash field, for use as input to the injected hash function.
func (r *Record) HashInput() interface{} {
	return hashInput{
		ChainID:   r.ChainID,
		Index:     r.Index,
		PrevHash:  r.PrevHash,
		CreatedAt: r.CreatedAt,
		Module:    r.Module,
		Body:      r.Body,
		Context:   r.Context,
	}
}

// Clone returns a deep copy so callers can never alias store-internal state.
// Nested maps and []interface{} slices inside Body and Context are copied;
// other nested reference types are shared.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.PrevHash != nil {
		prev := *r.PrevHash
		out.PrevHash = &prev
	}
	out.Body = cloneMap(r.Body)
	out.Context = cloneMap(r.Context)
	if r.Signature != nil {
		out.Signature = append([]byte(nil), r.Signature...)
	}
	return &out
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		return cloneMap(vv)
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return vv
	}
}

// Input is the caller-supplied payload for Engine.Append.
type Input struct {
	Module  string
	ChainID string
	Body    map[string]interface{}
	Context map[string]interface{}
}

// QueryFilter selects records across chains. Filters combine with AND.
type QueryFilter struct {
	ChainID         string
	Module          string
	CreatedAtFrom   *int64
	CreatedAtTo     *int64
	ProjectionMatch map[string]interface{}
	Limit           int
	Offset          int
}

// QueryResult is the uniform shape returned by Engine.Query and the query surface.
type QueryResult struct {
	Records []*Record
	Total   int
	HasMore bool
}

// ChainReadOptions controls Engine.GetChain / Store.GetChain.
type ChainReadOptions struct {
	Limit   int
	Offset  int
	Reverse bool
}

// VerificationResult is the outcome of Engine.VerifyChain.
type VerificationResult struct {
	Valid           bool
	FirstInvalidIdx *uint64
	Reason          string
}
