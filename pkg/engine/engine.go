// Copyright 2025 Certen Protocol
//
// Chain Engine (§4.D) - the core of the repository. Serializes appends per
// chain, computes index/prevHash/hash, dispatches to the module registry
// for validation and normalization, and persists atomically through the
// Record Store.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/certen/ledger-engine/pkg/commitment"
	"github.com/certen/ledger-engine/pkg/logging"
	"github.com/certen/ledger-engine/pkg/metrics"
	"github.com/certen/ledger-engine/pkg/module"
	"github.com/certen/ledger-engine/pkg/record"
	"github.com/certen/ledger-engine/pkg/signer"
	"github.com/certen/ledger-engine/pkg/store"
)

// HashFunc computes the content hash for the canonical projection of a
// record. The engine consumes an injected hash function; see §4.B.
type HashFunc func(v interface{}) (string, error)

// Clock returns the current time as epoch milliseconds. Injected so tests
// can control time without sleeping.
type Clock func() int64

// Engine is the chain engine.
type Engine struct {
	store       store.Store
	registry    *module.Registry
	hashFn      HashFunc
	clock       Clock
	signer      signer.Signer
	serializers *chainSerializers
	headGroup   singleflight.Group
	logger      *log.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithHashFunc overrides the default canonical-JSON SHA-256 hash function.
func WithHashFunc(fn HashFunc) Option {
	return func(e *Engine) { e.hashFn = fn }
}

// WithClock overrides the default time.Now()-based clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithSigner attaches an optional signer; the engine does not require one.
func WithSigner(s signer.Signer) Option {
	return func(e *Engine) { e.signer = s }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New constructs a chain engine over s, dispatching module validation
// through reg.
func New(s store.Store, reg *module.Registry, opts ...Option) *Engine {
	e := &Engine{
		store:       s,
		registry:    reg,
		hashFn:      commitment.HashCanonical,
		clock:       defaultClock,
		serializers: newChainSerializers(),
		logger:      logging.New("Engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Append validates, hashes, and durably commits one record. See §4.D for
// the full algorithm and its concurrency model.
func (e *Engine) Append(ctx context.Context, in record.Input) (rec *record.Record, err error) {
	start := time.Now()
	defer func() { metrics.RecordAppend(in.Module, time.Since(start), err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	rt, err := e.registry.Get(in.Module)
	if err != nil {
		return nil, err
	}

	if err := rt.Validate(ctx, in.Body, in.Context); err != nil {
		return nil, err
	}

	body := in.Body
	if normalizer, ok := rt.(module.Normalizer); ok {
		normalized, err := normalizer.Normalize(ctx, body)
		if err != nil {
			return nil, err
		}
		body = normalized
	}

	lock := e.serializers.lockFor(in.ChainID)
	lock.Lock()
	defer lock.Unlock()
	// Cancellation after this point is advisory per §5: the critical
	// section always completes to avoid a partial write.
	ctx = context.WithoutCancel(ctx)

	head, err := e.store.GetHead(ctx, in.ChainID)
	if err != nil {
		return nil, ErrStorageUnavailable
	}

	var index uint64
	var prevHash *string
	createdAt := e.clock()
	if head != nil {
		index = head.Index + 1
		prevHash = &head.Hash
		if head.CreatedAt > createdAt {
			createdAt = head.CreatedAt
		}
	}

	rec = &record.Record{
		ChainID:   in.ChainID,
		Index:     index,
		PrevHash:  prevHash,
		CreatedAt: createdAt,
		Module:    in.Module,
		Body:      body,
		Context:   in.Context,
	}

	hash, err := e.hashFn(rec.HashInput())
	if err != nil {
		return nil, err
	}
	rec.Hash = hash

	if e.signer != nil {
		sig, signErr := e.signer.Sign(ctx, []byte(rec.Hash))
		if signErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrSigningFailed, signErr)
		}
		rec.Signature = sig
	}

	if err := e.store.Put(ctx, rec); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateHash):
			return nil, ErrDuplicateRecord
		case errors.Is(err, store.ErrDuplicateChainIndex):
			e.logger.Printf("storage consistency violated: chain=%s index=%d", in.ChainID, index)
			return nil, ErrStorageConsistency
		default:
			return nil, ErrStorageUnavailable
		}
	}

	return rec, nil
}

// AppendBatch runs inputs in order, committing each independently. A
// failure at index i surfaces as *BatchError; inputs before i remain
// committed (no multi-input rollback) per §4.D's chosen partial-commit
// resolution.
func (e *Engine) AppendBatch(ctx context.Context, inputs []record.Input) ([]*record.Record, error) {
	committed := make([]*record.Record, 0, len(inputs))
	for i, in := range inputs {
		rec, err := e.Append(ctx, in)
		if err != nil {
			return committed, &BatchError{Index: i, Cause: err}
		}
		committed = append(committed, rec)
	}
	return committed, nil
}

func (e *Engine) GetByHash(ctx context.Context, hash string) (*record.Record, error) {
	return e.store.GetByHash(ctx, hash)
}

func (e *Engine) GetChain(ctx context.Context, chainID string, opts record.ChainReadOptions) ([]*record.Record, error) {
	return e.store.GetChain(ctx, chainID, opts)
}

// GetHead returns the current head of chainID. Concurrent callers asking
// for the same chain's head collapse onto a single store read via
// headGroup, since an Append racing with these reads already holds the
// chain's serializer lock and will not observe a torn value either way.
func (e *Engine) GetHead(ctx context.Context, chainID string) (*record.Record, error) {
	v, err, _ := e.headGroup.Do(chainID, func() (interface{}, error) {
		return e.store.GetHead(ctx, chainID)
	})
	if err != nil {
		return nil, err
	}
	rec, _ := v.(*record.Record)
	return rec, nil
}

func (e *Engine) Query(ctx context.Context, filter record.QueryFilter) (*record.QueryResult, error) {
	return e.store.Query(ctx, filter)
}
