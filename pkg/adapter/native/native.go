// Copyright 2025 Certen Protocol
//
// Native External Adapter (§4.G): the synchronous facade a host process
// embeds directly, wiring config.Config's storage variant to the matching
// store backend and constructing an engine.Engine over it.

package native

import (
	"context"
	"fmt"

	"github.com/certen/ledger-engine/pkg/acl"
	"github.com/certen/ledger-engine/pkg/config"
	"github.com/certen/ledger-engine/pkg/engine"
	"github.com/certen/ledger-engine/pkg/logging"
	"github.com/certen/ledger-engine/pkg/merkle"
	"github.com/certen/ledger-engine/pkg/module"
	"github.com/certen/ledger-engine/pkg/query"
	"github.com/certen/ledger-engine/pkg/record"
	"github.com/certen/ledger-engine/pkg/signer"
	"github.com/certen/ledger-engine/pkg/store"
	"github.com/certen/ledger-engine/pkg/store/memory"
	"github.com/certen/ledger-engine/pkg/store/postgres"
	"github.com/certen/ledger-engine/pkg/store/sqlite"
)

// Adapter is the native host's entry point: one engine over one store,
// plus an ACL manager sharing the engine's clock convention.
type Adapter struct {
	Engine *engine.Engine
	ACL    *acl.Manager

	store store.Store
}

// Open constructs the store named by cfg.Storage.Kind and wires an Engine
// and ACL manager over it. Call Close when done.
func Open(cfg *config.Config, reg *module.Registry, opts ...Option) (*Adapter, error) {
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	engineOpts := []engine.Option{engine.WithLogger(logging.New("Adapter/Native"))}
	if o.signer != nil {
		engineOpts = append(engineOpts, engine.WithSigner(o.signer))
	}

	aclStore := o.aclStore
	if aclStore == nil {
		aclStore = acl.NewMemoryStore()
	}

	return &Adapter{
		Engine: engine.New(s, reg, engineOpts...),
		ACL:    acl.NewManager(aclStore),
		store:  s,
	}, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Kind {
	case config.StorageNone, "":
		return memory.New(), nil
	case config.StorageSQLite:
		sc := sqlite.DefaultConfig()
		sc.Path = cfg.Storage.Path
		return sqlite.New(sc)
	case config.StoragePostgres:
		return postgres.New(postgres.DefaultConfig(cfg.Storage.ConnectionString))
	default:
		return nil, fmt.Errorf("adapter/native: unknown storage kind %q", cfg.Storage.Kind)
	}
}

// Option configures an Adapter at construction.
type Option func(*options)

type options struct {
	signer   signer.Signer
	aclStore acl.Store
}

// WithSigner attaches a signer to the underlying engine.
func WithSigner(s signer.Signer) Option {
	return func(o *options) { o.signer = s }
}

// WithACLStore overrides the default in-memory ACL store, e.g. with a
// SQL-backed implementation shared with the record store's connection.
func WithACLStore(s acl.Store) Option {
	return func(o *options) { o.aclStore = s }
}

// Close releases the underlying store's resources.
func (a *Adapter) Close() error {
	return a.store.Close()
}

// Query runs filter through the engine and adapts the result to the wire
// Result shape (§4.E).
func (a *Adapter) Query(ctx context.Context, filter record.QueryFilter) (*query.Result, error) {
	qr, err := a.Engine.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	return query.FromQueryResult(qr), nil
}

// GetChain returns chainID's records adapted to the wire Result shape.
func (a *Adapter) GetChain(ctx context.Context, chainID string, opts record.ChainReadOptions) (*query.Result, error) {
	records, err := a.Engine.GetChain(ctx, chainID, opts)
	if err != nil {
		return nil, err
	}
	return query.FromChain(records), nil
}

// QueryWire accepts a snake_case-keyed filter, as sent by hosts whose
// language favors that convention, and returns matching records rendered
// as snake_case-keyed maps rather than the engine's camelCase JSON shape.
func (a *Adapter) QueryWire(ctx context.Context, wireFilter map[string]interface{}) ([]map[string]interface{}, error) {
	qr, err := a.Engine.Query(ctx, query.FilterFromWire(wireFilter))
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, len(qr.Records))
	for i, rec := range qr.Records {
		out[i] = query.ToWireMap(rec)
	}
	return out, nil
}

// ProveInclusion delegates to the engine and is re-exported here so a
// native host never needs to import pkg/merkle directly.
func (a *Adapter) ProveInclusion(ctx context.Context, chainID, hash string) (*merkle.InclusionProof, error) {
	return a.Engine.ProveInclusion(ctx, chainID, hash)
}
