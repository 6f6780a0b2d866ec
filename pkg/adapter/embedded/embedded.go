// Copyright 2025 Certen Protocol
//
// Embedded External Adapter (§4.G): the WASM-hosted facade. Build-tagged
// to js/wasm since it is only ever linked into that target. Any non-"none"
// storage configuration is degraded to the in-memory backend with a
// logged warning, since sqlite/postgres drivers have no WASM transport in
// this stack (see DESIGN.md).

//go:build js && wasm

package embedded

import (
	"context"

	"github.com/certen/ledger-engine/pkg/acl"
	"github.com/certen/ledger-engine/pkg/config"
	"github.com/certen/ledger-engine/pkg/engine"
	"github.com/certen/ledger-engine/pkg/logging"
	"github.com/certen/ledger-engine/pkg/merkle"
	"github.com/certen/ledger-engine/pkg/module"
	"github.com/certen/ledger-engine/pkg/query"
	"github.com/certen/ledger-engine/pkg/record"
	"github.com/certen/ledger-engine/pkg/store/memory"
)

// Adapter is the embedded host's entry point. Always backed by the
// in-memory store; the host is responsible for persisting snapshots
// across page reloads if it needs durability.
type Adapter struct {
	Engine *engine.Engine
	ACL    *acl.Manager
}

// Open constructs an Adapter, ignoring cfg.Storage when it names a
// backend this target cannot reach and falling back to memory.
func Open(cfg *config.Config, reg *module.Registry) *Adapter {
	logger := logging.New("Adapter/Embedded")
	if cfg != nil && cfg.Storage.Kind != config.StorageNone && cfg.Storage.Kind != "" {
		logger.Printf("storage kind %q is unavailable in the embedded target, falling back to in-memory", cfg.Storage.Kind)
	}

	eng := engine.New(memory.New(), reg, engine.WithLogger(logger))
	return &Adapter{
		Engine: eng,
		ACL:    acl.NewManager(acl.NewMemoryStore()),
	}
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

// ProveInclusion delegates to the engine.
func (a *Adapter) ProveInclusion(ctx context.Context, chainID, hash string) (*merkle.InclusionProof, error) {
	return a.Engine.ProveInclusion(ctx, chainID, hash)
}
