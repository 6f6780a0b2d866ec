// Copyright 2025 Certen Protocol
//
// ACL Layer (§4.F): grant/check/revoke of (subject, resource, action)
// tuples. Grants live in an acl.Store, separate from the Record Store
// that holds chain records; they are not hash-linked or chain-ordered but
// plain upsert-by-tuple-key state. The only Store implementation in this
// module is the in-memory MemoryStore, so grants do not survive a process
// restart. Grant and Revoke are serialized per subject so a
// grant and a revoke racing on the same subject never interleave, while
// unrelated subjects proceed concurrently.

package acl

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/certen/ledger-engine/pkg/metrics"
)

// Grant is one (subject, resource, action) permission tuple.
type Grant struct {
	ID          uuid.UUID
	SubjectOID  string
	ResourceOID string
	Action      string
	GrantedBy   string
	GrantedAt   int64
	ExpiresAt   *int64
	Metadata    map[string]interface{}
}

func (g *Grant) expired(now int64) bool {
	return g.ExpiresAt != nil && *g.ExpiresAt <= now
}

func tupleKey(subjectOID, resourceOID, action string) string {
	return subjectOID + "\x00" + resourceOID + "\x00" + action
}

// Store is the persistence contract the ACL manager relies on. An
// in-memory implementation is provided by NewMemoryStore; the SQLite and
// Postgres record stores do not implement this interface.
type Store interface {
	Upsert(ctx context.Context, g *Grant) error
	Delete(ctx context.Context, subjectOID, resourceOID, action string) error
	ListBySubject(ctx context.Context, subjectOID string) ([]*Grant, error)
}

// Clock returns the current time as epoch milliseconds.
type Clock func() int64

// Manager implements grant/check/revoke/listGrants over a Store, with
// per-subject serialization.
type Manager struct {
	store Store
	clock Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager constructs an ACL manager over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		clock: func() int64 { return time.Now().UTC().UnixMilli() },
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithClock overrides the default time.Now()-based clock.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func (m *Manager) lockFor(subjectOID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[subjectOID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[subjectOID] = l
	}
	return l
}

// GrantInput is the caller-supplied payload for Grant.
type GrantInput struct {
	SubjectOID  string
	ResourceOID string
	Action      string
	GrantedBy   string
	ExpiresAt   *int64
	Metadata    map[string]interface{}
}

// Grant upserts a (subject, resource, action) tuple, replacing any
// existing grant for the same tuple.
func (m *Manager) Grant(ctx context.Context, in GrantInput) (*Grant, error) {
	lock := m.lockFor(in.SubjectOID)
	lock.Lock()
	defer lock.Unlock()

	g := &Grant{
		ID:          uuid.New(),
		SubjectOID:  in.SubjectOID,
		ResourceOID: in.ResourceOID,
		Action:      in.Action,
		GrantedBy:   in.GrantedBy,
		GrantedAt:   m.clock(),
		ExpiresAt:   in.ExpiresAt,
		Metadata:    in.Metadata,
	}
	if err := m.store.Upsert(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Check reports whether requesterOID may perform action on resourceOID:
// true if a matching non-expired grant exists, or if requesterOID is the
// resource's own OID (resource-owner rule).
func (m *Manager) Check(ctx context.Context, requesterOID, resourceOID, action string) (allowed bool, err error) {
	defer func() { metrics.RecordACLCheck(allowed) }()

	if requesterOID == resourceOID {
		return true, nil
	}

	grants, err := m.store.ListBySubject(ctx, requesterOID)
	if err != nil {
		return false, err
	}
	now := m.clock()
	for _, g := range grants {
		if g.ResourceOID == resourceOID && g.Action == action && !g.expired(now) {
			return true, nil
		}
	}
	return false, nil
}

// Revoke removes a grant tuple if present. Idempotent.
func (m *Manager) Revoke(ctx context.Context, subjectOID, resourceOID, action string) error {
	lock := m.lockFor(subjectOID)
	lock.Lock()
	defer lock.Unlock()
	return m.store.Delete(ctx, subjectOID, resourceOID, action)
}

// ListGrants returns all non-expired grants held by subjectOID.
func (m *Manager) ListGrants(ctx context.Context, subjectOID string) ([]*Grant, error) {
	grants, err := m.store.ListBySubject(ctx, subjectOID)
	if err != nil {
		return nil, err
	}
	now := m.clock()
	out := make([]*Grant, 0, len(grants))
	for _, g := range grants {
		if !g.expired(now) {
			out = append(out, g)
		}
	}
	return out, nil
}
