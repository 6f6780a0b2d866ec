// Copyright 2025 Certen Protocol

package acl

import (
	"context"
	"testing"
)

func TestGrantCheckRevokeRoundTrip(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(NewMemoryStore())

	allowed, err := mgr.Check(ctx, "alice", "resource-1", "read")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if allowed {
		t.Fatal("expected no grant before Grant is called")
	}

	if _, err := mgr.Grant(ctx, GrantInput{SubjectOID: "alice", ResourceOID: "resource-1", Action: "read", GrantedBy: "admin"}); err != nil {
		t.Fatalf("grant: %v", err)
	}

	allowed, err = mgr.Check(ctx, "alice", "resource-1", "read")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !allowed {
		t.Fatal("expected grant to permit the action")
	}

	if err := mgr.Revoke(ctx, "alice", "resource-1", "read"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	allowed, err = mgr.Check(ctx, "alice", "resource-1", "read")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if allowed {
		t.Fatal("expected revoke to remove the grant")
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	mgr := NewManager(NewMemoryStore())
	if err := mgr.Revoke(context.Background(), "alice", "resource-1", "read"); err != nil {
		t.Fatalf("revoke on absent grant should not error: %v", err)
	}
}

func TestGrantUpsertReplacesExistingTuple(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(NewMemoryStore())

	first, err := mgr.Grant(ctx, GrantInput{SubjectOID: "alice", ResourceOID: "resource-1", Action: "read", GrantedBy: "admin"})
	if err != nil {
		t.Fatalf("grant 1: %v", err)
	}
	second, err := mgr.Grant(ctx, GrantInput{SubjectOID: "alice", ResourceOID: "resource-1", Action: "read", GrantedBy: "admin2"})
	if err != nil {
		t.Fatalf("grant 2: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected a new grant row on upsert")
	}

	grants, err := mgr.ListGrants(ctx, "alice")
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("expected exactly one grant after upsert, got %d", len(grants))
	}
	if grants[0].GrantedBy != "admin2" {
		t.Errorf("expected the latest grant to win, got grantedBy=%q", grants[0].GrantedBy)
	}
}

func TestResourceOwnerAlwaysPermitted(t *testing.T) {
	mgr := NewManager(NewMemoryStore())
	allowed, err := mgr.Check(context.Background(), "resource-1", "resource-1", "anything")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !allowed {
		t.Fatal("expected the resource owner to always be permitted")
	}
}

func TestExpiredGrantIsNotHonored(t *testing.T) {
	ctx := context.Background()
	now := int64(1000)
	mgr := NewManager(NewMemoryStore(), WithClock(func() int64 { return now }))

	expiry := int64(1500)
	if _, err := mgr.Grant(ctx, GrantInput{SubjectOID: "alice", ResourceOID: "resource-1", Action: "read", GrantedBy: "admin", ExpiresAt: &expiry}); err != nil {
		t.Fatalf("grant: %v", err)
	}

	allowed, err := mgr.Check(ctx, "alice", "resource-1", "read")
	if err != nil {
		t.Fatalf("check before expiry: %v", err)
	}
	if !allowed {
		t.Fatal("expected grant to be active before expiry")
	}

	now = 1600
	allowed, err = mgr.Check(ctx, "alice", "resource-1", "read")
	if err != nil {
		t.Fatalf("check after expiry: %v", err)
	}
	if allowed {
		t.Fatal("expected grant to be expired")
	}

	grants, err := mgr.ListGrants(ctx, "alice")
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 0 {
		t.Errorf("expected ListGrants to filter expired grants, got %d", len(grants))
	}
}
