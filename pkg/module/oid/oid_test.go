// Copyright 2025 Certen Protocol

package oid

import (
	"context"
	"testing"

	"github.com/certen/ledger-engine/pkg/module"
)

func TestValidateRequiresName(t *testing.T) {
	var rt Runtime
	err := rt.Validate(context.Background(), map[string]interface{}{}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing name")
	}
	if _, ok := err.(*module.ValidationError); !ok {
		t.Errorf("expected *module.ValidationError, got %T", err)
	}
}

func TestValidateRejectsBlankName(t *testing.T) {
	var rt Runtime
	err := rt.Validate(context.Background(), map[string]interface{}{"name": "   "}, nil)
	if err == nil {
		t.Fatal("expected an error for a blank name")
	}
}

func TestValidateAcceptsName(t *testing.T) {
	var rt Runtime
	err := rt.Validate(context.Background(), map[string]interface{}{"name": "alice"}, nil)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestNormalizeTrimsName(t *testing.T) {
	var rt Runtime
	out, err := rt.Normalize(context.Background(), map[string]interface{}{"name": "  alice  "})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out["name"] != "alice" {
		t.Errorf("name: got %q, want %q", out["name"], "alice")
	}
}

func TestProjectionsAdvertisesName(t *testing.T) {
	var rt Runtime
	projections := rt.Projections()
	if len(projections) != 1 || projections[0] != "name" {
		t.Errorf("projections: got %v, want [name]", projections)
	}
}
