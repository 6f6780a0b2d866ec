// Copyright 2025 Certen Protocol
//
// Identity module ("oid"): the reference module for OID-scoped identity
// records, the worked example the chain engine's own test matrix is built
// around. Bodies require a non-empty "name" string; everything else is
// caller-defined and passed through untouched.

package oid

import (
	"context"
	"strings"

	"github.com/certen/ledger-engine/pkg/module"
)

// Runtime validates and normalizes identity-record bodies.
type Runtime struct{}

// Validate requires a non-empty "name" string field.
func (Runtime) Validate(ctx context.Context, body, recordContext map[string]interface{}) error {
	name, ok := body["name"]
	if !ok {
		return &module.ValidationError{Module: "oid", Detail: "body.name is required"}
	}
	s, ok := name.(string)
	if !ok {
		return &module.ValidationError{Module: "oid", Detail: "body.name must be a string"}
	}
	if strings.TrimSpace(s) == "" {
		return &module.ValidationError{Module: "oid", Detail: "body.name must not be empty"}
	}
	return nil
}

// Normalize trims surrounding whitespace from the name field.
func (Runtime) Normalize(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(body))
	for k, v := range body {
		out[k] = v
	}
	if name, ok := out["name"].(string); ok {
		out["name"] = strings.TrimSpace(name)
	}
	return out, nil
}

// Projections advertises "name" as a query-filterable field.
func (Runtime) Projections() []string {
	return []string{"name"}
}
