// Copyright 2025 Certen Protocol

package query

import (
	"testing"

	"github.com/certen/ledger-engine/pkg/record"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"chainId":   "chain_id",
		"createdAt": "created_at",
		"hash":      "hash",
		"HasMore":   "has_more",
	}
	for in, want := range cases {
		if got := ToSnakeCase(in); got != want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToCamelCase(t *testing.T) {
	cases := map[string]string{
		"chain_id":   "chainId",
		"created_at": "createdAt",
		"hash":       "hash",
	}
	for in, want := range cases {
		if got := ToCamelCase(in); got != want {
			t.Errorf("ToCamelCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoundTripCasing(t *testing.T) {
	for _, s := range []string{"chainId", "createdAt", "prevHash"} {
		if got := ToCamelCase(ToSnakeCase(s)); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestFromQueryResultHandlesNil(t *testing.T) {
	r := FromQueryResult(nil)
	if r.Records == nil || len(r.Records) != 0 {
		t.Errorf("expected an empty, non-nil Records slice, got %v", r.Records)
	}
}

func TestToWireMapUsesSnakeCaseKeys(t *testing.T) {
	prev := "abc"
	rec := &record.Record{Hash: "h", ChainID: "c", Index: 2, PrevHash: &prev, CreatedAt: 100, Module: "note", Body: map[string]interface{}{"n": 1}}
	wire := ToWireMap(rec)
	for _, key := range []string{"hash", "chain_id", "index", "prev_hash", "created_at", "module", "body"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("expected wire map to contain key %q", key)
		}
	}
	if _, ok := wire["signature"]; ok {
		t.Error("expected no signature key when Signature is unset")
	}
}

func TestToWireMapIncludesSignatureWhenPresent(t *testing.T) {
	rec := &record.Record{Hash: "h", ChainID: "c", Module: "note", Body: map[string]interface{}{}, Signature: []byte{1, 2, 3}}
	wire := ToWireMap(rec)
	if _, ok := wire["signature"]; !ok {
		t.Error("expected wire map to contain key \"signature\"")
	}
}

func TestFromChain(t *testing.T) {
	records := []*record.Record{
		{Hash: "h0", ChainID: "c1", Index: 0},
		{Hash: "h1", ChainID: "c1", Index: 1},
	}
	r := FromChain(records)
	if r.Total != 2 || r.HasMore {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestFilterFromWireMapsKnownKeys(t *testing.T) {
	f := FilterFromWire(map[string]interface{}{
		"chain_id": "c1",
		"module":   "note",
		"limit":    float64(10),
		"offset":   float64(5),
	})
	if f.ChainID != "c1" || f.Module != "note" || f.Limit != 10 || f.Offset != 5 {
		t.Errorf("unexpected filter: %+v", f)
	}
}

func TestFilterFromWireConvertsProjectionKeysToCamelCase(t *testing.T) {
	f := FilterFromWire(map[string]interface{}{"display_name": "alice"})
	if f.ProjectionMatch["displayName"] != "alice" {
		t.Errorf("expected projection match on displayName, got %+v", f.ProjectionMatch)
	}
}
