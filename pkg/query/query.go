// Copyright 2025 Certen Protocol
//
// Query Surface (§4.E): a stateless adaptor between the engine's Go
// shapes and the interop wire shape external adapters hand across their
// boundary. The engine's own types already use the wire's camelCase
// field names; this package exists for the boundary that still needs
// snake_case (some native-adapter hosts, and any SQL-facing caller that
// expects column-style keys).

package query

import (
	"strings"
	"unicode"

	"github.com/certen/ledger-engine/pkg/record"
)

// Result is the uniform shape the interop surface returns for any read:
// by-hash, by-chain, by-head, or filtered query all project onto this.
type Result struct {
	Records []*record.Record `json:"records"`
	Total   int              `json:"total"`
	HasMore bool             `json:"hasMore"`
}

// FromQueryResult adapts an engine query result to the wire Result shape.
func FromQueryResult(qr *record.QueryResult) *Result {
	if qr == nil {
		return &Result{Records: []*record.Record{}}
	}
	return &Result{Records: qr.Records, Total: qr.Total, HasMore: qr.HasMore}
}

// FromChain adapts a plain chain read (no total/hasMore semantics) to the
// wire Result shape.
func FromChain(records []*record.Record) *Result {
	return &Result{Records: records, Total: len(records), HasMore: false}
}

// ToSnakeCase converts a camelCase or PascalCase identifier to snake_case,
// for adapters whose host language favors snake_case field names.
func ToSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToCamelCase converts a snake_case identifier to camelCase, for decoding
// requests from adapters whose host language favors snake_case.
func ToCamelCase(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// FilterFromWire builds a record.QueryFilter from a wire-shaped, snake_case
// -keyed filter map. chain_id, module, limit, and offset map to their
// QueryFilter counterparts; any other key is treated as a body projection
// match and converted from snake_case to the camelCase field name the
// module's Normalize step would have produced.
func FilterFromWire(wire map[string]interface{}) record.QueryFilter {
	f := record.QueryFilter{}
	var projection map[string]interface{}
	for k, v := range wire {
		switch k {
		case "chain_id":
			f.ChainID, _ = v.(string)
		case "module":
			f.Module, _ = v.(string)
		case "limit":
			f.Limit = toInt(v)
		case "offset":
			f.Offset = toInt(v)
		default:
			if projection == nil {
				projection = make(map[string]interface{})
			}
			projection[ToCamelCase(k)] = v
		}
	}
	f.ProjectionMatch = projection
	return f
}

// toInt coerces the numeric types a decoded JSON map can hold (float64 from
// encoding/json, or int/int64 from a caller building the map by hand) into
// an int, defaulting to zero for anything else.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// ToWireMap renders a record as a snake_case-keyed map, converting each
// field's camelCase JSON name via ToSnakeCase. body/context are left as-is
// one level deep since their shape is module-defined, not part of the wire
// contract.
func ToWireMap(r *record.Record) map[string]interface{} {
	if r == nil {
		return nil
	}
	fields := map[string]interface{}{
		"hash":      r.Hash,
		"chainId":   r.ChainID,
		"index":     r.Index,
		"prevHash":  r.PrevHash,
		"createdAt": r.CreatedAt,
		"module":    r.Module,
		"body":      r.Body,
	}
	if r.Signature != nil {
		fields["signature"] = r.Signature
	}
	if r.Context != nil {
		fields["context"] = r.Context
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[ToSnakeCase(k)] = v
	}
	return out
}
