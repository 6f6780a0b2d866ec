package commitment

import "testing"

func TestCanonicalizeJSONSortsKeys(t *testing.T) {
	in := []byte(`{"b":1,"a":2,"c":{"z":1,"y":2}}`)
	out, err := CanonicalizeJSON(in)
	if err != nil {
		t.Fatalf("CanonicalizeJSON: %v", err)
	}
	want := `{"a":2,"b":1,"c":{"y":2,"z":1}}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestCanonicalizeJSONPreservesArrayOrder(t *testing.T) {
	in := []byte(`{"list":[3,1,2]}`)
	out, err := CanonicalizeJSON(in)
	if err != nil {
		t.Fatalf("CanonicalizeJSON: %v", err)
	}
	if string(out) != `{"list":[3,1,2]}` {
		t.Fatalf("array order was not preserved: %s", out)
	}
}

func TestHashCanonicalIsDeterministic(t *testing.T) {
	a := map[string]interface{}{"b": 1, "a": 2}
	b := map[string]interface{}{"a": 2, "b": 1}

	ha, err := HashCanonical(a)
	if err != nil {
		t.Fatalf("HashCanonical(a): %v", err)
	}
	hb, err := HashCanonical(b)
	if err != nil {
		t.Fatalf("HashCanonical(b): %v", err)
	}
	if ha != hb {
		t.Fatalf("hashes of logically equal maps differ: %s vs %s", ha, hb)
	}
}

func TestHashCanonicalDiffersOnContentChange(t *testing.T) {
	a := map[string]interface{}{"x": 1}
	b := map[string]interface{}{"x": 2}

	ha, _ := HashCanonical(a)
	hb, _ := HashCanonical(b)
	if ha == hb {
		t.Fatalf("expected different hashes for different content")
	}
}
