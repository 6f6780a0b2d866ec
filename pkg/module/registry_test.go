package module

import (
	"context"
	"errors"
	"testing"
)

type stubRuntime struct {
	rejectDetail string
}

func (s *stubRuntime) Validate(_ context.Context, body, _ map[string]interface{}) error {
	if s.rejectDetail != "" {
		return &ValidationError{Module: "oid", Detail: s.rejectDetail}
	}
	if _, ok := body["name"]; !ok {
		return &ValidationError{Module: "oid", Detail: "missing name"}
	}
	return nil
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("oid", &stubRuntime{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	rt, err := reg.Get("oid")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := rt.Validate(context.Background(), map[string]interface{}{"name": "alice"}, nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("oid", &stubRuntime{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := reg.Register("oid", &stubRuntime{})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestGetUnknownModule(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("unknown")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
}
