// Copyright 2025 Certen Protocol

package signer

import (
	"context"
	"testing"
)

func TestEd25519SignVerifyRoundTrip(t *testing.T) {
	s, err := GenerateEd25519Signer()
	if err != nil {
		t.Fatalf("generate signer: %v", err)
	}

	msg := []byte("a record hash")
	sig, err := s.Sign(context.Background(), msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ok, err := s.Verify(context.Background(), msg, sig)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}
}

func TestEd25519VerifyRejectsTamperedMessage(t *testing.T) {
	s, err := GenerateEd25519Signer()
	if err != nil {
		t.Fatalf("generate signer: %v", err)
	}

	sig, err := s.Sign(context.Background(), []byte("original"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ok, err := s.Verify(context.Background(), []byte("tampered"), sig)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail for tampered message")
	}
}

func TestEd25519VerifyRejectsWrongKey(t *testing.T) {
	s1, err := GenerateEd25519Signer()
	if err != nil {
		t.Fatalf("generate signer 1: %v", err)
	}
	s2, err := GenerateEd25519Signer()
	if err != nil {
		t.Fatalf("generate signer 2: %v", err)
	}

	msg := []byte("a record hash")
	sig, err := s1.Sign(context.Background(), msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ok, err := s2.Verify(context.Background(), msg, sig)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail under wrong public key")
	}
}

func TestPublicKeyIsCloned(t *testing.T) {
	s, err := GenerateEd25519Signer()
	if err != nil {
		t.Fatalf("generate signer: %v", err)
	}
	pk := s.PublicKey()
	pk[0] ^= 0xff
	pk2 := s.PublicKey()
	if pk2[0] == pk[0] {
		t.Fatal("expected PublicKey to return an independent copy")
	}
}
