// Copyright 2025 Certen Protocol
//
// Signer optionally attests to a record's hash once the chain engine has
// committed it. The engine does not require one; it is attached through
// engine.WithSigner when a deployment wants signed receipts.

package signer

import (
	"context"
	"crypto/ed25519"
	"errors"
)

// ErrVerificationFailed is returned by Verify when the signature does not
// match the message under the given public key.
var ErrVerificationFailed = errors.New("signer: verification failed")

// Signer signs and verifies record hashes. Implementations must be
// safe for concurrent use.
type Signer interface {
	// Sign returns a signature over message (typically a record's Hash).
	Sign(ctx context.Context, message []byte) ([]byte, error)

	// Verify reports whether signature is a valid signature of message
	// under this signer's public key.
	Verify(ctx context.Context, message, signature []byte) (bool, error)

	// PublicKey returns the signer's public key.
	PublicKey() []byte
}

// Ed25519Signer is a Signer backed by a single Ed25519 keypair.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEd25519Signer wraps an existing Ed25519 private key.
func NewEd25519Signer(priv ed25519.PrivateKey) *Ed25519Signer {
	return &Ed25519Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey)}
}

// GenerateEd25519Signer creates a new random Ed25519 keypair.
func GenerateEd25519Signer() (*Ed25519Signer, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return &Ed25519Signer{priv: priv, pub: pub}, nil
}

func (s *Ed25519Signer) Sign(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ed25519.Sign(s.priv, message), nil
}

func (s *Ed25519Signer) Verify(ctx context.Context, message, signature []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if ed25519.Verify(s.pub, message, signature) {
		return true, nil
	}
	return false, nil
}

func (s *Ed25519Signer) PublicKey() []byte {
	out := make([]byte, len(s.pub))
	copy(out, s.pub)
	return out
}

var _ Signer = (*Ed25519Signer)(nil)
