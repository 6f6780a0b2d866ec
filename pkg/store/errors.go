// Copyright 2025 Certen Protocol
//
// Package store provides sentinel errors for record store operations.

package store

import "errors"

var (
	// ErrDuplicateHash is returned by Put when the record's hash already exists.
	ErrDuplicateHash = errors.New("store: duplicate hash")

	// ErrDuplicateChainIndex is returned by Put when (chainId, index) collides.
	ErrDuplicateChainIndex = errors.New("store: duplicate chain index")

	// ErrUnavailable is a transient error: the caller may retry.
	ErrUnavailable = errors.New("store: unavailable")
)
