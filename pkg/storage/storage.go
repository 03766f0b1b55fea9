// Copyright (c) 2026 Jeremy Hahn
// Copyright (c) 2026 Automate The Things, LLC
//
// This file is part of go-biometric-storage.
//
// go-biometric-storage is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package storage provides the opaque key-value store used beneath the
// biometric storage subsystem. Ciphertext blobs, key records, and the
// fingerprint snapshot all persist through this one interface; the core
// treats it as a blob store with documented operations and nothing more.
package storage

import "io/fs"

// Backend is the durable key-value store contract. All implementations
// must be thread-safe, and Put must be all-or-nothing: a reader never
// observes a partially written value, even across a crash.
type Backend interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Put stores value under key as a single atomic overwrite.
	Put(key string, value []byte, opts *Options) error

	// Delete removes key. Returns ErrNotFound if it does not exist.
	Delete(key string) error

	// List returns all keys with the given prefix, sorted. An empty
	// prefix returns every key.
	List(prefix string) ([]string, error)

	// Exists reports whether key is present.
	Exists(key string) (bool, error)

	// Close releases resources held by the backend.
	Close() error
}

// Options carries optional per-operation parameters.
type Options struct {
	// Permissions sets file permissions for file-based backends.
	Permissions fs.FileMode
}

// DefaultOptions returns the options used when the caller passes nil:
// owner read/write only.
func DefaultOptions() *Options {
	return &Options{Permissions: 0600}
}

// Well-known key prefixes. Every component addresses the store through
// these so that one Backend instance can serve all of them.
const (
	// BlobPrefix namespaces ciphertext blobs, one per storage name.
	BlobPrefix = "blobs/"

	// KeyPrefix namespaces key records owned by the software keystore.
	KeyPrefix = "keys/"

	// StatePrefix namespaces subsystem state such as the fingerprint
	// snapshot and the enrollment generation counter.
	StatePrefix = "state/"
)

// BlobKey returns the storage key of the ciphertext blob for name.
func BlobKey(name string) string { return BlobPrefix + name }

// KeyRecordKey returns the storage key of the key record for name.
func KeyRecordKey(name string) string { return KeyPrefix + name }
