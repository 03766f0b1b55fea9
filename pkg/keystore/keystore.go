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

// Package keystore defines the opaque key store contract: one
// authentication-gated symmetric key per storage name, with platform
// enforced invalidation when the enrolled biometric set changes.
//
// The two cipher acquisition calls are polymorphic over exactly two
// outcomes: a usable cipher handle, or ErrKeyInvalidated. A cipher whose
// key policy requires authentication refuses to operate until the
// authentication gate grants it; this layer never second-guesses that
// binding.
package keystore

import (
	"context"

	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// IVSize is the fixed width of the initialization vector prefixed to
// every ciphertext blob.
const IVSize = 12

// Provider is the opaque key store adapter. All implementations must be
// thread-safe.
type Provider interface {
	// CreateKey creates the key for name with the given policy. Returns
	// ErrKeyExists when a key is already present.
	CreateKey(ctx context.Context, name string, policy *types.KeyPolicy) error

	// EncryptCipher returns an encryption cipher for name, creating the
	// key with policy if absent. Returns ErrKeyInvalidated when the key
	// exists but its authentication prerequisites changed since creation.
	EncryptCipher(ctx context.Context, name string, policy *types.KeyPolicy) (types.Cipher, error)

	// DecryptCipher returns a decryption cipher for name bound to the IV
	// of the blob it will open. It never creates a key: absence of a
	// resolvable key for an existing blob is ErrKeyInvalidated, decided
	// by the caller via HasKey.
	DecryptCipher(ctx context.Context, name string, iv []byte) (types.Cipher, error)

	// HasKey reports whether a key record exists for name.
	HasKey(ctx context.Context, name string) (bool, error)

	// Policy returns the policy the key for name was created with.
	Policy(ctx context.Context, name string) (*types.KeyPolicy, error)

	// DeleteKey removes the key for name. Deleting an absent key
	// succeeds.
	DeleteKey(ctx context.Context, name string) error

	// Close releases resources held by the provider.
	Close() error
}

// EnrollmentSource reports the device's biometric enrollment state. The
// software keystore compares the generation recorded at key creation
// against the current one to model hardware key invalidation; the
// session compares snapshots on platforms where that is the only signal.
type EnrollmentSource interface {
	// Generation returns a counter that changes whenever the enrolled
	// biometric set changes.
	Generation() (uint64, error)

	// Snapshot returns an opaque, byte-comparable representation of the
	// currently enrolled biometric set.
	Snapshot() ([]byte, error)
}
