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

// Package fingerprint persists an opaque snapshot of the enrolled
// biometric set. On platforms whose key store does not invalidate keys
// when enrollment changes, comparing the snapshot captured at the last
// authenticated write against the current one is the only way to detect
// a silent enrollment change between sessions.
package fingerprint

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
)

// SnapshotKey is the fixed, process-global storage key holding the single
// snapshot. The snapshot is deliberately not per-name: enrollment state
// is a device property, not a secret property.
const SnapshotKey = storage.StatePrefix + "fingerprint-snapshot"

// Cache stores and compares enrollment snapshots.
type Cache struct {
	store storage.Backend
}

// NewCache creates a cache over the given storage backend.
func NewCache(store storage.Backend) *Cache {
	return &Cache{store: store}
}

// Save persists snapshot, overwriting any previous one.
func (c *Cache) Save(snapshot []byte) error {
	if len(snapshot) == 0 {
		return fmt.Errorf("fingerprint: empty snapshot")
	}
	if err := c.store.Put(SnapshotKey, snapshot, nil); err != nil {
		return fmt.Errorf("fingerprint: failed to save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or (nil, nil) when none was saved.
func (c *Cache) Load() ([]byte, error) {
	snapshot, err := c.store.Get(SnapshotKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fingerprint: failed to load snapshot: %w", err)
	}
	return snapshot, nil
}

// Clear removes the stored snapshot. Clearing an absent snapshot is not
// an error.
func (c *Cache) Clear() error {
	if err := c.store.Delete(SnapshotKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("fingerprint: failed to clear snapshot: %w", err)
	}
	return nil
}

// Unchanged compares the current snapshot against the stored one.
//
// When no snapshot is stored the answer depends on who owns invalidation:
// if the hardware key store is authoritative, absence means "cannot
// verify, assume unchanged"; when this cache is the only signal, absence
// means "assume changed".
func (c *Cache) Unchanged(current []byte, hardwareAuthoritative bool) (bool, error) {
	stored, err := c.Load()
	if err != nil {
		return false, err
	}
	if stored == nil {
		return hardwareAuthoritative, nil
	}
	return bytes.Equal(stored, current), nil
}
