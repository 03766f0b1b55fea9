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

package software

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jeremyhahn/go-biometric-storage/pkg/keystore"
	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
)

// enrollmentStateKey persists the enrollment state across process
// restarts when a storage backend is attached.
const enrollmentStateKey = storage.StatePrefix + "enrollment"

// enrollmentState is the persisted enrollment representation.
type enrollmentState struct {
	Generation uint64   `json:"generation"`
	IDs        []string `json:"ids"`
}

// Enrollment is a keystore.EnrollmentSource tracking a set of enrolled
// biometric identifiers. Enrolling or removing an identifier bumps the
// generation, which invalidates keys created under the previous set.
//
// With a storage backend attached the state survives restarts, which is
// what makes silent between-session enrollment changes detectable at
// all. Without one it is purely in-memory, which tests use.
type Enrollment struct {
	mu    sync.Mutex
	store storage.Backend
	state enrollmentState
}

// Compile-time interface check.
var _ keystore.EnrollmentSource = (*Enrollment)(nil)

// NewEnrollment creates an in-memory enrollment source with the given
// initially enrolled identifiers.
func NewEnrollment(ids ...string) *Enrollment {
	e := &Enrollment{}
	e.state.IDs = append(e.state.IDs, ids...)
	sort.Strings(e.state.IDs)
	return e
}

// NewPersistentEnrollment creates an enrollment source backed by store,
// loading any previously persisted state.
func NewPersistentEnrollment(store storage.Backend, ids ...string) (*Enrollment, error) {
	e := NewEnrollment(ids...)
	e.store = store

	encoded, err := store.Get(enrollmentStateKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			if err := e.saveLocked(); err != nil {
				return nil, err
			}
			return e, nil
		}
		return nil, fmt.Errorf("enrollment: failed to load state: %w", err)
	}
	if err := json.Unmarshal(encoded, &e.state); err != nil {
		return nil, fmt.Errorf("enrollment: corrupt state: %w", err)
	}
	return e, nil
}

// Enroll adds an identifier to the enrolled set, bumping the generation.
// Enrolling an already-present identifier is a no-op.
func (e *Enrollment) Enroll(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.state.IDs {
		if existing == id {
			return nil
		}
	}
	e.state.IDs = append(e.state.IDs, id)
	sort.Strings(e.state.IDs)
	e.state.Generation++
	return e.saveLocked()
}

// Remove deletes an identifier from the enrolled set, bumping the
// generation. Removing an absent identifier is a no-op.
func (e *Enrollment) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, existing := range e.state.IDs {
		if existing == id {
			e.state.IDs = append(e.state.IDs[:i], e.state.IDs[i+1:]...)
			e.state.Generation++
			return e.saveLocked()
		}
	}
	return nil
}

// Enrolled returns the currently enrolled identifiers.
func (e *Enrollment) Enrolled() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.state.IDs))
	copy(out, e.state.IDs)
	return out
}

// Generation returns the current enrollment generation.
func (e *Enrollment) Generation() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Generation, nil
}

// Snapshot returns a digest over the sorted enrolled identifiers. Two
// snapshots are byte-equal exactly when the enrolled sets are equal.
func (e *Enrollment) Snapshot() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := sha256.New()
	for _, id := range e.state.IDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return h.Sum(nil), nil
}

// saveLocked persists the state when a backend is attached. Caller holds
// e.mu.
func (e *Enrollment) saveLocked() error {
	if e.store == nil {
		return nil
	}
	encoded, err := json.Marshal(&e.state)
	if err != nil {
		return fmt.Errorf("enrollment: failed to encode state: %w", err)
	}
	if err := e.store.Put(enrollmentStateKey, encoded, nil); err != nil {
		return fmt.Errorf("enrollment: failed to persist state: %w", err)
	}
	return nil
}
