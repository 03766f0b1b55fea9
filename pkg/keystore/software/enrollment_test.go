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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-biometric-storage/pkg/storage/memory"
)

func TestGenerationBumps(t *testing.T) {
	enrollment := NewEnrollment("finger-1")

	gen, err := enrollment.Generation()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), gen)

	require.NoError(t, enrollment.Enroll("finger-2"))
	gen, err = enrollment.Generation()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	// Enrolling an existing identifier is a no-op.
	require.NoError(t, enrollment.Enroll("finger-2"))
	gen, err = enrollment.Generation()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	require.NoError(t, enrollment.Remove("finger-1"))
	gen, err = enrollment.Generation()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), gen)

	// Removing an absent identifier is a no-op.
	require.NoError(t, enrollment.Remove("never-enrolled"))
	gen, err = enrollment.Generation()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), gen)
}

func TestSnapshotReflectsEnrolledSet(t *testing.T) {
	a := NewEnrollment("finger-1", "finger-2")
	b := NewEnrollment("finger-2", "finger-1")

	snapA, err := a.Snapshot()
	require.NoError(t, err)
	snapB, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snapA, snapB, "snapshot must not depend on enrollment order")

	require.NoError(t, b.Enroll("finger-3"))
	snapB, err = b.Snapshot()
	require.NoError(t, err)
	assert.NotEqual(t, snapA, snapB, "snapshot must change with the enrolled set")

	// Restoring the original set restores the snapshot, even though the
	// generation moved on.
	require.NoError(t, b.Remove("finger-3"))
	snapB, err = b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snapA, snapB)
}

func TestSnapshotSeparatorAmbiguity(t *testing.T) {
	a := NewEnrollment("ab", "c")
	b := NewEnrollment("a", "bc")

	snapA, err := a.Snapshot()
	require.NoError(t, err)
	snapB, err := b.Snapshot()
	require.NoError(t, err)
	assert.NotEqual(t, snapA, snapB, "identifier boundaries must be unambiguous")
}

func TestPersistentEnrollment(t *testing.T) {
	store := memory.New()
	defer store.Close()

	enrollment, err := NewPersistentEnrollment(store, "finger-1")
	require.NoError(t, err)
	require.NoError(t, enrollment.Enroll("finger-2"))

	// A new source over the same backend sees the persisted state, not
	// the constructor arguments.
	reloaded, err := NewPersistentEnrollment(store)
	require.NoError(t, err)

	gen, err := reloaded.Generation()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, []string{"finger-1", "finger-2"}, reloaded.Enrolled())
}

func TestEnrolledReturnsCopy(t *testing.T) {
	enrollment := NewEnrollment("finger-1")
	ids := enrollment.Enrolled()
	ids[0] = "mutated"
	assert.Equal(t, []string{"finger-1"}, enrollment.Enrolled())
}
