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

package authgate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// blockingGate counts concurrent challenges and holds each until
// released.
type blockingGate struct {
	active  atomic.Int32
	peak    atomic.Int32
	release chan struct{}
}

func (g *blockingGate) Authenticate(ctx context.Context, challenge *Challenge, bound types.Cipher) (*types.AuthOutcome, error) {
	n := g.active.Add(1)
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	defer g.active.Add(-1)

	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &types.AuthOutcome{Status: types.AuthSuccess}, nil
}

func TestGuardSerializesPrompts(t *testing.T) {
	inner := &blockingGate{release: make(chan struct{})}
	gate := Guarded(inner, NewPromptGuard())
	challenge := &Challenge{Title: "Unlock"}

	const workers = 5
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := gate.Authenticate(context.Background(), challenge, nil)
			assert.NoError(t, err)
			assert.True(t, outcome.Succeeded())
		}()
	}

	// Let the workers pile up, then release them one at a time.
	time.Sleep(50 * time.Millisecond)
	for i := 0; i < workers; i++ {
		inner.release <- struct{}{}
	}
	wg.Wait()

	assert.Equal(t, int32(1), inner.peak.Load(),
		"at most one challenge may be outstanding at a time")
}

func TestGuardQueuedContextCancel(t *testing.T) {
	inner := &blockingGate{release: make(chan struct{})}
	guard := NewPromptGuard()
	gate := Guarded(inner, guard)
	challenge := &Challenge{Title: "Unlock"}

	// Occupy the prompt slot.
	first := make(chan error, 1)
	go func() {
		_, err := gate.Authenticate(context.Background(), challenge, nil)
		first <- err
	}()
	time.Sleep(20 * time.Millisecond)

	// A queued challenge whose context is canceled gives up cleanly
	// without presenting a prompt.
	ctx, cancel := context.WithCancel(context.Background())
	queued := make(chan error, 1)
	go func() {
		_, err := gate.Authenticate(ctx, challenge, nil)
		queued <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-queued:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("queued challenge did not observe cancellation")
	}

	// The active challenge is unaffected.
	inner.release <- struct{}{}
	require.NoError(t, <-first)
}

func TestGuardRejectsInvalidChallenge(t *testing.T) {
	inner := &blockingGate{release: make(chan struct{})}
	gate := Guarded(inner, NewPromptGuard())

	_, err := gate.Authenticate(context.Background(), nil, nil)
	assert.ErrorIs(t, err, types.ErrMissingArgument)

	_, err = gate.Authenticate(context.Background(), &Challenge{}, nil)
	assert.ErrorIs(t, err, types.ErrMissingArgument)
}

func TestDefaultGuardIsShared(t *testing.T) {
	assert.Same(t, DefaultGuard(), DefaultGuard())
}
