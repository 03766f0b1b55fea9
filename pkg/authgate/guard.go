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

	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// PromptGuard serializes authentication prompts: at most one challenge
// UI may be outstanding in the process at a time. A second request, even
// for a different storage name, queues behind the active challenge
// rather than spawning an overlapping prompt.
type PromptGuard struct {
	sem chan struct{}
}

// NewPromptGuard creates a guard admitting one prompt at a time.
func NewPromptGuard() *PromptGuard {
	return &PromptGuard{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the prompt slot is free or ctx is done.
func (g *PromptGuard) Acquire(ctx context.Context) error {
	select {
	case g.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the prompt slot.
func (g *PromptGuard) Release() {
	<-g.sem
}

// processGuard is the default process-wide guard. Every gate constructed
// through Guarded with a nil guard shares it, which is what gives the
// one-prompt-per-process invariant.
var processGuard = NewPromptGuard()

// DefaultGuard returns the process-wide prompt guard.
func DefaultGuard() *PromptGuard {
	return processGuard
}

// guardedGate wraps a Gate so its prompts go through a PromptGuard.
type guardedGate struct {
	gate  Gate
	guard *PromptGuard
}

// Guarded wraps gate so its challenges serialize through guard. A nil
// guard selects the process-wide one.
func Guarded(gate Gate, guard *PromptGuard) Gate {
	if guard == nil {
		guard = processGuard
	}
	return &guardedGate{gate: gate, guard: guard}
}

// Authenticate waits for the prompt slot, then delegates.
func (g *guardedGate) Authenticate(ctx context.Context, challenge *Challenge, bound types.Cipher) (*types.AuthOutcome, error) {
	if err := validateChallenge(challenge); err != nil {
		return nil, err
	}
	if err := g.guard.Acquire(ctx); err != nil {
		return nil, err
	}
	defer g.guard.Release()
	return g.gate.Authenticate(ctx, challenge, bound)
}
