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

package mocks

import (
	"context"
	"sync"

	"github.com/jeremyhahn/go-biometric-storage/pkg/authgate"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// MockGate is a scriptable authgate.Gate and authgate.Detector. Script
// one outcome per expected challenge; with an empty script every
// challenge succeeds. Success outcomes grant the bound cipher exactly
// like a real gate.
type MockGate struct {
	mu sync.Mutex

	// Script is consumed front to back, one entry per challenge.
	Script []*types.AuthOutcome

	// Availability is what CanAuthenticate reports.
	Availability types.CanAuthenticateStatus

	// Biometrics is what AvailableBiometrics reports.
	Biometrics []types.BiometricType

	// Challenges records every challenge presented, in order.
	Challenges []*authgate.Challenge
}

// Compile-time interface checks.
var (
	_ authgate.Gate     = (*MockGate)(nil)
	_ authgate.Detector = (*MockGate)(nil)
)

// NewMockGate creates a gate whose challenges all succeed.
func NewMockGate() *MockGate {
	return &MockGate{Availability: types.CanAuthenticateSuccess}
}

// Enqueue appends outcomes to the script.
func (m *MockGate) Enqueue(outcomes ...*types.AuthOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Script = append(m.Script, outcomes...)
}

// Authenticate pops the next scripted outcome, defaulting to success.
func (m *MockGate) Authenticate(ctx context.Context, challenge *authgate.Challenge, bound types.Cipher) (*types.AuthOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Challenges = append(m.Challenges, challenge)
	var outcome *types.AuthOutcome
	if len(m.Script) > 0 {
		outcome = m.Script[0]
		m.Script = m.Script[1:]
	} else {
		outcome = &types.AuthOutcome{Status: types.AuthSuccess}
	}
	m.mu.Unlock()

	result := *outcome
	if result.Status == types.AuthSuccess {
		if binder, ok := bound.(types.AuthBinder); ok {
			binder.GrantAuthentication()
		}
		if result.Cipher == nil {
			result.Cipher = bound
		}
	}
	return &result, nil
}

// CanAuthenticate reports the configured availability.
func (m *MockGate) CanAuthenticate() types.CanAuthenticateStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Availability == "" {
		return types.CanAuthenticateSuccess
	}
	return m.Availability
}

// AvailableBiometrics reports the configured biometric set.
func (m *MockGate) AvailableBiometrics() []types.BiometricType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.BiometricType(nil), m.Biometrics...)
}
