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

	"github.com/jeremyhahn/go-biometric-storage/pkg/keystore"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// MockProvider is a scriptable keystore.Provider for testing the session
// state machine. Behavior is configured through the *Func fields; calls
// are recorded for assertions.
type MockProvider struct {
	mu sync.Mutex

	CreateKeyFunc     func(name string, policy *types.KeyPolicy) error
	EncryptCipherFunc func(name string, policy *types.KeyPolicy) (types.Cipher, error)
	DecryptCipherFunc func(name string, iv []byte) (types.Cipher, error)
	HasKeyFunc        func(name string) (bool, error)
	PolicyFunc        func(name string) (*types.KeyPolicy, error)
	DeleteKeyFunc     func(name string) error

	CreateKeyCalls     []string
	EncryptCipherCalls []string
	DecryptCipherCalls []string
	HasKeyCalls        []string
	DeleteKeyCalls     []string
	CloseCalls         int
}

// Compile-time interface check.
var _ keystore.Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock whose unconfigured methods succeed with
// zero values.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) CreateKey(ctx context.Context, name string, policy *types.KeyPolicy) error {
	m.mu.Lock()
	m.CreateKeyCalls = append(m.CreateKeyCalls, name)
	fn := m.CreateKeyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(name, policy)
	}
	return nil
}

func (m *MockProvider) EncryptCipher(ctx context.Context, name string, policy *types.KeyPolicy) (types.Cipher, error) {
	m.mu.Lock()
	m.EncryptCipherCalls = append(m.EncryptCipherCalls, name)
	fn := m.EncryptCipherFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(name, policy)
	}
	return nil, keystore.ErrKeyNotFound
}

func (m *MockProvider) DecryptCipher(ctx context.Context, name string, iv []byte) (types.Cipher, error) {
	m.mu.Lock()
	m.DecryptCipherCalls = append(m.DecryptCipherCalls, name)
	fn := m.DecryptCipherFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(name, iv)
	}
	return nil, keystore.ErrKeyNotFound
}

func (m *MockProvider) HasKey(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	m.HasKeyCalls = append(m.HasKeyCalls, name)
	fn := m.HasKeyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(name)
	}
	return false, nil
}

func (m *MockProvider) Policy(ctx context.Context, name string) (*types.KeyPolicy, error) {
	m.mu.Lock()
	fn := m.PolicyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(name)
	}
	return types.DefaultKeyPolicy(), nil
}

func (m *MockProvider) DeleteKey(ctx context.Context, name string) error {
	m.mu.Lock()
	m.DeleteKeyCalls = append(m.DeleteKeyCalls, name)
	fn := m.DeleteKeyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(name)
	}
	return nil
}

func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return nil
}

// MockCipher is a trivially scriptable types.Cipher.
type MockCipher struct {
	mu sync.Mutex

	SealFunc func(plaintext []byte) ([]byte, error)
	OpenFunc func(blob []byte) ([]byte, error)

	RequiresAuth bool
	Authorized   bool

	SealCalls  int
	OpenCalls  int
	GrantCalls int
}

// Compile-time interface checks.
var (
	_ types.Cipher     = (*MockCipher)(nil)
	_ types.AuthBinder = (*MockCipher)(nil)
)

func (m *MockCipher) Seal(plaintext []byte) ([]byte, error) {
	m.mu.Lock()
	m.SealCalls++
	fn := m.SealFunc
	requires, authorized := m.RequiresAuth, m.Authorized
	m.mu.Unlock()

	if requires && !authorized {
		return nil, keystore.ErrAuthenticationRequired
	}
	if fn != nil {
		return fn(plaintext)
	}
	return append([]byte("sealed:"), plaintext...), nil
}

func (m *MockCipher) Open(blob []byte) ([]byte, error) {
	m.mu.Lock()
	m.OpenCalls++
	fn := m.OpenFunc
	requires, authorized := m.RequiresAuth, m.Authorized
	m.mu.Unlock()

	if requires && !authorized {
		return nil, keystore.ErrAuthenticationRequired
	}
	if fn != nil {
		return fn(blob)
	}
	return blob, nil
}

func (m *MockCipher) RequiresAuthentication() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequiresAuth && !m.Authorized
}

func (m *MockCipher) GrantAuthentication() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GrantCalls++
	m.Authorized = true
}
