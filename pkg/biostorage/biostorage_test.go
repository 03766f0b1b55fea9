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

package biostorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmocks "github.com/jeremyhahn/go-biometric-storage/pkg/authgate/mocks"
	"github.com/jeremyhahn/go-biometric-storage/pkg/keystore/software"
	"github.com/jeremyhahn/go-biometric-storage/pkg/session"
	"github.com/jeremyhahn/go-biometric-storage/pkg/storage/memory"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

type facadeEnv struct {
	service    *Service
	gate       *authmocks.MockGate
	enrollment *software.Enrollment
}

func newFacadeEnv(t *testing.T) *facadeEnv {
	t.Helper()

	store := memory.New()
	t.Cleanup(func() { store.Close() })

	gate := authmocks.NewMockGate()
	enrollment := software.NewEnrollment("finger-1")
	keys, err := software.NewProvider(&software.Config{
		KeyStorage: store,
		Enrollment: enrollment,
	})
	require.NoError(t, err)

	// Challenge on every operation so scripted outcomes are always
	// consumed.
	policy := types.DefaultKeyPolicy()
	policy.AuthenticationValidity = types.ValidityForever

	service, err := New(&Config{
		Keys:          keys,
		Blobs:         store,
		Gate:          gate,
		Detector:      gate,
		Enrollment:    enrollment,
		DefaultPolicy: policy,
	})
	require.NoError(t, err)

	return &facadeEnv{service: service, gate: gate, enrollment: enrollment}
}

func testPrompt() *types.PromptConfig {
	prompt := types.DefaultPromptConfig("Unlock")
	prompt.AllowDeviceCredential = true
	return prompt
}

func TestServiceRoundTrip(t *testing.T) {
	env := newFacadeEnv(t)
	ctx := context.Background()

	require.NoError(t, env.service.Write(ctx, "token", "secret-value", testPrompt()))

	result, err := env.service.Read(ctx, "token", testPrompt())
	require.NoError(t, err)
	assert.Equal(t, ReadSucceeded, result.Status)
	assert.Equal(t, "secret-value", result.Content)
}

func TestServiceReadStatuses(t *testing.T) {
	env := newFacadeEnv(t)
	ctx := context.Background()

	// Absence is a status, not an error.
	result, err := env.service.Read(ctx, "never-written", testPrompt())
	require.NoError(t, err)
	assert.Equal(t, ReadFileNotExist, result.Status)
	assert.Empty(t, result.Content)

	// Enrollment change is a status too.
	require.NoError(t, env.service.Write(ctx, "token", "secret", testPrompt()))
	require.NoError(t, env.enrollment.Enroll("finger-2"))

	result, err = env.service.Read(ctx, "token", testPrompt())
	require.NoError(t, err)
	assert.Equal(t, ReadBiometricDataChanged, result.Status)
	assert.Empty(t, result.Content)

	// The cleared name now reads as absent.
	result, err = env.service.Read(ctx, "token", testPrompt())
	require.NoError(t, err)
	assert.Equal(t, ReadFileNotExist, result.Status)
}

func TestServiceReadErrors(t *testing.T) {
	env := newFacadeEnv(t)
	ctx := context.Background()

	require.NoError(t, env.service.Write(ctx, "token", "secret", testPrompt()))

	env.gate.Enqueue(&types.AuthOutcome{Status: types.AuthCanceled})
	_, err := env.service.Read(ctx, "token", testPrompt())
	require.Error(t, err)
	assert.Equal(t, types.CodeAuthCanceled, CodeOf(err))
}

func TestServiceDeleteAndExists(t *testing.T) {
	env := newFacadeEnv(t)
	ctx := context.Background()

	exists, err := env.service.Exists(ctx, "token")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, env.service.Write(ctx, "token", "secret", testPrompt()))
	exists, err = env.service.Exists(ctx, "token")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, env.service.Delete(ctx, "token"))
	require.NoError(t, env.service.Delete(ctx, "token"))
	exists, err = env.service.Exists(ctx, "token")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestServiceAvailability(t *testing.T) {
	env := newFacadeEnv(t)
	env.gate.Availability = types.CanAuthenticateNoBiometricEnrolled
	env.gate.Biometrics = []types.BiometricType{types.BiometricFingerprint}

	assert.Equal(t, types.CanAuthenticateNoBiometricEnrolled, env.service.CanAuthenticate())
	assert.Equal(t, []types.BiometricType{types.BiometricFingerprint}, env.service.AvailableBiometrics())
}

func TestServiceHealth(t *testing.T) {
	env := newFacadeEnv(t)
	assert.True(t, env.service.Health().Healthy(context.Background()))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.ErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "missing argument", err: types.ErrMissingArgument, want: types.CodeMissingArgument},
		{name: "not initialized", err: ErrNotInitialized, want: types.CodeStorageNotInitialized},
		{name: "permanent invalidation", err: session.ErrKeyPermanentlyInvalidated, want: types.CodeKeyInvalidated},
		{name: "biometric data changed", err: session.ErrBiometricDataChanged, want: types.CodeKeyInvalidated},
		{name: "canceled", err: session.ErrAuthCanceled, want: types.CodeAuthCanceled},
		{name: "timed out", err: session.ErrAuthTimedOut, want: types.CodeAuthTimedOut},
		{name: "not enrolled", err: session.ErrNoBiometricEnrolled, want: types.CodeNoBiometricEnrolled},
		{name: "auth failed", err: session.ErrAuthFailed, want: types.CodeAuthFailedUnknown},
		{name: "not attached", err: session.ErrNotAttached, want: types.CodeAuthFailedUnknown},
		{name: "storage io", err: session.ErrStorageIO, want: types.CodeKeychainOrBlobIOError},
		{name: "internal", err: session.ErrInternal, want: types.CodeUnexpectedInternalError},
		{name: "unrecognized", err: context.Canceled, want: types.CodeUnexpectedInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestNewValidation(t *testing.T) {
	store := memory.New()
	defer store.Close()
	gate := authmocks.NewMockGate()
	enrollment := software.NewEnrollment("finger-1")
	keys, err := software.NewProvider(&software.Config{
		KeyStorage: store,
		Enrollment: enrollment,
	})
	require.NoError(t, err)

	_, err = New(nil)
	assert.Error(t, err)
	_, err = New(&Config{Keys: keys, Blobs: store, Gate: gate})
	assert.Error(t, err, "detector is required")
	_, err = New(&Config{Keys: keys, Blobs: store, Detector: gate})
	assert.Error(t, err, "gate is required")
}

func TestSingleton(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	_, err := Instance()
	assert.ErrorIs(t, err, ErrNotInitialized)

	store := memory.New()
	t.Cleanup(func() { store.Close() })
	gate := authmocks.NewMockGate()
	enrollment := software.NewEnrollment("finger-1")
	keys, err := software.NewProvider(&software.Config{
		KeyStorage: store,
		Enrollment: enrollment,
	})
	require.NoError(t, err)

	config := &Config{
		Keys:       keys,
		Blobs:      store,
		Gate:       gate,
		Detector:   gate,
		Enrollment: enrollment,
	}
	require.NoError(t, Initialize(config))

	svc, err := Instance()
	require.NoError(t, err)
	require.NotNil(t, svc)

	assert.ErrorIs(t, Initialize(config), ErrAlreadyInitialized)

	Reset()
	_, err = Instance()
	assert.ErrorIs(t, err, ErrNotInitialized)
}
