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

package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-biometric-storage/pkg/authgate"
	keystoremocks "github.com/jeremyhahn/go-biometric-storage/pkg/keystore/mocks"
	"github.com/jeremyhahn/go-biometric-storage/pkg/storage/memory"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// staticReader answers every attempt with the same passcode.
func staticReader(passcode string) PasscodeReader {
	return func(ctx context.Context, challenge *authgate.Challenge, attempt int) (string, error) {
		return passcode, nil
	}
}

func newTestGate(t *testing.T, reader PasscodeReader) *Gate {
	t.Helper()
	gate, err := New(&Config{
		Store:  memory.New(),
		Reader: reader,
	})
	require.NoError(t, err)
	return gate
}

func testChallenge() *authgate.Challenge {
	return &authgate.Challenge{
		Title:                 "Unlock",
		AllowDeviceCredential: true,
		CancelLabel:           "Cancel",
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	gate := newTestGate(t, staticReader("1234"))
	require.NoError(t, gate.SetPasscode("1234"))

	bound := &keystoremocks.MockCipher{RequiresAuth: true}
	outcome, err := gate.Authenticate(context.Background(), testChallenge(), bound)
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	assert.Same(t, types.Cipher(bound), outcome.Cipher)
	assert.Equal(t, 1, bound.GrantCalls, "success must grant the bound cipher")
	assert.False(t, bound.RequiresAuthentication())
}

func TestAuthenticateRetriesThenSucceeds(t *testing.T) {
	gate := newTestGate(t, func(ctx context.Context, challenge *authgate.Challenge, attempt int) (string, error) {
		if attempt < 3 {
			return "wrong", nil
		}
		return "1234", nil
	})
	require.NoError(t, gate.SetPasscode("1234"))

	outcome, err := gate.Authenticate(context.Background(), testChallenge(), nil)
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
}

func TestAuthenticateExhaustsAttempts(t *testing.T) {
	attempts := 0
	gate := newTestGate(t, func(ctx context.Context, challenge *authgate.Challenge, attempt int) (string, error) {
		attempts++
		return "wrong", nil
	})
	require.NoError(t, gate.SetPasscode("1234"))

	bound := &keystoremocks.MockCipher{RequiresAuth: true}
	outcome, err := gate.Authenticate(context.Background(), testChallenge(), bound)
	require.NoError(t, err)
	assert.Equal(t, types.AuthFailed, outcome.Status)
	assert.Equal(t, types.ReasonUnknown, outcome.Reason)
	assert.Equal(t, DefaultMaxAttempts, attempts)
	assert.Equal(t, 0, bound.GrantCalls, "failure must not grant the bound cipher")
}

func TestAuthenticateCanceled(t *testing.T) {
	gate := newTestGate(t, func(ctx context.Context, challenge *authgate.Challenge, attempt int) (string, error) {
		return "", ErrPromptCanceled
	})
	require.NoError(t, gate.SetPasscode("1234"))

	outcome, err := gate.Authenticate(context.Background(), testChallenge(), nil)
	require.NoError(t, err)
	assert.Equal(t, types.AuthCanceled, outcome.Status)
}

func TestAuthenticateTimedOut(t *testing.T) {
	gate := newTestGate(t, func(ctx context.Context, challenge *authgate.Challenge, attempt int) (string, error) {
		return "", context.DeadlineExceeded
	})
	require.NoError(t, gate.SetPasscode("1234"))

	outcome, err := gate.Authenticate(context.Background(), testChallenge(), nil)
	require.NoError(t, err)
	assert.Equal(t, types.AuthTimedOut, outcome.Status)
}

func TestAuthenticateNoPasscodeEnrolled(t *testing.T) {
	gate := newTestGate(t, staticReader("1234"))

	outcome, err := gate.Authenticate(context.Background(), testChallenge(), nil)
	require.NoError(t, err)
	assert.Equal(t, types.AuthFailed, outcome.Status)
}

func TestAuthenticateCredentialNotAllowed(t *testing.T) {
	gate := newTestGate(t, staticReader("1234"))
	require.NoError(t, gate.SetPasscode("1234"))

	challenge := testChallenge()
	challenge.AllowDeviceCredential = false

	outcome, err := gate.Authenticate(context.Background(), challenge, nil)
	require.NoError(t, err)
	assert.Equal(t, types.AuthFailed, outcome.Status)
}

func TestSetAndClearPasscode(t *testing.T) {
	gate := newTestGate(t, staticReader("1234"))

	assert.Equal(t, types.CanAuthenticatePasscodeNotSet, gate.CanAuthenticate())

	require.NoError(t, gate.SetPasscode("1234"))
	assert.Equal(t, types.CanAuthenticateSuccess, gate.CanAuthenticate())

	require.NoError(t, gate.ClearPasscode())
	assert.Equal(t, types.CanAuthenticatePasscodeNotSet, gate.CanAuthenticate())

	// Clearing twice is fine.
	require.NoError(t, gate.ClearPasscode())

	assert.ErrorIs(t, gate.SetPasscode(""), types.ErrMissingArgument)
}

func TestReplacePasscode(t *testing.T) {
	gate := newTestGate(t, staticReader("new-code"))
	require.NoError(t, gate.SetPasscode("old-code"))
	require.NoError(t, gate.SetPasscode("new-code"))

	outcome, err := gate.Authenticate(context.Background(), testChallenge(), nil)
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
}

func TestAvailableBiometrics(t *testing.T) {
	gate := newTestGate(t, staticReader("1234"))
	assert.Nil(t, gate.AvailableBiometrics())
}
