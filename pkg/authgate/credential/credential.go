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

// Package credential implements the device-credential fallback gate: a
// passcode challenge verified against an argon2id hash. Hosts without
// biometric hardware, and callers that allow credential fallback, get
// their authentication events from here.
//
// The wrong-passcode retry loop lives inside this gate, mirroring the
// platform prompt UIs that retry non-terminal failures internally. The
// storage session only observes the terminal outcome.
package credential

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/jeremyhahn/go-biometric-storage/pkg/authgate"
	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// passcodeHashKey stores the salted passcode hash.
const passcodeHashKey = storage.StatePrefix + "passcode"

// argon2id parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// DefaultMaxAttempts is the internal retry budget for wrong passcodes
// before the challenge terminates as failed.
const DefaultMaxAttempts = 3

// ErrPromptCanceled is returned by a PasscodeReader when the user
// dismisses the prompt.
var ErrPromptCanceled = errors.New("credential: prompt canceled")

// PasscodeReader collects one passcode attempt from the user. attempt
// starts at 1. Returning ErrPromptCanceled classifies as Canceled;
// context errors classify as Canceled or TimedOut.
type PasscodeReader func(ctx context.Context, challenge *authgate.Challenge, attempt int) (string, error)

// Gate is a device-credential authgate.Gate and authgate.Detector.
type Gate struct {
	store       storage.Backend
	reader      PasscodeReader
	maxAttempts int
}

// Compile-time interface checks.
var (
	_ authgate.Gate     = (*Gate)(nil)
	_ authgate.Detector = (*Gate)(nil)
)

// Config configures the credential gate.
type Config struct {
	// Store persists the passcode hash. Required.
	Store storage.Backend

	// Reader collects passcode attempts. Required.
	Reader PasscodeReader

	// MaxAttempts bounds the internal retry loop; 0 means
	// DefaultMaxAttempts.
	MaxAttempts int
}

// New creates a credential gate from config.
func New(config *Config) (*Gate, error) {
	if config == nil || config.Store == nil {
		return nil, fmt.Errorf("credential: Store is required")
	}
	if config.Reader == nil {
		return nil, fmt.Errorf("credential: Reader is required")
	}
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	return &Gate{
		store:       config.Store,
		reader:      config.Reader,
		maxAttempts: attempts,
	}, nil
}

// SetPasscode enrolls or replaces the device passcode.
func (g *Gate) SetPasscode(passcode string) error {
	if passcode == "" {
		return fmt.Errorf("%w: passcode", types.ErrMissingArgument)
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("credential: failed to generate salt: %w", err)
	}
	hash := argon2.IDKey([]byte(passcode), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	record := append(salt, hash...)
	if err := g.store.Put(passcodeHashKey, record, nil); err != nil {
		return fmt.Errorf("credential: failed to store passcode hash: %w", err)
	}
	return nil
}

// ClearPasscode removes the enrolled passcode.
func (g *Gate) ClearPasscode() error {
	if err := g.store.Delete(passcodeHashKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("credential: failed to clear passcode hash: %w", err)
	}
	return nil
}

// Authenticate presents the passcode challenge.
func (g *Gate) Authenticate(ctx context.Context, challenge *authgate.Challenge, bound types.Cipher) (*types.AuthOutcome, error) {
	if challenge == nil || challenge.Title == "" {
		return nil, fmt.Errorf("%w: challenge title", types.ErrMissingArgument)
	}
	if !challenge.AllowDeviceCredential {
		return &types.AuthOutcome{
			Status:     types.AuthFailed,
			Reason:     types.ReasonUnknown,
			Diagnostic: "device credential fallback not allowed by prompt config",
		}, nil
	}

	record, err := g.loadHash()
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &types.AuthOutcome{
			Status:     types.AuthFailed,
			Reason:     types.ReasonUnknown,
			Diagnostic: "no device passcode enrolled",
		}, nil
	}
	salt, hash := record[:saltLen], record[saltLen:]

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		passcode, err := g.reader(ctx, challenge, attempt)
		if err != nil {
			return classifyReaderError(err), nil
		}
		candidate := argon2.IDKey([]byte(passcode), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
		if subtle.ConstantTimeCompare(candidate, hash) == 1 {
			if binder, ok := bound.(types.AuthBinder); ok {
				binder.GrantAuthentication()
			}
			return &types.AuthOutcome{Status: types.AuthSuccess, Cipher: bound}, nil
		}
	}
	return &types.AuthOutcome{
		Status:     types.AuthFailed,
		Reason:     types.ReasonUnknown,
		Diagnostic: fmt.Sprintf("passcode rejected after %d attempts", g.maxAttempts),
	}, nil
}

// CanAuthenticate reports whether a credential challenge could succeed.
func (g *Gate) CanAuthenticate() types.CanAuthenticateStatus {
	record, err := g.loadHash()
	if err != nil {
		return types.CanAuthenticateStatusUnknown
	}
	if record == nil {
		return types.CanAuthenticatePasscodeNotSet
	}
	return types.CanAuthenticateSuccess
}

// AvailableBiometrics returns nil: a passcode is not a biometric.
func (g *Gate) AvailableBiometrics() []types.BiometricType {
	return nil
}

// loadHash returns the stored salt+hash record, nil when absent.
func (g *Gate) loadHash() ([]byte, error) {
	record, err := g.store.Get(passcodeHashKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("credential: failed to load passcode hash: %w", err)
	}
	if len(record) != saltLen+argonKeyLen {
		return nil, fmt.Errorf("credential: corrupt passcode record")
	}
	return record, nil
}

// classifyReaderError maps reader failures onto terminal outcomes.
func classifyReaderError(err error) *types.AuthOutcome {
	switch {
	case errors.Is(err, ErrPromptCanceled), errors.Is(err, context.Canceled):
		return &types.AuthOutcome{Status: types.AuthCanceled, Diagnostic: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return &types.AuthOutcome{Status: types.AuthTimedOut, Diagnostic: err.Error()}
	default:
		return &types.AuthOutcome{
			Status:     types.AuthFailed,
			Reason:     types.ReasonUnknown,
			Diagnostic: err.Error(),
		}
	}
}
