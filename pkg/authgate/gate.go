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

// Package authgate presents the platform biometric or device-credential
// challenge and reduces its outcome to a fixed set of terminal results.
//
// The gate owns everything the core must not know about: prompt
// plumbing, platform error codes, internal retry loops for non-matching
// biometrics, and challenge timeouts. The storage session only ever
// observes a terminal AuthOutcome.
package authgate

import (
	"context"
	"fmt"

	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// Challenge is the transient description of one authentication prompt,
// derived from the caller's PromptConfig. Never persisted.
type Challenge struct {
	Title                 string
	Subtitle              string
	Description           string
	ConfirmationRequired  bool
	AllowDeviceCredential bool
	CancelLabel           string
}

// NewChallenge builds a Challenge from a prompt configuration.
func NewChallenge(cfg *types.PromptConfig) (*Challenge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cancel := cfg.CancelLabel
	if cancel == "" {
		cancel = "Cancel"
	}
	return &Challenge{
		Title:                 cfg.Title,
		Subtitle:              cfg.Subtitle,
		Description:           cfg.Description,
		ConfirmationRequired:  cfg.ConfirmationRequired,
		AllowDeviceCredential: cfg.AllowDeviceCredential,
		CancelLabel:           cancel,
	}, nil
}

// Gate presents authentication challenges. Implementations must be safe
// for concurrent use; the prompt itself is serialized by a PromptGuard.
type Gate interface {
	// Authenticate presents the challenge and blocks until a terminal
	// outcome. When bound is non-nil and implements types.AuthBinder, a
	// successful challenge grants it before the outcome is returned.
	//
	// The returned error is reserved for invalid arguments and context
	// cancellation while queued; every challenge result, including
	// failure, arrives as an outcome.
	Authenticate(ctx context.Context, challenge *Challenge, bound types.Cipher) (*types.AuthOutcome, error)
}

// Detector reports device authentication capability. It exists so the
// API can answer canAuthenticate/getAvailableBiometrics without touching
// a key or presenting a prompt.
type Detector interface {
	// CanAuthenticate reports whether an authentication challenge could
	// currently succeed.
	CanAuthenticate() types.CanAuthenticateStatus

	// AvailableBiometrics returns the biometric classes the device offers.
	AvailableBiometrics() []types.BiometricType
}

// grantBound unlocks the bound cipher after a successful challenge.
// Gates call this exactly once per success.
func grantBound(bound types.Cipher) {
	if binder, ok := bound.(types.AuthBinder); ok {
		binder.GrantAuthentication()
	}
}

// validateChallenge rejects nil challenges before any prompt work.
func validateChallenge(challenge *Challenge) error {
	if challenge == nil || challenge.Title == "" {
		return fmt.Errorf("%w: challenge title", types.ErrMissingArgument)
	}
	return nil
}
