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

// Package types defines the shared value objects for biometric-gated
// storage: prompt configuration, authentication outcomes, key policies,
// and the cipher handle contract shared by the keystore and the
// authentication gate.
//
// These types live here rather than in their consuming packages to avoid
// import cycles between the keystore, the authentication gate, and the
// storage session.
package types

import (
	"fmt"
	"time"
)

// CanAuthenticateStatus reports whether biometric or device-credential
// authentication is currently possible on this device.
type CanAuthenticateStatus string

const (
	// CanAuthenticateSuccess indicates authentication is available.
	CanAuthenticateSuccess CanAuthenticateStatus = "success"

	// CanAuthenticateNoBiometricEnrolled indicates hardware exists but no
	// biometric is enrolled.
	CanAuthenticateNoBiometricEnrolled CanAuthenticateStatus = "no_biometric_enrolled"

	// CanAuthenticateNoHardware indicates no biometric hardware is present.
	CanAuthenticateNoHardware CanAuthenticateStatus = "no_hardware"

	// CanAuthenticatePasscodeNotSet indicates no device credential (PIN,
	// pattern, passcode) is configured.
	CanAuthenticatePasscodeNotSet CanAuthenticateStatus = "passcode_not_set"

	// CanAuthenticateBiometricClosed indicates the biometric hardware is
	// temporarily unavailable (busy, security lockout, or disabled by policy).
	CanAuthenticateBiometricClosed CanAuthenticateStatus = "biometric_closed"

	// CanAuthenticateStatusUnknown indicates availability could not be
	// determined.
	CanAuthenticateStatusUnknown CanAuthenticateStatus = "status_unknown"
)

// BiometricType identifies a class of biometric sensor available on the
// device. Platforms that only report sensor strength use Weak/Strong.
type BiometricType string

const (
	BiometricFingerprint BiometricType = "fingerprint"
	BiometricFace        BiometricType = "face"
	BiometricIris        BiometricType = "iris"
	BiometricWeak        BiometricType = "weak"
	BiometricStrong      BiometricType = "strong"
)

// PromptConfig carries the caller-supplied configuration for an
// authentication challenge. It is a value object and is never persisted.
type PromptConfig struct {
	// Title is the headline shown on the challenge. Required.
	Title string

	// Subtitle is an optional secondary line.
	Subtitle string

	// Description is an optional longer explanation.
	Description string

	// ConfirmationRequired requires an explicit confirmation action after a
	// passive biometric (e.g. face) succeeds.
	ConfirmationRequired bool

	// AllowDeviceCredential permits falling back to the device PIN or
	// passcode when the biometric path is unavailable or fails.
	AllowDeviceCredential bool

	// CancelLabel is the text of the negative/cancel action.
	CancelLabel string
}

// DefaultPromptConfig returns a PromptConfig with conservative defaults:
// explicit confirmation on, no device-credential fallback.
func DefaultPromptConfig(title string) *PromptConfig {
	return &PromptConfig{
		Title:                title,
		ConfirmationRequired: true,
		CancelLabel:          "Cancel",
	}
}

// Validate checks the prompt configuration is usable.
func (p *PromptConfig) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: prompt config", ErrMissingArgument)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: prompt title", ErrMissingArgument)
	}
	return nil
}

// ValidityForever is the KeyPolicy.AuthenticationValidity value meaning a
// fresh authentication is required for every cryptographic operation and
// the cipher is bound to a single challenge.
const ValidityForever = -1

// KeyPolicy describes the access policy of one storage key. The policy is
// fixed at key creation; changing it requires deleting and recreating the
// key, which destroys the ciphertext written under it.
type KeyPolicy struct {
	// AuthenticationRequired gates every use of the key behind a
	// successful biometric or device-credential authentication.
	AuthenticationRequired bool

	// AuthenticationValidity is the number of seconds a key remains usable
	// after one successful authentication. ValidityForever (-1) requires a
	// fresh, cipher-bound authentication per operation.
	AuthenticationValidity int

	// StrongBoxPreferred requests dedicated secure-element key storage
	// where the platform offers it.
	StrongBoxPreferred bool

	// InvalidatedByEnrollment destroys the key's usability when the
	// enrolled biometric set changes after key creation.
	InvalidatedByEnrollment bool

	// HardwareInvalidation reports whether enrollment-change invalidation
	// is enforced by the platform key store. When false, the local
	// fingerprint snapshot cache is the only invalidation signal and its
	// absence must be treated as "assume changed".
	HardwareInvalidation bool

	// KeySize is the symmetric key size in bits.
	KeySize int
}

// DefaultKeyPolicy returns the policy used when the caller does not
// supply one: authentication required, 10 second validity window,
// enrollment invalidation on, AES-256.
func DefaultKeyPolicy() *KeyPolicy {
	return &KeyPolicy{
		AuthenticationRequired:  true,
		AuthenticationValidity:  10,
		InvalidatedByEnrollment: true,
		HardwareInvalidation:    true,
		KeySize:                 256,
	}
}

// Validate checks policy invariants.
func (p *KeyPolicy) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: key policy", ErrMissingArgument)
	}
	if p.AuthenticationValidity < ValidityForever {
		return fmt.Errorf("invalid authentication validity %d", p.AuthenticationValidity)
	}
	switch p.KeySize {
	case 128, 192, 256:
	default:
		return fmt.Errorf("invalid key size %d", p.KeySize)
	}
	return nil
}

// ValidityWindow returns the freshness window as a duration and whether a
// window exists at all (false for ValidityForever).
func (p *KeyPolicy) ValidityWindow() (time.Duration, bool) {
	if p.AuthenticationValidity == ValidityForever {
		return 0, false
	}
	return time.Duration(p.AuthenticationValidity) * time.Second, true
}

// Cipher is a handle to a single-use cryptographic transform bound to one
// storage key, and possibly to one authentication event. Implementations
// refuse Seal and Open with the key store's authentication-required error
// until the binding authentication succeeds.
type Cipher interface {
	// Seal encrypts plaintext and returns the ciphertext blob in the
	// persisted layout: IV (fixed width) || ciphertext+tag.
	Seal(plaintext []byte) ([]byte, error)

	// Open decrypts a ciphertext blob in the persisted layout. Decrypt
	// ciphers are bound at acquisition to the IV of the blob they will
	// open; passing a different blob fails authentication of the tag.
	Open(blob []byte) ([]byte, error)

	// RequiresAuthentication reports whether the cipher is still waiting
	// for a successful authentication before it becomes usable.
	RequiresAuthentication() bool
}

// AuthBinder is implemented by ciphers whose usability is unlocked by a
// specific successful authentication event. The authentication gate calls
// GrantAuthentication exactly once on the bound cipher after the platform
// challenge succeeds; the core never calls it.
type AuthBinder interface {
	GrantAuthentication()
}

// AuthStatus is the terminal status of one authentication challenge.
type AuthStatus string

const (
	// AuthSuccess indicates the user authenticated successfully.
	AuthSuccess AuthStatus = "success"

	// AuthCanceled indicates the user dismissed the challenge via the
	// negative button or an explicit cancellation gesture.
	AuthCanceled AuthStatus = "canceled"

	// AuthTimedOut indicates the challenge expired before completion.
	AuthTimedOut AuthStatus = "timed_out"

	// AuthFailed indicates the challenge terminated unsuccessfully for a
	// reason other than cancellation or timeout. See FailureReason.
	AuthFailed AuthStatus = "failed"

	// AuthNotAttached indicates no UI surface was available to present
	// the challenge.
	AuthNotAttached AuthStatus = "not_attached"
)

// FailureReason qualifies AuthFailed outcomes.
type FailureReason string

const (
	// ReasonNotEnrolled indicates the device reported no enrolled
	// biometrics mid-challenge.
	ReasonNotEnrolled FailureReason = "not_enrolled"

	// ReasonUnknown covers every other platform error.
	ReasonUnknown FailureReason = "unknown"
)

// AuthOutcome is the terminal result of one authentication challenge.
// Non-terminal events (a biometric mismatch retried inside the platform
// UI) are never surfaced as outcomes.
type AuthOutcome struct {
	// Status is the terminal status.
	Status AuthStatus

	// Reason qualifies AuthFailed; empty otherwise.
	Reason FailureReason

	// Cipher is the authentication-bound cipher on success, when the
	// challenge carried one. Nil when the policy does not bind a cipher
	// to the challenge.
	Cipher Cipher

	// Diagnostic carries the underlying platform message for logging.
	// Never used for control flow.
	Diagnostic string
}

// Succeeded reports whether the outcome is a success.
func (o *AuthOutcome) Succeeded() bool {
	return o != nil && o.Status == AuthSuccess
}
