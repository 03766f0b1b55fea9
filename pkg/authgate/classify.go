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

import "github.com/jeremyhahn/go-biometric-storage/pkg/types"

// Platform challenge error codes, as delivered by the native biometric
// prompt. The integer values follow the Android BiometricPrompt
// constants, which is the richest of the native code sets; other
// platforms' codes are translated to these before classification. The
// mapping lives here, at the gate boundary, and nowhere else.
const (
	ErrCodeHardwareUnavailable = 1
	ErrCodeUnableToProcess     = 2
	ErrCodeTimeout             = 3
	ErrCodeNoSpace             = 4
	ErrCodeCanceled            = 5
	ErrCodeLockout             = 7
	ErrCodeVendor              = 8
	ErrCodeLockoutPermanent    = 9
	ErrCodeUserCanceled        = 10
	ErrCodeNoBiometrics        = 11
	ErrCodeHardwareNotPresent  = 12
	ErrCodeNegativeButton      = 13
	ErrCodeNoDeviceCredential  = 14
)

// ClassifyError collapses a terminal platform challenge error into the
// shared outcome taxonomy:
//
//   - negative button or explicit user cancellation => Canceled
//   - challenge timeout => TimedOut
//   - no biometrics enrolled surfaced mid-challenge => Failed(NotEnrolled)
//   - anything else => Failed(Unknown)
//
// A biometric mismatch without cancellation is not terminal; the platform
// UI retries it internally and never delivers it here.
func ClassifyError(code int, message string) *types.AuthOutcome {
	switch code {
	case ErrCodeNegativeButton, ErrCodeUserCanceled, ErrCodeCanceled:
		return &types.AuthOutcome{Status: types.AuthCanceled, Diagnostic: message}
	case ErrCodeTimeout:
		return &types.AuthOutcome{Status: types.AuthTimedOut, Diagnostic: message}
	case ErrCodeNoBiometrics:
		return &types.AuthOutcome{
			Status:     types.AuthFailed,
			Reason:     types.ReasonNotEnrolled,
			Diagnostic: message,
		}
	default:
		return &types.AuthOutcome{
			Status:     types.AuthFailed,
			Reason:     types.ReasonUnknown,
			Diagnostic: message,
		}
	}
}

// Platform availability codes, following the Android BiometricManager
// constants.
const (
	AvailabilitySuccess                = 0
	AvailabilityHardwareUnavailable    = 1
	AvailabilityNoneEnrolled           = 11
	AvailabilityNoHardware             = 12
	AvailabilitySecurityUpdateRequired = 15
)

// ClassifyAvailability collapses a platform availability code into the
// shared CanAuthenticate status set.
func ClassifyAvailability(code int) types.CanAuthenticateStatus {
	switch code {
	case AvailabilitySuccess:
		return types.CanAuthenticateSuccess
	case AvailabilityNoneEnrolled:
		return types.CanAuthenticateNoBiometricEnrolled
	case AvailabilityNoHardware:
		return types.CanAuthenticateNoHardware
	case AvailabilityHardwareUnavailable, AvailabilitySecurityUpdateRequired:
		return types.CanAuthenticateBiometricClosed
	default:
		return types.CanAuthenticateStatusUnknown
	}
}
