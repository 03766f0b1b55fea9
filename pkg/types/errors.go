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

package types

import "errors"

var (
	// ErrMissingArgument is returned when a required argument is empty or nil.
	ErrMissingArgument = errors.New("types: missing required argument")
)

// ErrorCode is the wire-level error taxonomy shared by every API surface.
// Platform-specific error codes are collapsed into these at the package
// boundaries; the core logic only ever deals in sentinel errors.
type ErrorCode string

const (
	CodeMissingArgument         ErrorCode = "MissingArgument"
	CodeStorageNotInitialized   ErrorCode = "StorageNotInitialized"
	CodeKeyInvalidated          ErrorCode = "KeyInvalidated"
	CodeAuthCanceled            ErrorCode = "AuthCanceled"
	CodeAuthTimedOut            ErrorCode = "AuthTimedOut"
	CodeAuthFailedUnknown       ErrorCode = "AuthFailedUnknown"
	CodeNoBiometricEnrolled     ErrorCode = "NoBiometricEnrolled"
	CodePasscodeNotSet          ErrorCode = "PasscodeNotSet"
	CodeBiometricHardwareClosed ErrorCode = "BiometricHardwareClosed"
	CodeKeychainOrBlobIOError   ErrorCode = "KeychainOrBlobIOError"
	CodeUnexpectedInternalError ErrorCode = "UnexpectedInternalError"
)
