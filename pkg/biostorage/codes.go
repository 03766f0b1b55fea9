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
	"errors"

	"github.com/jeremyhahn/go-biometric-storage/pkg/session"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// CodeOf collapses any error from this module into the shared error-code
// taxonomy. This is the boundary lookup table: transports and host
// applications serialize the code, while the wrapped diagnostic stays in
// the error string.
func CodeOf(err error) types.ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrMissingArgument):
		return types.CodeMissingArgument
	case errors.Is(err, ErrNotInitialized):
		return types.CodeStorageNotInitialized
	case errors.Is(err, session.ErrKeyPermanentlyInvalidated),
		errors.Is(err, session.ErrBiometricDataChanged):
		return types.CodeKeyInvalidated
	case errors.Is(err, session.ErrAuthCanceled):
		return types.CodeAuthCanceled
	case errors.Is(err, session.ErrAuthTimedOut):
		return types.CodeAuthTimedOut
	case errors.Is(err, session.ErrNoBiometricEnrolled):
		return types.CodeNoBiometricEnrolled
	case errors.Is(err, session.ErrAuthFailed), errors.Is(err, session.ErrNotAttached):
		return types.CodeAuthFailedUnknown
	case errors.Is(err, session.ErrStorageIO):
		return types.CodeKeychainOrBlobIOError
	default:
		return types.CodeUnexpectedInternalError
	}
}

// isBlobNotFound reports the defined empty state.
func isBlobNotFound(err error) bool {
	return errors.Is(err, session.ErrBlobNotFound)
}

// isBiometricDataChanged reports terminal enrollment-change invalidation.
func isBiometricDataChanged(err error) bool {
	return errors.Is(err, session.ErrBiometricDataChanged)
}
