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

package session

import "errors"

var (
	// ErrBlobNotFound is the defined empty state: no value has ever been
	// written under the name, or it was deleted.
	ErrBlobNotFound = errors.New("session: no value stored under this name")

	// ErrBiometricDataChanged is terminal on read: the enrolled biometric
	// set changed since the value was written, the key is gone, and the
	// ciphertext is unrecoverable. Local state has been cleared by the
	// time this error is returned.
	ErrBiometricDataChanged = errors.New("session: biometric enrollment changed, stored value unrecoverable")

	// ErrKeyPermanentlyInvalidated is terminal on write: the key was
	// invalidated again immediately after being recreated, so retrying
	// cannot help.
	ErrKeyPermanentlyInvalidated = errors.New("session: key invalidated twice during one write")

	// ErrAuthCanceled is returned when the user dismissed the challenge.
	ErrAuthCanceled = errors.New("session: authentication canceled by user")

	// ErrAuthTimedOut is returned when the challenge expired.
	ErrAuthTimedOut = errors.New("session: authentication timed out")

	// ErrAuthFailed is returned when the challenge terminated
	// unsuccessfully for an unclassified reason.
	ErrAuthFailed = errors.New("session: authentication failed")

	// ErrNoBiometricEnrolled is returned when the device reported no
	// enrolled biometrics mid-challenge.
	ErrNoBiometricEnrolled = errors.New("session: no biometric enrolled")

	// ErrNotAttached is returned when no UI surface was available to
	// present the challenge.
	ErrNotAttached = errors.New("session: no UI surface attached to present challenge")

	// ErrStorageIO is returned when the blob or key store failed at the
	// I/O level. The underlying diagnostic is always wrapped.
	ErrStorageIO = errors.New("session: storage I/O failure")

	// ErrInternal is the catch-all for unexpected failures. The
	// underlying diagnostic is always wrapped.
	ErrInternal = errors.New("session: unexpected internal error")
)
