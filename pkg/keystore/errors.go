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

package keystore

import "errors"

var (
	// ErrKeyInvalidated is returned when a key's authentication
	// prerequisites changed since creation (enrollment change, biometric
	// removal) and the key is permanently unusable.
	ErrKeyInvalidated = errors.New("keystore: key permanently invalidated")

	// ErrAuthenticationRequired is returned by a cipher operation when
	// the key's policy demands a successful authentication that has not
	// happened yet, or whose validity window has expired.
	ErrAuthenticationRequired = errors.New("keystore: user authentication required")

	// ErrKeyNotFound is returned when no key record exists for a name.
	ErrKeyNotFound = errors.New("keystore: key not found")

	// ErrKeyExists is returned by CreateKey when a key is already present.
	ErrKeyExists = errors.New("keystore: key already exists")

	// ErrInvalidIV is returned when a decrypt cipher is requested with an
	// IV of the wrong width, or opened against a blob whose IV differs
	// from the one the cipher was bound to.
	ErrInvalidIV = errors.New("keystore: invalid initialization vector")

	// ErrClosed is returned when using a closed provider.
	ErrClosed = errors.New("keystore: provider closed")
)
