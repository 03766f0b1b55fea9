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

package software

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/jeremyhahn/go-biometric-storage/pkg/keystore"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

type cipherMode int

const (
	modeEncrypt cipherMode = iota
	modeDecrypt
)

// Cipher is a single-purpose AES-GCM transform handle for one storage
// name. When the key policy requires authentication the handle refuses
// Seal and Open until the authentication gate grants it.
//
// The storage name is bound as additional authenticated data, so a blob
// copied under a different name fails tag verification.
type Cipher struct {
	mu           sync.Mutex
	provider     *Provider
	name         string
	aead         cipher.AEAD
	mode         cipherMode
	boundIV      []byte
	requiresAuth bool
	authorized   bool
}

// Compile-time interface checks.
var (
	_ types.Cipher     = (*Cipher)(nil)
	_ types.AuthBinder = (*Cipher)(nil)
)

// Seal encrypts plaintext into the persisted blob layout:
// IV || ciphertext+tag, with a fresh random IV per call.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != modeEncrypt {
		return nil, fmt.Errorf("software keystore: cipher not acquired for encryption")
	}
	if c.requiresAuth && !c.authorized {
		return nil, keystore.ErrAuthenticationRequired
	}

	iv := make([]byte, keystore.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("software keystore: failed to generate IV: %w", err)
	}
	blob := make([]byte, 0, keystore.IVSize+len(plaintext)+c.aead.Overhead())
	blob = append(blob, iv...)
	return c.aead.Seal(blob, iv, plaintext, []byte(c.name)), nil
}

// Open decrypts a blob in the persisted layout. The blob's IV must match
// the one the cipher was bound to at acquisition.
func (c *Cipher) Open(blob []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != modeDecrypt {
		return nil, fmt.Errorf("software keystore: cipher not acquired for decryption")
	}
	if c.requiresAuth && !c.authorized {
		return nil, keystore.ErrAuthenticationRequired
	}
	if len(blob) < keystore.IVSize+c.aead.Overhead() {
		return nil, fmt.Errorf("software keystore: blob truncated: %d bytes", len(blob))
	}
	iv := blob[:keystore.IVSize]
	if !bytes.Equal(iv, c.boundIV) {
		return nil, keystore.ErrInvalidIV
	}
	plaintext, err := c.aead.Open(nil, iv, blob[keystore.IVSize:], []byte(c.name))
	if err != nil {
		return nil, fmt.Errorf("software keystore: decryption failed: %w", err)
	}
	return plaintext, nil
}

// RequiresAuthentication reports whether the cipher is still waiting for
// an authentication grant.
func (c *Cipher) RequiresAuthentication() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requiresAuth && !c.authorized
}

// GrantAuthentication unlocks the cipher after a successful challenge and
// opens the key's validity window. Called by the authentication gate.
func (c *Cipher) GrantAuthentication() {
	c.mu.Lock()
	already := c.authorized
	c.authorized = true
	c.mu.Unlock()

	if !already && c.provider != nil {
		c.provider.noteAuthentication(c.name)
	}
}
