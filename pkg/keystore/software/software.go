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

// Package software provides a software implementation of the keystore
// Provider: AES-GCM keys persisted through a storage backend, with
// enrollment-generation tracking standing in for hardware key
// invalidation and a per-name freshness clock standing in for the
// platform's authentication validity window.
package software

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jeremyhahn/go-biometric-storage/pkg/keystore"
	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// keyRecord is the persisted form of one key. The raw key bytes only
// ever live in the key storage backend, never in a ciphertext blob.
type keyRecord struct {
	Key                  []byte           `json:"key"`
	Policy               *types.KeyPolicy `json:"policy"`
	CreatedAt            time.Time        `json:"created_at"`
	EnrollmentGeneration uint64           `json:"enrollment_generation"`
}

// Provider is a software keystore.Provider.
type Provider struct {
	mu         sync.Mutex
	store      storage.Backend
	enrollment keystore.EnrollmentSource
	now        func() time.Time
	lastAuth   map[string]time.Time
	closed     bool
}

// Compile-time interface check.
var _ keystore.Provider = (*Provider)(nil)

// Config configures the software provider.
type Config struct {
	// KeyStorage persists key records. Required.
	KeyStorage storage.Backend

	// Enrollment reports the device's biometric enrollment state.
	// Required.
	Enrollment keystore.EnrollmentSource

	// Clock overrides the time source. Tests use this to expire
	// authentication validity windows; nil means time.Now.
	Clock func() time.Time
}

// NewProvider creates a software provider from config.
func NewProvider(config *Config) (*Provider, error) {
	if config == nil || config.KeyStorage == nil {
		return nil, fmt.Errorf("software keystore: KeyStorage is required")
	}
	if config.Enrollment == nil {
		return nil, fmt.Errorf("software keystore: Enrollment is required")
	}
	now := config.Clock
	if now == nil {
		now = time.Now
	}
	return &Provider{
		store:      config.KeyStorage,
		enrollment: config.Enrollment,
		now:        now,
		lastAuth:   make(map[string]time.Time),
	}, nil
}

// CreateKey creates the key for name with the given policy.
func (p *Provider) CreateKey(ctx context.Context, name string, policy *types.KeyPolicy) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return keystore.ErrClosed
	}
	if name == "" {
		return fmt.Errorf("%w: name", types.ErrMissingArgument)
	}
	exists, err := p.store.Exists(storage.KeyRecordKey(name))
	if err != nil {
		return fmt.Errorf("software keystore: failed to check key %q: %w", name, err)
	}
	if exists {
		return keystore.ErrKeyExists
	}
	_, err = p.createLocked(name, policy)
	return err
}

// EncryptCipher returns an encryption cipher for name, creating the key
// with policy if absent.
func (p *Provider) EncryptCipher(ctx context.Context, name string, policy *types.KeyPolicy) (types.Cipher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, keystore.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name", types.ErrMissingArgument)
	}

	rec, err := p.loadLocked(name)
	if err != nil {
		if !errors.Is(err, keystore.ErrKeyNotFound) {
			return nil, err
		}
		rec, err = p.createLocked(name, policy)
		if err != nil {
			return nil, err
		}
	} else if err := p.checkInvalidationLocked(rec); err != nil {
		return nil, err
	}

	aead, err := newAEAD(rec.Key)
	if err != nil {
		return nil, err
	}
	return &Cipher{
		provider:     p,
		name:         name,
		aead:         aead,
		mode:         modeEncrypt,
		requiresAuth: rec.Policy.AuthenticationRequired,
		authorized:   p.freshLocked(name, rec.Policy),
	}, nil
}

// DecryptCipher returns a decryption cipher for name bound to iv. It
// never creates a key.
func (p *Provider) DecryptCipher(ctx context.Context, name string, iv []byte) (types.Cipher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, keystore.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name", types.ErrMissingArgument)
	}
	if len(iv) != keystore.IVSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", keystore.ErrInvalidIV, len(iv), keystore.IVSize)
	}

	rec, err := p.loadLocked(name)
	if err != nil {
		return nil, err
	}
	if err := p.checkInvalidationLocked(rec); err != nil {
		return nil, err
	}

	aead, err := newAEAD(rec.Key)
	if err != nil {
		return nil, err
	}
	boundIV := make([]byte, len(iv))
	copy(boundIV, iv)
	return &Cipher{
		provider:     p,
		name:         name,
		aead:         aead,
		mode:         modeDecrypt,
		boundIV:      boundIV,
		requiresAuth: rec.Policy.AuthenticationRequired,
		authorized:   p.freshLocked(name, rec.Policy),
	}, nil
}

// HasKey reports whether a key record exists for name.
func (p *Provider) HasKey(ctx context.Context, name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false, keystore.ErrClosed
	}
	exists, err := p.store.Exists(storage.KeyRecordKey(name))
	if err != nil {
		return false, fmt.Errorf("software keystore: failed to check key %q: %w", name, err)
	}
	return exists, nil
}

// Policy returns the policy the key for name was created with.
func (p *Provider) Policy(ctx context.Context, name string) (*types.KeyPolicy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, keystore.ErrClosed
	}
	rec, err := p.loadLocked(name)
	if err != nil {
		return nil, err
	}
	policy := *rec.Policy
	return &policy, nil
}

// DeleteKey removes the key record for name. Idempotent.
func (p *Provider) DeleteKey(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return keystore.ErrClosed
	}
	if name == "" {
		return fmt.Errorf("%w: name", types.ErrMissingArgument)
	}
	delete(p.lastAuth, name)
	if err := p.store.Delete(storage.KeyRecordKey(name)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("software keystore: failed to delete key %q: %w", name, err)
	}
	return nil
}

// Close marks the provider closed. The storage backend is owned by the
// caller and is not closed here.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.lastAuth = nil
	return nil
}

// createLocked generates a fresh key and persists its record. Caller
// holds p.mu.
func (p *Provider) createLocked(name string, policy *types.KeyPolicy) (*keyRecord, error) {
	if policy == nil {
		policy = types.DefaultKeyPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("software keystore: %w", err)
	}

	key := make([]byte, policy.KeySize/8)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("software keystore: failed to generate key: %w", err)
	}
	gen, err := p.enrollment.Generation()
	if err != nil {
		return nil, fmt.Errorf("software keystore: failed to read enrollment state: %w", err)
	}

	pol := *policy
	rec := &keyRecord{
		Key:                  key,
		Policy:               &pol,
		CreatedAt:            p.now(),
		EnrollmentGeneration: gen,
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("software keystore: failed to encode key record: %w", err)
	}
	if err := p.store.Put(storage.KeyRecordKey(name), encoded, nil); err != nil {
		return nil, fmt.Errorf("software keystore: failed to store key %q: %w", name, err)
	}
	return rec, nil
}

// loadLocked loads the key record for name. Caller holds p.mu.
func (p *Provider) loadLocked(name string) (*keyRecord, error) {
	encoded, err := p.store.Get(storage.KeyRecordKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, keystore.ErrKeyNotFound
		}
		return nil, fmt.Errorf("software keystore: failed to load key %q: %w", name, err)
	}
	var rec keyRecord
	if err := json.Unmarshal(encoded, &rec); err != nil {
		return nil, fmt.Errorf("software keystore: corrupt key record for %q: %w", name, err)
	}
	if rec.Policy == nil {
		return nil, fmt.Errorf("software keystore: corrupt key record for %q: missing policy", name)
	}
	return &rec, nil
}

// checkInvalidationLocked models hardware key invalidation: a key whose
// policy opted into enrollment invalidation becomes permanently unusable
// once the enrollment generation moves past the one recorded at
// creation. On fallback platforms (HardwareInvalidation false) the key
// store stays silent and the session's snapshot comparison is the only
// signal.
func (p *Provider) checkInvalidationLocked(rec *keyRecord) error {
	if !rec.Policy.InvalidatedByEnrollment || !rec.Policy.HardwareInvalidation {
		return nil
	}
	gen, err := p.enrollment.Generation()
	if err != nil {
		return fmt.Errorf("software keystore: failed to read enrollment state: %w", err)
	}
	if gen != rec.EnrollmentGeneration {
		return keystore.ErrKeyInvalidated
	}
	return nil
}

// freshLocked reports whether the key for name is usable without a new
// authentication. Caller holds p.mu.
func (p *Provider) freshLocked(name string, policy *types.KeyPolicy) bool {
	if !policy.AuthenticationRequired {
		return true
	}
	window, ok := policy.ValidityWindow()
	if !ok {
		return false
	}
	last, ok := p.lastAuth[name]
	if !ok {
		return false
	}
	return p.now().Sub(last) <= window
}

// noteAuthentication records a successful authentication for name,
// opening the validity window.
func (p *Provider) noteAuthentication(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastAuth != nil {
		p.lastAuth[name] = p.now()
	}
}

// newAEAD builds the AES-GCM transform for a raw key.
func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("software keystore: failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("software keystore: failed to initialize GCM: %w", err)
	}
	return aead, nil
}
