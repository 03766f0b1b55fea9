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

// Package session implements the authenticated-encryption storage
// session: the state machine that orchestrates the key store, the blob
// store, and the authentication gate into the read/write/delete
// protocol, including key invalidation recovery.
//
// Operation flow per name:
//
//	Idle -> AcquiringCipher -> {AwaitingAuthentication | ReadyNoAuth}
//	     -> PerformingIO -> Complete | Failed
//
// Operations on the same name are serialized; different names proceed
// concurrently. When a key-acquisition failure and an authentication
// failure could both be blamed, invalidation takes precedence: it is
// structural, and authentication cannot proceed meaningfully without a
// valid key.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jeremyhahn/go-biometric-storage/pkg/authgate"
	"github.com/jeremyhahn/go-biometric-storage/pkg/correlation"
	"github.com/jeremyhahn/go-biometric-storage/pkg/fingerprint"
	"github.com/jeremyhahn/go-biometric-storage/pkg/keystore"
	"github.com/jeremyhahn/go-biometric-storage/pkg/logging"
	"github.com/jeremyhahn/go-biometric-storage/pkg/metrics"
	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// state tracks where an operation is in the protocol, for logging.
type state string

const (
	stateIdle         state = "idle"
	stateAcquiring    state = "acquiring_cipher"
	stateAwaitingAuth state = "awaiting_authentication"
	stateReadyNoAuth  state = "ready_no_auth"
	statePerformingIO state = "performing_io"
	stateComplete     state = "complete"
	stateFailed       state = "failed"
)

// Session orchestrates key store, blob store, and authentication gate.
// Safe for concurrent use.
type Session struct {
	keys       keystore.Provider
	blobs      storage.Backend
	gate       authgate.Gate
	snapshots  *fingerprint.Cache
	enrollment keystore.EnrollmentSource
	policy     *types.KeyPolicy
	logger     *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Config configures a Session.
type Config struct {
	// Keys is the opaque key store adapter. Required.
	Keys keystore.Provider

	// Blobs is the ciphertext blob store. Required.
	Blobs storage.Backend

	// Gate presents authentication challenges. Required. Wrap it with
	// authgate.Guarded if it is not already prompt-serialized.
	Gate authgate.Gate

	// Enrollment reports the current biometric enrollment state. Required
	// on fallback platforms (DefaultPolicy.HardwareInvalidation false);
	// optional otherwise.
	Enrollment keystore.EnrollmentSource

	// DefaultPolicy is the policy new keys are created with. Nil means
	// types.DefaultKeyPolicy.
	DefaultPolicy *types.KeyPolicy

	// Logger defaults to logging.DefaultLogger.
	Logger *logging.Logger
}

// New creates a Session from config.
func New(config *Config) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("session: config is required")
	}
	if config.Keys == nil {
		return nil, fmt.Errorf("session: key store is required")
	}
	if config.Blobs == nil {
		return nil, fmt.Errorf("session: blob store is required")
	}
	if config.Gate == nil {
		return nil, fmt.Errorf("session: authentication gate is required")
	}
	policy := config.DefaultPolicy
	if policy == nil {
		policy = types.DefaultKeyPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if !policy.HardwareInvalidation && config.Enrollment == nil {
		return nil, fmt.Errorf("session: enrollment source is required on fallback platforms")
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Session{
		keys:       config.Keys,
		blobs:      config.Blobs,
		gate:       config.Gate,
		snapshots:  fingerprint.NewCache(config.Blobs),
		enrollment: config.Enrollment,
		policy:     policy,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}, nil
}

// Write encrypts content and stores it under name, authenticating first
// when the key policy demands it. The blob is written in a single
// all-or-nothing overwrite; on any error the previous value survives.
func (s *Session) Write(ctx context.Context, name string, content []byte, prompt *types.PromptConfig) error {
	if name == "" {
		return fmt.Errorf("%w: name", types.ErrMissingArgument)
	}
	unlock := s.lockName(name)
	defer unlock()

	ctx, cid := correlation.EnsureCorrelationID(ctx)
	log := s.logger.With("op", "write", "name", name, "correlation_id", cid)
	timer := metrics.NewTimer(metrics.OpWrite)
	defer timer.ObserveDuration()

	err := s.write(ctx, name, content, prompt, log)
	if err != nil {
		log.Debug("write failed", "state", stateFailed, "error", err.Error())
		metrics.RecordOperation(metrics.OpWrite, metrics.StatusError)
		return err
	}
	log.Debug("write complete", "state", stateComplete)
	metrics.RecordOperation(metrics.OpWrite, metrics.StatusSuccess)
	return nil
}

func (s *Session) write(ctx context.Context, name string, content []byte, prompt *types.PromptConfig, log *logging.Logger) error {
	log.Debug("acquiring encryption cipher", "state", stateAcquiring)

	// Key invalidation during write is recoverable exactly once: the
	// ciphertext is about to be replaced anyway, so the stale key and
	// blob are deleted and the key recreated. A second invalidation
	// means enrollment is changing underneath us; give up.
	var cipher types.Cipher
	recreated := false
	for {
		var err error
		cipher, err = s.keys.EncryptCipher(ctx, name, s.policy)
		if err == nil {
			break
		}
		if !errors.Is(err, keystore.ErrKeyInvalidated) {
			return s.wrapStoreError(err)
		}
		metrics.RecordKeyInvalidation(metrics.OpWrite)
		if recreated {
			return ErrKeyPermanentlyInvalidated
		}
		log.Info("key invalidated during write, recreating")
		if err := s.wipeKeyAndBlob(ctx, name); err != nil {
			return err
		}
		recreated = true
	}

	// Optimistic path: the cipher may already be usable, either because
	// the policy does not require authentication or because the
	// freshness window is still open. If the key store disagrees at use
	// time (the window expired between acquisition and use), fall
	// through to the challenge rather than failing.
	if !cipher.RequiresAuthentication() {
		log.Debug("attempting direct seal", "state", stateReadyNoAuth)
		blob, err := cipher.Seal(content)
		if err == nil {
			return s.persist(ctx, name, blob, log)
		}
		if !errors.Is(err, keystore.ErrAuthenticationRequired) {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	log.Debug("presenting authentication challenge", "state", stateAwaitingAuth)
	outcome, err := s.authenticate(ctx, prompt, cipher)
	if err != nil {
		return err
	}

	bound := outcome.Cipher
	if bound == nil {
		// The policy does not bind a cipher to the challenge; re-acquire
		// now that the validity window is open.
		bound, err = s.keys.EncryptCipher(ctx, name, s.policy)
		if err != nil {
			return s.wrapStoreError(err)
		}
	}
	blob, err := bound.Seal(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := s.persist(ctx, name, blob, log); err != nil {
		return err
	}

	// Fallback platforms: remember what the enrolled set looked like at
	// this authenticated write, so a silent enrollment change is
	// detectable at the next read.
	if !s.policy.HardwareInvalidation {
		snapshot, err := s.enrollment.Snapshot()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if err := s.snapshots.Save(snapshot); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageIO, err)
		}
	}
	return nil
}

// Read decrypts and returns the value stored under name. A name that was
// never written returns ErrBlobNotFound; a key invalidated by an
// enrollment change returns ErrBiometricDataChanged after clearing the
// now-unrecoverable local state.
func (s *Session) Read(ctx context.Context, name string, prompt *types.PromptConfig) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name", types.ErrMissingArgument)
	}
	unlock := s.lockName(name)
	defer unlock()

	ctx, cid := correlation.EnsureCorrelationID(ctx)
	log := s.logger.With("op", "read", "name", name, "correlation_id", cid)
	timer := metrics.NewTimer(metrics.OpRead)
	defer timer.ObserveDuration()

	content, err := s.read(ctx, name, prompt, log)
	if err != nil {
		log.Debug("read failed", "state", stateFailed, "error", err.Error())
		metrics.RecordOperation(metrics.OpRead, metrics.StatusError)
		return nil, err
	}
	log.Debug("read complete", "state", stateComplete)
	metrics.RecordOperation(metrics.OpRead, metrics.StatusSuccess)
	return content, nil
}

func (s *Session) read(ctx context.Context, name string, prompt *types.PromptConfig, log *logging.Logger) ([]byte, error) {
	blob, err := s.blobs.Get(storage.BlobKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	if len(blob) < keystore.IVSize {
		return nil, fmt.Errorf("%w: blob truncated to %d bytes", ErrInternal, len(blob))
	}

	log.Debug("acquiring decryption cipher", "state", stateAcquiring)
	cipher, err := s.keys.DecryptCipher(ctx, name, blob[:keystore.IVSize])
	if err != nil {
		switch {
		case errors.Is(err, keystore.ErrKeyInvalidated):
			// Enrollment changed and the platform destroyed the key.
		case errors.Is(err, keystore.ErrKeyNotFound):
			// A blob without a resolvable key is the same invalidation,
			// observed on platforms that delete rather than poison keys.
		default:
			return nil, s.wrapStoreError(err)
		}
		metrics.RecordKeyInvalidation(metrics.OpRead)
		log.Info("key invalidated, clearing unrecoverable state")
		if err := s.wipeAll(ctx, name); err != nil {
			return nil, err
		}
		return nil, ErrBiometricDataChanged
	}

	if cipher.RequiresAuthentication() {
		log.Debug("presenting authentication challenge", "state", stateAwaitingAuth)
		outcome, err := s.authenticate(ctx, prompt, cipher)
		if err != nil {
			return nil, err
		}
		if bound := outcome.Cipher; bound != nil {
			cipher = bound
		} else {
			cipher, err = s.keys.DecryptCipher(ctx, name, blob[:keystore.IVSize])
			if err != nil {
				return nil, s.wrapStoreError(err)
			}
		}
	} else {
		log.Debug("cipher fresh, skipping challenge", "state", stateReadyNoAuth)
	}

	// Fallback platforms: the key store cannot notice enrollment
	// changes, so compare the current enrolled set against the snapshot
	// captured at the last authenticated write. A mismatch is treated
	// exactly like hardware invalidation.
	if !s.policy.HardwareInvalidation && s.policy.AuthenticationRequired {
		current, err := s.enrollment.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		unchanged, err := s.snapshots.Unchanged(current, s.policy.HardwareInvalidation)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageIO, err)
		}
		if !unchanged {
			metrics.RecordKeyInvalidation(metrics.OpRead)
			log.Info("enrollment snapshot mismatch, clearing unrecoverable state")
			if err := s.wipeAll(ctx, name); err != nil {
				return nil, err
			}
			return nil, ErrBiometricDataChanged
		}
	}

	log.Debug("decrypting blob", "state", statePerformingIO)
	content, err := cipher.Open(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return content, nil
}

// Delete removes the key, the blob, and the fingerprint snapshot for
// name. Idempotent: deleting a name that was never written succeeds.
func (s *Session) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: name", types.ErrMissingArgument)
	}
	unlock := s.lockName(name)
	defer unlock()

	ctx, cid := correlation.EnsureCorrelationID(ctx)
	log := s.logger.With("op", "delete", "name", name, "correlation_id", cid)
	timer := metrics.NewTimer(metrics.OpDelete)
	defer timer.ObserveDuration()

	if err := s.wipeAll(ctx, name); err != nil {
		metrics.RecordOperation(metrics.OpDelete, metrics.StatusError)
		return err
	}
	log.Debug("delete complete", "state", stateComplete)
	metrics.RecordOperation(metrics.OpDelete, metrics.StatusSuccess)
	return nil
}

// Exists reports whether a value is stored under name.
func (s *Session) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("%w: name", types.ErrMissingArgument)
	}
	exists, err := s.blobs.Exists(storage.BlobKey(name))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	return exists, nil
}

// authenticate presents the challenge and converts terminal outcomes to
// session errors. Timeouts belong to the gate; this layer only observes
// them.
func (s *Session) authenticate(ctx context.Context, prompt *types.PromptConfig, bound types.Cipher) (*types.AuthOutcome, error) {
	if prompt == nil {
		return nil, fmt.Errorf("%w: prompt config", types.ErrMissingArgument)
	}
	challenge, err := authgate.NewChallenge(prompt)
	if err != nil {
		return nil, err
	}

	outcome, err := s.gate.Authenticate(ctx, challenge, bound)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			metrics.RecordAuthOutcome(string(types.AuthCanceled))
			return nil, fmt.Errorf("%w: %v", ErrAuthCanceled, err)
		case errors.Is(err, context.DeadlineExceeded):
			metrics.RecordAuthOutcome(string(types.AuthTimedOut))
			return nil, fmt.Errorf("%w: %v", ErrAuthTimedOut, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	metrics.RecordAuthOutcome(string(outcome.Status))
	switch outcome.Status {
	case types.AuthSuccess:
		return outcome, nil
	case types.AuthCanceled:
		return nil, ErrAuthCanceled
	case types.AuthTimedOut:
		return nil, ErrAuthTimedOut
	case types.AuthNotAttached:
		return nil, ErrNotAttached
	case types.AuthFailed:
		if outcome.Reason == types.ReasonNotEnrolled {
			return nil, ErrNoBiometricEnrolled
		}
		if outcome.Diagnostic != "" {
			return nil, fmt.Errorf("%w: %s", ErrAuthFailed, outcome.Diagnostic)
		}
		return nil, ErrAuthFailed
	default:
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrInternal, outcome.Status)
	}
}

// persist writes the blob in one atomic overwrite. The context is
// checked first so caller cancellation never results in a partial or
// torn write; past this point the overwrite completes.
func (s *Session) persist(ctx context.Context, name string, blob []byte, log *logging.Logger) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthCanceled, err)
	}
	log.Debug("writing blob", "state", statePerformingIO, "bytes", len(blob))
	if err := s.blobs.Put(storage.BlobKey(name), blob, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	return nil
}

// wipeKeyAndBlob deletes the key and blob for name, tolerating absence.
func (s *Session) wipeKeyAndBlob(ctx context.Context, name string) error {
	if err := s.keys.DeleteKey(ctx, name); err != nil {
		return s.wrapStoreError(err)
	}
	if err := s.blobs.Delete(storage.BlobKey(name)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	return nil
}

// wipeAll additionally clears the fingerprint snapshot.
func (s *Session) wipeAll(ctx context.Context, name string) error {
	if err := s.wipeKeyAndBlob(ctx, name); err != nil {
		return err
	}
	if err := s.snapshots.Clear(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	return nil
}

// wrapStoreError classifies key store failures that are not invalidation.
func (s *Session) wrapStoreError(err error) error {
	switch {
	case errors.Is(err, types.ErrMissingArgument):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrAuthCanceled, err)
	case errors.Is(err, keystore.ErrKeyInvalidated):
		return ErrKeyPermanentlyInvalidated
	default:
		return fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
}

// lockName serializes operations per name. Cross-name operations run
// concurrently; the prompt guard inside the gate is what keeps two
// challenges from overlapping.
func (s *Session) lockName(name string) func() {
	s.mu.Lock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
