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
	"sync"
)

var (
	// ErrNotInitialized indicates Initialize has not been called.
	ErrNotInitialized = errors.New("biostorage: storage not initialized")

	// ErrAlreadyInitialized indicates Initialize was called twice.
	ErrAlreadyInitialized = errors.New("biostorage: already initialized")
)

// Process-wide service instance. Host applications that don't want to
// thread a *Service through their call graph initialize once at startup
// and use the package-level accessors.
var (
	service  *Service
	initOnce sync.Once
	initMu   sync.RWMutex
)

// Initialize sets up the process-wide service instance. It should be
// called once at application startup; subsequent calls return
// ErrAlreadyInitialized.
func Initialize(config *Config) error {
	var initErr error
	initialized := false

	initOnce.Do(func() {
		initialized = true
		svc, err := New(config)
		if err != nil {
			initErr = err
			return
		}
		initMu.Lock()
		service = svc
		initMu.Unlock()
	})

	if !initialized && initErr == nil {
		return ErrAlreadyInitialized
	}
	return initErr
}

// Instance returns the process-wide service, or ErrNotInitialized.
func Instance() (*Service, error) {
	initMu.RLock()
	defer initMu.RUnlock()
	if service == nil {
		return nil, ErrNotInitialized
	}
	return service, nil
}

// Reset clears the process-wide instance so Initialize can run again.
// Tests use this; production code has no reason to.
func Reset() {
	initMu.Lock()
	defer initMu.Unlock()
	service = nil
	initOnce = sync.Once{}
}
