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

package config

import (
	"fmt"

	"github.com/jeremyhahn/go-biometric-storage/pkg/authgate/credential"
	"github.com/jeremyhahn/go-biometric-storage/pkg/biostorage"
	"github.com/jeremyhahn/go-biometric-storage/pkg/keystore/software"
	"github.com/jeremyhahn/go-biometric-storage/pkg/logging"
	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
	boltstore "github.com/jeremyhahn/go-biometric-storage/pkg/storage/bolt"
	filestore "github.com/jeremyhahn/go-biometric-storage/pkg/storage/file"
	memstore "github.com/jeremyhahn/go-biometric-storage/pkg/storage/memory"
)

// NewBackend opens the configured storage backend.
func (c *Config) NewBackend() (storage.Backend, error) {
	switch c.Storage.Backend {
	case StoreMemory:
		return memstore.New(), nil
	case StoreFile:
		return filestore.New(c.Storage.Path)
	case StoreBolt:
		return boltstore.Open(c.Storage.Path)
	default:
		return nil, fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
}

// App bundles the wired components a host works with: the storage
// service itself plus the gate and enrollment registry needed for
// credential and enrollment management.
type App struct {
	Service    *biostorage.Service
	Gate       *credential.Gate
	Enrollment *software.Enrollment

	store storage.Backend
}

// Close releases the underlying storage backend.
func (a *App) Close() error { return a.store.Close() }

// NewApp assembles a fully wired service on the configured backend and
// the passcode credential gate. The reader is supplied by the caller
// because collecting a passcode is a UI concern; the CLI passes a
// terminal reader.
func (c *Config) NewApp(reader credential.PasscodeReader) (*App, error) {
	store, err := c.NewBackend()
	if err != nil {
		return nil, err
	}

	enrollment, err := software.NewPersistentEnrollment(store)
	if err != nil {
		store.Close()
		return nil, err
	}

	keys, err := software.NewProvider(&software.Config{
		KeyStorage: store,
		Enrollment: enrollment,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	gate, err := credential.New(&credential.Config{
		Store:       store,
		Reader:      reader,
		MaxAttempts: c.Gate.MaxAttempts,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	service, err := biostorage.New(&biostorage.Config{
		Keys:          keys,
		Blobs:         store,
		Gate:          gate,
		Detector:      gate,
		Enrollment:    enrollment,
		DefaultPolicy: c.KeyPolicy(),
		Logger:        logging.NewLogger(c.Debug),
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return &App{
		Service:    service,
		Gate:       gate,
		Enrollment: enrollment,
		store:      store,
	}, nil
}
