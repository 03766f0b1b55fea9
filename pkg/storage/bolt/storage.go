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

// Package bolt provides a bbolt-backed implementation of storage.Backend.
// A single database file holds every namespace; writes are transactional,
// which gives the all-or-nothing overwrite the blob store contract
// requires for free.
package bolt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
)

var bucketData = []byte("data")

// Storage is a bbolt-backed storage.Backend.
type Storage struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ storage.Backend = (*Storage)(nil)

// Open opens or creates the database at dbPath. The parent directory is
// created with 0700 permissions if it does not exist.
func Open(dbPath string) (*Storage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("bolt storage: database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("bolt storage: failed to create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt storage: failed to open database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketData)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt storage: failed to create bucket: %w", err)
	}
	return &Storage{db: db}, nil
}

// Get retrieves the value for key.
func (s *Storage) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketData).Get([]byte(key))
		if value == nil {
			return storage.ErrNotFound
		}
		out = make([]byte, len(value))
		copy(out, value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put stores value under key in one transaction.
func (s *Storage) Put(key string, value []byte, opts *storage.Options) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketData).Put([]byte(key), value)
	})
}

// Delete removes key. Returns storage.ErrNotFound if absent.
func (s *Storage) Delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketData)
		if b.Get([]byte(key)) == nil {
			return storage.ErrNotFound
		}
		return b.Delete([]byte(key))
	})
}

// List returns all keys with the given prefix in sorted order.
func (s *Storage) List(prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketData).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Exists reports whether key is present.
func (s *Storage) Exists(key string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketData).Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

// Close closes the underlying database.
func (s *Storage) Close() error { return s.db.Close() }
