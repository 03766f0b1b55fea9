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

package bolt

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
)

func openTestStore(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return store, path
}

// TestOpenEmptyPath verifies an empty path is rejected.
func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") expected error")
	}
}

// TestRoundTrip verifies Put/Get/Delete in one database.
func TestRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()

	key := storage.BlobKey("refresh-token")
	value := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	if err := store.Put(key, value, nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get() = %v, want %v", got, value)
	}

	if err := store.Delete(key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() of missing key error = %v, want ErrNotFound", err)
	}
}

// TestPersistence verifies values survive close and reopen.
func TestPersistence(t *testing.T) {
	store, path := openTestStore(t)

	if err := store.Put("keys/name", []byte("record"), nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() after close error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("keys/name")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if string(got) != "record" {
		t.Errorf("Get() after reopen = %q, want %q", got, "record")
	}
}

// TestListPrefix verifies cursor-based prefix iteration.
func TestListPrefix(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()

	keys := []string{
		storage.BlobKey("a"),
		storage.BlobKey("b"),
		storage.KeyRecordKey("a"),
	}
	for _, key := range keys {
		if err := store.Put(key, []byte("v"), nil); err != nil {
			t.Fatalf("Put(%q) error = %v", key, err)
		}
	}

	blobs, err := store.List(storage.BlobPrefix)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{storage.BlobKey("a"), storage.BlobKey("b")}
	if len(blobs) != len(want) {
		t.Fatalf("List() = %v, want %v", blobs, want)
	}
	for i := range want {
		if blobs[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, blobs[i], want[i])
		}
	}
}

// TestExists verifies existence checks.
func TestExists(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()

	exists, err := store.Exists("key")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true for missing key")
	}

	if err := store.Put("key", []byte("v"), nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	exists, err = store.Exists("key")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() = false for stored key")
	}
}

// TestEmptyKey verifies empty keys are rejected before hitting bbolt.
func TestEmptyKey(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()

	if err := store.Put("", []byte("v"), nil); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Put(\"\") error = %v, want ErrInvalidKey", err)
	}
}
