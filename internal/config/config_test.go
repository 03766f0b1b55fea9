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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

func TestLoadDefaults(t *testing.T) {
	// The bolt default needs a path, so override the backend.
	t.Setenv("BSTORE_STORAGE_BACKEND", StoreMemory)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, StoreMemory, cfg.Storage.Backend)
	assert.True(t, cfg.Policy.AuthenticationRequired)
	assert.Equal(t, 10, cfg.Policy.ValiditySeconds)
	assert.True(t, cfg.Policy.InvalidateOnEnrollment)
	assert.True(t, cfg.Policy.HardwareInvalidation)
	assert.Equal(t, 256, cfg.Policy.KeySize)
	assert.Equal(t, 3, cfg.Gate.MaxAttempts)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
debug: true
storage:
  backend: file
  path: /var/lib/bstore
policy:
  authentication_required: false
  validity_seconds: 30
  key_size: 128
gate:
  max_attempts: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, StoreFile, cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/bstore", cfg.Storage.Path)
	assert.False(t, cfg.Policy.AuthenticationRequired)
	assert.Equal(t, 30, cfg.Policy.ValiditySeconds)
	assert.Equal(t, 128, cfg.Policy.KeySize)
	assert.Equal(t, 5, cfg.Gate.MaxAttempts)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Storage: StorageConfig{Backend: StoreMemory},
			Policy: PolicyConfig{
				AuthenticationRequired: true,
				ValiditySeconds:        10,
				KeySize:                256,
			},
			Gate: GateConfig{MaxAttempts: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "memory backend",
			mutate: func(c *Config) {},
		},
		{
			name: "file backend with path",
			mutate: func(c *Config) {
				c.Storage.Backend = StoreFile
				c.Storage.Path = "/tmp/bstore"
			},
		},
		{
			name:    "file backend without path",
			mutate:  func(c *Config) { c.Storage.Backend = StoreFile },
			wantErr: true,
		},
		{
			name:    "bolt backend without path",
			mutate:  func(c *Config) { c.Storage.Backend = StoreBolt },
			wantErr: true,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Storage.Backend = "redis" },
			wantErr: true,
		},
		{
			name:    "invalid key size",
			mutate:  func(c *Config) { c.Policy.KeySize = 99 },
			wantErr: true,
		},
		{
			name:    "negative attempts",
			mutate:  func(c *Config) { c.Gate.MaxAttempts = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKeyPolicyMapping(t *testing.T) {
	cfg := &Config{
		Policy: PolicyConfig{
			AuthenticationRequired: true,
			ValiditySeconds:        30,
			InvalidateOnEnrollment: true,
			HardwareInvalidation:   false,
			StrongBoxPreferred:     true,
			KeySize:                256,
		},
	}

	policy := cfg.KeyPolicy()
	assert.True(t, policy.AuthenticationRequired)
	assert.Equal(t, 30, policy.AuthenticationValidity)
	assert.True(t, policy.InvalidatedByEnrollment)
	assert.False(t, policy.HardwareInvalidation)
	assert.True(t, policy.StrongBoxPreferred)
	assert.Equal(t, 256, policy.KeySize)

	// Negative validity collapses to ValidityForever.
	cfg.Policy.ValiditySeconds = -5
	assert.Equal(t, types.ValidityForever, cfg.KeyPolicy().AuthenticationValidity)
}

func TestNewBackend(t *testing.T) {
	memCfg := &Config{Storage: StorageConfig{Backend: StoreMemory}}
	backend, err := memCfg.NewBackend()
	require.NoError(t, err)
	require.NotNil(t, backend)
	backend.Close()

	boltCfg := &Config{Storage: StorageConfig{
		Backend: StoreBolt,
		Path:    filepath.Join(t.TempDir(), "bstore.db"),
	}}
	backend, err = boltCfg.NewBackend()
	require.NoError(t, err)
	require.NotNil(t, backend)
	backend.Close()

	_, err = (&Config{Storage: StorageConfig{Backend: "redis"}}).NewBackend()
	assert.Error(t, err)
}
