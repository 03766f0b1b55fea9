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

// Package config loads and validates the host configuration: which blob
// store to use, the key policy new keys are created with, and the
// authentication gate settings.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// Storage backend selectors.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreBolt   = "bolt"
)

// Config is the root configuration document.
type Config struct {
	// Debug enables debug logging.
	Debug bool `mapstructure:"debug" yaml:"debug"`

	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Policy  PolicyConfig  `mapstructure:"policy" yaml:"policy"`
	Gate    GateConfig    `mapstructure:"gate" yaml:"gate"`
}

// StorageConfig selects and parameterizes the blob/key store backend.
type StorageConfig struct {
	// Backend is one of memory, file, bolt.
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the root directory (file) or database file (bolt).
	Path string `mapstructure:"path" yaml:"path"`
}

// PolicyConfig is the key policy applied to newly created keys.
type PolicyConfig struct {
	AuthenticationRequired bool `mapstructure:"authentication_required" yaml:"authentication_required"`
	ValiditySeconds        int  `mapstructure:"validity_seconds" yaml:"validity_seconds"`
	InvalidateOnEnrollment bool `mapstructure:"invalidate_on_enrollment" yaml:"invalidate_on_enrollment"`
	HardwareInvalidation   bool `mapstructure:"hardware_invalidation" yaml:"hardware_invalidation"`
	StrongBoxPreferred     bool `mapstructure:"strongbox_preferred" yaml:"strongbox_preferred"`
	KeySize                int  `mapstructure:"key_size" yaml:"key_size"`
}

// GateConfig parameterizes the authentication gate.
type GateConfig struct {
	// MaxAttempts bounds the credential gate's internal retry loop.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// Load reads configuration from the given file (optional), the
// environment (BSTORE_ prefix), and defaults, in ascending precedence of
// defaults < file < environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("debug", false)
	v.SetDefault("storage.backend", StoreBolt)
	v.SetDefault("storage.path", "")
	v.SetDefault("policy.authentication_required", true)
	v.SetDefault("policy.validity_seconds", 10)
	v.SetDefault("policy.invalidate_on_enrollment", true)
	v.SetDefault("policy.hardware_invalidation", true)
	v.SetDefault("policy.strongbox_preferred", false)
	v.SetDefault("policy.key_size", 256)
	v.SetDefault("gate.max_attempts", 3)

	v.SetEnvPrefix("BSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StoreMemory:
	case StoreFile, StoreBolt:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path is required for the %s backend", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if err := c.KeyPolicy().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Gate.MaxAttempts < 0 {
		return fmt.Errorf("config: gate.max_attempts cannot be negative")
	}
	return nil
}

// KeyPolicy converts the policy section to a types.KeyPolicy.
func (c *Config) KeyPolicy() *types.KeyPolicy {
	validity := c.Policy.ValiditySeconds
	if validity < 0 {
		validity = types.ValidityForever
	}
	return &types.KeyPolicy{
		AuthenticationRequired:  c.Policy.AuthenticationRequired,
		AuthenticationValidity:  validity,
		StrongBoxPreferred:      c.Policy.StrongBoxPreferred,
		InvalidatedByEnrollment: c.Policy.InvalidateOnEnrollment,
		HardwareInvalidation:    c.Policy.HardwareInvalidation,
		KeySize:                 c.Policy.KeySize,
	}
}
