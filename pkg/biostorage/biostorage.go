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

// Package biostorage is the application-facing facade over the storage
// session. It exposes the call surface of the subsystem, availability
// probes plus read/write/delete, with tagged results, and collapses the
// internal sentinel errors into the shared error-code taxonomy at this
// boundary.
package biostorage

import (
	"context"
	"fmt"

	"github.com/jeremyhahn/go-biometric-storage/pkg/authgate"
	"github.com/jeremyhahn/go-biometric-storage/pkg/health"
	"github.com/jeremyhahn/go-biometric-storage/pkg/keystore"
	"github.com/jeremyhahn/go-biometric-storage/pkg/logging"
	"github.com/jeremyhahn/go-biometric-storage/pkg/metrics"
	"github.com/jeremyhahn/go-biometric-storage/pkg/session"
	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// ReadStatus tags the three defined results of a read.
type ReadStatus string

const (
	// ReadSucceeded means the content field carries the stored value.
	ReadSucceeded ReadStatus = "succeeded"

	// ReadFileNotExist means nothing is stored under the name. This is a
	// defined empty state, not an error.
	ReadFileNotExist ReadStatus = "file_not_exist"

	// ReadBiometricDataChanged means the enrolled biometric set changed
	// and the stored value is unrecoverable; local state was cleared.
	ReadBiometricDataChanged ReadStatus = "biometric_data_changed"
)

// ReadResult is the tagged result of Read.
type ReadResult struct {
	Status  ReadStatus
	Content string
}

// Service is the top-level API of the subsystem.
type Service struct {
	session  *session.Session
	detector authgate.Detector
	checker  *health.Checker
	logger   *logging.Logger
}

// Config assembles a Service.
type Config struct {
	// Keys is the opaque key store adapter. Required.
	Keys keystore.Provider

	// Blobs is the ciphertext blob store. Required.
	Blobs storage.Backend

	// Gate presents authentication challenges. Required; it is wrapped
	// with the process-wide prompt guard here, so passing an unguarded
	// gate is fine.
	Gate authgate.Gate

	// Detector answers availability probes. Required.
	Detector authgate.Detector

	// Enrollment reports biometric enrollment state; required on
	// fallback platforms.
	Enrollment keystore.EnrollmentSource

	// DefaultPolicy is the policy new keys are created with; nil means
	// types.DefaultKeyPolicy.
	DefaultPolicy *types.KeyPolicy

	// Logger defaults to logging.DefaultLogger.
	Logger *logging.Logger
}

// New assembles a Service from config.
func New(config *Config) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("biostorage: config is required")
	}
	if config.Detector == nil {
		return nil, fmt.Errorf("biostorage: detector is required")
	}
	if config.Gate == nil {
		return nil, fmt.Errorf("biostorage: authentication gate is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	sess, err := session.New(&session.Config{
		Keys:          config.Keys,
		Blobs:         config.Blobs,
		Gate:          authgate.Guarded(config.Gate, nil),
		Enrollment:    config.Enrollment,
		DefaultPolicy: config.DefaultPolicy,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	checker := health.NewChecker()
	checker.RegisterCheck("blob_store", health.StorageCheck("blob_store", config.Blobs))
	checker.RegisterCheck("authentication", health.AuthAvailabilityCheck("authentication", config.Detector.CanAuthenticate))

	return &Service{
		session:  sess,
		detector: config.Detector,
		checker:  checker,
		logger:   logger,
	}, nil
}

// CanAuthenticate reports whether an authentication challenge could
// currently succeed on this device.
func (s *Service) CanAuthenticate() types.CanAuthenticateStatus {
	status := s.detector.CanAuthenticate()
	metrics.RecordOperation(metrics.OpCanAuthenticate, metrics.StatusSuccess)
	return status
}

// AvailableBiometrics returns the biometric classes the device offers.
func (s *Service) AvailableBiometrics() []types.BiometricType {
	return s.detector.AvailableBiometrics()
}

// Write stores content under name, authenticating per the key policy.
func (s *Service) Write(ctx context.Context, name, content string, prompt *types.PromptConfig) error {
	err := s.session.Write(ctx, name, []byte(content), prompt)
	if err != nil {
		metrics.RecordError(metrics.OpWrite, string(CodeOf(err)))
	}
	return err
}

// Read retrieves the value stored under name. Absence and enrollment
// change arrive as tagged statuses, not errors; everything else is a
// typed error classifiable with CodeOf.
func (s *Service) Read(ctx context.Context, name string, prompt *types.PromptConfig) (*ReadResult, error) {
	content, err := s.session.Read(ctx, name, prompt)
	switch {
	case err == nil:
		return &ReadResult{Status: ReadSucceeded, Content: string(content)}, nil
	case isBlobNotFound(err):
		return &ReadResult{Status: ReadFileNotExist}, nil
	case isBiometricDataChanged(err):
		return &ReadResult{Status: ReadBiometricDataChanged}, nil
	default:
		metrics.RecordError(metrics.OpRead, string(CodeOf(err)))
		return nil, err
	}
}

// Delete removes the value stored under name. Idempotent.
func (s *Service) Delete(ctx context.Context, name string) error {
	err := s.session.Delete(ctx, name)
	if err != nil {
		metrics.RecordError(metrics.OpDelete, string(CodeOf(err)))
	}
	return err
}

// Exists reports whether a value is stored under name without touching
// the key or presenting a prompt.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	return s.session.Exists(ctx, name)
}

// Health returns the service health checker. Hosts mount it behind
// their own probe endpoints.
func (s *Service) Health() *health.Checker {
	return s.checker
}
