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

package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-biometric-storage/pkg/storage/memory"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

func TestEmptyCheckerIsHealthy(t *testing.T) {
	checker := NewChecker()
	ctx := context.Background()

	assert.True(t, checker.Healthy(ctx))
	results := checker.Check(ctx)
	require.Len(t, results, 1)
	assert.Equal(t, StatusHealthy, results[0].Status)
}

func TestRegisterAndUnregister(t *testing.T) {
	checker := NewChecker()
	ctx := context.Background()

	checker.RegisterCheck("failing", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy, Error: "down"}
	})
	assert.False(t, checker.Healthy(ctx))

	results := checker.Check(ctx)
	require.Len(t, results, 1)
	assert.Equal(t, "failing", results[0].Name, "name defaults to the registration key")

	checker.UnregisterCheck("failing")
	assert.True(t, checker.Healthy(ctx))
}

func TestDegradedIsStillHealthy(t *testing.T) {
	checker := NewChecker()
	checker.RegisterCheck("degraded", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusDegraded}
	})
	assert.True(t, checker.Healthy(context.Background()),
		"degraded capability must not fail the health probe")
}

func TestStorageCheck(t *testing.T) {
	store := memory.New()
	check := StorageCheck("blob_store", store)

	result := check(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)

	store.Close()
	result = check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.NotEmpty(t, result.Error)
}

func TestAuthAvailabilityCheck(t *testing.T) {
	status := types.CanAuthenticateSuccess
	check := AuthAvailabilityCheck("authentication", func() types.CanAuthenticateStatus {
		return status
	})

	result := check(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)

	status = types.CanAuthenticateNoBiometricEnrolled
	result = check(context.Background())
	assert.Equal(t, StatusDegraded, result.Status)
	assert.Contains(t, result.Message, "no_biometric_enrolled")
}
