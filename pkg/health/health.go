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

// Package health reports whether the storage subsystem and its stores are
// usable. Long-running hosts embed the Checker behind their own probe
// endpoints.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jeremyhahn/go-biometric-storage/pkg/storage"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// Status represents the health status of a component.
type Status string

const (
	// StatusHealthy indicates the component is operating normally.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the component is not functioning.
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded indicates the component works with reduced capability
	// (e.g. storage up but biometric hardware closed).
	StatusDegraded Status = "degraded"
)

// CheckResult is the result of a single health check.
type CheckResult struct {
	Name    string        `json:"name"`
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// CheckFunc performs one health check. It should return quickly.
type CheckFunc func(ctx context.Context) CheckResult

// Checker manages named health checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates an empty health checker.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]CheckFunc)}
}

// RegisterCheck adds or replaces a health check under name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	if check == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// UnregisterCheck removes a health check.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Check runs every registered check and returns the results. With no
// checks registered the subsystem is reported healthy.
func (c *Checker) Check(ctx context.Context) []CheckResult {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	if len(checks) == 0 {
		return []CheckResult{{
			Name:    "default",
			Status:  StatusHealthy,
			Message: "No checks configured",
		}}
	}

	results := make([]CheckResult, 0, len(checks))
	for name, check := range checks {
		start := time.Now()
		result := check(ctx)
		result.Latency = time.Since(start)
		if result.Name == "" {
			result.Name = name
		}
		results = append(results, result)
	}
	return results
}

// Healthy reports whether every check passed.
func (c *Checker) Healthy(ctx context.Context) bool {
	for _, r := range c.Check(ctx) {
		if r.Status == StatusUnhealthy {
			return false
		}
	}
	return true
}

// StorageCheck returns a CheckFunc that probes a storage backend with a
// cheap existence query.
func StorageCheck(name string, backend storage.Backend) CheckFunc {
	return func(ctx context.Context) CheckResult {
		if _, err := backend.Exists(storage.StatePrefix + "healthcheck"); err != nil {
			return CheckResult{
				Name:   name,
				Status: StatusUnhealthy,
				Error:  err.Error(),
			}
		}
		return CheckResult{Name: name, Status: StatusHealthy}
	}
}

// AuthAvailabilityCheck returns a CheckFunc that reports degraded when
// authentication is not currently possible. It never reports unhealthy;
// missing biometric hardware is a capability, not a failure.
func AuthAvailabilityCheck(name string, can func() types.CanAuthenticateStatus) CheckFunc {
	return func(ctx context.Context) CheckResult {
		status := can()
		if status == types.CanAuthenticateSuccess {
			return CheckResult{Name: name, Status: StatusHealthy}
		}
		return CheckResult{
			Name:    name,
			Status:  StatusDegraded,
			Message: fmt.Sprintf("authentication unavailable: %s", status),
		}
	}
}
