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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpWrite, StatusSuccess))
	RecordOperation(OpWrite, StatusSuccess)
	after := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpWrite, StatusSuccess))
	assert.Equal(t, before+1, after)
}

func TestRecordError(t *testing.T) {
	before := testutil.ToFloat64(ErrorsTotal.WithLabelValues(OpRead, "auth_canceled"))
	RecordError(OpRead, "auth_canceled")
	after := testutil.ToFloat64(ErrorsTotal.WithLabelValues(OpRead, "auth_canceled"))
	assert.Equal(t, before+1, after)
}

func TestRecordAuthOutcome(t *testing.T) {
	before := testutil.ToFloat64(AuthOutcomesTotal.WithLabelValues("success"))
	RecordAuthOutcome("success")
	after := testutil.ToFloat64(AuthOutcomesTotal.WithLabelValues("success"))
	assert.Equal(t, before+1, after)
}

func TestRecordKeyInvalidation(t *testing.T) {
	before := testutil.ToFloat64(KeyInvalidationsTotal.WithLabelValues(OpRead))
	RecordKeyInvalidation(OpRead)
	after := testutil.ToFloat64(KeyInvalidationsTotal.WithLabelValues(OpRead))
	assert.Equal(t, before+1, after)
}

func TestTimer(t *testing.T) {
	timer := NewTimer(OpWrite)
	time.Sleep(time.Millisecond)
	d := timer.ObserveDuration()
	assert.Greater(t, d, time.Duration(0))
}
