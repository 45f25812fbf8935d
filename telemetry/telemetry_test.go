// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectioncore/overlay/telemetry"
)

func TestLazyLoadBuildsOnce(t *testing.T) {
	calls := 0
	loader := telemetry.LazyLoad(func() telemetry.CountMeter {
		calls++
		return telemetry.Counter("test_lazyload_count")()
	})

	loader()
	loader()
	assert.Equal(t, 1, calls, "LazyLoad must only build the meter once")
}

func TestCounterVecAddWithLabelDoesNotPanic(t *testing.T) {
	metric := telemetry.CounterVec("test_counter_vec", []string{"status"})()
	assert.NotPanics(t, func() {
		metric.AddWithLabel(1, map[string]string{"status": "ok"})
	})
}

func TestGaugeMeterDoesNotPanic(t *testing.T) {
	metric := telemetry.Gauge("test_gauge")()
	assert.NotPanics(t, func() { metric.Gauge(42) })
}
