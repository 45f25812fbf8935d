// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package telemetry exposes the handful of meter shapes cmd/sectiond
// and its component packages (accumulator, lifecycle) report through:
// counters, gauges, and histograms, each with an optional label-vector
// variant. The teacher keeps this boundary so the rest of the tree
// never imports prometheus directly; only this package does.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HistogramMeter records individual observations.
type HistogramMeter interface {
	Observe(v int64)
}

// HistogramVecMeter records observations tagged with a label set.
type HistogramVecMeter interface {
	ObserveWithLabels(v int64, labels map[string]string)
}

// CountMeter accumulates a running total.
type CountMeter interface {
	Add(v int64)
}

// CountVecMeter accumulates a running total per label set.
type CountVecMeter interface {
	AddWithLabel(v int64, labels map[string]string)
}

// GaugeMeter reports a point-in-time value.
type GaugeMeter interface {
	Gauge(v int64)
}

// GaugeVecMeter reports a point-in-time value per label set.
type GaugeVecMeter interface {
	GaugeWithLabel(v int64, labels map[string]string)
}

// Telemetry is the registry every meter constructor below registers
// into. The default implementation is backed by a private
// prometheus.Registry so package-level var declarations (see the
// metric vars in accumulator and lifecycle) can call the constructors at init time
// without a running HTTP server yet.
type Telemetry interface {
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHandler() http.Handler
}

var (
	mu      sync.Mutex
	current Telemetry
)

func instance() Telemetry {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = newPromTelemetry()
	}
	return current
}

// InitDisabled switches the package to a no-op backend, for tests and
// any run that should not pay for metric collection.
func InitDisabled() {
	mu.Lock()
	defer mu.Unlock()
	current = defaultNoopTelemetry()
}

// Handler exposes the registry's /metrics handler for cmd/sectiond's
// API server to mount.
func Handler() http.Handler { return instance().GetOrCreateHandler() }

// LazyLoad defers meter construction until first use, so package-level
// vars (lifecycle's metricTransitionCount and friends) can declare
// `telemetry.LazyLoad(func() telemetry.CountVecMeter {...})` at init
// time, before any backend has necessarily been selected.
func LazyLoad[T any](build func() T) func() T {
	var once sync.Once
	var v T
	return func() T {
		once.Do(func() { v = build() })
		return v
	}
}

// Counter registers (or returns the existing) unlabeled counter named
// name.
func Counter(name string) func() CountMeter {
	return func() CountMeter { return instance().GetOrCreateCountMeter(name) }
}

// CounterVec registers (or returns the existing) labeled counter.
func CounterVec(name string, labels []string) func() CountVecMeter {
	return func() CountVecMeter { return instance().GetOrCreateCountVecMeter(name, labels) }
}

// Gauge registers (or returns the existing) unlabeled gauge named name.
func Gauge(name string) func() GaugeMeter {
	return func() GaugeMeter { return instance().GetOrCreateGaugeMeter(name) }
}

// GaugeVec registers (or returns the existing) labeled gauge.
func GaugeVec(name string, labels []string) func() GaugeVecMeter {
	return func() GaugeVecMeter { return instance().GetOrCreateGaugeVecMeter(name, labels) }
}

// httpBuckets are the default histogram buckets (milliseconds) for
// request/handshake-latency style measurements.
var httpBuckets = []int64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// HistogramVecWithHTTPBuckets registers a labeled histogram using the
// package's default latency buckets.
func HistogramVecWithHTTPBuckets(name string, labels []string) func() HistogramVecMeter {
	return func() HistogramVecMeter {
		return instance().GetOrCreateHistogramVecMeter(name, labels, httpBuckets)
	}
}

type promTelemetry struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

func newPromTelemetry() Telemetry {
	return &promTelemetry{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (p *promTelemetry) GetOrCreateCountMeter(name string) CountMeter {
	return p.countVec(name, nil)
}

func (p *promTelemetry) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return p.countVec(name, labels)
}

func (p *promTelemetry) countVec(name string, labels []string) *labeledCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	cv, ok := p.counters[name]
	if !ok {
		cv = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labels)
		p.registry.MustRegister(cv)
		p.counters[name] = cv
	}
	return &labeledCounter{cv: cv, labels: labels}
}

func (p *promTelemetry) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return p.gaugeVec(name, nil)
}

func (p *promTelemetry) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return p.gaugeVec(name, labels)
}

func (p *promTelemetry) gaugeVec(name string, labels []string) *labeledGauge {
	p.mu.Lock()
	defer p.mu.Unlock()
	gv, ok := p.gauges[name]
	if !ok {
		gv = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, labels)
		p.registry.MustRegister(gv)
		p.gauges[name] = gv
	}
	return &labeledGauge{gv: gv, labels: labels}
}

func (p *promTelemetry) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	return p.histogramVec(name, nil, buckets)
}

func (p *promTelemetry) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	return p.histogramVec(name, labels, buckets)
}

func (p *promTelemetry) histogramVec(name string, labels []string, buckets []int64) *labeledHistogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	hv, ok := p.histograms[name]
	if !ok {
		fbuckets := make([]float64, len(buckets))
		for i, b := range buckets {
			fbuckets[i] = float64(b)
		}
		hv = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Buckets: fbuckets}, labels)
		p.registry.MustRegister(hv)
		p.histograms[name] = hv
	}
	return &labeledHistogram{hv: hv, labels: labels}
}

func (p *promTelemetry) GetOrCreateHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

type labeledCounter struct {
	cv     *prometheus.CounterVec
	labels []string
}

func (c *labeledCounter) Add(v int64) { c.cv.WithLabelValues().Add(float64(v)) }

func (c *labeledCounter) AddWithLabel(v int64, labels map[string]string) {
	c.cv.With(labels).Add(float64(v))
}

type labeledGauge struct {
	gv     *prometheus.GaugeVec
	labels []string
}

func (g *labeledGauge) Gauge(v int64) { g.gv.WithLabelValues().Set(float64(v)) }

func (g *labeledGauge) GaugeWithLabel(v int64, labels map[string]string) {
	g.gv.With(labels).Set(float64(v))
}

type labeledHistogram struct {
	hv     *prometheus.HistogramVec
	labels []string
}

func (h *labeledHistogram) Observe(v int64) { h.hv.WithLabelValues().Observe(float64(v)) }

func (h *labeledHistogram) ObserveWithLabels(v int64, labels map[string]string) {
	h.hv.With(labels).Observe(float64(v))
}
