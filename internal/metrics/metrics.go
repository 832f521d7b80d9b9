// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package metrics exposes the Prometheus counters and gauges the
// dispatcher updates on every dispatched request. Every
// method is nil-receiver-safe, following the marmos91-dittofs metrics
// packages' pattern, so a simulator built without a registry (most unit
// tests) never needs a nil check at the call site.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/thinkgos/udsecusim/internal/nrc"
)

// Registry wraps a prometheus.Registerer with the simulator's metric set.
type Registry struct {
	requestsTotal          *prometheus.CounterVec
	negativeResponsesTotal *prometheus.CounterVec
	downloadActive         prometheus.Gauge
	dtcCount               prometheus.Gauge
}

// New registers the simulator's metrics against reg. Pass
// prometheus.NewRegistry() in tests or prometheus.DefaultRegisterer in
// cmd/ecusim.
func New(reg prometheus.Registerer) *Registry {
	return &Registry{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "uds_requests_total",
				Help: "Total number of UDS requests dispatched, by service identifier.",
			},
			[]string{"sid"},
		),
		negativeResponsesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "uds_negative_responses_total",
				Help: "Total number of negative responses emitted, by NRC.",
			},
			[]string{"nrc"},
		),
		downloadActive: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "uds_download_active",
				Help: "1 while a firmware download session (EOL) is active, 0 otherwise.",
			},
		),
		dtcCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "uds_dtc_count",
				Help: "Current number of entries in the DTC store.",
			},
		),
	}
}

func sidLabel(sid byte) string {
	return "0x" + strconv.FormatUint(uint64(sid), 16)
}

// IncRequest records one dispatched request for sid.
func (r *Registry) IncRequest(sid byte) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(sidLabel(sid)).Inc()
}

// IncNegativeResponse records one emitted negative response carrying code.
func (r *Registry) IncNegativeResponse(code nrc.Code) {
	if r == nil {
		return
	}
	r.negativeResponsesTotal.WithLabelValues(nrc.Name(code)).Inc()
}

// SetDownloadActive reflects whether a firmware download session is active.
func (r *Registry) SetDownloadActive(active bool) {
	if r == nil {
		return
	}
	if active {
		r.downloadActive.Set(1)
	} else {
		r.downloadActive.Set(0)
	}
}

// SetDTCCount reflects the current DTC store size.
func (r *Registry) SetDTCCount(n int) {
	if r == nil {
		return
	}
	r.dtcCount.Set(float64(n))
}
