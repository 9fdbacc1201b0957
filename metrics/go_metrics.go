package metrics

import (
	"fmt"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Metrics is the go-metrics implementation of MetricsEngine.
type Metrics struct {
	MetricsRegistry            metrics.Registry
	ConnectionCounter          metrics.Counter
	ConnectionAcceptErrorMeter metrics.Meter
	ConnectionCloseErrorMeter  metrics.Meter
	DecodeMeters               map[TCFVersion]map[DecodeStatus]metrics.Meter
	DecodeTimers               map[TCFVersion]metrics.Timer
}

// NewBlankMetrics creates a new Metrics object with all blank metrics object. This may also be useful for
// testing routines to ensure that no metrics are written anywhere.
func NewBlankMetrics(registry metrics.Registry) *Metrics {
	blankMeter := &metrics.NilMeter{}
	newMetrics := &Metrics{
		MetricsRegistry:            registry,
		ConnectionCounter:          metrics.NilCounter{},
		ConnectionAcceptErrorMeter: blankMeter,
		ConnectionCloseErrorMeter:  blankMeter,
		DecodeMeters:               make(map[TCFVersion]map[DecodeStatus]metrics.Meter),
		DecodeTimers:               make(map[TCFVersion]metrics.Timer),
	}

	for _, v := range TCFVersions() {
		newMetrics.DecodeMeters[v] = make(map[DecodeStatus]metrics.Meter)
		for _, s := range DecodeStatuses() {
			newMetrics.DecodeMeters[v][s] = blankMeter
		}
		newMetrics.DecodeTimers[v] = &metrics.NilTimer{}
	}

	return newMetrics
}

// NewMetrics creates a new Metrics object with every metric registered in registry.
func NewMetrics(registry metrics.Registry) *Metrics {
	newMetrics := NewBlankMetrics(registry)
	newMetrics.ConnectionCounter = metrics.GetOrRegisterCounter("active_connections", registry)
	newMetrics.ConnectionAcceptErrorMeter = metrics.GetOrRegisterMeter("connection_accept_errors", registry)
	newMetrics.ConnectionCloseErrorMeter = metrics.GetOrRegisterMeter("connection_close_errors", registry)

	for _, v := range TCFVersions() {
		for _, s := range DecodeStatuses() {
			newMetrics.DecodeMeters[v][s] = metrics.GetOrRegisterMeter(fmt.Sprintf("decodes.%s.%s", v, s), registry)
		}
		newMetrics.DecodeTimers[v] = metrics.GetOrRegisterTimer(fmt.Sprintf("decode_time.%s", v), registry)
	}

	return newMetrics
}

func (me *Metrics) RecordConnectionAccept(success bool) {
	if success {
		me.ConnectionCounter.Inc(1)
	} else {
		me.ConnectionAcceptErrorMeter.Mark(1)
	}
}

func (me *Metrics) RecordConnectionClose(success bool) {
	if success {
		me.ConnectionCounter.Dec(1)
	} else {
		me.ConnectionCloseErrorMeter.Mark(1)
	}
}

func (me *Metrics) RecordDecode(labels DecodeLabels) {
	if meter, ok := me.DecodeMeters[labels.Version][labels.Status]; ok {
		meter.Mark(1)
	}
}

func (me *Metrics) RecordDecodeTime(labels DecodeLabels, length time.Duration) {
	if timer, ok := me.DecodeTimers[labels.Version]; ok {
		timer.Update(length)
	}
}
