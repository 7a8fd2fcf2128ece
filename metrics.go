package recordstore

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics counts and times repository operations.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the repository collectors on reg, or on the default
// registerer when reg is nil. Registering twice on the same registry hands
// back the collectors already there.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recordstore_operations_total",
		Help: "Record store operations by outcome",
	}, []string{"op", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recordstore_operation_duration_seconds",
		Help:    "Latency of record store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	var err error
	if operations, err = registerCollector(reg, operations); err != nil {
		return nil, err
	}
	if duration, err = registerCollector(reg, duration); err != nil {
		return nil, err
	}

	return &Metrics{operations: operations, duration: duration}, nil
}

func registerCollector[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}

	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}

	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
