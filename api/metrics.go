package api

import (
	"github.com/dannbuckley/intcode/vm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	runs         *prometheus.CounterVec
	instructions prometheus.Counter
	failures     *prometheus.CounterVec
	sessions     prometheus.Gauge
	cacheHits    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intcode",
			Name:      "runs_total",
			Help:      "Number of runs until blocked, by endpoint",
		}, []string{"endpoint"}),
		instructions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "intcode",
			Name:      "instructions_total",
			Help:      "Number of instructions executed",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intcode",
			Name:      "failures_total",
			Help:      "Number of failed runs, by error kind",
		}, []string{"kind"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "intcode",
			Name:      "sessions",
			Help:      "Number of open sessions",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "intcode",
			Name:      "program_cache_hits_total",
			Help:      "Number of programs served from the parse cache",
		}),
	}
	for _, c := range []prometheus.Collector{m.runs, m.instructions, m.failures, m.sessions, m.cacheHits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// errorKind names the failure for metrics and responses.
func errorKind(err error) string {
	var (
		addr   *vm.AddressError
		opcode *vm.InvalidOpcodeError
		mode   *vm.InvalidModeError
		comp   *vm.ComputationError
		halted *vm.HaltedError
		parse  *vm.ParseError
	)
	switch {
	case errors.Is(err, vm.ErrStepLimit):
		return "step_limit"
	case errors.As(err, &addr):
		return "address"
	case errors.As(err, &opcode):
		return "opcode"
	case errors.As(err, &mode):
		return "mode"
	case errors.As(err, &comp):
		return "overflow"
	case errors.As(err, &halted):
		return "halted"
	case errors.As(err, &parse):
		return "parse"
	default:
		return "other"
	}
}
