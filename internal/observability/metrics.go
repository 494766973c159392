package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Simulation outcomes used as the "outcome" label.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// SimulationCollector bundles Prometheus metrics for simulation runs and
// provides helpers to expose them over HTTP or a textfile.
type SimulationCollector struct {
	gatherer prometheus.Gatherer

	Simulations *prometheus.CounterVec
	Durations   *prometheus.HistogramVec

	Capacity      *prometheus.GaugeVec
	UsersAssigned *prometheus.GaugeVec
	CoresNeeded   *prometheus.GaugeVec
}

// NewSimulationCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimulationCollector(reg prometheus.Registerer) (*SimulationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	sims, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cellsim_simulations_total",
		Help: "Total number of generation simulations, labeled by generation and outcome.",
	}, []string{"generation", "outcome"}), "cellsim_simulations_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cellsim_simulation_duration_seconds",
		Help:    "Wall-clock time spent simulating one generation.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"generation"}), "cellsim_simulation_duration_seconds")
	if err != nil {
		return nil, err
	}

	capacity, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cellsim_tower_capacity_users",
		Help: "Total user capacity of the most recently simulated tower.",
	}, []string{"generation"}), "cellsim_tower_capacity_users")
	if err != nil {
		return nil, err
	}
	users, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cellsim_users_assigned",
		Help: "Users assigned to the most recently simulated tower.",
	}, []string{"generation"}), "cellsim_users_assigned")
	if err != nil {
		return nil, err
	}
	cores, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cellsim_cores_needed",
		Help: "Cellular cores needed by the most recently simulated tower.",
	}, []string{"generation"}), "cellsim_cores_needed")
	if err != nil {
		return nil, err
	}

	return &SimulationCollector{
		gatherer:      gatherer,
		Simulations:   sims,
		Durations:     durations,
		Capacity:      capacity,
		UsersAssigned: users,
		CoresNeeded:   cores,
	}, nil
}

// ObserveRun records one finished generation simulation. Tower gauges are
// only updated for successful runs.
func (c *SimulationCollector) ObserveRun(generation string, err error, elapsed time.Duration, capacity, users, cores int) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	if c.Simulations != nil {
		c.Simulations.WithLabelValues(generation, outcome).Inc()
	}
	if c.Durations != nil {
		c.Durations.WithLabelValues(generation).Observe(elapsed.Seconds())
	}
	if err != nil {
		return
	}
	if c.Capacity != nil {
		c.Capacity.WithLabelValues(generation).Set(float64(capacity))
	}
	if c.UsersAssigned != nil {
		c.UsersAssigned.WithLabelValues(generation).Set(float64(users))
	}
	if c.CoresNeeded != nil {
		c.CoresNeeded.WithLabelValues(generation).Set(float64(cores))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimulationCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the current metrics in the text exposition format,
// suitable for the node_exporter textfile collector.
func (c *SimulationCollector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile %q: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
