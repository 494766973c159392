package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gonum.org/v1/gonum/stat"

	"github.com/signalsfoundry/cellular-simulator/internal/logging"
	"github.com/signalsfoundry/cellular-simulator/internal/observability"
	"github.com/signalsfoundry/cellular-simulator/model"
	"github.com/signalsfoundry/cellular-simulator/tower"
)

// RunRecorder receives the outcome of every generation simulation.
type RunRecorder interface {
	ObserveRun(generation string, err error, elapsed time.Duration, capacity, users, cores int)
}

// Simulator builds, populates and reports on generation towers.
type Simulator struct {
	profiles map[model.Generation]tower.Profile
	overhead int
	prompter AntennaPrompter

	out    io.Writer
	errOut io.Writer

	log     logging.Logger
	metrics RunRecorder
}

// Option customises Simulator construction.
type Option func(*Simulator)

// WithProfiles replaces the built-in generation profiles.
func WithProfiles(p map[model.Generation]tower.Profile) Option {
	return func(s *Simulator) {
		for gen, prof := range p {
			s.profiles[gen] = prof
		}
	}
}

// WithOverhead sets the core overhead in messages per 100.
func WithOverhead(percent int) Option {
	return func(s *Simulator) { s.overhead = percent }
}

// WithPrompter selects how antenna counts are chosen.
func WithPrompter(p AntennaPrompter) Option {
	return func(s *Simulator) {
		if p != nil {
			s.prompter = p
		}
	}
}

// WithOutput sets where reports are written.
func WithOutput(w io.Writer) Option {
	return func(s *Simulator) { s.out = w }
}

// WithErrorOutput sets where per-generation failures are written.
func WithErrorOutput(w io.Writer) Option {
	return func(s *Simulator) { s.errOut = w }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics attaches a run recorder such as an
// observability.SimulationCollector.
func WithMetrics(r RunRecorder) Option {
	return func(s *Simulator) { s.metrics = r }
}

// New constructs a simulator that writes to io.Discard until told
// otherwise.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		profiles: tower.DefaultProfiles(),
		prompter: DefaultAntennas{},
		out:      io.Discard,
		errOut:   io.Discard,
		log:      logging.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile returns the profile the simulator uses for gen.
func (s *Simulator) Profile(gen model.Generation) (tower.Profile, bool) {
	p, ok := s.profiles[gen]
	return p, ok
}

// Simulate builds and fills the tower for gen and reports on it.
func (s *Simulator) Simulate(ctx context.Context, gen model.Generation) (*Report, error) {
	return s.simulate(ctx, gen, s.prompter)
}

func (s *Simulator) simulate(ctx context.Context, gen model.Generation, prompter AntennaPrompter) (report *Report, err error) {
	ctx, span := observability.Tracer().Start(ctx, "simulate "+gen.String())
	span.SetAttributes(attribute.String("cellsim.generation", gen.String()))
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		// Neither branch runs while a panic unwinds: err and report are both nil.
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if s.metrics != nil {
				s.metrics.ObserveRun(gen.String(), err, elapsed, 0, 0, 0)
			}
		case report != nil:
			span.SetAttributes(
				attribute.Int("cellsim.capacity", report.Capacity),
				attribute.Int("cellsim.cores_needed", report.CoresNeeded),
			)
			if s.metrics != nil {
				s.metrics.ObserveRun(gen.String(), nil, elapsed, report.Capacity, report.UsersAssigned, report.CoresNeeded)
			}
		}
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile, ok := s.profiles[gen]
	if !ok {
		return nil, fmt.Errorf("%w: no profile for %v", model.ErrUnknownGeneration, gen)
	}
	t, err := tower.New(profile)
	if err != nil {
		return nil, err
	}

	antennas, err := prompter.Antennas(ctx, gen, profile.MaxAntennas, profile.DefaultAntennas)
	if err != nil {
		return nil, fmt.Errorf("read antenna count: %w", err)
	}
	if err := t.SetAntennas(antennas); err != nil {
		return nil, err
	}

	added, err := t.Populate()
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "tower populated",
		logging.String("generation", gen.String()),
		logging.Int("antennas", t.Antennas()),
		logging.Int("users", added),
	)

	cores, err := t.CoresNeeded(profile.MessagesPerUser, s.overhead)
	if err != nil {
		return nil, err
	}
	core, err := model.NewCellularCore(0, s.overhead)
	if err != nil {
		return nil, err
	}

	mean, std := stat.MeanStdDev(t.ChannelLoads(), nil)
	return &Report{
		Generation:      gen,
		Profile:         profile,
		Antennas:        t.Antennas(),
		Capacity:        t.TotalCapacity(),
		UsersAssigned:   t.NumUsers(),
		FirstChannel:    t.FirstChannelUsers(),
		OverheadPercent: s.overhead,
		CoresNeeded:     cores,
		CoreMaxDevices:  core.MaxDevices,
		MessageLoad:     t.MessageLoad(),
		LoadMean:        mean,
		LoadStdDev:      std,
	}, nil
}

// Run simulates every generation in order, writing the banner, each
// section and the closing banner. A failing generation is reported on the
// error output and the run moves on. The returned reports hold only the
// successful generations.
func (s *Simulator) Run(ctx context.Context) ([]*Report, error) {
	ctx, log := logging.WithRunLogger(ctx, s.log)
	log.Info(ctx, "simulation run starting", logging.Int("overhead_percent", s.overhead))

	if err := RenderBanner(s.out); err != nil {
		return nil, err
	}

	var reports []*Report
	for _, gen := range model.Generations() {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		if err := RenderHeader(s.out, gen); err != nil {
			return reports, err
		}
		report, err := s.Simulate(ctx, gen)
		if err != nil {
			log.Warn(ctx, "generation simulation failed", logging.String("generation", gen.String()), logging.Err(err))
			if werr := RenderError(s.errOut, gen, err); werr != nil {
				return reports, werr
			}
			continue
		}
		if err := RenderBody(s.out, report); err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}

	if err := RenderFooter(s.out); err != nil {
		return reports, err
	}
	log.Info(ctx, "simulation run complete", logging.Int("generations", len(reports)))
	return reports, nil
}
