package sim

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/signalsfoundry/cellular-simulator/internal/logging"
	"github.com/signalsfoundry/cellular-simulator/model"
)

// Comparison holds one report per generation plus cross-generation figures.
type Comparison struct {
	Reports []*Report

	MeanCapacity   float64
	StdDevCapacity float64
	TotalCores     int
}

// Compare simulates every generation on its own goroutine. Each goroutine
// owns its tower, so nothing is shared but the read-only profiles. Antenna
// counts come from antennas, never from an interactive prompter. Reports
// are returned in generation order; the first failure cancels the rest.
func (s *Simulator) Compare(ctx context.Context, antennas FixedAntennas) (*Comparison, error) {
	ctx, log := logging.WithRunLogger(ctx, s.log)
	gens := model.Generations()
	reports := make([]*Report, len(gens))

	g, gctx := errgroup.WithContext(ctx)
	for i, gen := range gens {
		g.Go(func() error {
			r, err := s.simulate(gctx, gen, antennas)
			if err != nil {
				return fmt.Errorf("%s: %w", gen, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn(ctx, "comparison failed", logging.Err(err))
		return nil, err
	}

	capacities := make([]float64, len(reports))
	total := 0
	for i, r := range reports {
		capacities[i] = float64(r.Capacity)
		total += r.CoresNeeded
	}
	mean, std := stat.MeanStdDev(capacities, nil)
	log.Info(ctx, "comparison complete", logging.Int("total_cores", total))

	return &Comparison{
		Reports:        reports,
		MeanCapacity:   mean,
		StdDevCapacity: std,
		TotalCores:     total,
	}, nil
}

// RenderComparison writes c as a fixed-width table.
func RenderComparison(w io.Writer, c *Comparison) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-4s | %-8s | %-8s | %-9s | %-5s | %-10s | %-12s\n",
		"Gen", "Channels", "Antennas", "Capacity", "Cores", "Load/slot", "Stddev/slot")
	sb.WriteString(strings.Repeat("-", 74) + "\n")
	for _, r := range c.Reports {
		fmt.Fprintf(&sb, "%-4s | %-8d | %-8d | %-9d | %-5d | %-10.2f | %-12.2f\n",
			r.Generation, r.Profile.Channels(), r.Antennas, r.Capacity, r.CoresNeeded, r.LoadMean, r.LoadStdDev)
	}
	sb.WriteString(strings.Repeat("-", 74) + "\n")
	fmt.Fprintf(&sb, "Mean capacity: %.1f users (stddev %.1f)\n", c.MeanCapacity, c.StdDevCapacity)
	fmt.Fprintf(&sb, "Total cores: %d\n", c.TotalCores)

	_, err := io.WriteString(w, sb.String())
	return err
}
