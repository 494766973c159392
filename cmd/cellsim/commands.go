package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/cellular-simulator/internal/logging"
	"github.com/signalsfoundry/cellular-simulator/internal/menu"
	"github.com/signalsfoundry/cellular-simulator/internal/sim"
	"github.com/signalsfoundry/cellular-simulator/model"
	"github.com/signalsfoundry/cellular-simulator/tower"
)

// antennaFlags registers --antennas-4g/--antennas-5g and returns a func
// that merges them over the configured counts.
func antennaFlags(cmd *cobra.Command, a *app) func() sim.FixedAntennas {
	var four, five int
	cmd.Flags().IntVar(&four, "antennas-4g", 0, "antennas on the 4G tower (1-4, 0 for default)")
	cmd.Flags().IntVar(&five, "antennas-5g", 0, "antennas on the 5G tower (1-16, 0 for default)")
	return func() sim.FixedAntennas {
		fixed := a.configuredAntennas()
		if cmd.Flags().Changed("antennas-4g") {
			fixed[model.Gen4G] = four
		}
		if cmd.Flags().Changed("antennas-5g") {
			fixed[model.Gen5G] = five
		}
		return fixed
	}
}

func newRunCmd(a *app) *cobra.Command {
	var prompt bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate every generation in order",
		Long: `Simulates 2G, 3G, 4G and 5G one after another and prints a report for each.

A generation that fails is reported as "<gen> Simulation Error" and the run
continues with the next one. With --prompt the 4G and 5G antenna counts are
read from standard input; anything out of range selects the default.`,
		Args: cobra.NoArgs,
	}
	antennas := antennaFlags(cmd, a)
	cmd.Flags().BoolVar(&prompt, "prompt", false, "ask for 4G/5G antenna counts on stdin")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		var prompter sim.AntennaPrompter = antennas()
		if prompt || a.cfg.Simulation.Prompt {
			prompter = sim.NewLinePrompter(a.stdin, a.stdout)
		}
		s, err := a.simulator(sim.WithPrompter(prompter))
		if err != nil {
			return err
		}
		_, err = s.Run(cmd.Context())
		return err
	}
	return cmd
}

func newTowerCmd(a *app) *cobra.Command {
	var antennas int
	cmd := &cobra.Command{
		Use:       "tower <generation>",
		Short:     "Simulate a single generation (2G, 3G, 4G or 5G)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"2G", "3G", "4G", "5G"},
	}
	cmd.Flags().IntVar(&antennas, "antennas", 0, "antenna count (0 for default)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		gen, err := model.ParseGeneration(args[0])
		if err != nil {
			return err
		}
		fixed := a.configuredAntennas()
		if cmd.Flags().Changed("antennas") {
			fixed[gen] = antennas
		}
		s, err := a.simulator(sim.WithPrompter(fixed))
		if err != nil {
			return err
		}
		report, err := s.Simulate(cmd.Context(), gen)
		if err != nil {
			return fmt.Errorf("%s simulation: %w", gen, err)
		}
		return sim.Render(a.stdout, report)
	}
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Simulate all generations side by side",
		Args:  cobra.NoArgs,
	}
	antennas := antennaFlags(cmd, a)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		s, err := a.simulator()
		if err != nil {
			return err
		}
		c, err := s.Compare(cmd.Context(), antennas())
		if err != nil {
			return err
		}
		return sim.RenderComparison(a.stdout, c)
	}
	return cmd
}

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive text menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := a.cfg.TowerProfiles()
			if err != nil {
				return err
			}
			m := menu.New(cmd.Context(), a.configuredAntennas(),
				sim.WithProfiles(profiles),
				sim.WithOverhead(a.cfg.Simulation.OverheadPercent),
				sim.WithLogger(a.log),
				sim.WithMetrics(a.collector),
			)
			final, err := tea.NewProgram(m,
				tea.WithContext(cmd.Context()),
				tea.WithInput(a.stdin),
				tea.WithOutput(a.stdout),
			).Run()
			if err != nil {
				return fmt.Errorf("menu: %w", err)
			}
			if fm, ok := final.(menu.Model); ok && fm.Err() != nil {
				a.log.Debug(cmd.Context(), "last menu action failed", logging.Err(fm.Err()))
			}
			return nil
		},
	}
}

func newProfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "Print the effective tower profiles as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := a.cfg.TowerProfiles()
			if err != nil {
				return err
			}
			byName := make(map[string]tower.Profile, len(profiles))
			for gen, p := range profiles {
				byName[gen.String()] = p
			}
			out, err := yaml.Marshal(byName)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(out)
			return err
		},
	}
}
