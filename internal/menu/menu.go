// Package menu is the interactive text menu of the simulator.
package menu

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/signalsfoundry/cellular-simulator/internal/sim"
	"github.com/signalsfoundry/cellular-simulator/model"
)

type state int

const (
	stateMenu state = iota
	stateAntennas
	stateReport
)

type action int

const (
	actionSimulate action = iota
	actionRunAll
	actionCompare
	actionQuit
)

type item struct {
	label  string
	action action
	gen    model.Generation
}

// Styles groups the lipgloss styles used by the menu.
type Styles struct {
	Title    lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Footer   lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the standard colour scheme.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#5f5fd7")).
			Padding(0, 2).
			Bold(true),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd7ff")).Bold(true),
		Normal:   lipgloss.NewStyle(),
		Footer:   lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")),
	}
}

// reportMsg carries the rendered output of a finished action.
type reportMsg struct {
	text string
	err  error
}

// Model is the bubbletea model of the menu.
type Model struct {
	ctx      context.Context
	base     []sim.Option
	antennas sim.FixedAntennas

	items  []item
	cursor int
	state  state

	input   textinput.Model
	pending item

	output string
	err    error
	styles Styles
}

// New builds the menu. antennas holds the configured 4G/5G counts used when
// the antenna entry is left blank. base configures every simulator the menu
// creates; output writers and antenna prompting are supplied by the menu
// itself.
func New(ctx context.Context, antennas sim.FixedAntennas, base ...sim.Option) Model {
	ti := textinput.New()
	ti.Placeholder = "default"
	ti.CharLimit = 3
	ti.Width = 6

	items := make([]item, 0, 7)
	for _, gen := range model.Generations() {
		items = append(items, item{label: "Simulate " + gen.String(), action: actionSimulate, gen: gen})
	}
	items = append(items,
		item{label: "Run all generations", action: actionRunAll},
		item{label: "Compare generations", action: actionCompare},
		item{label: "Quit", action: actionQuit},
	)

	return Model{
		ctx:      ctx,
		base:     base,
		antennas: antennas,
		items:    items,
		input:    ti,
		styles:   DefaultStyles(),
	}
}

// Output returns the text of the last finished action.
func (m Model) Output() string { return m.output }

// Err returns the error of the last finished action, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportMsg:
		m.output = msg.text
		m.err = msg.err
		m.state = stateReport
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateAntennas:
			return m.updateAntennas(msg)
		case stateReport:
			m.state = stateMenu
			return m, nil
		}
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "q":
		return m, tea.Quit
	case "enter":
		return m.choose(m.items[m.cursor])
	}
	return m, nil
}

func (m Model) choose(it item) (tea.Model, tea.Cmd) {
	switch it.action {
	case actionQuit:
		return m, tea.Quit
	case actionRunAll:
		return m, m.runAll()
	case actionCompare:
		return m, m.compare()
	}

	probe := sim.New(m.base...)
	profile, ok := probe.Profile(it.gen)
	if ok && profile.MaxAntennas > 1 {
		m.pending = it
		m.state = stateAntennas
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, m.simulate(it.gen, 0)
}

func (m Model) updateAntennas(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.state = stateMenu
		return m, nil
	case "enter":
		m.input.Blur()
		// Out of range or unparsable input selects the configured default, as
		// on the console prompt.
		n, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		profile, _ := sim.New(m.base...).Profile(m.pending.gen)
		if err != nil || n < 1 || n > profile.MaxAntennas {
			n = 0
		}
		return m, m.simulate(m.pending.gen, n)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// simulate runs one generation. antennas of zero selects the configured
// count, or the profile default when none is configured.
func (m Model) simulate(gen model.Generation, antennas int) tea.Cmd {
	ctx, base := m.ctx, m.base
	if antennas == 0 {
		antennas = m.antennas[gen]
	}
	return func() tea.Msg {
		var buf bytes.Buffer
		opts := append(append([]sim.Option{}, base...), sim.WithPrompter(sim.FixedAntennas{gen: antennas}))
		report, err := sim.New(opts...).Simulate(ctx, gen)
		if err != nil {
			_ = sim.RenderError(&buf, gen, err)
			return reportMsg{text: buf.String(), err: err}
		}
		err = sim.Render(&buf, report)
		return reportMsg{text: buf.String(), err: err}
	}
}

func (m Model) runAll() tea.Cmd {
	ctx, base, antennas := m.ctx, m.base, m.antennas
	return func() tea.Msg {
		var buf bytes.Buffer
		opts := append(append([]sim.Option{}, base...),
			sim.WithPrompter(antennas),
			sim.WithOutput(&buf),
			sim.WithErrorOutput(&buf),
		)
		_, err := sim.New(opts...).Run(ctx)
		return reportMsg{text: buf.String(), err: err}
	}
}

func (m Model) compare() tea.Cmd {
	ctx, base, antennas := m.ctx, m.base, m.antennas
	return func() tea.Msg {
		var buf bytes.Buffer
		c, err := sim.New(base...).Compare(ctx, antennas)
		if err == nil {
			err = sim.RenderComparison(&buf, c)
		}
		return reportMsg{text: buf.String(), err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("CELLULAR NETWORK SIMULATOR"))
	sb.WriteString("\n\n")

	switch m.state {
	case stateMenu:
		for i, it := range m.items {
			if i == m.cursor {
				sb.WriteString(m.styles.Selected.Render(fmt.Sprintf("> %d. %s", i+1, it.label)))
			} else {
				sb.WriteString(m.styles.Normal.Render(fmt.Sprintf("  %d. %s", i+1, it.label)))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(m.styles.Footer.Render("↑/↓ move • enter select • q quit"))
	case stateAntennas:
		profile, _ := sim.New(m.base...).Profile(m.pending.gen)
		def := profile.DefaultAntennas
		if n := m.antennas[m.pending.gen]; n != 0 {
			def = n
		}
		fmt.Fprintf(&sb, "Enter number of antennas for %s (1-%d) [default %d]: %s\n\n",
			m.pending.gen, profile.MaxAntennas, def, m.input.View())
		sb.WriteString(m.styles.Footer.Render("enter confirm • esc back"))
	case stateReport:
		sb.WriteString(m.output)
		if m.err != nil {
			sb.WriteString("\n")
			sb.WriteString(m.styles.Error.Render("error: " + m.err.Error()))
		}
		sb.WriteString("\n")
		sb.WriteString(m.styles.Footer.Render("press any key to return"))
	}
	sb.WriteString("\n")
	return sb.String()
}
