// Package tui shows a running simulation in the terminal.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/demsim/internal/sim"
	"github.com/san-kum/demsim/internal/viz"
)

const (
	canvasWidth  = 60
	canvasHeight = 16
	barWidth     = 40
	historyLen   = 60
)

type frameMsg struct {
	time, progress float64
	step           int
	contacts       int
	scene          string
	metrics        map[string]float64
}

type doneMsg struct {
	result *sim.Result
	err    error
}

// Observer forwards throttled frames of a running simulation to a program.
// Attach it to the simulator before Run.
type Observer struct {
	send     func(tea.Msg)
	endTime  float64
	interval time.Duration
	metrics  []sim.Metric
	u, v     int

	mu   sync.Mutex
	last time.Time
}

// NewObserver samples at most once per interval. Particles are projected onto
// the world axes u and v.
func NewObserver(p *tea.Program, endTime float64, interval time.Duration, metrics []sim.Metric, u, v int) *Observer {
	return &Observer{send: p.Send, endTime: endTime, interval: interval, metrics: metrics, u: u, v: v}
}

func (o *Observer) OnStep(s *sim.Snapshot) {
	o.mu.Lock()
	now := time.Now()
	if now.Sub(o.last) < o.interval {
		o.mu.Unlock()
		return
	}
	o.last = now
	o.mu.Unlock()

	c := viz.NewCanvas(canvasWidth, canvasHeight)
	c.DrawScene(s.Particles, s.Walls, viz.FitProjection(c, s.Particles, s.Walls, o.u, o.v))

	values := make(map[string]float64, len(o.metrics))
	for _, m := range o.metrics {
		values[m.Name()] = m.Value()
	}
	o.send(frameMsg{
		time:     s.Time,
		progress: s.Time / o.endTime,
		step:     s.Step,
		contacts: s.Contacts.ParticleParticle + s.Contacts.ParticleWall,
		scene:    c.String(),
		metrics:  values,
	})
}

type model struct {
	title   string
	cancel  context.CancelFunc
	frame   frameMsg
	history []float64
	started time.Time
	done    bool
	err     error
	result  *sim.Result
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			if m.done {
				return m, tea.Quit
			}
		}
	case frameMsg:
		m.frame = msg
		if ke, ok := msg.metrics["kinetic_energy"]; ok {
			m.history = append(m.history, ke)
			if len(m.history) > historyLen {
				m.history = m.history[1:]
			}
		}
	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(viz.Title.Render(m.title) + "  ")
	switch {
	case m.err != nil:
		b.WriteString(viz.StatusError.Render("failed"))
	case m.done:
		b.WriteString(viz.StatusDone.Render("done"))
	default:
		b.WriteString(viz.StatusRunning.Render("running"))
	}
	b.WriteString("\n\n")

	b.WriteString(viz.Panel.Render(strings.TrimRight(m.frame.scene, "\n")))
	b.WriteString("\n")
	b.WriteString(viz.ProgressBar(m.frame.progress, barWidth))
	b.WriteString(fmt.Sprintf(" %5.1f%%  t=%.4fs  step %d  %s\n",
		100*m.frame.progress, m.frame.time, m.frame.step, time.Since(m.started).Truncate(time.Millisecond)))

	b.WriteString(viz.MetricLabel.Render("contacts ") + viz.MetricValue.Render(fmt.Sprint(m.frame.contacts)) + "\n")
	names := make([]string, 0, len(m.frame.metrics))
	for name := range m.frame.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(viz.MetricLabel.Render(fmt.Sprintf("%-16s", name)) + viz.MetricValue.Render(fmt.Sprintf("%.4g", m.frame.metrics[name])) + "\n")
	}
	if len(m.history) > 0 {
		b.WriteString(viz.MetricLabel.Render("energy ") + viz.Sparkline(m.history, historyLen) + "\n")
	}
	if m.err != nil {
		b.WriteString(viz.StatusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString(viz.KeyHint.Render("q to stop") + "\n")
	return b.String()
}

// Run drives run in the background and shows its progress until it returns.
// The observer must be attached to the simulator that run drives.
func Run(ctx context.Context, title string, setup func(p *tea.Program) (func(context.Context) (*sim.Result, error), error)) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := model{title: title, cancel: cancel, started: time.Now()}
	p := tea.NewProgram(m)

	run, err := setup(p)
	if err != nil {
		return nil, err
	}
	go func() {
		res, err := run(ctx)
		p.Send(doneMsg{result: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm := final.(model)
	return fm.result, fm.err
}
