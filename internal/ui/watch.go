package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"Quackito/internal/client"
	"Quackito/internal/effects"
	"Quackito/internal/keeper"
	"Quackito/internal/model"
	"Quackito/internal/render"
)

// burstTTL is how long an action's particle burst stays on screen.
const burstTTL = 1500 * time.Millisecond

const burstWidth = 40

var foods = []model.FoodType{model.FoodBread, model.FoodSeeds, model.FoodBerries}

// Keeper is the part of keeper.Keeper the watch screen drives.
type Keeper interface {
	Act(ctx context.Context, action, food string) (model.Snapshot, error)
	Tick(ctx context.Context)
	Snapshot() model.Snapshot
	Mood() model.Mood
	State() keeper.ConnState
	Code() string
}

// TickMsg asks the model to run one decay tick.
type TickMsg struct{}

// ServerMsg carries a duck pushed by the server's watch stream.
type ServerMsg struct {
	Duck *client.Duck
}

type tickedMsg struct{}

type actedMsg struct {
	action model.Action
	err    error
}

type burstDoneMsg struct {
	seq int
}

// WatchModel is the live duck screen.
type WatchModel struct {
	ctx     context.Context
	keeper  Keeper
	name    string
	emitter *effects.Emitter
	now     func() time.Time

	food     int
	burst    []effects.Particle
	burstSeq int
	busy     bool
	notice   string
	server   string
}

// NewWatchModel creates the watch screen for k.
func NewWatchModel(ctx context.Context, k Keeper, name string, e *effects.Emitter) WatchModel {
	return WatchModel{ctx: ctx, keeper: k, name: name, emitter: e, now: time.Now}
}

func (m WatchModel) Init() tea.Cmd {
	return nil
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch strings.ToLower(msg.String()) {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "f":
			return m.act(model.ActionFeed)
		case "p":
			return m.act(model.ActionPlay)
		case "s":
			return m.act(model.ActionSleep)
		case "tab", "right":
			m.food = (m.food + 1) % len(foods)
			return m, nil
		case "shift+tab", "left":
			m.food = (m.food + len(foods) - 1) % len(foods)
			return m, nil
		}
	case TickMsg:
		return m, m.tickCmd()
	case tickedMsg:
		return m, nil
	case actedMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		m.notice = ""
		m.burst = m.emitter.Emit(msg.action)
		m.burstSeq++
		seq := m.burstSeq
		return m, tea.Tick(burstTTL, func(time.Time) tea.Msg { return burstDoneMsg{seq: seq} })
	case burstDoneMsg:
		if msg.seq == m.burstSeq {
			m.burst = nil
		}
		return m, nil
	case ServerMsg:
		d := msg.Duck
		m.server = fmt.Sprintf("server: %s (hunger %.0f, happy %.0f, energy %.0f)",
			render.MoodLine(d.Name, d.Mood), d.Snapshot.Hunger, d.Snapshot.Happiness, d.Snapshot.Energy)
		return m, nil
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder
	b.WriteString(render.FormatBurst(m.burst, burstWidth) + "\n")
	b.WriteString(render.FormatStatus(render.Status{
		Name:     m.name,
		Code:     m.keeper.Code(),
		Snapshot: m.keeper.Snapshot(),
		Mood:     m.keeper.Mood(),
		Conn:     m.keeper.State().String(),
	}, m.now()))
	if m.server != "" {
		b.WriteString(render.Dim(m.server) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Food: %s\n", foodPicker(m.food)))
	if m.notice != "" {
		b.WriteString(m.notice + "\n")
	}
	b.WriteString(render.Dim("f feed · p play · s sleep · tab change food · q quit") + "\n")
	return b.String()
}

// act runs the action off the update loop. Keys pressed while an action is
// in flight are dropped.
func (m WatchModel) act(a model.Action) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	var food string
	if a == model.ActionFeed {
		food = string(foods[m.food])
	}
	ctx, k := m.ctx, m.keeper
	return m, func() tea.Msg {
		_, err := k.Act(ctx, string(a), food)
		return actedMsg{action: a, err: err}
	}
}

func (m WatchModel) tickCmd() tea.Cmd {
	ctx, k := m.ctx, m.keeper
	return func() tea.Msg {
		k.Tick(ctx)
		return tickedMsg{}
	}
}

func foodPicker(selected int) string {
	parts := make([]string, len(foods))
	for i, f := range foods {
		if i == selected {
			parts[i] = "[" + string(f) + "]"
		} else {
			parts[i] = render.Dim(string(f))
		}
	}
	return strings.Join(parts, " ")
}

// ProgramTicker forwards scheduler ticks into a running program as TickMsg.
type ProgramTicker struct {
	P *tea.Program
}

func (t ProgramTicker) Tick(context.Context) {
	t.P.Send(TickMsg{})
}
