package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hillchart/pkg/chart"
	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/render/sink"
)

// Editor steps, as fractions of the domain width.
const (
	editorStep    = 0.01
	editorBigStep = 0.1
	editorNudge   = 10.0
)

var (
	editorStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	editorErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	editorCanvasStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the chart interactively",
		Long: `Open the interactive editor. Select a milestone with tab, drag it with the
arrow keys and drop it with enter. Changes are saved on every drop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			ch, done, err := c.openChart(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			m := newEditorModel(cmd.Context(), ch)
			m.viewW, m.viewH = float64(cfg.Chart.Width), float64(cfg.Chart.Height)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(editorModel); ok && m.err != nil {
				return m.err
			}
			printSuccess("Saved %s (%d milestones)", ch.Name(), len(ch.Markers()))
			return nil
		},
	}
}

// =============================================================================
// Key bindings
// =============================================================================

type editorKeys struct {
	Left      key.Binding
	Right     key.Binding
	FarLeft   key.Binding
	FarRight  key.Binding
	Drop      key.Binding
	Next      key.Binding
	Prev      key.Binding
	NudgeLeft key.Binding
	NudgeRgt  key.Binding
	Add       key.Binding
	Remove    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var editorKeyMap = editorKeys{
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "drag left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "drag right")),
	FarLeft:   key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "drag left 10%")),
	FarRight:  key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "drag right 10%")),
	Drop:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "drop")),
	Next:      key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab", "next")),
	Prev:      key.NewBinding(key.WithKeys("shift+tab", "up", "k"), key.WithHelp("shift+tab", "previous")),
	NudgeLeft: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "label left")),
	NudgeRgt:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "label right")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Remove:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func (k editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Left, k.Right, k.Drop, k.Add, k.Help, k.Quit}
}

func (k editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Left, k.Right, k.FarLeft, k.FarRight, k.Drop},
		{k.NudgeLeft, k.NudgeRgt},
		{k.Add, k.Remove},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// editorModel
// =============================================================================

// editorModel is the bubbletea model for `hillchart edit`. The chart is
// the source of truth; the model only tracks the cursor.
type editorModel struct {
	ctx      context.Context
	chart    *chart.Chart
	help     help.Model
	input    textinput.Model
	adding   bool
	selected string
	width    int
	height   int
	viewW    float64
	viewH    float64
	status   string
	err      error
}

func newEditorModel(ctx context.Context, ch *chart.Chart) editorModel {
	in := textinput.New()
	in.Placeholder = "milestone label"
	in.CharLimit = errors.MaxLabelLength
	in.Prompt = "add: "

	m := editorModel{
		ctx:    ctx,
		chart:  ch,
		help:   help.New(),
		input:  in,
		width:  80,
		height: 24,
		viewW:  sink.DefaultWidth,
		viewH:  sink.DefaultHeight,
	}
	if markers := m.ordered(); len(markers) > 0 {
		m.selected = markers[0].ID
	}
	return m
}

func (m editorModel) Init() tea.Cmd { return nil }

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m editorModel) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		m.status = "add cancelled"
		return m, nil
	case tea.KeyEnter:
		label := m.input.Value()
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		added, err := m.chart.AddAt(m.ctx, label, defaultAddProgress)
		m.report(err)
		if added.ID != "" {
			m.selected = added.ID
			m.status = "added " + added.Label
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m editorModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, editorKeyMap.Quit):
		m.dropOpen()
		return m, tea.Quit
	case key.Matches(msg, editorKeyMap.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, editorKeyMap.Next):
		m.dropOpen()
		m.cycle(1)
	case key.Matches(msg, editorKeyMap.Prev):
		m.dropOpen()
		m.cycle(-1)
	case key.Matches(msg, editorKeyMap.Left):
		m.drag(-editorStep)
	case key.Matches(msg, editorKeyMap.Right):
		m.drag(editorStep)
	case key.Matches(msg, editorKeyMap.FarLeft):
		m.drag(-editorBigStep)
	case key.Matches(msg, editorKeyMap.FarRight):
		m.drag(editorBigStep)
	case key.Matches(msg, editorKeyMap.Drop):
		m.dropOpen()
	case key.Matches(msg, editorKeyMap.NudgeLeft):
		m.nudge(-editorNudge)
	case key.Matches(msg, editorKeyMap.NudgeRgt):
		m.nudge(editorNudge)
	case key.Matches(msg, editorKeyMap.Add):
		m.dropOpen()
		m.adding = true
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, editorKeyMap.Remove):
		m.remove()
	}
	return m, nil
}

// ordered returns markers left to right by raw position.
func (m *editorModel) ordered() []hill.Marker {
	return m.chart.Config().Resolver().Order(m.chart.Markers())
}

func (m *editorModel) cycle(dir int) {
	markers := m.ordered()
	if len(markers) == 0 {
		m.selected = ""
		return
	}
	i := 0
	for j, mk := range markers {
		if mk.ID == m.selected {
			i = (j + dir + len(markers)) % len(markers)
			break
		}
	}
	m.selected = markers[i].ID
}

// drag moves the selected marker by a fraction of the domain, starting a
// drag if none is open.
func (m *editorModel) drag(frac float64) {
	if m.selected == "" {
		return
	}
	cur, open := m.chart.Dragging()
	if !open || cur.ID != m.selected {
		var err error
		if cur, err = m.chart.BeginDrag(m.ctx, m.selected); err != nil {
			m.report(err)
			return
		}
	}
	c := m.chart.Config().Curve
	moved, err := m.chart.MoveTo(m.ctx, c.Clamp(cur.Position+frac*c.Width()))
	if err != nil {
		m.report(err)
		return
	}
	m.status = fmt.Sprintf("dragging %s to %d%%", moved.Label, moved.Percent())
}

// dropOpen ends the open drag, if any, which saves the chart.
func (m *editorModel) dropOpen() {
	cur, open := m.chart.Dragging()
	if !open {
		return
	}
	dropped, err := m.chart.Drop(m.ctx, cur.ID)
	m.report(err)
	if err == nil {
		m.status = fmt.Sprintf("dropped %s at %d%%", dropped.Label, dropped.Percent())
	}
}

func (m *editorModel) nudge(delta float64) {
	if m.selected == "" {
		return
	}
	m.dropOpen()
	n, err := m.chart.Nudge(m.ctx, m.selected, delta)
	m.report(err)
	if n.ID != "" {
		m.status = fmt.Sprintf("label offset %+.0f", n.LabelOffset)
	}
}

func (m *editorModel) remove() {
	if m.selected == "" {
		return
	}
	gone := m.selected
	m.cycle(1)
	if m.selected == gone {
		m.selected = ""
	}
	removed, err := m.chart.Remove(m.ctx, gone)
	m.report(err)
	if removed.ID != "" {
		m.status = "removed " + removed.Label
	}
}

// report keeps store and input errors on screen instead of quitting.
func (m *editorModel) report(err error) {
	if err != nil {
		m.err = err
	}
}

func (m editorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.chart.Name()))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d milestones", len(m.chart.Markers()))))
	b.WriteString("\n\n")

	helpView := m.help.View(editorKeyMap)
	rows := max(8, m.height-6-lipgloss.Height(helpView))
	canvas := sink.RenderText(m.chart.Frame(),
		sink.WithCanvas(max(20, m.width), rows),
		sink.WithViewport(m.viewW, m.viewH),
		sink.WithSelected(m.selected),
	)
	b.WriteString(editorCanvasStyle.Render(canvas))
	b.WriteString("\n")

	if sel, err := m.chart.Lookup(m.selected); err == nil && m.selected != "" {
		b.WriteString(describeMarker(sel))
		b.WriteString(StyleDim.Render("  " + hill.PhaseOf(sel.Progress)))
	}
	b.WriteString("\n")

	switch {
	case m.adding:
		b.WriteString(m.input.View())
	case m.err != nil:
		b.WriteString(editorErrorStyle.Render(iconError + " " + errors.UserMessage(m.err)))
	case m.status != "":
		b.WriteString(editorStatusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpView)
	return b.String()
}
