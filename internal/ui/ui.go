package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodset/internal/formatter"
	"github.com/desertthunder/moodset/internal/models"
	"github.com/desertthunder/moodset/internal/shared"
	"github.com/desertthunder/moodset/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	KeywordsView ViewState = iota
	CollectView
	ResultView
)

type phaseState struct {
	step    int
	total   int
	failed  int
	done    bool
	started bool
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	engine   *tasks.DatasetEngine
	keywords *models.KeywordCatalog
	view     ViewState
	width    int
	height   int

	keywordList list.Model
	spinner     spinner.Model
	bar         progress.Model
	help        help.Model
	keys        keyMap

	progressChan chan tasks.ProgressUpdate
	doneChan     chan runOutcome
	phases       map[tasks.Phase]*phaseState
	current      tasks.Phase
	message      string

	result *tasks.DatasetResult
	err    error
}

// NewModel creates a TUI model that collects keywords with engine. With autoStart the keyword review is skipped.
func NewModel(ctx context.Context, engine *tasks.DatasetEngine, keywords *models.KeywordCatalog, autoStart bool) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.spinner

	kl := list.New(keywordItems(keywords), list.NewDefaultDelegate(), 0, 0)
	kl.Title = fmt.Sprintf("Keyword catalog (%d phrases)", keywords.Len())

	m := &Model{
		ctx:         ctx,
		engine:      engine,
		keywords:    keywords,
		view:        KeywordsView,
		keywordList: kl,
		spinner:     s,
		bar:         progress.New(progress.WithDefaultGradient()),
		help:        help.New(),
		keys:        newKeyMap(),
	}
	if autoStart {
		m.view = CollectView
	}
	return m
}

// Result returns the finished run, if any.
func (m *Model) Result() (*tasks.DatasetResult, error) {
	return m.result, m.err
}

// Init starts the spinner, and the run itself when the keyword review is skipped.
func (m *Model) Init() tea.Cmd {
	if m.view == CollectView {
		return tea.Batch(m.spinner.Tick, m.startCollect())
	}
	return m.spinner.Tick
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.keywordList.SetSize(msg.Width-4, msg.Height-6)
		m.bar.Width = min(max(msg.Width-20, 10), 60)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.applyProgress(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgRunComplete:
			outcome := msg.data.(runOutcome)
			m.result = outcome.result
			m.err = outcome.err
			m.progressChan = nil
			m.doneChan = nil
			m.view = ResultView
			return m, nil
		}
	}

	if m.view == KeywordsView {
		var cmd tea.Cmd
		m.keywordList, cmd = m.keywordList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case KeywordsView:
		return m.renderKeywords()
	case CollectView:
		return m.renderCollect()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtering := m.view == KeywordsView && m.keywordList.FilterState() == list.Filtering
	if msg.String() == "ctrl+c" || (!filtering && key.Matches(msg, m.keys.quit)) {
		return m, tea.Quit
	}

	switch m.view {
	case KeywordsView:
		if !filtering && key.Matches(msg, m.keys.start) {
			m.view = CollectView
			return m, m.startCollect()
		}
		var cmd tea.Cmd
		m.keywordList, cmd = m.keywordList.Update(msg)
		return m, cmd
	case ResultView:
		if key.Matches(msg, m.keys.restart) {
			m.view = CollectView
			return m, m.startCollect()
		}
	}
	return m, nil
}

func (m *Model) startCollect() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 64)
	m.doneChan = make(chan runOutcome, 1)
	m.phases = make(map[tasks.Phase]*phaseState, len(tasks.Phases))
	for _, p := range tasks.Phases {
		m.phases[p] = &phaseState{}
	}
	m.current = tasks.Authenticate
	m.message = ""
	m.result = nil
	m.err = nil

	progressChan, doneChan := m.progressChan, m.doneChan
	go func() {
		result, err := m.engine.Run(m.ctx, m.keywords, progressChan)
		doneChan <- runOutcome{result, err}
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, doneChan := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progressChan == nil {
			return runCompleteMsg(nil, fmt.Errorf("%w: no run in progress", shared.ErrInvalidInput))
		}

		update, ok := <-progressChan
		if !ok {
			outcome := <-doneChan
			return runCompleteMsg(outcome.result, outcome.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) applyProgress(update tasks.ProgressUpdate) {
	for _, p := range tasks.Phases {
		if p == update.Phase {
			break
		}
		m.phases[p].done = true
	}

	state := m.phases[update.Phase]
	if state == nil {
		return
	}
	state.started = true
	state.step = update.Step
	state.total = update.Total
	if update.Failed {
		state.failed++
	}
	if update.Total > 0 && update.Step >= update.Total {
		state.done = true
	}

	m.current = update.Phase
	m.message = update.Message
}

func (m *Model) renderKeywords() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.start, m.keys.up, m.keys.down, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.keywordList.View(), helpView)
}

func (m *Model) renderCollect() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Collecting mood dataset"))
	b.WriteString("\n")

	for _, p := range tasks.Phases {
		state := m.phases[p]
		if state == nil {
			state = &phaseState{}
		}

		var line string
		switch {
		case state.done:
			line = styles.ok.Render("✓ " + p.Title())
		case p == m.current:
			line = fmt.Sprintf("%s %s", m.spinner.View(), p.Title())
		default:
			line = styles.help.Render("· " + p.Title())
		}
		if state.total > 1 {
			line += fmt.Sprintf(" (%d/%d)", state.step, state.total)
		}
		if state.failed > 0 {
			line += " " + styles.warn.Render(fmt.Sprintf("%d skipped", state.failed))
		}
		b.WriteString(line + "\n")

		if p == m.current && !state.done && state.total > 1 {
			b.WriteString("  " + m.bar.ViewAs(float64(state.step)/float64(state.total)) + "\n")
		}
	}

	if m.message != "" {
		b.WriteString("\n" + styles.help.Render(m.message) + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Collection failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	run := m.result.Run()
	title := styles.ok.Render(fmt.Sprintf("✓ Collected %d records", run.Records))
	info := fmt.Sprintf("\nPlaylists: %d\nTracks: %d\nElapsed: %s\n",
		run.Playlists, run.Tracks, shared.FormatDuration(run.Duration()))

	var failed string
	if len(m.result.Failures) > 0 {
		failed = "\n" + styles.warn.Render(fmt.Sprintf("Skipped %d tasks:", len(m.result.Failures)))
		for _, f := range m.result.Failures {
			failed += fmt.Sprintf("\n  • %s", f.Error())
		}
		failed += "\n"
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", title, info, formatter.SummaryTable(run), failed, helpView)
}
