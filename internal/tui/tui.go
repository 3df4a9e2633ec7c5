// Package tui provides a Bubble Tea terminal user interface for scdl.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/handiism/soundcloud-downloader/internal/config"
	"github.com/handiism/soundcloud-downloader/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5500")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	collectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// errCanceled is shown when the user aborts a run.
var errCanceled = errors.New("cancelled by user")

// userContents are cycled with tab.
var userContents = []string{"tracks", "popular", "playlists", "albums"}

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    *zap.Logger
	logs      []LogEntry
	names     []string
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent

	totalFiles      int32
	downloadedFiles int32
	failedFiles     int32
	totalBytes      int64
	receivedBytes   int64
	concurrency     int

	// Options
	playlist    bool
	verbose     bool
	userContent string

	// newManager builds the manager for a run.
	newManager func(*config.Settings, func(download.ProgressEvent)) *download.Manager

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings uses the defaults.
func NewModel(settings *config.Settings, logger *zap.Logger) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "https://soundcloud.com/artist/sets/name"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5500"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:       StateInput,
		textInput:   ti,
		spinner:     sp,
		progress:    prog,
		settings:    settings,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		playlist:    settings.CreatePlaylist,
		userContent: settings.UserContent,
		concurrency: settings.MaxConcurrentTracksDownload,
		newManager: func(s *config.Settings, onProgress func(download.ProgressEvent)) *download.Manager {
			return download.NewManager(s, onProgress, download.WithLogger(logger))
		},
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when the manager reports an event.
	ProgressMsg struct {
		Event download.ProgressEvent

		source chan download.ProgressEvent
	}

	// InitDoneMsg is sent when initialization completes.
	InitDoneMsg struct {
		Names   []string
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Received int64
		Total    int64
		Files    int32
		TotalF   int32
		Failed   int32
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.source != m.events {
			// Left over from a previous run.
			break
		}
		cmds = append(cmds, m.listen())
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case len(msg.Names) == 0:
			m.state = StateError
			m.err = errors.New("nothing to download")
		default:
			m.names = msg.Names
			m.manager = msg.Manager
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		m.receivedBytes = msg.Received
		m.totalBytes = msg.Total
		m.downloadedFiles = msg.Files
		m.totalFiles = msg.TotalF
		m.failedFiles = msg.Failed
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCanceled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.receivedBytes, m.totalBytes, m.downloadedFiles, m.totalFiles = m.manager.GetProgress()
			m.failedFiles = m.manager.Failed()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.downloadedFiles+m.failedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes shortcuts. Keys it does not consume fall through
// to the text input.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return true, tea.Quit

	case "esc":
		switch m.state {
		case StateInput:
			return true, tea.Quit
		case StateDownloading, StateInitializing:
			m.cancel()
			m.state = StateError
			m.err = errCanceled
		}
		return true, nil

	case "enter":
		if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
			m.state = StateInitializing
			m.events = make(chan download.ProgressEvent, 64)
			return true, tea.Batch(m.initializeDownload(), m.listen(), m.spinner.Tick)
		}
		return true, nil

	case "ctrl+p":
		if m.state == StateInput {
			m.playlist = !m.playlist
		}
		return true, nil

	case "ctrl+t":
		if m.state == StateInput {
			m.verbose = !m.verbose
		}
		return true, nil

	case "tab":
		if m.state == StateInput {
			m.userContent = nextUserContent(m.userContent)
		}
		return true, nil

	case "+", "=":
		if m.state == StateDownloading && m.manager != nil {
			m.manager.SetMaxConcurrentTracks(m.manager.MaxConcurrentTracks() + 1)
			m.concurrency = m.manager.MaxConcurrentTracks()
			return true, nil
		}

	case "-":
		if m.state == StateDownloading && m.manager != nil {
			m.manager.SetMaxConcurrentTracks(m.manager.MaxConcurrentTracks() - 1)
			m.concurrency = m.manager.MaxConcurrentTracks()
			return true, nil
		}

	case "q":
		if m.state == StateComplete || m.state == StateError {
			return true, tea.Quit
		}

	case "r":
		if m.state == StateComplete || m.state == StateError {
			m.reset()
			return true, textinput.Blink
		}
	}
	return false, nil
}

func (m *Model) reset() {
	if m.manager != nil {
		if err := m.manager.Close(); err != nil {
			m.logger.Warn("closing manager", zap.Error(err))
		}
	}
	m.state = StateInput
	m.logs = nil
	m.names = nil
	m.err = nil
	m.downloadedFiles, m.totalFiles, m.failedFiles = 0, 0, 0
	m.receivedBytes, m.totalBytes = 0, 0
	m.manager = nil
	m.events = nil
	m.concurrency = m.settings.MaxConcurrentTracksDownload
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func nextUserContent(current string) string {
	for i, c := range userContents {
		if c == current {
			return userContents[(i+1)%len(userContents)]
		}
	}
	return userContents[0]
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// listen waits for the next manager event.
func (m Model) listen() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event, source: events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("☁ SoundCloud Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download tracks, playlists and profiles from SoundCloud"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))
	return b.String()
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter SoundCloud URLs (space separated):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", check(m.playlist))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+t)\n", check(m.verbose))
	fmt.Fprintf(&b, "  Profiles download: %s (tab)\n", m.userContent)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Resolving..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if len(m.names) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d collection(s):", len(m.names))))
		b.WriteString("\n")
		for _, name := range m.names {
			b.WriteString(collectionStyle.Render("  ♪ " + name))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles+m.failedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Failed: %d | Downloaded: %.2f MB | Parallel: %d",
		m.downloadedFiles,
		m.totalFiles,
		m.failedFiles,
		float64(m.receivedBytes)/1024/1024,
		m.concurrency,
	)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) viewComplete() string {
	return boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Collections: %d\n"+
			"Files: %d\n"+
			"Failed: %d\n"+
			"Size: %.2f MB",
		len(m.names),
		m.downloadedFiles,
		m.failedFiles,
		float64(m.receivedBytes)/1024/1024,
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + m.err.Error())
	}
	b.WriteString("\n")
	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		style, prefix := dimStyle, "•"
		switch log.Level {
		case download.LevelError:
			style, prefix = errorStyle, "✗"
		case download.LevelWarning:
			style, prefix = warningStyle, "!"
		case download.LevelSuccess:
			style, prefix = successStyle, "✓"
		case download.LevelInfo:
			style, prefix = infoStyle, "›"
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+p: playlist • ctrl+t: verbose • tab: profile content • esc: quit"
	case StateInitializing:
		return "esc: cancel"
	case StateDownloading:
		return "+/-: parallel downloads • esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// initializeDownload resolves the input and creates the manager.
func (m Model) initializeDownload() tea.Cmd {
	input := strings.Join(strings.Fields(m.textInput.Value()), "\n")
	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	settings.UserContent = m.userContent
	ctx, events, newManager := m.ctx, m.events, m.newManager

	return func() tea.Msg {
		manager := newManager(&settings, func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
			}
		})
		if err := manager.Initialize(ctx, input); err != nil {
			return InitDoneMsg{Err: err}
		}
		return InitDoneMsg{Names: manager.GetCollectionNames(), Manager: manager}
	}
}

// startDownload runs the downloads in the background.
func (m Model) startDownload() tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		err := manager.StartDownloads(ctx)
		received, total, files, totalFiles := manager.GetProgress()
		return DownloadDoneMsg{
			Received: received,
			Total:    total,
			Files:    files,
			TotalF:   totalFiles,
			Failed:   manager.Failed(),
			Err:      err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger *zap.Logger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
