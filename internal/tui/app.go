package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/auditoria-energia/internal/audit"
	"github.com/kingrea/auditoria-energia/internal/config"
	"github.com/kingrea/auditoria-energia/internal/logbook"
	"github.com/kingrea/auditoria-energia/internal/workflow"
)

// Uploader sends a bill to the Audit Service.
type Uploader interface {
	Upload(ctx context.Context, file audit.SelectedFile) (*audit.Result, error)
}

type focusArea int

const (
	focusPicker focusArea = iota
	focusSubmit
)

const (
	pickerHeight = 10
	logTailLines = 6
)

// uploadFinishedMsg carries the outcome of one upload attempt back into the
// event loop.
type uploadFinishedMsg struct {
	attempt string
	result  *audit.Result
	err     error
}

// AppOption customizes the App.
type AppOption func(*App)

// WithLogbook attaches the session logbook.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithContext sets the context uploads run under.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// WithMachine replaces the workflow machine.
func WithMachine(m *workflow.Machine) AppOption {
	return func(a *App) {
		if m != nil {
			a.machine = m
		}
	}
}

// WithLocation sets the zone audit timestamps are shown in.
func WithLocation(loc *time.Location) AppOption {
	return func(a *App) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// App is the bubbletea model of the audit client.
type App struct {
	config   *config.Config
	machine  *workflow.Machine
	uploader Uploader
	logbook  *logbook.Logbook
	ctx      context.Context
	loc      *time.Location

	// UI components
	picker  filepicker.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	focus   focusArea

	statusMsg string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp wires the workflow machine to an uploader.
func NewApp(cfg *config.Config, uploader Uploader, opts ...AppOption) *App {
	a := &App{
		config:   cfg,
		machine:  workflow.NewMachine(),
		uploader: uploader,
		ctx:      context.Background(),
		loc:      time.Local,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		keys:     defaultKeyMap(),
		focus:    focusPicker,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.picker = a.newPicker(a.startDir())
	a.statusMsg = "Selecione uma conta de energia (PDF, PNG, JPG ou JPEG)."
	if cfg != nil {
		a.logInfo("Session opened · service: %s", cfg.BaseURL())
	}
	return a
}

func (a *App) startDir() string {
	if a.config != nil && a.config.StartDir() != "" {
		return a.config.StartDir()
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (a *App) newPicker(dir string) filepicker.Model {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = append([]string(nil), audit.AcceptedExtensions...)
	fp.ShowHidden = a.config != nil && a.config.Project.Picker.ShowHidden
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.AutoHeight = false
	fp.Height = pickerHeight
	return fp
}

func (a *App) logInfo(format string, args ...any) {
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	a.logbook.Error(format, args...)
}

// State exposes the current workflow state.
func (a *App) State() workflow.State {
	return a.machine.State()
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.picker.Init()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case uploadFinishedMsg:
		return a, a.finishUpload(msg)

	case spinner.TickMsg:
		if !workflow.Busy(a.machine.State()) {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Focus):
			if a.focus == focusPicker {
				a.focus = focusSubmit
			} else {
				a.focus = focusPicker
			}
			return a, nil
		case key.Matches(msg, a.keys.Submit):
			return a, a.submit()
		case key.Matches(msg, a.keys.Press) && a.focus == focusSubmit:
			return a, a.submit()
		}
		if a.focus != focusPicker {
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	if ok, path := a.picker.DidSelectFile(msg); ok {
		a.selectPath(path)
	} else if ok, path := a.picker.DidSelectDisabledFile(msg); ok {
		a.statusMsg = fmt.Sprintf("%s não é um tipo aceito (%s).", filepath.Base(path), strings.Join(audit.AcceptedExtensions, ", "))
		a.logWarn("Rejected file type: %s", path)
	}
	return a, cmd
}

func (a *App) selectPath(path string) {
	file, err := audit.NewSelectedFile(path)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Não foi possível ler %s.", filepath.Base(path))
		a.logError("Select %s: %v", path, err)
		return
	}
	a.selectFile(file)
}

func (a *App) selectFile(file audit.SelectedFile) {
	a.machine.Select(file)
	a.focus = focusSubmit
	a.statusMsg = fmt.Sprintf("Arquivo selecionado: %s", file.Name)
	a.logInfo("Selected %s (%s)", file.Name, audit.FormatSize(file.SizeBytes))
}

func (a *App) submit() tea.Cmd {
	if workflow.Busy(a.machine.State()) {
		return nil
	}
	effects := a.machine.Submit()
	if errState, ok := a.machine.State().(workflow.Error); ok {
		a.logWarn("Submit rejected: %s", errState.Message)
	}
	return a.runEffects(effects)
}

func (a *App) finishUpload(msg uploadFinishedMsg) tea.Cmd {
	effects := a.machine.Resolve(msg.attempt, workflow.Outcome{Result: msg.result, Err: msg.err})
	switch st := a.machine.State().(type) {
	case workflow.Result:
		a.statusMsg = "Auditoria concluída."
		a.logInfo("Audit finished · %s · status %s", st.Audit.File, st.Audit.StatusLabel())
	case workflow.Error:
		a.statusMsg = ""
		a.logError("Audit failed: %v", msg.err)
	default:
		a.logWarn("Ignored outcome of stale attempt %s", msg.attempt)
	}
	return a.runEffects(effects)
}

func (a *App) runEffects(effects []workflow.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, effect := range effects {
		switch e := effect.(type) {
		case workflow.StartUpload:
			a.statusMsg = fmt.Sprintf("Enviando %s...", e.File.Name)
			a.logInfo("Upload started · %s · attempt %s", e.File.Name, e.Attempt)
			cmds = append(cmds, a.uploadCmd(e), a.spinner.Tick)
		case workflow.ResetPicker:
			a.picker = a.newPicker(a.picker.CurrentDirectory)
			a.focus = focusPicker
			cmds = append(cmds, a.picker.Init())
		}
	}
	return tea.Batch(cmds...)
}

func (a *App) uploadCmd(effect workflow.StartUpload) tea.Cmd {
	ctx := a.ctx
	uploader := a.uploader
	return func() tea.Msg {
		if uploader == nil {
			return uploadFinishedMsg{attempt: effect.Attempt, err: audit.ErrConnection}
		}
		result, err := uploader.Upload(ctx, effect.File)
		return uploadFinishedMsg{attempt: effect.Attempt, result: result, err: err}
	}
}
