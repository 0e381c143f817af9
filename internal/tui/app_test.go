package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/auditoria-energia/internal/audit"
	"github.com/kingrea/auditoria-energia/internal/auditclient"
	"github.com/kingrea/auditoria-energia/internal/auditclient/audittest"
	"github.com/kingrea/auditoria-energia/internal/config"
	"github.com/kingrea/auditoria-energia/internal/logbook"
	"github.com/kingrea/auditoria-energia/internal/workflow"
)

type stubUploader struct {
	mu     sync.Mutex
	calls  []audit.SelectedFile
	result *audit.Result
	err    error
}

func (s *stubUploader) Upload(ctx context.Context, file audit.SelectedFile) (*audit.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, file)
	return s.result, s.err
}

func (s *stubUploader) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestSubmitWithoutFileShowsValidationError(t *testing.T) {
	uploader := &stubUploader{}
	app := newTestApp(t, uploader)
	app = step(t, app, keyRunes("s"))
	st, ok := app.State().(workflow.Error)
	if !ok {
		t.Fatalf("expected error state, got %T", app.State())
	}
	if st.Message != audit.MsgNoFileSelected {
		t.Fatalf("unexpected message %q", st.Message)
	}
	if uploader.count() != 0 {
		t.Fatalf("no request should be sent without a file")
	}
	if !strings.Contains(app.View(), audit.MsgNoFileSelected) {
		t.Fatalf("view should show the validation alert")
	}
}

func TestSuccessfulUploadShowsResultAndResetsPicker(t *testing.T) {
	status := "Irregular"
	count := 2
	impact := 45.5
	uploader := &stubUploader{result: &audit.Result{
		File:            "conta.pdf",
		AuditedAt:       "2025-06-19T14:30:00",
		Summary:         &audit.Summary{OverallStatus: &status, Irregularities: &count, FinancialImpact: &impact},
		Recommendations: []string{"Solicitar revisão da tarifa"},
		Extracted:       &audit.ExtractedData{Utility: "ENERGISA RONDÔNIA", ReferenceMonth: "05/2025"},
	}}
	app := newTestApp(t, uploader)
	app.selectFile(writeBill(t, t.TempDir(), "conta.pdf"))
	if app.focus != focusSubmit {
		t.Fatalf("selecting a file should move focus to submit")
	}

	app = step(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if uploader.count() != 1 {
		t.Fatalf("expected one upload, got %d", uploader.count())
	}
	if _, ok := app.State().(workflow.Result); !ok {
		t.Fatalf("expected result state, got %T", app.State())
	}
	if _, ok := workflow.SelectedFile(app.State()); ok {
		t.Fatalf("selection should be cleared after success")
	}
	if app.focus != focusPicker {
		t.Fatalf("picker reset should return focus to the picker")
	}
	view := app.View()
	for _, want := range []string{"Irregular", "R$ 45.50", "19/06/2025, 14:30:00", "Solicitar revisão da tarifa", "Dados extraídos", "ENERGISA RONDÔNIA"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestFailedUploadKeepsFileAndShowsMessage(t *testing.T) {
	uploader := &stubUploader{err: &audit.ServiceError{StatusCode: 400, Message: "Tipo de arquivo não permitido"}}
	app := newTestApp(t, uploader)
	file := writeBill(t, t.TempDir(), "conta.pdf")
	app.selectFile(file)
	app = step(t, app, keyRunes("s"))
	st, ok := app.State().(workflow.Error)
	if !ok {
		t.Fatalf("expected error state, got %T", app.State())
	}
	if st.Message != "Tipo de arquivo não permitido" {
		t.Fatalf("unexpected message %q", st.Message)
	}
	if st.File == nil || st.File.Path != file.Path {
		t.Fatalf("selected file should be retained on failure")
	}
	if !strings.Contains(app.View(), "conta.pdf (") {
		t.Fatalf("view should still show the selected file")
	}
}

func TestConnectionFailureMessage(t *testing.T) {
	uploader := &stubUploader{err: fmt.Errorf("%w: dial tcp: refused", audit.ErrConnection)}
	app := newTestApp(t, uploader)
	app.selectFile(writeBill(t, t.TempDir(), "conta.png"))
	app = step(t, app, keyRunes("s"))
	st, ok := app.State().(workflow.Error)
	if !ok || st.Message != audit.MsgConnectionError {
		t.Fatalf("expected connection error, got %#v", app.State())
	}
}

func TestSubmitWhileUploadingIsIgnored(t *testing.T) {
	uploader := &stubUploader{result: &audit.Result{}}
	app := newTestApp(t, uploader)
	app.selectFile(writeBill(t, t.TempDir(), "conta.pdf"))
	_, cmd := app.Update(keyRunes("s"))
	if cmd == nil {
		t.Fatalf("submit should schedule the upload")
	}
	if !workflow.Busy(app.State()) {
		t.Fatalf("expected uploading state")
	}
	if !strings.Contains(app.View(), workflow.SubmitBusyLabel) {
		t.Fatalf("busy view should show %q", workflow.SubmitBusyLabel)
	}
	if _, second := app.Update(keyRunes("s")); second != nil {
		t.Fatalf("second submit while uploading must not schedule work")
	}
	runCommands(t, app, cmd)
	if uploader.count() != 1 {
		t.Fatalf("expected exactly one upload, got %d", uploader.count())
	}
}

func TestStaleOutcomeIsIgnored(t *testing.T) {
	app := newTestApp(t, &stubUploader{})
	app.selectFile(writeBill(t, t.TempDir(), "conta.pdf"))
	app.Update(keyRunes("s"))
	before := app.State()
	app.Update(uploadFinishedMsg{attempt: "other", err: audit.ErrConnection})
	if app.State() != before {
		t.Fatalf("outcome for another attempt should not change state")
	}
}

func TestSpinnerTicksOnlyWhileBusy(t *testing.T) {
	app := newTestApp(t, &stubUploader{})
	if _, cmd := app.Update(spinner.TickMsg{}); cmd != nil {
		t.Fatalf("idle app should drop spinner ticks")
	}
}

func TestFocusToggleAndQuit(t *testing.T) {
	app := newTestApp(t, &stubUploader{})
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if app.focus != focusSubmit {
		t.Fatalf("tab should move focus to submit")
	}
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if app.focus != focusPicker {
		t.Fatalf("tab should move focus back to the picker")
	}
	_, cmd := app.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatalf("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestPickerSelectsFileFromStartDir(t *testing.T) {
	dir := t.TempDir()
	writeBill(t, dir, "conta.pdf")
	app := newTestApp(t, &stubUploader{}, dir)
	app = runCommands(t, app, app.Init())
	app = step(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	file, ok := workflow.SelectedFile(app.State())
	if !ok {
		t.Fatalf("expected picker selection, state %T", app.State())
	}
	if file.Name != "conta.pdf" || file.Kind != audit.KindPDF {
		t.Fatalf("unexpected selection %+v", file)
	}
}

func TestEndToEndAgainstFakeService(t *testing.T) {
	server := audittest.NewServer()
	defer server.Close()
	client := auditclient.New(server.URL, auditclient.WithTimeout(5*time.Second))

	app := newTestAppWithUploader(t, client, t.TempDir())
	app.selectFile(writeBill(t, t.TempDir(), "conta janeiro.pdf"))
	app = step(t, app, keyRunes("s"))
	res, ok := app.State().(workflow.Result)
	if !ok {
		t.Fatalf("expected result state, got %#v", app.State())
	}
	if !strings.HasSuffix(res.Audit.File, "conta_janeiro.pdf") {
		t.Fatalf("unexpected stored name %q", res.Audit.File)
	}
	if uploads := server.Uploads(); len(uploads) != 1 || uploads[0].Filename != "conta janeiro.pdf" {
		t.Fatalf("unexpected uploads %+v", uploads)
	}
	if !strings.Contains(app.View(), "R$ 0.00") {
		t.Fatalf("view should show the zero impact")
	}
}

func TestLogPanelShowsSessionEntries(t *testing.T) {
	app := newTestApp(t, &stubUploader{err: errors.New("boom")})
	app.selectFile(writeBill(t, t.TempDir(), "conta.pdf"))
	app = step(t, app, keyRunes("s"))
	view := app.View()
	if !strings.Contains(view, "auditoria.log") || !strings.Contains(view, "Audit failed") {
		t.Fatalf("log panel should tail the logbook:\n%s", view)
	}
	if !strings.Contains(view, audit.MsgConnectionError) {
		t.Fatalf("unclassified errors should show the connection message")
	}
}

func newTestApp(t *testing.T, uploader *stubUploader, startDir ...string) *App {
	t.Helper()
	dir := t.TempDir()
	if len(startDir) > 0 {
		dir = startDir[0]
	}
	return newTestAppWithUploader(t, uploader, dir)
}

func newTestAppWithUploader(t *testing.T, uploader Uploader, startDir string) *App {
	t.Helper()
	projectDir := t.TempDir()
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvUploadTimeout, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvStartDir, startDir)
	if err := config.InitAppDir(projectDir); err != nil {
		t.Fatalf("init app dir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	lb, err := logbook.New(cfg.LogPath(), cfg.LogLevel())
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	t.Cleanup(func() { _ = lb.Close() })
	return NewApp(cfg, uploader, WithLogbook(lb), WithLocation(time.UTC))
}

// step sends msg to the app and runs whatever it schedules.
func step(t *testing.T, app *App, msg tea.Msg) *App {
	t.Helper()
	model, cmd := app.Update(msg)
	return runCommands(t, model, cmd)
}

// runCommands executes cmd and feeds every resulting message back into the
// app until no work is left. Spinner ticks are dropped so the loop ends.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg:
		default:
			nextModel, nextCmd := app.Update(msg)
			if app, ok = nextModel.(*App); !ok {
				t.Fatalf("unexpected model type: %T", nextModel)
			}
			queue = append(queue, nextCmd)
		}
	}
	return app
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func writeBill(t *testing.T, dir, name string) audit.SelectedFile {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 conta"), 0o644); err != nil {
		t.Fatalf("write bill: %v", err)
	}
	file, err := audit.NewSelectedFile(path)
	if err != nil {
		t.Fatalf("selected file: %v", err)
	}
	return file
}
