package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/auditoria-energia/internal/workflow"
)

const (
	appTitle    = "Sistema de Auditoria de Contas de Energia Elétrica"
	appSubtitle = "Faça upload de suas contas de energia para análise automática de irregularidades"
	uploadTitle = "Upload de Conta de Energia"
	uploadHint  = "Formatos aceitos: PDF, PNG, JPG, JPEG"
	resultTitle = "Resultado da Auditoria"
)

var (
	colorAccent = lipgloss.Color("#5B8DEF")
	colorMuted  = lipgloss.Color("#888888")
	colorBorder = lipgloss.Color("#444444")
	colorAlert  = lipgloss.Color("#FF6B6B")
	colorOK     = lipgloss.Color("#4CAF50")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(22)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	cardWidth := max(40, width-2)
	screen := workflow.Render(a.machine.State(), a.loc)

	sections := []string{a.renderHeader()}
	sections = append(sections, a.renderUploadCard(screen, cardWidth))
	if screen.Alert != "" {
		sections = append(sections, renderAlert(screen.Alert, cardWidth))
	}
	if screen.Result != nil {
		sections = append(sections, renderResultCard(screen.Result, cardWidth))
	}
	sections = append(sections, renderHistoryCard(screen.History, cardWidth))
	if logPanel := a.renderLogPanel(cardWidth); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(colorMuted).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer, a.help.View(a.keys))
	return strings.Join(sections, "\n")
}

func (a *App) renderHeader() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAlert).
		Render("⚡ " + appTitle)
	return lipgloss.JoinVertical(lipgloss.Left, header, mutedStyle.Render(appSubtitle), "")
}

func (a *App) renderUploadCard(screen workflow.Screen, width int) string {
	lines := []string{titleStyle.Render(uploadTitle), mutedStyle.Render(uploadHint), ""}
	pickerBorder := colorBorder
	if a.focus == focusPicker {
		pickerBorder = colorAccent
	}
	picker := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(pickerBorder).
		Padding(0, 1).
		Width(max(20, width-6)).
		Render(mutedStyle.Render(a.picker.CurrentDirectory) + "\n" + a.picker.View())
	lines = append(lines, picker)
	if screen.FileLine != "" {
		lines = append(lines, "📄 "+screen.FileLine)
	}
	lines = append(lines, "", a.renderSubmit(screen))
	return cardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (a *App) renderSubmit(screen workflow.Screen) string {
	label := screen.SubmitLabel
	if screen.Busy {
		label = a.spinner.View() + " " + label
	}
	style := lipgloss.NewStyle().Padding(0, 2).Bold(true)
	switch {
	case !screen.SubmitEnabled:
		style = style.Foreground(colorMuted).Background(lipgloss.Color("#2A2A2A"))
	case a.focus == focusSubmit:
		style = style.Foreground(lipgloss.Color("#FFFFFF")).Background(colorAccent)
	default:
		style = style.Foreground(colorAccent).Background(lipgloss.Color("#1E2A44"))
	}
	return style.Render(label)
}

func renderAlert(message string, width int) string {
	return cardStyle.
		BorderForeground(colorAlert).
		Foreground(colorAlert).
		Width(width).
		Render("⚠ " + message)
}

func renderResultCard(view *workflow.ResultView, width int) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(colorOK).Render("✔ " + resultTitle),
		"",
		labelStyle.Render("Status") + view.Status,
		labelStyle.Render("Irregularidades") + view.Irregularities,
		labelStyle.Render("Impacto Financeiro") + view.Impact,
		labelStyle.Render("Arquivo") + view.File,
		labelStyle.Render("Processado em") + view.ProcessedAt,
	}
	if len(view.Details) > 0 {
		lines = append(lines, "", titleStyle.Render("Irregularidades encontradas"))
		for _, item := range view.Details {
			head := strings.TrimSpace(fmt.Sprintf("• %s [%s] %s", item.Type, item.Severity, item.Impact))
			lines = append(lines, head)
			if item.Description != "" {
				lines = append(lines, mutedStyle.Render("  "+item.Description))
			}
		}
	}
	if len(view.Extracted) > 0 {
		lines = append(lines, "", titleStyle.Render("Dados extraídos"))
		for _, field := range view.Extracted {
			lines = append(lines, labelStyle.Render(field.Label)+field.Value)
		}
	}
	if len(view.Recommendations) > 0 {
		lines = append(lines, "", titleStyle.Render("Recomendações"))
		for _, rec := range view.Recommendations {
			lines = append(lines, "• "+rec)
		}
	}
	if len(view.Warnings) > 0 {
		lines = append(lines, "", titleStyle.Render("Avisos de extração"))
		for _, warning := range view.Warnings {
			lines = append(lines, mutedStyle.Render("• "+warning))
		}
	}
	return cardStyle.BorderForeground(colorOK).Width(width).Render(strings.Join(lines, "\n"))
}

func renderHistoryCard(view workflow.HistoryView, width int) string {
	lines := []string{
		titleStyle.Render(view.Title),
		mutedStyle.Render(view.Subtitle),
		"",
		mutedStyle.Render(view.Empty),
	}
	return cardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel(width int) string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logTailLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccent).
		Render(fmt.Sprintf("LOG · %s · %d", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return cardStyle.Width(width).Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
