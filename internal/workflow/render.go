package workflow

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kingrea/auditoria-energia/internal/audit"
)

// Labels shown by the interface.
const (
	SubmitLabel      = "Iniciar Auditoria"
	SubmitBusyLabel  = "Processando..."
	HistoryTitle     = "Histórico de Auditorias"
	HistorySubtitle  = "Últimas auditorias realizadas"
	HistoryEmptyText = "Nenhuma auditoria anterior encontrada"
)

// Screen is everything the interface needs to draw one frame.
type Screen struct {
	// FileLine is "name (X.XX MB)" or empty when nothing is selected.
	FileLine      string
	SubmitEnabled bool
	SubmitLabel   string
	Busy          bool
	Alert         string
	Result        *ResultView
	History       HistoryView
}

// ResultView is the summary card of a successful audit.
type ResultView struct {
	Status          string
	Irregularities  string
	Impact          string
	File            string
	ProcessedAt     string
	Details         []IrregularityView
	Extracted       []FieldView
	Recommendations []string
	Warnings        []string
}

// IrregularityView is one detail row under the summary.
type IrregularityView struct {
	Type        string
	Severity    string
	Impact      string
	Description string
}

// FieldView is one labelled value read from the bill.
type FieldView struct {
	Label string
	Value string
}

// HistoryView is the static history placeholder.
type HistoryView struct {
	Title    string
	Subtitle string
	Empty    string
}

// Render projects a state onto a Screen. Timestamps are shown in loc.
func Render(s State, loc *time.Location) Screen {
	screen := Screen{
		SubmitLabel: SubmitLabel,
		History: HistoryView{
			Title:    HistoryTitle,
			Subtitle: HistorySubtitle,
			Empty:    HistoryEmptyText,
		},
	}
	if file, ok := SelectedFile(s); ok {
		screen.FileLine = fmt.Sprintf("%s (%s)", file.Name, audit.FormatSize(file.SizeBytes))
		screen.SubmitEnabled = true
	}
	switch st := s.(type) {
	case Uploading:
		screen.Busy = true
		screen.SubmitEnabled = false
		screen.SubmitLabel = SubmitBusyLabel
	case Error:
		screen.Alert = st.Message
	case Result:
		screen.Result = renderResult(st.Audit, loc)
	}
	return screen
}

func renderResult(r audit.Result, loc *time.Location) *ResultView {
	view := &ResultView{
		Status:          r.StatusLabel(),
		Irregularities:  fmt.Sprintf("%d", r.IrregularityCount()),
		Impact:          "R$ " + r.ImpactLabel(),
		File:            r.File,
		ProcessedAt:     audit.FormatTimestamp(r.Timestamp(), loc),
		Recommendations: r.Recommendations,
	}
	for _, irr := range r.Irregularities {
		view.Details = append(view.Details, IrregularityView{
			Type:        irr.Type,
			Severity:    irr.Severity,
			Impact:      "R$ " + audit.FormatAmount(irr.FinancialImpact),
			Description: irr.Description,
		})
	}
	view.Extracted = extractedFields(r.Extracted)
	if issues := r.ExtractionIssues; issues != nil {
		view.Warnings = append(view.Warnings, issues.Critical...)
		view.Warnings = append(view.Warnings, issues.Warnings...)
	}
	if r.Failure != "" {
		view.Warnings = append(view.Warnings, r.Failure)
	}
	return view
}

func extractedFields(d *audit.ExtractedData) []FieldView {
	if d == nil {
		return nil
	}
	var fields []FieldView
	add := func(label, value string) {
		if value != "" {
			fields = append(fields, FieldView{Label: label, Value: value})
		}
	}
	add("Distribuidora", d.Utility)
	add("Referência", d.ReferenceMonth)
	add("Instalação", d.InstallationID)
	if d.ConsumptionKWh != nil {
		add("Consumo", strconv.FormatFloat(*d.ConsumptionKWh, 'f', -1, 64)+" kWh")
	}
	if d.TotalAmount != nil {
		add("Valor total", "R$ "+audit.FormatAmount(*d.TotalAmount))
	}
	add("Subgrupo", d.Subgroup)
	add("Bandeira", d.TariffFlag)
	add("Vencimento", d.DueDate)
	return fields
}
