package audit

// Result is the `resultado` object returned by the Audit Service. Only the
// summary fields drive the workflow; the rest is shown when present.
type Result struct {
	File        string `json:"arquivo"`
	ProcessedAt string `json:"data_processamento,omitempty"`
	// AuditedAt is what the service emits when the audit itself succeeded.
	AuditedAt string   `json:"data_auditoria,omitempty"`
	Status    string   `json:"status,omitempty"`
	Summary   *Summary `json:"resumo,omitempty"`

	Irregularities   []Irregularity    `json:"irregularidades,omitempty"`
	Recommendations  []string          `json:"recomendacoes,omitempty"`
	ExtractionIssues *ExtractionIssues `json:"problemas_extracao,omitempty"`
	Extracted        *ExtractedData    `json:"dados_extraidos,omitempty"`
	Failure          string            `json:"erro,omitempty"`
}

// Summary is `resultado.resumo`. Every field is optional.
type Summary struct {
	OverallStatus   *string  `json:"status_geral,omitempty"`
	Irregularities  *int     `json:"total_irregularidades,omitempty"`
	FinancialImpact *float64 `json:"impacto_financeiro,omitempty"`
}

// Irregularity is one anomaly reported for the bill.
type Irregularity struct {
	Type            string  `json:"tipo"`
	Description     string  `json:"descricao"`
	Severity        string  `json:"severidade"`
	FinancialImpact float64 `json:"impacto_financeiro"`
	Recommendation  string  `json:"recomendacao,omitempty"`
}

// ExtractionIssues lists problems found while reading the bill.
type ExtractionIssues struct {
	Critical []string `json:"criticos,omitempty"`
	Warnings []string `json:"avisos,omitempty"`
}

// ExtractedData is what the service read from the bill. Only the fields
// shown in the result card are kept.
type ExtractedData struct {
	Utility        string   `json:"distribuidora,omitempty"`
	ReferenceMonth string   `json:"mes_referencia,omitempty"`
	InstallationID string   `json:"numero_instalacao,omitempty"`
	Subgroup       string   `json:"subgrupo,omitempty"`
	TariffFlag     string   `json:"bandeira_tarifaria,omitempty"`
	ConsumptionKWh *float64 `json:"consumo_kwh,omitempty"`
	TotalAmount    *float64 `json:"valor_total,omitempty"`
	DueDate        string   `json:"data_vencimento,omitempty"`
}

// Timestamp returns the processing time, falling back to the audit time.
func (r Result) Timestamp() string {
	if r.ProcessedAt != "" {
		return r.ProcessedAt
	}
	return r.AuditedAt
}
