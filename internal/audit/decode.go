package audit

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The service is loosely typed: counts arrive as 2.0, amounts as "12.5".
// Decoding below keeps what it can read and treats anything mistyped as
// absent instead of failing the whole answer.

// UnmarshalJSON decodes a `resultado` object field by field.
func (r *Result) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*r = Result{
		File:            stringValue(fields["arquivo"]),
		ProcessedAt:     stringValue(fields["data_processamento"]),
		AuditedAt:       stringValue(fields["data_auditoria"]),
		Status:          stringValue(fields["status"]),
		Recommendations: stringList(fields["recomendacoes"]),
		Failure:         stringValue(fields["erro"]),
	}
	var summary Summary
	if decodeOptional(fields["resumo"], &summary) {
		r.Summary = &summary
	}
	var issues ExtractionIssues
	if decodeOptional(fields["problemas_extracao"], &issues) {
		r.ExtractionIssues = &issues
	}
	var extracted ExtractedData
	if decodeOptional(fields["dados_extraidos"], &extracted) {
		r.Extracted = &extracted
	}
	var items []json.RawMessage
	if decodeOptional(fields["irregularidades"], &items) {
		for _, raw := range items {
			var irr Irregularity
			if decodeOptional(raw, &irr) {
				r.Irregularities = append(r.Irregularities, irr)
			}
		}
	}
	return nil
}

// UnmarshalJSON decodes `resumo`; mistyped fields stay nil.
func (s *Summary) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*s = Summary{}
	if status, ok := stringField(fields["status_geral"]); ok {
		s.OverallStatus = &status
	}
	if count, ok := countValue(fields["total_irregularidades"]); ok {
		s.Irregularities = &count
	}
	if impact, ok := numberValue(fields["impacto_financeiro"]); ok {
		s.FinancialImpact = &impact
	}
	return nil
}

// UnmarshalJSON decodes one irregularity.
func (i *Irregularity) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	impact, _ := numberValue(fields["impacto_financeiro"])
	*i = Irregularity{
		Type:            stringValue(fields["tipo"]),
		Description:     stringValue(fields["descricao"]),
		Severity:        stringValue(fields["severidade"]),
		FinancialImpact: impact,
		Recommendation:  stringValue(fields["recomendacao"]),
	}
	return nil
}

// UnmarshalJSON decodes `problemas_extracao`.
func (e *ExtractionIssues) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*e = ExtractionIssues{
		Critical: stringList(fields["criticos"]),
		Warnings: stringList(fields["avisos"]),
	}
	return nil
}

// UnmarshalJSON decodes `dados_extraidos`.
func (d *ExtractedData) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*d = ExtractedData{
		Utility:        stringValue(fields["distribuidora"]),
		ReferenceMonth: stringValue(fields["mes_referencia"]),
		InstallationID: scalarText(fields["numero_instalacao"]),
		Subgroup:       stringValue(fields["subgrupo"]),
		TariffFlag:     stringValue(fields["bandeira_tarifaria"]),
		DueDate:        stringValue(fields["data_vencimento"]),
	}
	if v, ok := numberValue(fields["consumo_kwh"]); ok {
		d.ConsumptionKWh = &v
	}
	if v, ok := numberValue(fields["valor_total"]); ok {
		d.TotalAmount = &v
	}
	return nil
}

func objectFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeOptional reports whether raw held a value of the target's shape.
func decodeOptional(raw json.RawMessage, v any) bool {
	if isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func stringField(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func stringValue(raw json.RawMessage) string {
	s, _ := stringField(raw)
	return s
}

// scalarText accepts a string or a number.
func scalarText(raw json.RawMessage) string {
	if s, ok := stringField(raw); ok {
		return s
	}
	var n json.Number
	if !isNull(raw) && json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func stringList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if !decodeOptional(raw, &items) {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := stringField(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// numberValue accepts a JSON number or a numeric string.
func numberValue(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, true
	}
	if s, ok := stringField(raw); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
	}
	return 0, false
}

// countValue accepts whole numbers only; 2.0 is 2, 2.5 is absent.
func countValue(raw json.RawMessage) (int, bool) {
	v, ok := numberValue(raw)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
