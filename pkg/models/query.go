package models

// Chart kinds the analysis model may suggest for a result set.
const (
	ChartLine  = "line"
	ChartBar   = "bar"
	ChartPie   = "pie"
	ChartTable = "table"
	ChartNone  = "none"
)

// ValidChartKind reports whether kind is one of the suggestible charts.
func ValidChartKind(kind string) bool {
	switch kind {
	case ChartLine, ChartBar, ChartPie, ChartTable, ChartNone:
		return true
	}
	return false
}

// Insights pairs the model's natural-language summary with its chart
// suggestion.
type Insights struct {
	InsightText string `json:"insight_text"`
	ChartType   string `json:"chart_type"`
}

// QueryEnvelope is the uniform response for one natural-language query.
type QueryEnvelope struct {
	Success  bool             `json:"success"`
	SQLQuery string           `json:"sql_query,omitempty"`
	Data     []map[string]any `json:"data"`
	Insights Insights         `json:"insights"`
	Message  string           `json:"message"`
}
