package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Classification report keys
const (
	metricsMacroAvg    = "macro avg"
	metricsWeightedAvg = "weighted avg"
	metricsAccuracy    = "accuracy"
	metricsPrecision   = "precision"
	metricsRecall      = "recall"
	metricsF1Score     = "f1-score"
	metricsSupport     = "support"
)

// MetricsRow is one row of a classification report, as percentages
type MetricsRow struct {
	Label     string          `json:"label"`
	Precision decimal.Decimal `json:"precision"`
	Recall    decimal.Decimal `json:"recall"`
	F1Score   decimal.Decimal `json:"f1Score"`
	Support   int64           `json:"support"`
}

// MetricsSummary is a display-oriented view of WorkspaceMetrics
type MetricsSummary struct {
	Accuracy    *decimal.Decimal `json:"accuracy,omitempty"`
	MacroAvg    *MetricsRow      `json:"macroAvg,omitempty"`
	WeightedAvg *MetricsRow      `json:"weightedAvg,omitempty"`
	Classes     []MetricsRow     `json:"classes"`
}

// SummarizeMetrics reads a classification report. Entries that do not have the
// expected shape are skipped. Returns nil for empty metrics.
func SummarizeMetrics(metrics WorkspaceMetrics) *MetricsSummary {
	if len(metrics) == 0 {
		return nil
	}

	summary := &MetricsSummary{Classes: []MetricsRow{}}
	for key, value := range metrics {
		switch key {
		case metricsAccuracy:
			if f, ok := toFloat(value); ok {
				accuracy := percentage(f)
				summary.Accuracy = &accuracy
			}
		case metricsMacroAvg:
			if row, ok := metricsRow(key, value); ok {
				summary.MacroAvg = &row
			}
		case metricsWeightedAvg:
			if row, ok := metricsRow(key, value); ok {
				summary.WeightedAvg = &row
			}
		default:
			if row, ok := metricsRow(key, value); ok {
				summary.Classes = append(summary.Classes, row)
			}
		}
	}

	sort.Slice(summary.Classes, func(i, j int) bool {
		return summary.Classes[i].Label < summary.Classes[j].Label
	})
	return summary
}

func metricsRow(label string, value any) (MetricsRow, bool) {
	fields, ok := value.(map[string]any)
	if !ok {
		return MetricsRow{}, false
	}
	precision, okP := toFloat(fields[metricsPrecision])
	recall, okR := toFloat(fields[metricsRecall])
	f1, okF := toFloat(fields[metricsF1Score])
	if !okP || !okR || !okF {
		return MetricsRow{}, false
	}
	support, _ := toFloat(fields[metricsSupport])

	return MetricsRow{
		Label:     label,
		Precision: percentage(precision),
		Recall:    percentage(recall),
		F1Score:   percentage(f1),
		Support:   int64(support),
	}, true
}

func percentage(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Mul(decimal.NewFromInt(100)).Round(2)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
