package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeMetrics(t *testing.T) {
	metrics := WorkspaceMetrics{
		"accuracy": 0.8,
		"macro avg": map[string]any{
			"precision": 0.75, "recall": 0.5, "f1-score": 0.6, "support": 10.0,
		},
		"weighted avg": map[string]any{
			"precision": 0.8125, "recall": 0.8, "f1-score": 0.79, "support": 10.0,
		},
		"Greetings": map[string]any{
			"precision": 1.0, "recall": 0.5, "f1-score": 0.6667, "support": 4.0,
		},
		"Farewell": map[string]any{
			"precision": 0.5, "recall": 0.5, "f1-score": 0.5, "support": 6.0,
		},
		"unexpected": "shape",
	}

	summary := SummarizeMetrics(metrics)
	require.NotNil(t, summary)

	require.NotNil(t, summary.Accuracy)
	assert.True(t, decimal.NewFromInt(80).Equal(*summary.Accuracy))

	require.NotNil(t, summary.MacroAvg)
	assert.True(t, decimal.NewFromInt(75).Equal(summary.MacroAvg.Precision))
	assert.True(t, decimal.NewFromInt(50).Equal(summary.MacroAvg.Recall))
	assert.Equal(t, int64(10), summary.MacroAvg.Support)

	require.NotNil(t, summary.WeightedAvg)
	assert.True(t, decimal.RequireFromString("81.25").Equal(summary.WeightedAvg.Precision))

	require.Len(t, summary.Classes, 2)
	assert.Equal(t, "Farewell", summary.Classes[0].Label)
	assert.Equal(t, "Greetings", summary.Classes[1].Label)
	assert.True(t, decimal.RequireFromString("66.67").Equal(summary.Classes[1].F1Score))
}

func TestSummarizeMetrics_Empty(t *testing.T) {
	assert.Nil(t, SummarizeMetrics(nil))
	assert.Nil(t, SummarizeMetrics(WorkspaceMetrics{}))
}
