package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeEmpty(t *testing.T) {
	got := Compute(nil)
	assert.Equal(t, ReportStats{RiskLevel: "Low"}, got)
}

func TestComputeSingleCritical(t *testing.T) {
	got := Compute([]string{"critical"})
	assert.Equal(t, 1, got.TotalFindings)
	assert.Equal(t, 1, got.CriticalCount)
	assert.Equal(t, 100.0, got.CriticalPercent)
	assert.Equal(t, 100.0, got.RiskScore)
	assert.Equal(t, "Critical", got.RiskLevel)
}

func TestComputeHighPresenceWinsOverScore(t *testing.T) {
	got := Compute([]string{"HIGH", "LOW", "Low", "INFORMATIONAL"})
	assert.Equal(t, 4, got.TotalFindings)
	assert.Equal(t, 1, got.HighCount)
	assert.Equal(t, 2, got.LowCount)
	assert.Equal(t, 1, got.InfoCount)
	assert.Equal(t, 22.5, got.RiskScore)
	assert.Equal(t, "High", got.RiskLevel)
	assert.Equal(t, 25.0, got.HighPercent)
	assert.Equal(t, 50.0, got.LowPercent)
	assert.Equal(t, 25.0, got.InfoPercent)
}

func TestComputeLevels(t *testing.T) {
	tests := []struct {
		name  string
		sev   []string
		score float64
		level string
	}{
		{"medium only", []string{"MEDIUM"}, 40.0, "Medium"},
		{"low and info", []string{"LOW", "INFO"}, 5.0, "Low"},
		{"info only", []string{"INFO", "INFO"}, 0, "Low"},
		{"missing severity counts as medium", []string{""}, 40.0, "Medium"},
		{"thirds", []string{"HIGH", "LOW", "INFO"}, 26.7, "High"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.sev)
			assert.Equal(t, tt.score, got.RiskScore)
			assert.Equal(t, tt.level, got.RiskLevel)
		})
	}
}

func TestComputeUnknownSeverityNotBucketed(t *testing.T) {
	got := Compute([]string{"HIGH", "bogus"})
	assert.Equal(t, 2, got.TotalFindings)
	assert.Equal(t, 1, got.HighCount)
	sum := got.CriticalCount + got.HighCount + got.MediumCount + got.LowCount + got.InfoCount
	assert.Equal(t, 1, sum)
	assert.Equal(t, 50.0, got.HighPercent)
	assert.Equal(t, 35.0, got.RiskScore)
}

func TestComputePercentRounding(t *testing.T) {
	got := Compute([]string{"HIGH", "LOW", "LOW"})
	assert.Equal(t, 33.3, got.HighPercent)
	assert.Equal(t, 66.7, got.LowPercent)
}
