package stats

import (
	"math"

	"reportctx/internal/domain"
)

// ReportStats summarizes the severity distribution of a report's findings.
type ReportStats struct {
	TotalFindings int `json:"total_findings"`
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	CriticalPercent float64 `json:"critical_percent"`
	HighPercent     float64 `json:"high_percent"`
	MediumPercent   float64 `json:"medium_percent"`
	LowPercent      float64 `json:"low_percent"`
	InfoPercent     float64 `json:"info_percent"`

	RiskScore float64 `json:"risk_score"` // 0-100
	RiskLevel string  `json:"risk_level"` // Critical, High, Medium, Low
}

// Compute derives counts, percentages and the weighted risk score from raw severity
// values. Unrecognized severities count toward the total but land in no bucket.
func Compute(severities []string) ReportStats {
	total := len(severities)
	counts := make(map[domain.Severity]int, len(domain.Severities))
	for _, raw := range severities {
		if s, known := domain.NormalizeSeverity(raw); known {
			counts[s]++
		}
	}

	pct := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return round1(float64(n) / float64(total) * 100)
	}

	weighted := 0
	for _, s := range domain.Severities {
		weighted += counts[s] * s.Weight()
	}
	var score float64
	if total > 0 {
		score = round1(float64(weighted) / float64(total*10) * 100)
	}

	return ReportStats{
		TotalFindings:   total,
		CriticalCount:   counts[domain.SeverityCritical],
		HighCount:       counts[domain.SeverityHigh],
		MediumCount:     counts[domain.SeverityMedium],
		LowCount:        counts[domain.SeverityLow],
		InfoCount:       counts[domain.SeverityInfo],
		CriticalPercent: pct(counts[domain.SeverityCritical]),
		HighPercent:     pct(counts[domain.SeverityHigh]),
		MediumPercent:   pct(counts[domain.SeverityMedium]),
		LowPercent:      pct(counts[domain.SeverityLow]),
		InfoPercent:     pct(counts[domain.SeverityInfo]),
		RiskScore:       score,
		RiskLevel:       riskLevel(counts, score),
	}
}

// riskLevel: presence of a severity wins over the numeric score, checked top down.
func riskLevel(counts map[domain.Severity]int, score float64) string {
	switch {
	case counts[domain.SeverityCritical] > 0 || score >= 70:
		return "Critical"
	case counts[domain.SeverityHigh] > 0 || score >= 50:
		return "High"
	case counts[domain.SeverityMedium] > 0 || score >= 25:
		return "Medium"
	default:
		return "Low"
	}
}

func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
