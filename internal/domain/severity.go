package domain

import "strings"

// Severity is a normalized finding severity.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Severities lists the canonical buckets, most severe first.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// UnknownRank orders unrecognized severities after every canonical one.
const UnknownRank = 99

// NormalizeSeverity upper-cases raw and folds INFORMATIONAL into INFO. A missing
// severity is treated as MEDIUM. Unrecognized values are returned upper-cased with
// known=false.
func NormalizeSeverity(raw string) (s Severity, known bool) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch v {
	case "":
		return SeverityMedium, true
	case "INFORMATIONAL":
		return SeverityInfo, true
	}
	s = Severity(v)
	return s, s.Valid()
}

// Valid reports whether s is one of the five canonical buckets.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// Rank orders severities for reports: CRITICAL=1 ... INFO=5, unknown last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 1
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 4
	case SeverityInfo:
		return 5
	default:
		return UnknownRank
	}
}

// Weight feeds the weighted risk score.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 10
	case SeverityHigh:
		return 7
	case SeverityMedium:
		return 4
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Color is the accent used by report templates.
func (s Severity) Color() string {
	switch s {
	case SeverityCritical:
		return "#DC2626"
	case SeverityHigh:
		return "#EA580C"
	case SeverityMedium:
		return "#CA8A04"
	case SeverityLow:
		return "#2563EB"
	default:
		return "#6B7280"
	}
}

// BucketKey is the lower-case grouping key (critical, high, ...); "" for unknown.
func (s Severity) BucketKey() string {
	if !s.Valid() {
		return ""
	}
	return strings.ToLower(string(s))
}

func (s Severity) String() string { return string(s) }
