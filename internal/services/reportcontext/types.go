package reportcontext

import (
	"reportctx/internal/domain"
	"reportctx/internal/evidence"
	"reportctx/internal/stats"
)

const (
	DefaultPrimaryColor   = "#10b981"
	DefaultClassification = "CONFIDENTIAL"
	DefaultVersion        = "1.0"
	DefaultBaseOrigin     = "http://localhost:8000"

	longDateLayout = "January 02, 2006"
)

// ReportContext is the render-ready aggregate handed to the PDF and DOCX engines.
type ReportContext struct {
	ReportID     string `json:"report_id"`
	ReportTitle  string `json:"report_title"`
	ReportType   string `json:"report_type"`
	ReportStatus string `json:"report_status"`
	GeneratedAt  string `json:"generated_at"`
	GeneratedBy  string `json:"generated_by"`

	Client   ClientContext     `json:"client"`
	Project  ProjectContext    `json:"project"`
	Findings []FindingContext  `json:"findings"`
	Stats    stats.ReportStats `json:"stats"`

	ExecutiveSummaryHTML  string `json:"executive_summary_html"`
	ExecutiveSummaryPlain string `json:"executive_summary_plain"`
	MethodologyHTML       string `json:"methodology_html"`
	MethodologyPlain      string `json:"methodology_plain"`

	Classification string `json:"classification"`
	Version        string `json:"version"`

	FindingsBySeverity SeverityBuckets `json:"findings_by_severity"`
}

type ClientContext struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	Address      *string `json:"address"`
	Industry     *string `json:"industry"`
	LogoURL      *string `json:"logo_url"`
	LogoBase64   *string `json:"logo_base64"` // data URI for PDF embedding
	PrimaryColor string  `json:"primary_color"`
}

type ProjectContext struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          *string  `json:"description"`
	DescriptionHTML      string   `json:"description_html"`
	DescriptionPlain     string   `json:"description_plain"`
	ProjectType          *string  `json:"project_type"`
	Status               string   `json:"status"`
	StartDate            *string  `json:"start_date"`
	EndDate              *string  `json:"end_date"`
	Methodology          *string  `json:"methodology"`
	Scope                []string `json:"scope"`
	ComplianceFrameworks []string `json:"compliance_frameworks"`
}

type FindingContext struct {
	ID            string   `json:"id"`
	ReferenceID   string   `json:"reference_id"`
	Title         string   `json:"title"`
	Severity      string   `json:"severity"`
	SeverityColor string   `json:"severity_color"`
	CVSSScore     *float64 `json:"cvss_score"`
	CVSSVector    string   `json:"cvss_vector"`
	CVEID         *string  `json:"cve_id"`
	Status        string   `json:"status"`

	DescriptionHTML  string `json:"description_html"`
	DescriptionPlain string `json:"description_plain"`
	RemediationHTML  string `json:"remediation_html"`
	RemediationPlain string `json:"remediation_plain"`
	EvidenceHTML     string `json:"evidence_html"`
	EvidencePlain    string `json:"evidence_plain"`

	AffectedSystems     *string             `json:"affected_systems"`
	AffectedAssetsJSON  *string             `json:"affected_assets_json"`
	AffectedAssetsHTML  string              `json:"affected_assets_html"`
	AffectedAssetsCount int                 `json:"affected_assets_count"`
	References          []string            `json:"references"`
	EvidenceCount       int                 `json:"evidence_count"`
	Evidences           []domain.Evidence   `json:"evidences"`
	EvidenceItems       []evidence.Resolved `json:"evidence_items"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SeverityBuckets groups findings for templates; each bucket keeps the overall order.
type SeverityBuckets struct {
	Critical []FindingContext `json:"critical"`
	High     []FindingContext `json:"high"`
	Medium   []FindingContext `json:"medium"`
	Low      []FindingContext `json:"low"`
	Info     []FindingContext `json:"info"`
}

// Ordered returns the buckets most severe first.
func (b SeverityBuckets) Ordered() [][]FindingContext {
	return [][]FindingContext{b.Critical, b.High, b.Medium, b.Low, b.Info}
}

func groupBySeverity(findings []FindingContext) SeverityBuckets {
	g := SeverityBuckets{
		Critical: []FindingContext{},
		High:     []FindingContext{},
		Medium:   []FindingContext{},
		Low:      []FindingContext{},
		Info:     []FindingContext{},
	}
	for _, f := range findings {
		switch domain.Severity(f.Severity) {
		case domain.SeverityCritical:
			g.Critical = append(g.Critical, f)
		case domain.SeverityHigh:
			g.High = append(g.High, f)
		case domain.SeverityMedium:
			g.Medium = append(g.Medium, f)
		case domain.SeverityLow:
			g.Low = append(g.Low, f)
		case domain.SeverityInfo:
			g.Info = append(g.Info, f)
		}
	}
	return g
}
