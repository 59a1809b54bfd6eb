package domain

import "time"

// Upstream records as persisted by the CRUD side of the product. They are read-only
// projections here; the db tags are shared by the Postgres and SQLite adapters.

type Report struct {
	ID            string     `db:"id" json:"id"`
	Title         string     `db:"title" json:"title"`
	ReportType    string     `db:"report_type" json:"report_type"`
	Status        string     `db:"status" json:"status"`
	ProjectID     string     `db:"project_id" json:"project_id"`
	GeneratedByID string     `db:"generated_by_id" json:"generated_by_id"`
	HTMLContent   *string    `db:"html_content" json:"html_content"` // narrative payload, JSON bundle or legacy HTML
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	GeneratedAt   *time.Time `db:"generated_at" json:"generated_at"`
}

type User struct {
	ID    string  `db:"id" json:"id"`
	Name  *string `db:"name" json:"name"`
	Email string  `db:"email" json:"email"`
}

// DisplayName prefers the user's name and falls back to the email address.
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

type Client struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	ContactName  *string `db:"contact_name" json:"contact_name"`
	ContactEmail *string `db:"contact_email" json:"contact_email"`
	ContactPhone *string `db:"contact_phone" json:"contact_phone"`
	Address      *string `db:"address" json:"address"`
	Industry     *string `db:"industry" json:"industry"`
	LogoURL      *string `db:"logo_url" json:"logo_url"`
	PrimaryColor *string `db:"primary_color" json:"primary_color"`
}

type Project struct {
	ID                   string     `db:"id" json:"id"`
	ClientID             string     `db:"client_id" json:"client_id"`
	Name                 string     `db:"name" json:"name"`
	Description          *string    `db:"description" json:"description"`
	ProjectType          *string    `db:"project_type" json:"project_type"`
	Status               string     `db:"status" json:"status"`
	StartDate            *time.Time `db:"start_date" json:"start_date"`
	EndDate              *time.Time `db:"end_date" json:"end_date"`
	Methodology          *string    `db:"methodology" json:"methodology"`
	Scope                *string    `db:"scope" json:"scope"`                                 // JSON array, JSON string or delimited text
	ComplianceFrameworks *string    `db:"compliance_frameworks" json:"compliance_frameworks"` // same encodings as Scope
}

type Finding struct {
	ID                  string     `db:"id" json:"id"`
	ProjectID           string     `db:"project_id" json:"project_id"`
	ReferenceID         *string    `db:"reference_id" json:"reference_id"`
	Title               string     `db:"title" json:"title"`
	Severity            string     `db:"severity" json:"severity"`
	CVSSScore           *float64   `db:"cvss_score" json:"cvss_score"`
	CVSSVector          *string    `db:"cvss_vector" json:"cvss_vector"`
	CVEID               *string    `db:"cve_id" json:"cve_id"`
	Status              string     `db:"status" json:"status"`
	Description         *string    `db:"description" json:"description"`
	Remediation         *string    `db:"remediation" json:"remediation"`
	Evidence            *string    `db:"evidence" json:"evidence"` // PoC narrative
	AffectedSystems     *string    `db:"affected_systems" json:"affected_systems"`
	AffectedAssetsJSON  *string    `db:"affected_assets_json" json:"affected_assets_json"`
	AffectedAssetsCount *int       `db:"affected_assets_count" json:"affected_assets_count"`
	References          *string    `db:"references_json" json:"references"`
	LegacyEvidence      *string    `db:"legacy_evidence" json:"legacy_evidence"` // pre-upload inline evidence list
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
	Evidences           []Evidence `db:"-" json:"evidences"`
}

type Evidence struct {
	ID        string  `db:"id" json:"id"`
	FindingID string  `db:"finding_id" json:"finding_id"`
	Filename  string  `db:"filename" json:"filename"`
	Filepath  string  `db:"filepath" json:"filepath"`
	Caption   *string `db:"caption" json:"caption"`
	Mimetype  string  `db:"mimetype" json:"mimetype"`
}

// ReportAggregate is everything the context builder needs for one report, fetched as a
// single snapshot. Findings are ordered by creation time, newest first.
type ReportAggregate struct {
	Report      Report
	GeneratedBy User
	Project     Project
	Client      Client
	Findings    []Finding
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var ErrNotFound = errString("not found")

type errString string

func (e errString) Error() string { return string(e) }
