package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"reportctx/internal/domain"
)

const (
	reportColumns = `id, title, report_type, status, project_id, generated_by_id, html_content,
		created_at, updated_at, generated_at`
	userColumns    = `id, name, email`
	projectColumns = `id, client_id, name, description, project_type, status, start_date, end_date,
		methodology, scope, compliance_frameworks`
	clientColumns = `id, name, contact_name, contact_email, contact_phone, address, industry,
		logo_url, primary_color`
	findingColumns = `id, project_id, reference_id, title, severity, cvss_score, cvss_vector, cve_id,
		status, description, remediation, evidence, affected_systems, affected_assets_json,
		affected_assets_count, references_json, legacy_evidence, created_at, updated_at`
	evidenceColumns = `id, finding_id, filename, filepath, caption, mimetype`
)

// FetchReport loads the report aggregate in a single read transaction.
func (db *DB) FetchReport(ctx context.Context, reportID string) (agg domain.ReportAggregate, err error) {
	tx, err := db.X.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return agg, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.GetContext(ctx, &agg.Report, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, reportID)
	if errors.Is(err, sql.ErrNoRows) {
		return agg, domain.ErrNotFound
	}
	if err != nil {
		return agg, fmt.Errorf("report: %w", err)
	}

	err = tx.GetContext(ctx, &agg.GeneratedBy, `SELECT `+userColumns+` FROM users WHERE id = ?`, agg.Report.GeneratedByID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return agg, fmt.Errorf("generating user: %w", err)
	}
	if err = tx.GetContext(ctx, &agg.Project, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, agg.Report.ProjectID); err != nil {
		return agg, fmt.Errorf("project %s: %w", agg.Report.ProjectID, err)
	}
	if err = tx.GetContext(ctx, &agg.Client, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, agg.Project.ClientID); err != nil {
		return agg, fmt.Errorf("client %s: %w", agg.Project.ClientID, err)
	}

	if err = tx.SelectContext(ctx, &agg.Findings,
		`SELECT `+findingColumns+` FROM findings WHERE project_id = ? ORDER BY created_at DESC, id`, agg.Project.ID); err != nil {
		return agg, fmt.Errorf("findings: %w", err)
	}
	if len(agg.Findings) == 0 {
		return agg, nil
	}

	ids := make([]string, len(agg.Findings))
	for i, f := range agg.Findings {
		ids[i] = f.ID
	}
	query, args, err := sqlx.In(`SELECT `+evidenceColumns+` FROM evidences WHERE finding_id IN (?) ORDER BY created_at, id`, ids)
	if err != nil {
		return agg, err
	}
	var evidences []domain.Evidence
	if err = tx.SelectContext(ctx, &evidences, tx.Rebind(query), args...); err != nil {
		return agg, fmt.Errorf("evidences: %w", err)
	}

	byFinding := make(map[string][]domain.Evidence, len(agg.Findings))
	for _, e := range evidences {
		byFinding[e.FindingID] = append(byFinding[e.FindingID], e)
	}
	for i := range agg.Findings {
		agg.Findings[i].Evidences = byFinding[agg.Findings[i].ID]
	}
	return agg, nil
}
