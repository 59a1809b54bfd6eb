package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

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

// FetchReport reads the report and everything hanging off it inside one read-only
// repeatable-read transaction, so the aggregate is a consistent snapshot.
func (db *DB) FetchReport(ctx context.Context, reportID string) (agg domain.ReportAggregate, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return agg, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	agg.Report, err = one[domain.Report](ctx, tx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, reportID)
	if errors.Is(err, pgx.ErrNoRows) {
		return agg, domain.ErrNotFound
	}
	if err != nil {
		return agg, fmt.Errorf("report: %w", err)
	}

	// a deleted account leaves the report readable; the byline is just empty
	agg.GeneratedBy, err = one[domain.User](ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1`, agg.Report.GeneratedByID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return agg, fmt.Errorf("generating user: %w", err)
	}

	agg.Project, err = one[domain.Project](ctx, tx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, agg.Report.ProjectID)
	if err != nil {
		return agg, fmt.Errorf("project %s: %w", agg.Report.ProjectID, err)
	}
	agg.Client, err = one[domain.Client](ctx, tx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, agg.Project.ClientID)
	if err != nil {
		return agg, fmt.Errorf("client %s: %w", agg.Project.ClientID, err)
	}

	rows, err := tx.Query(ctx, `SELECT `+findingColumns+` FROM findings WHERE project_id = $1 ORDER BY created_at DESC, id`, agg.Project.ID)
	if err != nil {
		return agg, fmt.Errorf("findings: %w", err)
	}
	agg.Findings, err = pgx.CollectRows(rows, pgx.RowToStructByName[domain.Finding])
	if err != nil {
		return agg, fmt.Errorf("findings: %w", err)
	}
	if len(agg.Findings) == 0 {
		return agg, nil
	}

	ids := make([]string, len(agg.Findings))
	for i, f := range agg.Findings {
		ids[i] = f.ID
	}
	rows, err = tx.Query(ctx, `SELECT `+evidenceColumns+` FROM evidences WHERE finding_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return agg, fmt.Errorf("evidences: %w", err)
	}
	evidences, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Evidence])
	if err != nil {
		return agg, fmt.Errorf("evidences: %w", err)
	}
	attachEvidences(agg.Findings, evidences)
	return agg, nil
}

func one[T any](ctx context.Context, tx pgx.Tx, sql string, args ...any) (T, error) {
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
}

func attachEvidences(findings []domain.Finding, evidences []domain.Evidence) {
	byFinding := make(map[string][]domain.Evidence, len(findings))
	for _, e := range evidences {
		byFinding[e.FindingID] = append(byFinding[e.FindingID], e)
	}
	for i := range findings {
		findings[i].Evidences = byFinding[findings[i].ID]
	}
}
