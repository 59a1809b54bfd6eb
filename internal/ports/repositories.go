package ports

import (
	"context"

	"reportctx/internal/domain"
)

// ReportStore fetches a report with its project, client, generating user, findings and
// evidence as one snapshot. It returns domain.ErrNotFound when no report matches.
type ReportStore interface {
	FetchReport(ctx context.Context, reportID string) (domain.ReportAggregate, error)
}
