package reportcontext

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"reportctx/internal/domain"
	"reportctx/internal/ports"
	"reportctx/internal/stats"
	"reportctx/internal/workers/renderpool"
)

// ErrNotFound is returned by Build when no report matches the id.
var ErrNotFound = domain.ErrNotFound

// Observer receives build telemetry. metrics.Metrics satisfies it.
type Observer interface {
	BuildCompleted(outcome string, d time.Duration, findings int)
	LogoFetched(outcome string)
	FieldDegraded(field string)
}

type nopObserver struct{}

func (nopObserver) BuildCompleted(string, time.Duration, int) {}
func (nopObserver) LogoFetched(string)                        {}
func (nopObserver) FieldDegraded(string)                      {}

type Options struct {
	BaseOrigin    string // origin for relative evidence paths
	RenderWorkers int
	Logger        *slog.Logger
	Observer      Observer
	Now           func() time.Time
}

// Builder assembles ReportContexts. It holds no per-report state and is safe for
// concurrent builds.
type Builder struct {
	store      ports.ReportStore
	text       ports.RichText
	logos      ports.LogoFetcher
	baseOrigin string
	workers    int
	log        *slog.Logger
	obs        Observer
	now        func() time.Time
}

// New wires a Builder. logos may be nil, in which case logos are never inlined.
func New(store ports.ReportStore, text ports.RichText, logos ports.LogoFetcher, opts Options) *Builder {
	b := &Builder{
		store:      store,
		text:       text,
		logos:      logos,
		baseOrigin: opts.BaseOrigin,
		workers:    opts.RenderWorkers,
		log:        opts.Logger,
		obs:        opts.Observer,
		now:        opts.Now,
	}
	if b.baseOrigin == "" {
		b.baseOrigin = DefaultBaseOrigin
	}
	if b.workers < 1 {
		b.workers = 1
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	if b.obs == nil {
		b.obs = nopObserver{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Build fetches the report and everything hanging off it and resolves it into a
// ReportContext. Only a missing report or a store failure is returned as an error;
// malformed fields degrade individually.
func (b *Builder) Build(ctx context.Context, reportID string) (rc *ReportContext, err error) {
	start := time.Now()
	defer func() {
		outcome, n := "ok", 0
		switch {
		case errors.Is(err, domain.ErrNotFound):
			outcome = "not_found"
		case err != nil:
			outcome = "error"
		default:
			n = len(rc.Findings)
		}
		b.obs.BuildCompleted(outcome, time.Since(start), n)
	}()

	log := b.log.With("report_id", reportID)
	log.Info("building report context")

	agg, err := b.store.FetchReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("report %s: %w", reportID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching report %s: %w", reportID, err)
	}

	findings := sortFindings(agg.Findings)

	var client ClientContext
	results := make([]FindingContext, len(findings))
	filled := make([]bool, len(findings))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		client = b.clientContext(gctx, agg.Client)
		return nil
	})
	g.Go(func() error {
		return renderpool.Run(gctx, b.log, len(findings), b.workers, func(_ context.Context, i int) {
			results[i] = b.findingContext(findings[i], i+1)
			filled[i] = true
		})
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building report %s: %w", reportID, err)
	}
	for i := range results {
		if !filled[i] {
			b.degrade("finding", fmt.Errorf("render failed for finding %s", findings[i].ID))
			results[i] = b.bareFindingContext(findings[i], i+1)
		}
	}

	severities := make([]string, len(findings))
	for i, f := range findings {
		severities[i] = f.Severity
	}

	summaryHTML, summaryPlain, methodologyHTML, methodologyPlain := b.narrative(domain.Deref(agg.Report.HTMLContent))

	rc = &ReportContext{
		ReportID:              agg.Report.ID,
		ReportTitle:           agg.Report.Title,
		ReportType:            agg.Report.ReportType,
		ReportStatus:          agg.Report.Status,
		GeneratedAt:           b.now().Format(longDateLayout),
		GeneratedBy:           agg.GeneratedBy.DisplayName(),
		Client:                client,
		Project:               b.projectContext(agg.Project),
		Findings:              results,
		Stats:                 stats.Compute(severities),
		ExecutiveSummaryHTML:  summaryHTML,
		ExecutiveSummaryPlain: summaryPlain,
		MethodologyHTML:       methodologyHTML,
		MethodologyPlain:      methodologyPlain,
		Classification:        DefaultClassification,
		Version:               DefaultVersion,
		FindingsBySeverity:    groupBySeverity(results),
	}
	log.Info("built report context", "findings", len(results), "risk_level", rc.Stats.RiskLevel)
	return rc, nil
}

// sortFindings orders by severity rank; the sort is stable, so equal ranks keep the
// store's newest-first order.
func sortFindings(in []domain.Finding) []domain.Finding {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b domain.Finding) int {
		return cmp.Compare(severityRank(a.Severity), severityRank(b.Severity))
	})
	return out
}

func severityRank(raw string) int {
	s, _ := domain.NormalizeSeverity(raw)
	return s.Rank()
}

func (b *Builder) clientContext(ctx context.Context, c domain.Client) ClientContext {
	cc := ClientContext{
		ID:           c.ID,
		Name:         c.Name,
		ContactName:  c.ContactName,
		ContactEmail: c.ContactEmail,
		ContactPhone: c.ContactPhone,
		Address:      c.Address,
		Industry:     c.Industry,
		LogoURL:      c.LogoURL,
		PrimaryColor: DefaultPrimaryColor,
	}
	if color := domain.Deref(c.PrimaryColor); color != "" {
		cc.PrimaryColor = color
	}

	logoURL := domain.Deref(c.LogoURL)
	if logoURL == "" || b.logos == nil {
		b.obs.LogoFetched("skipped")
		return cc
	}
	if uri, ok := b.logos.FetchDataURI(ctx, logoURL); ok {
		cc.LogoBase64 = &uri
		b.obs.LogoFetched("ok")
	} else {
		b.obs.LogoFetched("failed")
	}
	return cc
}

func (b *Builder) narrative(raw string) (summaryHTML, summaryPlain, methodologyHTML, methodologyPlain string) {
	if strings.TrimSpace(raw) == "" {
		return "", "", "", ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &payload); err == nil && payload != nil {
		if summary, ok := jsonString(payload["executiveSummary"]); ok {
			methodology, ok := jsonString(payload["methodology"])
			if !ok {
				b.degrade("methodology", errors.New("methodology is not a string"))
			}
			return b.html("executive_summary", summary), b.plain("executive_summary", summary),
				b.html("methodology", methodology), b.plain("methodology", methodology)
		}
	}
	// reports written before the narrative editor stored raw HTML or text
	b.log.Debug("narrative payload is legacy free text")
	return b.sanitize("executive_summary", raw), b.plain("executive_summary", raw), "", ""
}

// jsonString accepts an absent key, null, or a JSON string.
func jsonString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (b *Builder) html(field, raw string) string {
	if raw == "" {
		return ""
	}
	out, err := b.text.ToHTML(raw)
	if err != nil {
		b.degrade(field, err)
		return ""
	}
	return out
}

func (b *Builder) plain(field, raw string) string {
	if raw == "" {
		return ""
	}
	out, err := b.text.ToPlain(raw)
	if err != nil {
		b.degrade(field, err)
		return ""
	}
	return out
}

func (b *Builder) sanitize(field, raw string) string {
	if raw == "" {
		return ""
	}
	out, err := b.text.SanitizeHTML(raw)
	if err != nil {
		b.degrade(field, err)
		return ""
	}
	return out
}

func (b *Builder) degrade(field string, err error) {
	b.log.Warn("field degraded", "field", field, "error", err)
	b.obs.FieldDegraded(field)
}

func longDate(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(longDateLayout)
	return &s
}
