package reportcontext

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFlattenFixture(t *testing.T) *ReportContext {
	t.Helper()
	f1 := finding("f1", "CRITICAL", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	f1.ReferenceID = ptr("ACME-1")
	f1.CVSSVector = ptr("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H")
	f1.AffectedAssetsJSON = ptr(`[{"url":"https://a.example.com","description":"x"},"10.0.0.1",{"host":"db"},"",{}]`)
	f2 := finding("f2", "LOW", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	f2.AffectedAssetsJSON = ptr(`not json`)

	agg := baseAggregate(f1, f2)
	agg.Report.HTMLContent = ptr(`{"executiveSummary":"Summary"}`)
	agg.Client.LogoURL = ptr("https://cdn.example.com/logo.png")
	agg.Project.Scope = ptr("a.example.com,b.example.com")
	agg.Project.EndDate = ptr(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC))

	logos := &fakeLogos{uris: map[string]string{"https://cdn.example.com/logo.png": "data:image/png;base64,QUJD"}}
	rc, err := newBuilder(agg, logos, nil).Build(context.Background(), "r1")
	require.NoError(t, err)
	return rc
}

func TestContextToMapLayout(t *testing.T) {
	rc := buildFlattenFixture(t)
	m := ContextToMap(rc)

	assert.Equal(t, map[string]any{
		"title":             "Q4 External Pentest",
		"date":              "December 02, 2025",
		"id":                "r1",
		"executive_summary": "<p>Summary</p>",
	}, m["report"])
	assert.Equal(t, map[string]any{
		"critical": 1, "high": 0, "medium": 0, "low": 1, "info": 0, "total": 2,
	}, m["stats"])

	for _, k := range []string{"report_title", "generated_at", "report_id", "executive_summary_html"} {
		assert.NotContains(t, m, k)
	}
	for _, k := range []string{"report_type", "report_status", "generated_by", "executive_summary_plain", "classification", "version", "findings_by_severity"} {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, "CONFIDENTIAL", m["classification"])

	client := m["client"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,QUJD", client["logo"])
	assert.Equal(t, "https://cdn.example.com/logo.png", client["logo_url"])
	assert.Equal(t, DefaultPrimaryColor, client["primary_color"])
	assert.Equal(t, "Acme", client["name"])

	project := m["project"].(map[string]any)
	assert.Equal(t, "Perimeter", project["lead_tester"])
	assert.Equal(t, "", project["start_date"])
	assert.Equal(t, "February 28, 2025", project["end_date"])
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, project["scope"])

	findings := m["findings"].([]any)
	require.Len(t, findings, 2)
	first := findings[0].(map[string]any)
	assert.Equal(t, "ACME-1", first["finding_id"])
	assert.Equal(t, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", first["cvss"])
	assert.Equal(t, []any{"https://a.example.com", "10.0.0.1", map[string]any{"host": "db"}}, first["assets"])
	assert.Equal(t, []string{}, first["references"])
	assert.Equal(t, "Finding f1", first["title"])
	assert.Equal(t, []any{}, first["evidence_items"])

	second := findings[1].(map[string]any)
	assert.Equal(t, "FIND-002", second["finding_id"])
	assert.Equal(t, "N/A", second["cvss"])
	assert.Equal(t, []any{}, second["assets"])
}

func TestContextToMapLogoFallsBackToURL(t *testing.T) {
	rc := &ReportContext{Client: ClientContext{LogoURL: ptr("https://x.example.com/l.png")}}
	m := ContextToMap(rc)
	client := m["client"].(map[string]any)
	assert.Equal(t, "https://x.example.com/l.png", client["logo"])
	assert.Equal(t, DefaultPrimaryColor, client["primary_color"])
	assert.Equal(t, "Security Team", m["project"].(map[string]any)["lead_tester"])
	assert.Equal(t, []string{}, m["project"].(map[string]any)["scope"])
	assert.Nil(t, ContextToMap(&ReportContext{})["client"].(map[string]any)["logo"])
}

func TestContextToMapIsPureAndSerializable(t *testing.T) {
	rc := buildFlattenFixture(t)
	before, err := json.Marshal(rc)
	require.NoError(t, err)

	m := ContextToMap(rc)
	m["client"].(map[string]any)["name"] = "mutated"

	after, err := json.Marshal(rc)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	_, err = json.Marshal(m)
	assert.NoError(t, err)
	assert.Empty(t, ContextToMap(nil))
}

func TestFindingsBySeverityFlattened(t *testing.T) {
	rc := buildFlattenFixture(t)
	m := ContextToMap(rc)
	buckets := m["findings_by_severity"].(map[string]any)
	assert.Len(t, buckets["critical"], 1)
	assert.Len(t, buckets["low"], 1)
	assert.Equal(t, []any{}, buckets["high"])
}
