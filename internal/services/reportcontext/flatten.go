package reportcontext

import (
	"encoding/json"

	"reportctx/internal/domain"
)

// keys that ContextToMap re-shapes into the report/stats/client/project/findings objects
var reshapedKeys = map[string]bool{
	"report_title":           true,
	"generated_at":           true,
	"report_id":              true,
	"executive_summary_html": true,
	"stats":                  true,
	"client":                 true,
	"findings":               true,
	"project":                true,
}

// ContextToMap flattens rc into plain maps and slices in the layout the report
// templates expect. It performs no I/O and does not modify rc.
func ContextToMap(rc *ReportContext) map[string]any {
	if rc == nil {
		return map[string]any{}
	}
	base := toMap(rc)

	out := make(map[string]any, len(base))
	for k, v := range base {
		if !reshapedKeys[k] {
			out[k] = v
		}
	}

	out["report"] = map[string]any{
		"title":             rc.ReportTitle,
		"date":              rc.GeneratedAt,
		"id":                rc.ReportID,
		"executive_summary": rc.ExecutiveSummaryHTML,
	}
	out["stats"] = map[string]any{
		"critical": rc.Stats.CriticalCount,
		"high":     rc.Stats.HighCount,
		"medium":   rc.Stats.MediumCount,
		"low":      rc.Stats.LowCount,
		"info":     rc.Stats.InfoCount,
		"total":    rc.Stats.TotalFindings,
	}

	client := asMap(base["client"])
	var logo any
	if uri := domain.Deref(rc.Client.LogoBase64); uri != "" {
		logo = uri
	} else if u := domain.Deref(rc.Client.LogoURL); u != "" {
		logo = u
	}
	client["logo"] = logo
	client["primary_color"] = rc.Client.PrimaryColor
	if rc.Client.PrimaryColor == "" {
		client["primary_color"] = DefaultPrimaryColor
	}
	out["client"] = client

	project := asMap(base["project"])
	project["lead_tester"] = rc.Project.Name
	if rc.Project.Name == "" {
		project["lead_tester"] = "Security Team"
	}
	project["start_date"] = domain.Deref(rc.Project.StartDate)
	project["end_date"] = domain.Deref(rc.Project.EndDate)
	project["scope"] = nonNil(rc.Project.Scope)
	out["project"] = project

	rawFindings, _ := base["findings"].([]any)
	findings := make([]any, 0, len(rc.Findings))
	for i, f := range rc.Findings {
		var m map[string]any
		if i < len(rawFindings) {
			m = asMap(rawFindings[i])
		} else {
			m = map[string]any{}
		}
		m["cvss"] = f.CVSSVector
		if f.CVSSVector == "" {
			m["cvss"] = "N/A"
		}
		m["finding_id"] = f.ReferenceID
		if f.ReferenceID == "" {
			m["finding_id"] = f.ID
		}
		m["assets"] = assetList(f.AffectedAssetsJSON)
		m["references"] = nonNil(f.References)
		findings = append(findings, m)
	}
	out["findings"] = findings

	return out
}

func toMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// assetList extracts the URL of each object entry (the object itself if it has no url
// key) and bare strings, skipping empty entries.
func assetList(raw *string) []any {
	assets, ok := parseAssets(domain.Deref(raw))
	out := []any{}
	if !ok {
		return out
	}
	for _, a := range assets {
		switch v := a.(type) {
		case nil:
		case map[string]any:
			if len(v) == 0 {
				continue
			}
			if u, has := v["url"]; has {
				out = append(out, u)
			} else {
				out = append(out, v)
			}
		case string:
			if v != "" {
				out = append(out, v)
			}
		default:
			out = append(out, v)
		}
	}
	return out
}
