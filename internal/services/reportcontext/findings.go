package reportcontext

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"reportctx/internal/domain"
	"reportctx/internal/evidence"
	"reportctx/internal/legacy"
)

var errMalformedAssets = errors.New("affected assets are not a JSON list or object")

func (b *Builder) projectContext(p domain.Project) ProjectContext {
	description := domain.Deref(p.Description)
	return ProjectContext{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		DescriptionHTML:      b.html("project_description", description),
		DescriptionPlain:     b.plain("project_description", description),
		ProjectType:          p.ProjectType,
		Status:               p.Status,
		StartDate:            longDate(p.StartDate),
		EndDate:              longDate(p.EndDate),
		Methodology:          p.Methodology,
		Scope:                legacy.NormalizeList(p.Scope),
		ComplianceFrameworks: legacy.NormalizeList(p.ComplianceFrameworks),
	}
}

// findingContext resolves one finding; index is its 1-based position after sorting.
func (b *Builder) findingContext(f domain.Finding, index int) FindingContext {
	fc := b.bareFindingContext(f, index)

	description := domain.Deref(f.Description)
	remediation := domain.Deref(f.Remediation)
	poc := domain.Deref(f.Evidence)
	fc.DescriptionHTML = b.html("finding_description", description)
	fc.DescriptionPlain = b.plain("finding_description", description)
	fc.RemediationHTML = b.html("finding_remediation", remediation)
	fc.RemediationPlain = b.plain("finding_remediation", remediation)
	fc.EvidenceHTML = b.html("finding_evidence", poc)
	fc.EvidencePlain = b.plain("finding_evidence", poc)

	fc.AffectedAssetsHTML, fc.AffectedAssetsCount = b.affectedAssets(f)

	items := append(evidence.FromRows(f.Evidences), evidence.FromLegacy(f.LegacyEvidence)...)
	fc.EvidenceItems = evidence.Resolve(items, b.baseOrigin)
	return fc
}

// bareFindingContext fills everything that needs no rendering.
func (b *Builder) bareFindingContext(f domain.Finding, index int) FindingContext {
	sev, _ := domain.NormalizeSeverity(f.Severity)

	ref := domain.Deref(f.ReferenceID)
	if ref == "" {
		ref = fmt.Sprintf("FIND-%03d", index)
	}
	vector := domain.Deref(f.CVSSVector)
	if vector == "" {
		vector = "N/A"
	}
	count := 0
	if f.AffectedAssetsCount != nil {
		count = *f.AffectedAssetsCount
	}
	evidences := append([]domain.Evidence{}, f.Evidences...)

	return FindingContext{
		ID:                  f.ID,
		ReferenceID:         ref,
		Title:               f.Title,
		Severity:            sev.String(),
		SeverityColor:       sev.Color(),
		CVSSScore:           f.CVSSScore,
		CVSSVector:          vector,
		CVEID:               f.CVEID,
		Status:              f.Status,
		AffectedSystems:     f.AffectedSystems,
		AffectedAssetsJSON:  f.AffectedAssetsJSON,
		AffectedAssetsCount: count,
		References:          legacy.NormalizeReferences(f.References),
		EvidenceCount:       len(evidences),
		Evidences:           evidences,
		EvidenceItems:       []evidence.Resolved{},
		CreatedAt:           domain.Deref(longDate(&f.CreatedAt)),
		UpdatedAt:           domain.Deref(longDate(&f.UpdatedAt)),
	}
}

// affectedAssets renders the stored asset list as <ul>. Unparseable input is rendered as
// free text instead. The stored count wins when set; otherwise the list length is used.
func (b *Builder) affectedAssets(f domain.Finding) (string, int) {
	stored := 0
	if f.AffectedAssetsCount != nil {
		stored = *f.AffectedAssetsCount
	}
	raw := domain.Deref(f.AffectedAssetsJSON)
	assets, ok := parseAssets(raw)
	if !ok {
		b.degrade("affected_assets", errMalformedAssets)
		return b.html("affected_assets", raw), stored
	}

	var items []string
	for _, a := range assets {
		switch v := a.(type) {
		case map[string]any:
			url, desc := scalarString(v["url"]), scalarString(v["description"])
			switch {
			case url == "":
			case desc != "":
				items = append(items, "<li><strong>"+html.EscapeString(url)+"</strong> — "+html.EscapeString(desc)+"</li>")
			default:
				items = append(items, "<li>"+html.EscapeString(url)+"</li>")
			}
		case string:
			if v != "" {
				items = append(items, "<li>"+html.EscapeString(v)+"</li>")
			}
		}
	}
	out := ""
	if len(items) > 0 {
		out = "<ul>" + strings.Join(items, "") + "</ul>"
	}
	if stored > 0 {
		return out, stored
	}
	return out, len(assets)
}

// parseAssets decodes an asset list; a lone JSON object is a one-element list.
func parseAssets(raw string) ([]any, bool) {
	if items, ok := legacy.NormalizeStructured(raw); ok {
		return items, true
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil || dec.More() {
		return nil, false
	}
	return []any{obj}, true
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return ""
	}
}
