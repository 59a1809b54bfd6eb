package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportctx/internal/domain"
)

func TestAttachEvidences(t *testing.T) {
	findings := []domain.Finding{{ID: "f1"}, {ID: "f2"}, {ID: "f3"}}
	attachEvidences(findings, []domain.Evidence{
		{ID: "e1", FindingID: "f2"},
		{ID: "e2", FindingID: "f1"},
		{ID: "e3", FindingID: "f2"},
	})

	assert.Equal(t, []string{"e2"}, evidenceIDs(findings[0]))
	assert.Equal(t, []string{"e1", "e3"}, evidenceIDs(findings[1]))
	assert.Empty(t, findings[2].Evidences)
}

func evidenceIDs(f domain.Finding) []string {
	var out []string
	for _, e := range f.Evidences {
		out = append(out, e.ID)
	}
	return out
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(embedMigrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(embedMigrations, "migrations/"+entries[0].Name())
	require.NoError(t, err)
	for _, table := range []string{"reports", "users", "projects", "clients", "findings", "evidences"} {
		assert.True(t, strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
	assert.Contains(t, string(body), "-- +goose Down")
}
