package legacy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeList(t *testing.T) {
	scope := []string{"app.example.com", "10.0.0.0/24", "api.example.com"}
	encoded, err := json.Marshal(scope)
	require.NoError(t, err)
	doubled, err := json.Marshal(string(encoded))
	require.NoError(t, err)
	str := string(encoded)

	tests := []struct {
		name string
		raw  any
		want []string
	}{
		{"structured list", scope, scope},
		{"json array string", string(encoded), scope},
		{"json array bytes", encoded, scope},
		{"pointer", &str, scope},
		{"double encoded", string(doubled), scope},
		{"comma delimited", "app.example.com, 10.0.0.0/24 ,api.example.com", scope},
		{"newline delimited", "app.example.com\n10.0.0.0/24\n\napi.example.com\n", scope},
		{"mixed delimiters", "app.example.com,\n 10.0.0.0/24\napi.example.com,,", scope},
		{"json non-list falls back to split", `{"a":1}`, []string{`{"a":1}`}},
		{"json number", "42", []string{"42"}},
		{"mixed any list", []any{"PCI-DSS", nil, 3, true}, []string{"PCI-DSS", "3", "true"}},
		{"blank", "   ", []string{}},
		{"nil", nil, []string{}},
		{"nil pointer", (*string)(nil), []string{}},
		{"unsupported type", 12.5, []string{}},
		{"truncated json", `["a", "b"`, []string{`["a"`, `"b"`}},
		{"large integers keep digits", `[12345678901234567890, "x", 1.50]`, []string{"12345678901234567890", "x", "1.50"}},
		{"trailing data is not json", `["a"] ["b"]`, []string{`["a"] ["b"]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeList(tt.raw))
		})
	}
}

func TestNormalizeListDoesNotAliasInput(t *testing.T) {
	in := []string{"a", "b"}
	out := NormalizeList(in)
	out[0] = "z"
	assert.Equal(t, "a", in[0])
}

func TestNormalizeStructured(t *testing.T) {
	items, ok := NormalizeStructured(`[{"url":"https://a.example.com","description":"login"},"10.0.0.5"]`)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, map[string]any{"url": "https://a.example.com", "description": "login"}, items[0])
	assert.Equal(t, "10.0.0.5", items[1])

	items, ok = NormalizeStructured("")
	assert.True(t, ok)
	assert.Empty(t, items)

	items, ok = NormalizeStructured(nil)
	assert.True(t, ok)
	assert.Empty(t, items)

	_, ok = NormalizeStructured(`[{"url": "https://a.example.com"`)
	assert.False(t, ok, "truncated json")

	_, ok = NormalizeStructured(`[1] [2]`)
	assert.False(t, ok, "trailing data")

	items, ok = NormalizeStructured(`[{"ticket": 12345678901234567890}]`)
	require.True(t, ok)
	assert.Equal(t, json.Number("12345678901234567890"), items[0].(map[string]any)["ticket"])

	_, ok = NormalizeStructured(`{"url":"x"}`)
	assert.False(t, ok, "object is not a list")

	_, ok = NormalizeStructured(7)
	assert.False(t, ok)
}

func TestNormalizeReferences(t *testing.T) {
	assert.Equal(t, []string{"12345678901234567890", "JIRA-9"}, NormalizeReferences(`[12345678901234567890, "JIRA-9"]`))
	assert.Equal(t, []string{"https://owasp.org/a", "CWE-79"}, NormalizeReferences(`["https://owasp.org/a","CWE-79"]`))
	assert.Equal(t, []string{"https://owasp.org/a"}, NormalizeReferences(`"https://owasp.org/a"`))
	assert.Equal(t, []string{"https://owasp.org/a, CWE-79"}, NormalizeReferences("https://owasp.org/a, CWE-79"))
	assert.Equal(t, []string{}, NormalizeReferences(""))
	assert.Equal(t, []string{}, NormalizeReferences((*string)(nil)))
	assert.Equal(t, []string{"x"}, NormalizeReferences([]any{"x"}))
}
