package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTMLMarkdown(t *testing.T) {
	r := New()
	out, err := r.ToHTML("**SQL injection** in `id` parameter")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>SQL injection</strong>")
	assert.Contains(t, out, "<code>id</code>")
}

func TestToHTMLSanitizesHTML(t *testing.T) {
	r := New()
	out, err := r.ToHTML(`<p onclick="x()">Hello</p><script>alert(1)</script><img src="https://cdn.example.com/a.png">`)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Hello</p>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, `src="https://cdn.example.com/a.png"`)
}

func TestToHTMLEmpty(t *testing.T) {
	r := New()
	for _, in := range []string{"", "  \n"} {
		out, err := r.ToHTML(in)
		require.NoError(t, err)
		assert.Empty(t, out)
		plain, err := r.ToPlain(in)
		require.NoError(t, err)
		assert.Empty(t, plain)
	}
}

func TestToPlain(t *testing.T) {
	r := New()

	out, err := r.ToPlain("<p>Hello <b>world</b></p><ul><li>one</li><li>two &amp; three</li></ul>")
	require.NoError(t, err)
	assert.Equal(t, "Hello world\n\n- one\n\n- two & three", out)

	out, err = r.ToPlain("# Title\n\nSome *text*.")
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nSome text.", out)

	out, err = r.ToPlain("<div>a</div><style>p{}</style><div>b</div>")
	require.NoError(t, err)
	assert.Equal(t, "a\n\nb", out)
}

func TestSanitizeHTMLIsIdempotent(t *testing.T) {
	r := New()
	once, err := r.SanitizeHTML(`<p>ok</p><iframe src="x"></iframe>`)
	require.NoError(t, err)
	twice, err := r.SanitizeHTML(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.NotContains(t, once, "iframe")
}
