package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reportctx/internal/domain"
)

const base = "http://api.example.com"

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "http://api.example.com/uploads/x.png", ResolveURL("/uploads/x.png", base))
	assert.Equal(t, "http://api.example.com/uploads/x.png", ResolveURL("/uploads/x.png", base+"/"))
	assert.Equal(t, "http://api.example.com/uploads/x.png", ResolveURL("//uploads/x.png", base+"//"))
	assert.Equal(t, "https://cdn.example.com/x.png", ResolveURL("https://cdn.example.com/x.png", base))
	assert.Equal(t, "HTTP://cdn.example.com/x.png", ResolveURL("HTTP://cdn.example.com/x.png", base))
	assert.Equal(t, "uploads/x.png", ResolveURL("uploads/x.png", base))
	assert.Equal(t, "", ResolveURL("", base))
}

func TestResolveMixedItems(t *testing.T) {
	caption := "Login bypass"
	empty := ""
	items := []Item{
		Stored(domain.Evidence{ID: "e1", Filepath: "/uploads/a.png", Caption: &caption}),
		Stored(domain.Evidence{ID: "e2", Filepath: "https://s3.example.com/b.png", Caption: &empty}),
		LegacyPath("/uploads/c.png"),
		AdHoc{"url": "https://cdn.example.com/d.png", "caption": "Response"},
		AdHoc{"url": 42, "caption": []string{"bad"}},
		nil,
		AdHoc{},
	}

	got := Resolve(items, base)

	assert.Equal(t, []Resolved{
		{URL: "http://api.example.com/uploads/a.png", Caption: "Login bypass"},
		{URL: "https://s3.example.com/b.png", Caption: DefaultCaption},
		{URL: "http://api.example.com/uploads/c.png", Caption: DefaultCaption},
		{URL: "https://cdn.example.com/d.png", Caption: "Response"},
		{URL: "", Caption: DefaultCaption},
		{URL: "", Caption: DefaultCaption},
	}, got)
}

func TestFromLegacy(t *testing.T) {
	raw := `["/uploads/a.png", {"url": "https://x.example.com/b.png", "caption": "B"}, 5]`
	items := FromLegacy(&raw)
	assert.Equal(t, []Item{
		LegacyPath("/uploads/a.png"),
		AdHoc{"url": "https://x.example.com/b.png", "caption": "B"},
	}, items)

	assert.Equal(t, []Item{LegacyPath("/uploads/only.png")}, FromLegacy("/uploads/only.png"))
	assert.Empty(t, FromLegacy(nil))
	assert.Empty(t, FromLegacy(""))
	assert.Empty(t, FromLegacy("   "))
}

func TestFromRowsKeepsOrder(t *testing.T) {
	rows := []domain.Evidence{{ID: "1", Filepath: "/a"}, {ID: "2", Filepath: "/b"}}
	got := Resolve(FromRows(rows), base)
	assert.Equal(t, "http://api.example.com/a", got[0].URL)
	assert.Equal(t, "http://api.example.com/b", got[1].URL)
}
