// Package richtext renders editor content (HTML, Markdown or plain text) into sanitized
// HTML for the PDF engine and plain text for DOCX and summaries.
package richtext

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

var (
	tagPattern   = regexp.MustCompile(`<(?:[a-zA-Z][a-zA-Z0-9]*)(?:\s[^<>]*)?/?>`)
	blankRunsExp = regexp.MustCompile(`\n{3,}`)
	spaceRunsExp = regexp.MustCompile(`[ \t]+`)
)

// Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(mdhtml.WithHardWraps(), mdhtml.WithUnsafe()),
		),
		policy: policy,
	}
}

// ToHTML sanitizes HTML input and renders anything else as Markdown first.
func (r *Renderer) ToHTML(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	if looksLikeHTML(raw) {
		return r.SanitizeHTML(raw)
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(raw), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String())), nil
}

// SanitizeHTML strips disallowed markup without interpreting Markdown.
func (r *Renderer) SanitizeHTML(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return strings.TrimSpace(r.policy.Sanitize(raw)), nil
}

// ToPlain renders raw like ToHTML and flattens the result to text.
func (r *Renderer) ToPlain(raw string) (string, error) {
	h, err := r.ToHTML(raw)
	if err != nil || h == "" {
		return "", err
	}
	return textOf(h), nil
}

func looksLikeHTML(s string) bool {
	return tagPattern.MatchString(s)
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "table": true, "hr": true,
}

func textOf(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return tidy(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
			if tag == "li" {
				b.WriteString("- ")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
				continue
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		}
	}
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaceRunsExp.ReplaceAllString(l, " "))
	}
	out := strings.Join(lines, "\n")
	out = blankRunsExp.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
