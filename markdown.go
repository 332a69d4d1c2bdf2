package pagemill

import (
	"bytes"
	"strings"

	bm "github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// RenderMode selects between block-level and inline HTML output.
type RenderMode int

const (
	ModeBlock RenderMode = iota
	ModeInline
)

// Converter turns Markdown into HTML. It is stateless and safe for concurrent
// use.
type Converter struct {
	md     goldmark.Markdown
	policy *bm.Policy
}

// NewConverter returns a converter with GFM extensions and auto heading IDs.
// Raw HTML passes through; with sanitize set, the output is scrubbed with the
// bluemonday UGC policy afterwards.
func NewConverter(sanitize bool) *Converter {
	c := &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
	if sanitize {
		c.policy = bm.UGCPolicy()
	}
	return c
}

// ToHTML converts text to HTML. Empty input yields "" without error.
// ModeInline drops the enclosing paragraph so the result can sit inside
// another element, as with titles and excerpts.
func (c *Converter) ToHTML(text string, mode RenderMode) (string, error) {
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(text), &buf); err != nil {
		return "", errors.Wrap(err, "markdown convert")
	}
	out := buf.String()
	if c.policy != nil {
		out = c.policy.Sanitize(out)
	}
	if mode == ModeInline {
		out = strings.TrimSpace(out)
		out = strings.TrimPrefix(out, "<p>")
		out = strings.TrimSuffix(out, "</p>")
	}
	return out, nil
}
