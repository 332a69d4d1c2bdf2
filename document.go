// Package pagemill resolves and renders content items for a publishing site:
// raw bytes come out of a write-through file cache backed by a content source,
// and are turned into documents by splitting off frontmatter, expanding
// templates and converting Markdown to HTML.
package pagemill

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/pkg/errors"
)

// Document is the rendered form of one content item. It is built per render
// call and not persisted.
type Document struct {
	Title string
	Body  string
	Page  Frontmatter
}

// ParseDocument splits raw content into its frontmatter and body. Content
// without a leading "---" block yields an empty Frontmatter and the body
// unchanged. A block that is opened but never closed yields a *ParseError and
// no partial result.
func ParseDocument(raw []byte) (Frontmatter, []byte, error) {
	var meta map[string]interface{}

	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}
	// frontmatter.Parse treats an opened but never closed block as no block
	// at all and hands the input back untouched. Here that is malformed
	// metadata, not content.
	if len(body) == len(raw) && opensFrontmatter(raw) {
		return nil, nil, &ParseError{Err: errors.New("block never closed")}
	}
	fm := Frontmatter{}
	if meta != nil {
		fm = Frontmatter(normalize(meta).(map[string]interface{}))
	}
	return fm, body, nil
}

// opensFrontmatter reports whether raw begins with a "---" delimiter line.
func opensFrontmatter(raw []byte) bool {
	line, _, _ := bytes.Cut(raw, []byte("\n"))
	return bytes.Equal(bytes.TrimRight(line, "\r"), []byte("---"))
}

// PageContext returns a copy of vars with the page key bound to fm. The
// caller's map is left unmodified.
func PageContext(vars map[string]interface{}, fm Frontmatter) map[string]interface{} {
	ctx := make(map[string]interface{}, len(vars)+1)
	for k, v := range vars {
		ctx[k] = v
	}
	ctx["page"] = map[string]interface{}(fm)
	return ctx
}

// RenderDocument parses raw content and renders its body and title against
// vars augmented with the item's own frontmatter under "page". Body and title
// see the identical context, so both may reference page.* fields. An item
// without a title renders with Title set to "".
func RenderDocument(raw []byte, vars map[string]interface{}) (Document, error) {
	fm, body, err := ParseDocument(raw)
	if err != nil {
		return Document{}, err
	}

	ctx := PageContext(vars, fm)

	doc := Document{Page: fm}
	doc.Body, err = Render(string(body), ctx)
	if err != nil {
		return Document{}, err
	}
	if t, ok := fm["title"]; ok {
		doc.Title, err = Render(fmt.Sprint(t), ctx)
		if err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}
