// Package snippet renders the <head> tags that reference the generated
// favicon assets and checks existing pages for them.
package snippet

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/nethravigil/favicongen/internal/favicon"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tag is one <link> or <meta> element.
type Tag struct {
	Atom  atom.Atom
	Attrs []html.Attribute
}

// Options control the rendered tags.
type Options struct {
	// BaseURL is the public path the output directory is served from.
	BaseURL    string
	ThemeColor string
}

// Tags returns the elements for the artifact set, in document order.
func Tags(opts Options) []Tag {
	base := opts.BaseURL
	if base == "" {
		base = "/"
	}
	href := func(name string) string {
		return path.Join(base, name)
	}

	tags := []Tag{
		link("icon", href(favicon.FaviconICO), html.Attribute{Key: "sizes", Val: "any"}),
		link("apple-touch-icon", href(favicon.AppleTouchIcon)),
		link("manifest", href(favicon.WebManifest)),
		meta("msapplication-config", href(favicon.BrowserConfigFile)),
	}
	if opts.ThemeColor != "" {
		tags = append(tags, meta("theme-color", opts.ThemeColor))
	}
	return tags
}

func link(rel, href string, extra ...html.Attribute) Tag {
	attrs := append([]html.Attribute{{Key: "rel", Val: rel}, {Key: "href", Val: href}}, extra...)
	return Tag{Atom: atom.Link, Attrs: attrs}
}

func meta(name, content string) Tag {
	return Tag{Atom: atom.Meta, Attrs: []html.Attribute{{Key: "name", Val: name}, {Key: "content", Val: content}}}
}

func (t Tag) node() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: t.Atom,
		Data:     t.Atom.String(),
		Attr:     t.Attrs,
	}
}

// key identifies the tag by rel for links and name for meta elements.
func (t Tag) key() string {
	want := "rel"
	if t.Atom == atom.Meta {
		want = "name"
	}
	return t.Atom.String() + ":" + strings.ToLower(attr(t.Attrs, want))
}

// String renders the element.
func (t Tag) String() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, t.node())
	return buf.String()
}

// Render writes one element per line.
func Render(w io.Writer, opts Options) error {
	for _, tag := range Tags(opts) {
		if err := html.Render(w, tag.node()); err != nil {
			return fmt.Errorf("failed to render %s: %w", tag.key(), err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Missing parses an HTML document and returns the tags from Tags(opts) whose
// rel or name does not appear in it. Hrefs are not compared.
func Missing(r io.Reader, opts Options) ([]Tag, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	present := make(map[string]bool)
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Link || n.DataAtom == atom.Meta) {
			present[Tag{Atom: n.DataAtom, Attrs: n.Attr}.key()] = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	var missing []Tag
	for _, tag := range Tags(opts) {
		if !present[tag.key()] {
			missing = append(missing, tag)
		}
	}
	return missing, nil
}

func attr(attrs []html.Attribute, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
