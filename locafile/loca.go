// Package locafile implements reading and writing of Baldur's Gate 3
// localization XML files:
//
//	<contentList>
//	    <content contentuid="h0a1b2c3d..." version="1">Hello</content>
//	</contentList>
//
// The parser keeps the raw source bytes of every token. Marshal therefore
// reproduces the input exactly, except for the XML declaration (always
// rewritten as Header) and for element text changed through SetText.
// Unknown elements, attributes, comments and CDATA sections pass through
// untouched.
package locafile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
)

// Header is the declaration written at the top of every marshaled file.
const Header = `<?xml version="1.0" encoding="utf-8"?>`

// ContentTag is the element name of a translatable localization entry.
const ContentTag = "content"

// UIDAttr is the attribute carrying the entry identifier.
const UIDAttr = "contentuid"

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// NodeKind identifies the type of a document node.
type NodeKind int

const (
	// KindDocument is the invisible node holding top-level tokens.
	KindDocument NodeKind = iota
	// KindElement is an XML element.
	KindElement
	// KindText is character data (including CDATA sections).
	KindText
	// KindComment is an XML comment.
	KindComment
	// KindProcInst is a processing instruction other than the declaration.
	KindProcInst
	// KindDirective is a <!...> directive such as DOCTYPE.
	KindDirective
)

// Node is one node of the document tree.
type Node struct {
	Kind NodeKind
	// Name is the element name (KindElement only).
	Name xml.Name
	// Attr holds element attributes in source order (KindElement only).
	Attr []xml.Attr
	// Children in document order.
	Children []*Node
	// Parent is nil for the document node.
	Parent *Node

	// data is the decoded character data of a KindText node.
	data string
	// raw is the exact source of a leaf token, or the start tag of an element.
	raw []byte
	// rawEnd is the source of an element's end tag; empty when self-closing.
	rawEnd []byte
	// selfClosing is true for elements written as <name/>.
	selfClosing bool
	// dirty marks a KindText node whose data changed after parsing.
	dirty bool
}

// File is a parsed localization document.
type File struct {
	doc  *Node
	decl *Node
}

// ---------------------------------------------------------------------------
// Node accessors
// ---------------------------------------------------------------------------

// AttrValue returns the value of the attribute with the given local name.
func (n *Node) AttrValue(local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns the element's leading character data, like ElementTree's
// Element.text: adjacent text and CDATA sections before the first child
// element are joined and comments between them are skipped.
func (n *Node) Text() string {
	if n.Kind == KindText {
		return n.data
	}
	run := n.leadingText()
	if len(run) == 1 && run[0].Kind == KindText {
		return run[0].data
	}
	var b strings.Builder
	for _, c := range run {
		if c.Kind == KindText {
			b.WriteString(c.data)
		}
	}
	return b.String()
}

// leadingText returns the text and comment children before the first
// child element.
func (n *Node) leadingText() []*Node {
	i := 0
	for i < len(n.Children) && (n.Children[i].Kind == KindText || n.Children[i].Kind == KindComment) {
		i++
	}
	return n.Children[:i]
}

// SetText replaces the element's leading text. It is a no-op when the text
// is unchanged, so untouched nodes keep their original bytes. A leading run
// made of several text, CDATA or comment nodes is replaced by a single text
// node; the comments are dropped.
func (n *Node) SetText(s string) {
	if n.Kind != KindElement || n.Text() == s {
		return
	}
	run := n.leadingText()
	if len(run) == 1 && run[0].Kind == KindText {
		run[0].data = s
		run[0].dirty = true
		return
	}
	t := &Node{Kind: KindText, Parent: n, data: s, dirty: true}
	rest := n.Children[len(run):]
	n.Children = append([]*Node{t}, rest...)
}

// FindAll returns every descendant element (not n itself) with the given
// local name, in document order.
func (n *Node) FindAll(local string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(p *Node) {
		for _, c := range p.Children {
			if c.Kind != KindElement {
				continue
			}
			if c.Name.Local == local {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Root returns the document element.
func (f *File) Root() *Node {
	for _, c := range f.doc.Children {
		if c.Kind == KindElement {
			return c
		}
	}
	return nil
}

// Contents returns all <content> elements below the root in document order.
func (f *File) Contents() []*Node {
	root := f.Root()
	if root == nil {
		return nil
	}
	return root.FindAll(ContentTag)
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a localization file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse parses localization XML. Input in a non-UTF-8 encoding (declared
// in the XML declaration or signalled by a UTF-16 byte order mark) is
// transcoded to UTF-8 first.
func Parse(data []byte) (*File, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	// Input is already UTF-8; the declared label is only informational.
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	f := &File{doc: &Node{Kind: KindDocument}}
	cur := f.doc

	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		end := dec.InputOffset()
		raw := data[start:end]

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{
				Kind:   KindElement,
				Name:   t.Name,
				Attr:   t.Copy().Attr,
				Parent: cur,
				raw:    raw,
			}
			cur.Children = append(cur.Children, n)
			cur = n

		case xml.EndElement:
			// <a/> yields a synthetic end token that consumes no input.
			if start == end {
				cur.selfClosing = true
			} else {
				cur.rawEnd = raw
			}
			cur = cur.Parent

		case xml.CharData:
			cur.Children = append(cur.Children, &Node{
				Kind: KindText, Parent: cur, data: string(t), raw: raw,
			})

		case xml.Comment:
			cur.Children = append(cur.Children, &Node{Kind: KindComment, Parent: cur, raw: raw})

		case xml.ProcInst:
			n := &Node{Kind: KindProcInst, Parent: cur, raw: raw}
			cur.Children = append(cur.Children, n)
			if t.Target == "xml" && cur == f.doc && f.decl == nil {
				f.decl = n
			}

		case xml.Directive:
			cur.Children = append(cur.Children, &Node{Kind: KindDirective, Parent: cur, raw: raw})
		}
	}

	if f.Root() == nil {
		return nil, fmt.Errorf("no root element")
	}
	return f, nil
}

var (
	utf8BOM        = []byte{0xEF, 0xBB, 0xBF}
	reDeclEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*?encoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)
)

// toUTF8 strips a UTF-8 BOM and transcodes UTF-16 or declared legacy
// encodings to UTF-8.
func toUTF8(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return data[len(utf8BOM):], nil
	}
	if len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)) {
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding UTF-16: %w", err)
		}
		return out, nil
	}

	m := reDeclEncoding.FindSubmatch(data)
	if m == nil {
		return data, nil
	}
	label := strings.ToLower(string(m[1]))
	if label == "utf-8" || label == "utf8" {
		return data, nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	if name == "utf-8" {
		return data, nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal serializes the document as UTF-8 with Header as declaration.
func (f *File) Marshal() []byte {
	var b bytes.Buffer
	b.WriteString(Header)
	if f.decl == nil {
		b.WriteByte('\n')
	}
	for _, n := range f.doc.Children {
		if n == f.decl {
			continue
		}
		writeNode(&b, n)
	}
	return b.Bytes()
}

func writeNode(b *bytes.Buffer, n *Node) {
	switch n.Kind {
	case KindText:
		if n.dirty {
			b.WriteString(escapeText(n.data))
		} else {
			b.Write(n.raw)
		}

	case KindElement:
		if n.selfClosing {
			if len(n.Children) == 0 {
				b.Write(n.raw)
				return
			}
			// <name attr="v"/> gained text: reopen it as <name attr="v">.
			open := bytes.TrimSuffix(n.raw, []byte("/>"))
			b.Write(bytes.TrimRight(open, " \t\r\n"))
			b.WriteByte('>')
			for _, c := range n.Children {
				writeNode(b, c)
			}
			b.WriteString("</")
			b.WriteString(rawName(n.raw))
			b.WriteByte('>')
			return
		}
		b.Write(n.raw)
		for _, c := range n.Children {
			writeNode(b, c)
		}
		b.Write(n.rawEnd)

	default:
		b.Write(n.raw)
	}
}

// rawName returns the qualified name as written in a start tag.
func rawName(startTag []byte) string {
	s := strings.TrimPrefix(string(startTag), "<")
	if i := strings.IndexAny(s, " \t\r\n/>"); i >= 0 {
		s = s[:i]
	}
	return s
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")

// escapeText escapes markup characters and drops characters that XML 1.0
// does not allow, such as NUL or ESC in model output.
func escapeText(s string) string {
	return textEscaper.Replace(strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s))
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// WriteFile writes the document to path atomically: the data goes to a
// temporary file in the same directory which is then renamed over path.
// On failure no partial output is left behind.
func (f *File) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { os.Remove(tmpPath) }

	if _, err := tmp.Write(f.Marshal()); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
