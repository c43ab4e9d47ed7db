package xbrl

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	apperrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
)

// Node is one element of a parsed XBRL document. Names and attribute
// names keep the prefix exactly as written in the source.
type Node struct {
	Prefix   string
	Local    string
	Attrs    []xml.Attr
	Children []*Node

	text strings.Builder
}

// Name returns the element name as written, for example "ifrs-full:Assets".
func (n *Node) Name() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Text returns all character data below the element in document order.
func (n *Node) Text() string {
	return n.text.String()
}

// Attr returns the value of the named attribute or "" when absent.
// A prefixed name ("xlink:href") matches the prefix and local part;
// an unprefixed name only matches unprefixed attributes.
func (n *Node) Attr(name string) string {
	prefix, local := splitName(name)
	for _, a := range n.Attrs {
		if a.Name.Local == local && a.Name.Space == prefix {
			return a.Value
		}
	}
	return ""
}

// FindAll returns every descendant matching name in document order.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		c.collect(name, &out)
	}
	return out
}

func (n *Node) collect(name string, out *[]*Node) {
	if n.matches(name) {
		*out = append(*out, n)
	}
	for _, c := range n.Children {
		c.collect(name, out)
	}
}

// matches compares a prefixed query against prefix and local name and an
// unprefixed query against the local name alone.
func (n *Node) matches(name string) bool {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return n.Prefix == name[:i] && n.Local == name[i+1:]
	}
	return n.Local == name
}

// Document is a parsed XML document.
type Document struct {
	Root *Node
}

// FindAll returns every element, the root included, matching name in
// document order.
func (d *Document) FindAll(name string) []*Node {
	if d == nil || d.Root == nil {
		return nil
	}
	var out []*Node
	d.Root.collect(name, &out)
	return out
}

// Parse builds a Document from r. Declared encodings other than UTF-8 are
// decoded through the html charset registry. Unbalanced or truncated
// markup is reported as malformed input.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	var (
		root  *Node
		stack []*Node
	)

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewMalformedInputError("invalid XML", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Prefix: t.Name.Space,
				Local:  t.Name.Local,
				Attrs:  append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, apperrors.NewMalformedInputError("multiple root elements", nil)
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, apperrors.NewMalformedInputError(
					fmt.Sprintf("unexpected closing element %s", rawName(t.Name)), nil)
			}
			top := stack[len(stack)-1]
			if top.Prefix != t.Name.Space || top.Local != t.Name.Local {
				return nil, apperrors.NewMalformedInputError(
					fmt.Sprintf("element %s closed by %s", top.Name(), rawName(t.Name)), nil)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			for _, open := range stack {
				open.text.Write(t)
			}
		}
	}

	if len(stack) > 0 {
		return nil, apperrors.NewMalformedInputError(
			fmt.Sprintf("unexpected end of document inside %s", stack[len(stack)-1].Name()), nil)
	}
	if root == nil {
		return nil, apperrors.NewMalformedInputError("document has no root element", nil)
	}
	return &Document{Root: root}, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// LoadDocument reads and parses the file at path.
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("document " + path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return doc, nil
}

func splitName(name string) (string, string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
