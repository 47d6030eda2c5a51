package domain

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// XML namespaces used by FMI multipoint coverage responses.
const (
	GMLNamespace    = "http://www.opengis.net/gml/3.2"
	GMLCOVNamespace = "http://www.opengis.net/gmlcov/1.0"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Element is a node of a parsed XML document. Lookups match on resolved
// namespace URIs, never on prefixes.
type Element struct {
	node *etree.Element
}

// ParseDocument parses raw bytes into an element tree. Only well-formedness is
// checked; callers are responsible for presence checks.
func ParseDocument(raw []byte) (*Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	var root *etree.Element
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if root != nil {
				return nil, fmt.Errorf("%w: multiple root elements", ErrMalformedDocument)
			}
			root = t
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return nil, fmt.Errorf("%w: character data outside the root element", ErrMalformedDocument)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}
	return &Element{node: root}, nil
}

// Name returns the element's namespace URI and local name.
func (e *Element) Name() xml.Name {
	return xml.Name{Space: namespaceURI(e.node, e.node.Space), Local: e.node.Tag}
}

// Text returns the concatenated character data of the element's direct
// children.
func (e *Element) Text() string {
	var b strings.Builder
	for _, tok := range e.node.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}

// Attr returns the value of the attribute with the given namespace and local
// name. Unprefixed attributes have no namespace.
func (e *Element) Attr(space, local string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		ns := ""
		if a.Space != "" {
			ns = namespaceURI(e.node, a.Space)
		}
		if ns == space && a.Key == local {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(space, local string) *Element {
	for _, c := range e.node.ChildElements() {
		if matches(c, space, local) {
			return &Element{node: c}
		}
	}
	return nil
}

// FindAll returns every descendant with the given name in document order.
// The receiver itself is not considered.
func (e *Element) FindAll(space, local string) []*Element {
	var found []*Element
	var walk func(*etree.Element)
	walk = func(n *etree.Element) {
		for _, c := range n.ChildElements() {
			if matches(c, space, local) {
				found = append(found, &Element{node: c})
			}
			walk(c)
		}
	}
	walk(e.node)
	return found
}

// Find returns the first descendant with the given name, or nil.
func (e *Element) Find(space, local string) *Element {
	for _, c := range e.node.ChildElements() {
		if matches(c, space, local) {
			return &Element{node: c}
		}
		if found := (&Element{node: c}).Find(space, local); found != nil {
			return found
		}
	}
	return nil
}

func matches(n *etree.Element, space, local string) bool {
	return n.Tag == local && namespaceURI(n, n.Space) == space
}

// namespaceURI resolves prefix against the xmlns declarations in scope at n.
// The empty prefix resolves to the default namespace.
func namespaceURI(n *etree.Element, prefix string) string {
	if prefix == "xml" {
		return xmlNamespace
	}
	for ; n != nil; n = n.Parent() {
		for _, a := range n.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}
