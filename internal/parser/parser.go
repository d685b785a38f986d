// Package parser loads Jenkins job XML files into read-only documents that
// linters can query by path.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoRoot is returned when a document parses but has no root element.
var ErrNoRoot = errors.New("document has no root element")

// xmlDeclVersion matches the version attribute of an XML declaration.
// Jenkins writes version 1.1 declarations which encoding/xml refuses to read.
var xmlDeclVersion = regexp.MustCompile(`^(\s*<\?xml\s+version\s*=\s*)(['"])1\.1(['"])`)

// Node is a single element matched by a path query.
type Node struct {
	el *etree.Element
}

// Tag returns the element's local tag name.
func (n Node) Tag() string {
	return n.el.Tag
}

// Text returns the character data directly inside the element.
// ok is false when the element carries no text at all.
func (n Node) Text() (string, bool) {
	text := n.el.Text()
	return text, text != ""
}

// Document is one parsed job definition. It is never modified after Parse returns.
type Document struct {
	// Path is the absolute path the document was read from (empty for readers).
	Path string
	doc  *etree.Document
}

// RootTag returns the tag of the document's root element.
func (d *Document) RootTag() string {
	return d.doc.Root().Tag
}

// Find returns the first element matching path, evaluated from the root element.
// Paths use the ElementTree relative form, e.g. "./builders/hudson.tasks.Shell".
func (d *Document) Find(path string) (Node, bool) {
	el := d.doc.Root().FindElement(path)
	if el == nil {
		return Node{}, false
	}
	return Node{el: el}, true
}

// FindAll returns every element matching path in document order.
func (d *Document) FindAll(path string) []Node {
	elements := d.doc.Root().FindElements(path)
	nodes := make([]Node, 0, len(elements))
	for _, el := range elements {
		nodes = append(nodes, Node{el: el})
	}
	return nodes
}

// Parse reads a job document from r.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	data = xmlDeclVersion.ReplaceAll(data, []byte("${1}${2}1.0${3}"))

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}

	return &Document{doc: doc}, nil
}

// ParseString is a convenience wrapper around Parse for in-memory XML.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile opens and parses the job document at path.
// The returned Document records the absolute path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	doc.Path = absPath

	return doc, nil
}

// IsJobFile reports whether filename looks like a job XML file.
func IsJobFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".xml")
}
