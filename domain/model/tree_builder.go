package model

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Element names the tree builder classifies
const (
	TagDocument        = "office:document"
	TagDocumentContent = "office:document-content"
	TagBody            = "office:body"
	TagSpreadsheet     = "office:spreadsheet"
	TagTable           = "table:table"
	TagTableRow        = "table:table-row"
	TagTableColumn     = "table:table-column"
	TagParagraph       = "text:p"
	TagTableCell       = "table:table-cell"
	TagNamedRange      = "table:named-range"
	TagHeaderRows      = "table:table-header-rows"
	TagTableRows       = "table:table-rows"
	TagRowGroup        = "table:table-row-group"

	stylePrefix = "style:"
)

// AttrColumnsRepeated is the cell attribute holding its repetition count
const AttrColumnsRepeated = "table:number-columns-repeated"

// MaxRowCells is the most cells a row may hold once repetition is expanded.
// It is 64 times the widest sheet office suites produce (16384 columns).
const MaxRowCells = 16384 * 64

// EventHandler receives the markup events of one document.
type EventHandler interface {
	// StartElement is called when an element opens
	StartElement(tag string, attrs map[string]string) error
	// Text is called for each character data fragment
	Text(fragment string) error
	// EndElement is called when an element closes
	EndElement(tag string) error
}

// TreeOptions configures element classification
type TreeOptions struct {
	// RowGroups treats header-row, row and row-group containers as envelopes
	// so the rows inside them become rows of the table.
	RowGroups bool
	// FlatXML treats office:document as an envelope. Single file documents
	// (.fods) use it as their outermost element.
	FlatXML bool
	// Logger receives debug output. nil disables logging.
	Logger *slog.Logger
}

// TreeBuilder turns markup events into a cleaned and typed document tree.
type TreeBuilder struct {
	root    *Node
	path    []*Node
	options TreeOptions
	logger  *slog.Logger
}

var _ EventHandler = (*TreeBuilder)(nil)

// NewTreeBuilder creates a tree builder with only the root open.
func NewTreeBuilder(options TreeOptions) *TreeBuilder {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	root := NewRoot()
	return &TreeBuilder{
		root:    root,
		path:    []*Node{root},
		options: options,
		logger:  logger,
	}
}

// classify maps an element name to a node kind
func (b *TreeBuilder) classify(tag string) Kind {
	switch tag {
	case TagDocumentContent, TagBody, TagSpreadsheet:
		return KindWrapper
	case TagTable:
		return KindTable
	case TagTableRow:
		return KindRow
	case TagTableColumn:
		return KindColumnDecl
	case TagParagraph:
		return KindParagraph
	case TagTableCell:
		return KindCell
	case TagNamedRange:
		return KindUnrecognized
	}
	if strings.HasPrefix(tag, stylePrefix) {
		return KindStyleMeta
	}
	switch {
	case b.options.FlatXML && tag == TagDocument:
		return KindWrapper
	case b.options.RowGroups && (tag == TagHeaderRows || tag == TagTableRows || tag == TagRowGroup):
		return KindWrapper
	}
	return KindUnrecognized
}

func (b *TreeBuilder) top() *Node {
	return b.path[len(b.path)-1]
}

// StartElement classifies the element, appends it to the open element and opens it.
func (b *TreeBuilder) StartElement(tag string, attrs map[string]string) error {
	kind := b.classify(tag)
	node := newNode(kind, tag, attrs)

	repeat := 1
	if kind == KindCell {
		if v, ok := attrs[AttrColumnsRepeated]; ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 0 {
				return &StructuralError{
					Op:     "start",
					Tag:    tag,
					Open:   b.top().tag,
					Reason: fmt.Sprintf("invalid %s %q", AttrColumnsRepeated, v),
				}
			}
			if n > MaxRowCells-len(b.top().children) {
				return &StructuralError{
					Op:     "start",
					Tag:    tag,
					Open:   b.top().tag,
					Reason: fmt.Sprintf("%s %d exceeds the row limit of %d cells", AttrColumnsRepeated, n, MaxRowCells),
				}
			}
			repeat = n
		}
	}
	if kind == KindUnrecognized {
		b.logger.Debug("unrecognized element", slog.String("tag", tag))
	}

	parent := b.top()
	for range repeat {
		parent.children = append(parent.children, Child{Node: node})
	}
	b.path = append(b.path, node)
	return nil
}

// Text appends a character data fragment to the open element.
func (b *TreeBuilder) Text(fragment string) error {
	top := b.top()
	top.children = append(top.children, Child{Text: fragment})
	return nil
}

// EndElement closes the open element. Envelopes are spliced into their
// parent, every other element is finalized.
func (b *TreeBuilder) EndElement(tag string) error {
	if len(b.path) < 2 {
		return &StructuralError{
			Op:     "end",
			Tag:    tag,
			Reason: "no element is open",
		}
	}
	node := b.top()
	if node.tag != tag {
		return &StructuralError{
			Op:     "end",
			Tag:    tag,
			Open:   node.tag,
			Reason: "end tag does not match open element",
		}
	}

	parent := b.path[len(b.path)-2]
	if node.kind == KindWrapper {
		parent.splice(node)
	} else if err := node.finalize(); err != nil {
		return err
	}
	if node.kind == KindTable {
		b.logger.Debug("table finalized",
			slog.String("name", node.name),
			slog.Int("columns", node.ColumnCount()),
			slog.Int("rows", len(node.Rows())),
		)
	}

	b.path[len(b.path)-1] = nil
	b.path = b.path[:len(b.path)-1]
	return nil
}

// Depth returns the number of open elements, root excluded.
func (b *TreeBuilder) Depth() int {
	return len(b.path) - 1
}

// Root returns the finished document tree.
// It fails when elements are still open.
func (b *TreeBuilder) Root() (*Node, error) {
	if len(b.path) > 1 {
		return nil, &StructuralError{
			Op:     "finish",
			Open:   b.top().tag,
			Reason: fmt.Sprintf("%d element(s) not closed", len(b.path)-1),
		}
	}
	return b.root, nil
}
