// Package model provides domain model for ods2sql
package model

import (
	"slices"
	"strings"
)

// Kind identifies which variant of the document tree a Node is.
type Kind int

const (
	// KindRoot is the whole document
	KindRoot Kind = iota
	// KindTable is one sheet
	KindTable
	// KindRow is one table row
	KindRow
	// KindCell is one table cell
	KindCell
	// KindParagraph is a text run inside a cell
	KindParagraph
	// KindColumnDecl is a column width/style declaration (noise)
	KindColumnDecl
	// KindStyleMeta is any style namespace element (noise)
	KindStyleMeta
	// KindWrapper is an envelope element that is spliced into its parent
	KindWrapper
	// KindUnrecognized is any element not otherwise classified (noise)
	KindUnrecognized
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindTable:
		return "table"
	case KindRow:
		return "row"
	case KindCell:
		return "cell"
	case KindParagraph:
		return "paragraph"
	case KindColumnDecl:
		return "column-decl"
	case KindStyleMeta:
		return "style-meta"
	case KindWrapper:
		return "wrapper"
	case KindUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// IsNoise reports whether nodes of this kind are excluded from logical children.
func (k Kind) IsNoise() bool {
	switch k {
	case KindUnrecognized, KindStyleMeta, KindColumnDecl:
		return true
	default:
		return false
	}
}

// Child is one entry in a node's raw child sequence.
// Exactly one of Node and Text is meaningful: a nil Node means the entry is a text fragment.
type Child struct {
	Node *Node
	Text string
}

// IsText reports whether the child is a raw text fragment.
func (c Child) IsText() bool {
	return c.Node == nil
}

// Node is an element of the document tree.
//
// A repeated cell is stored as the same *Node referenced several times from
// its parent, so nodes must not be mutated once their parent has observed them
// beyond what finalization does.
type Node struct {
	kind     Kind
	tag      string
	attrs    map[string]string
	children []Child

	// name, types and wide are set when a table is finalized
	name  string
	types []CellType
	wide  []bool
}

// newNode creates a node of the given kind.
func newNode(kind Kind, tag string, attrs map[string]string) *Node {
	copied := make(map[string]string, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return &Node{
		kind:  kind,
		tag:   tag,
		attrs: copied,
	}
}

// NewRoot creates an empty document root.
func NewRoot() *Node {
	return newNode(KindRoot, "", nil)
}

// Kind returns the node variant.
func (n *Node) Kind() Kind {
	return n.kind
}

// Tag returns the markup element name the node was created from.
func (n *Node) Tag() string {
	return n.tag
}

// Attr returns the value of a markup attribute.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// Children returns the raw child sequence, noise included.
func (n *Node) Children() []Child {
	return n.children
}

// LogicalChildren returns the children with noise nodes filtered out.
func (n *Node) LogicalChildren() []Child {
	logical := make([]Child, 0, len(n.children))
	for _, c := range n.children {
		if c.Node != nil && c.Node.kind.IsNoise() {
			continue
		}
		logical = append(logical, c)
	}
	return logical
}

// logicalNodes returns the logical children of the given kind.
func (n *Node) logicalNodes(kind Kind) []*Node {
	var nodes []*Node
	for _, c := range n.children {
		if c.Node != nil && c.Node.kind == kind {
			nodes = append(nodes, c.Node)
		}
	}
	return nodes
}

// Tables returns the tables of a root in document order.
func (n *Node) Tables() []*Node {
	return n.logicalNodes(KindTable)
}

// Rows returns the rows of a table in document order.
func (n *Node) Rows() []*Node {
	return n.logicalNodes(KindRow)
}

// Cells returns the cells of a row, repeated cells expanded.
func (n *Node) Cells() []*Node {
	return n.logicalNodes(KindCell)
}

// Content returns the concatenated text of the node's logical children, recursively.
func (n *Node) Content() string {
	var sb strings.Builder
	n.writeContent(&sb)
	return sb.String()
}

func (n *Node) writeContent(sb *strings.Builder) {
	for _, c := range n.children {
		if c.Node == nil {
			sb.WriteString(c.Text)
			continue
		}
		if c.Node.kind.IsNoise() {
			continue
		}
		c.Node.writeContent(sb)
	}
}

// isEmpty reports whether the node may be dropped from the end of its parent.
func (n *Node) isEmpty() bool {
	switch n.kind {
	case KindRow:
		return len(n.LogicalChildren()) == 0
	case KindCell:
		return n.Content() == ""
	default:
		return false
	}
}

// minChildCapacity is the spare capacity a trimmed node may keep
const minChildCapacity = 16

// trimTrailing drops the suffix of empty and noise children. Capacity left
// behind by long repeated runs is released.
func (n *Node) trimTrailing() {
	end := len(n.children)
	for end > 0 {
		last := n.children[end-1]
		if last.Node == nil {
			break
		}
		if !last.Node.kind.IsNoise() && !last.Node.isEmpty() {
			break
		}
		end--
	}
	clear(n.children[end:])
	switch {
	case end == 0:
		n.children = nil
	case cap(n.children) > 2*end+minChildCapacity:
		n.children = slices.Clone(n.children[:end])
	default:
		n.children = n.children[:end]
	}
}

// splice replaces the wrapper w in n's children with w's own children.
func (n *Node) splice(w *Node) {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].Node == w {
			n.children = slices.Replace(n.children, i, i+1, w.children...)
			return
		}
	}
	n.children = append(n.children, w.children...)
}

// finalize runs the kind specific completion step when the element ends.
func (n *Node) finalize() error {
	switch n.kind {
	case KindRow:
		n.trimTrailing()
	case KindTable:
		n.trimTrailing()
		return n.finalizeTable()
	case KindRoot, KindCell, KindParagraph, KindColumnDecl, KindStyleMeta, KindWrapper, KindUnrecognized:
	}
	return nil
}
