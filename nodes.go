package tml

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of a literal expression. Each
// node exclusively owns its children.
type node struct {
	kind nodeKind

	// num is the value of a nodeNum.
	num float64
	// name is the variable or function name, or the source text of a number.
	name string
	// span is the source span of the token that produced the node.
	span Span

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // num
	nodeName // lookup(name)
	nodeCall // name(left)

	nodeNeg // -left
	nodeNop // +left
	nodeAdd // left + right
	nodeSub // left - right
	nodeMul // left * right
	nodeDiv // left / right
	nodeMod // left % right
	nodePow // left ^ right
)

//go:generate go mod edit -require=golang.org/x/tools@v0.1.0
//go:generate go mod download
//go:generate go run golang.org/x/tools/cmd/stringer -type=nodeKind -trimprefix=node
//go:generate go mod tidy

// binops maps binary operator node kinds to their source text.
var binops = [...]string{
	nodeAdd: " + ",
	nodeSub: " - ",
	nodeMul: " * ",
	nodeDiv: " / ",
	nodeMod: " % ",
	nodePow: " ^ ",
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes the node fully parenthesized, so that the output parses back to
// the same tree.
func (n *node) fmt(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.left.fmt(b)
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b)
	case nodeNop:
		b.WriteByte('+')
		n.left.fmt(b)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeMod, nodePow:
		n.left.fmt(b)
		b.WriteString(binops[n.kind])
		n.right.fmt(b)
	default:
		panic("tml: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// names adds the variable names used in the tree to m.
func (n *node) names(m map[string]bool) {
	if n == nil {
		return
	}
	if n.kind == nodeName {
		m[n.name] = true
	}
	n.left.names(m)
	n.right.names(m)
}

// LineKind is the kind of a parsed line.
type LineKind int8

const (
	// LineEmpty is a line with nothing but whitespace.
	LineEmpty LineKind = iota
	// LineComment is a line starting with #.
	LineComment
	// LineExpr is a line holding an expression.
	LineExpr
)

func (k LineKind) String() string {
	switch k {
	case LineEmpty:
		return "Empty"
	case LineComment:
		return "Comment"
	case LineExpr:
		return "Expr"
	default:
		return "LineKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Line is a parsed line of input.
type Line struct {
	Kind LineKind
	// Pos is the byte offset of the comment marker in a comment line.
	Pos int
	// Expr is the expression of an expression line.
	Expr *Expr
	src  string
}

// Source returns the text the line was parsed from.
func (l *Line) Source() string {
	return l.src
}

func (l *Line) String() string {
	switch l.Kind {
	case LineComment:
		return l.src[l.Pos:]
	case LineExpr:
		return l.Expr.String()
	default:
		return ""
	}
}

// ExprKind is the kind of an expression.
type ExprKind int8

const (
	// ExprLiteral is a bare arithmetic expression.
	ExprLiteral ExprKind = iota
	// ExprAssign assigns an arithmetic expression to a variable.
	ExprAssign
	// ExprPrint concatenates strings and formatted arithmetic expressions.
	ExprPrint
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprAssign:
		return "Assign"
	case ExprPrint:
		return "Print"
	default:
		return "ExprKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Expr is a parsed expression.
type Expr struct {
	Kind ExprKind
	// Name is the variable assigned by an ExprAssign.
	Name string
	// n is the arithmetic of an ExprLiteral or ExprAssign.
	n *node
	// parts are the pieces of an ExprPrint in source order.
	parts []part
}

// part is one piece of a print expression. Exactly one of n and text is used.
type part struct {
	n    *node
	text string
}

// Vars returns the sorted variable names referenced by the expression. It
// does not include the name assigned by an assignment.
func (e *Expr) Vars() []string {
	m := make(map[string]bool)
	e.n.names(m)
	for _, p := range e.parts {
		p.n.names(m)
	}
	if len(m) == 0 {
		return nil
	}
	r := make([]string, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	sortstrs(r)
	return r
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// String creates a string representation of the parsed expression, with
// every term parenthesized.
func (e *Expr) String() string {
	var b strings.Builder
	switch e.Kind {
	case ExprLiteral:
		e.n.fmt(&b)
	case ExprAssign:
		b.WriteString(e.Name)
		b.WriteString(" = ")
		e.n.fmt(&b)
	case ExprPrint:
		for _, p := range e.parts {
			if p.n != nil {
				p.n.fmt(&b)
				continue
			}
			b.WriteByte('"')
			b.WriteString(p.text)
			b.WriteByte('"')
		}
	}
	return b.String()
}
