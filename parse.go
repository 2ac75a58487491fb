package tml

import (
	"errors"
	"strconv"
)

// Line = <empty> | '#' ... | Print | Assign | Literal
// Print = str { str | Literal }
// Assign = ident '=' Literal
// Literal = num | ident | Call | '(' Literal ')' | Neg | Plus | Add | Sub | Mul | Div | Mod | Pow
// Call = ident '(' Literal ')'
// Neg = '-' Literal
// Plus = '+' Literal
// Add = Literal '+' Literal
// Sub = Literal '-' Literal
// Mul = Literal '*' Literal
// Div = Literal '/' Literal
// Mod = Literal '%' Literal
// Pow = Literal '^' Literal

// ParseString parses a line of source.
func ParseString(src string) (*Line, error) {
	return Parse(Load(src))
}

// Parse parses the line held by a lexer. The lexer is consumed through the end
// of the line unless there is an error.
func Parse(scan *Lexer) (*Line, error) {
	src := scan.Source()
	tok := scan.Peek()
	switch {
	case tok.Kind == TokenEOF:
		return &Line{Kind: LineEmpty, src: src}, nil
	case tok.Kind == TokenSeparator && tok.Sep == SepComment:
		return &Line{Kind: LineComment, Pos: tok.Start, src: src}, nil
	}
	var (
		e   *Expr
		err error
	)
	switch tok.Kind {
	case TokenString:
		e, err = parseprint(scan)
	case TokenIdent:
		e, err = parseassign(scan)
	default:
		e, err = parseliteral(scan)
	}
	if err != nil {
		return nil, err
	}
	if end := scan.Next(); end.Kind != TokenEOF {
		return nil, unexpected(end)
	}
	return &Line{Kind: LineExpr, Expr: e, src: src}, nil
}

// parseliteral parses a bare arithmetic expression.
func parseliteral(scan *Lexer) (*Expr, error) {
	n, err := parseterm(scan, exprprec)
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: ExprLiteral, n: n}, nil
}

// parseassign parses an assignment if the line starts with a name followed by
// =, otherwise a bare arithmetic expression.
func parseassign(scan *Lexer) (*Expr, error) {
	rewind := *scan
	name := scan.Next()
	if tok := scan.Peek(); tok.Kind != TokenOperator || tok.Op != OpAssign {
		*scan = rewind
		return parseliteral(scan)
	}
	scan.Next()
	n, err := parseterm(scan, exprprec)
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: ExprAssign, Name: name.Splice(), n: n}, nil
}

// parseprint parses strings and arithmetic expressions until the end of the
// line.
func parseprint(scan *Lexer) (*Expr, error) {
	e := &Expr{Kind: ExprPrint}
	for {
		switch tok := scan.Peek(); tok.Kind {
		case TokenEOF:
			return e, nil
		case TokenString:
			if !tok.closed() {
				return nil, &StringError{caret: at(scan.Source(), tok.after())}
			}
			s := tok.Splice()
			e.parts = append(e.parts, part{text: s[1 : len(s)-1]})
			scan.Next()
		default:
			n, err := parseterm(scan, exprprec)
			if err != nil {
				return nil, err
			}
			e.parts = append(e.parts, part{n: n})
		}
	}
}

// parseterm parses operands joined by binary operators more binding than
// until. It leaves the first token that does not continue the term unread.
func parseterm(scan *Lexer, until operator) (*node, error) {
	n, err := parselhs(scan)
	if err != nil {
		return nil, err
	}
	for {
		tok := scan.Peek()
		if tok.Kind != TokenOperator {
			return n, nil
		}
		prec := binop(tok.Op)
		if prec.op == nodeNone || !prec.moreBinding(until) {
			return n, nil
		}
		op := scan.Next()
		rhs, err := parseterm(scan, prec)
		if err != nil {
			return nil, err
		}
		n = &node{kind: prec.op, span: op.Span, left: n, right: rhs}
	}
}

// parselhs parses the first operand of a term. Operators here are unary.
func parselhs(scan *Lexer) (*node, error) {
	tok := scan.Next()
	switch tok.Kind {
	case TokenNumber:
		src := scan.Source()
		if p := scan.Peek(); p.Kind == TokenError && p.Start == tok.End && src[p.Start] == '.' {
			// A second fraction part, as in 3.4.5.
			end := digits(src, p.Start+1)
			return nil, &NumberError{Text: src[tok.Start:end], caret: at(src, Span{tok.Start, end})}
		}
		s := tok.Splice()
		v, err := strconv.ParseFloat(s, 64)
		// Out of range literals are infinity or zero, like any other float
		// overflow.
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &NumberError{Text: s, caret: at(src, tok.Span)}
		}
		return &node{kind: nodeNum, num: v, name: s, span: tok.Span}, nil
	case TokenIdent:
		if open := scan.Peek(); open.Kind != TokenSeparator || open.Sep != SepOpen {
			return &node{kind: nodeName, name: tok.Splice(), span: tok.Span}, nil
		}
		scan.Next()
		arg, err := parseterm(scan, exprprec)
		if err != nil {
			return nil, err
		}
		if end := scan.Next(); end.Kind != TokenSeparator || end.Sep != SepClose {
			return nil, &BracketError{Call: true, caret: at(scan.Source(), end.Span)}
		}
		return &node{kind: nodeCall, name: tok.Splice(), span: tok.Span, left: arg}, nil
	case TokenOperator:
		prec := unop(tok.Op)
		if prec.op == nodeNone {
			return nil, unexpected(tok)
		}
		rhs, err := parseterm(scan, prec)
		if err != nil {
			return nil, err
		}
		return &node{kind: prec.op, span: tok.Span, left: rhs}, nil
	case TokenSeparator:
		if tok.Sep != SepOpen {
			return nil, unexpected(tok)
		}
		n, err := parseterm(scan, exprprec)
		if err != nil {
			return nil, err
		}
		if end := scan.Next(); end.Kind != TokenSeparator || end.Sep != SepClose {
			return nil, &BracketError{caret: at(scan.Source(), end.Span)}
		}
		return n, nil
	default:
		return nil, unexpected(tok)
	}
}

// unexpected returns an error for a token that cannot appear where it is.
func unexpected(tok Token) error {
	return &ExpressionError{Token: tok.Splice(), caret: at(tok.Source(), tok.Span)}
}

type operator struct {
	// prec is the binding power. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

// moreBinding reports whether an operator with precedence p following a term
// being parsed with precedence than takes that term as its left operand.
func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator. If op is not a binary operator, then the
// result has an op of nodeNone.
func binop(op Op) operator {
	switch op {
	case OpAdd:
		return operator{1, false, nodeAdd}
	case OpSub:
		return operator{1, false, nodeSub}
	case OpMul:
		return operator{2, false, nodeMul}
	case OpDiv:
		return operator{2, false, nodeDiv}
	case OpMod:
		return operator{2, false, nodeMod}
	case OpPow:
		return operator{3, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator. If op is not a unary operator, then the result
// has an op of nodeNone.
func unop(op Op) operator {
	switch op {
	case OpAdd:
		return operator{3, true, nodeNop}
	case OpSub:
		return operator{3, true, nodeNeg}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{0, true, nodeNone}
