package expr

import "fmt"

// Parser is a recursive-descent parser for the restricted grammar:
//
//	expr       := comparison
//	comparison := additive (("==" | "!=" | "<" | "<=" | ">" | ">=") additive)*
//	additive   := multiplicative (("+" | "-") multiplicative)*
//	multiplicative := primary ("*" primary)*
//	primary    := INT | STRING | "true" | "false" | "null"
//	            | IDENT "(" args ")"
//	            | IDENT ("." IDENT)*
//	            | "(" expr ")"
//	args       := (expr ("," expr)*)?
type Parser struct {
	lex  *Lexer
	cur  Token
	peek Token
}

// Parse parses src as a single expression and requires the entire input
// to be consumed.
func Parse(src string) (Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected trailing input at column %d", p.cur.Column)
	}
	return node, nil
}

func newParser(src string) (*Parser, error) {
	lex := NewLexer(src)
	p := &Parser{lex: lex}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) parseExpr() (Node, error) {
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var opText string
		switch p.cur.Type {
		case TokenEq:
			opText = "=="
		case TokenNeq:
			opText = "!="
		case TokenLt:
			opText = "<"
		case TokenLte:
			opText = "<="
		case TokenGt:
			opText = ">"
		case TokenGte:
			opText = ">="
		default:
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: opText, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenPlus || p.cur.Type == TokenMinus {
		opText := "+"
		if p.cur.Type == TokenMinus {
			opText = "-"
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: opText, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenStar {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: "*", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	switch p.cur.Type {
	case TokenInt:
		text := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return IntLit{Text: text}, nil
	case TokenString:
		text := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return StringLit{Value: text}, nil
	case TokenTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return BoolLit{Value: true}, nil
	case TokenFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return BoolLit{Value: false}, nil
	case TokenNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return NullLit{}, nil
	case TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TokenRParen {
			return nil, fmt.Errorf("expected ')' at column %d", p.cur.Column)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenIdent:
		name := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == TokenLParen {
			return p.parseCall(name)
		}
		var node Node = Ident{Name: name}
		for p.cur.Type == TokenDot {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.Type != TokenIdent {
				return nil, fmt.Errorf("expected field name after '.' at column %d", p.cur.Column)
			}
			field := p.cur.Text
			if err := p.advance(); err != nil {
				return nil, err
			}
			node = FieldAccess{Base: node, Name: field}
		}
		return node, nil
	default:
		return nil, fmt.Errorf("unexpected token at column %d", p.cur.Column)
	}
}

func (p *Parser) parseCall(name string) (Node, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var args []Node
	if p.cur.Type != TokenRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur.Type == TokenComma {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}
	if p.cur.Type != TokenRParen {
		return nil, fmt.Errorf("expected ')' at column %d", p.cur.Column)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return Call{Func: name, Args: args}, nil
}
