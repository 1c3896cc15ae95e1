package notation

import (
	"strconv"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/geometry"
)

// maxMacroDepth bounds macro expansion so self-referencing macros fail.
const maxMacroDepth = 8

// Parser parses movement notation into an expression tree.
type Parser struct {
	lexer   *Lexer
	source  string
	macros  map[string]string
	depth   int
	current Token
	peek    Token
}

// NewParser creates a new parser for the given input. Macro names map to
// the notation they expand to.
func NewParser(input string, macros map[string]string) *Parser {
	p := &Parser{lexer: NewLexer(input), source: input, macros: macros}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

// Parse parses a notation string and returns its expression tree.
func Parse(input string, macros map[string]string) (Node, error) {
	return NewParser(input, macros).ParseNotation()
}

// ParseNotation parses the complete input.
func (p *Parser) ParseNotation() (Node, error) {
	if p.current.Type == EOF {
		return nil, p.errorf("movement", p.current)
	}
	node, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.current.Type != EOF {
		return nil, p.errorf("',' or end of input", p.current)
	}
	return node, nil
}

func (p *Parser) parseUnion() (Node, error) {
	var terms []Node
	for {
		term, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
		if p.current.Type != COMMA {
			break
		}
		p.nextToken()
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return &Union{Terms: terms}, nil
}

func (p *Parser) parseSequence() (Node, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.current.Type != GT {
		return first, nil
	}
	p.nextToken()
	then, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return &Sequence{First: first, Then: then}, nil
}

// parseTerm parses [NUMBER] primary {suffix}.
func (p *Parser) parseTerm() (Node, error) {
	var node Node
	var err error

	if p.current.Type == NUMBER && p.peek.Type != SLASH {
		factor, convErr := strconv.Atoi(p.current.Literal)
		if convErr != nil || factor < 1 {
			return nil, p.errorf("positive scale", p.current)
		}
		p.nextToken()
		inner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		node = &Scale{Factor: factor, Inner: inner}
	} else {
		node, err = p.parsePrimary()
		if err != nil {
			return nil, err
		}
	}

	for {
		switch p.current.Type {
		case UNBOUNDED:
			p.nextToken()
			node = &Bound{Inner: node}
		case NUMBER:
			if p.peek.Type == SLASH {
				return node, nil
			}
			limit, convErr := strconv.Atoi(p.current.Literal)
			if convErr != nil || limit < 1 {
				return nil, p.errorf("positive bound", p.current)
			}
			p.nextToken()
			node = &Bound{Limit: limit, Inner: node}
		default:
			return node, nil
		}
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	switch p.current.Type {
	case PLUS:
		p.nextToken()
		return &Direction{Symbol: "+", Vectors: geometry.Unique(geometry.Dir8(0, 1))}, nil
	case CROSS:
		p.nextToken()
		return &Direction{Symbol: "x", Vectors: geometry.Unique(geometry.Dir8(1, 1))}, nil
	case NUMBER, MINUS:
		return p.parseVector()
	case SYMMETRIC:
		p.nextToken()
		inner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &Symmetrize{Inner: inner}, nil
	case WRAPPER:
		return p.parseWrapper()
	case MACRO:
		return p.parseMacro()
	case LPAREN:
		return nil, p.errorf("wrapper letter before '('", p.current)
	}
	return nil, p.errorf("movement", p.current)
}

// parseVector parses [-]n/[-]m, n ranks forward and m files right.
func (p *Parser) parseVector() (Node, error) {
	start := p.current.Pos
	forward, err := p.parseSigned()
	if err != nil {
		return nil, err
	}
	if p.current.Type != SLASH {
		return nil, p.errorf("'/'", p.current)
	}
	p.nextToken()
	right, err := p.parseSigned()
	if err != nil {
		return nil, err
	}
	end := len(p.source)
	if p.current.Type != EOF {
		end = p.current.Pos
	}
	return &Direction{
		Symbol:  p.source[start:end],
		Vectors: []chess.Offset{chess.Off(right, forward)},
	}, nil
}

func (p *Parser) parseSigned() (int, error) {
	sign := 1
	if p.current.Type == MINUS {
		sign = -1
		p.nextToken()
	}
	if p.current.Type != NUMBER {
		return 0, p.errorf("number", p.current)
	}
	n, err := strconv.Atoi(p.current.Literal)
	if err != nil {
		return 0, p.errorf("number", p.current)
	}
	p.nextToken()
	return sign * n, nil
}

func (p *Parser) parseWrapper() (Node, error) {
	letter := p.current.Literal
	p.nextToken()
	if p.current.Type != LPAREN {
		return nil, p.errorf("'('", p.current)
	}
	p.nextToken()
	inner, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.current.Type != RPAREN {
		return nil, p.errorf("')'", p.current)
	}
	p.nextToken()

	switch letter {
	case "m":
		return &MoveOnly{Inner: inner}, nil
	case "c":
		return &CaptureOnly{Inner: inner}, nil
	}
	return &OutwardFilter{Mode: FilterMode(letter[0]), Inner: inner}, nil
}

func (p *Parser) parseMacro() (Node, error) {
	tok := p.current
	body, ok := p.macros[tok.Literal]
	if !ok {
		return nil, p.errorf("known macro", tok)
	}
	if p.depth >= maxMacroDepth {
		return nil, p.errorf("non-recursive macro", tok)
	}
	sub := NewParser(body, p.macros)
	sub.depth = p.depth + 1
	node, err := sub.ParseNotation()
	if err != nil {
		return nil, errors.Wrapf(err, "macro %s", tok.Literal)
	}
	p.nextToken()
	return node, nil
}

func (p *Parser) errorf(expected string, got Token) error {
	found := got.Type.String()
	if got.Literal != "" && got.Type != EOF {
		found = strconv.Quote(got.Literal)
	}
	return &errors.ParseError{
		Err:      errors.ErrInvalidNotation,
		Source:   p.source,
		Column:   got.Pos + 1,
		Expected: expected,
		Got:      found,
	}
}
