package parser

import (
	"io"

	"github.com/lgbarn/fairychess-go/internal/errors"
)

// GameRecord is one parsed game: its tags, move texts and result.
type GameRecord struct {
	Tags      map[string]string
	Moves     []string
	Comments  []string
	Result    string
	StartLine uint
	EndLine   uint
}

// Tag returns the value of the named tag, or "".
func (g *GameRecord) Tag(name string) string {
	return g.Tags[name]
}

// Parser parses game records.
type Parser struct {
	lexer        *Lexer
	currentToken *Token
}

// NewParser creates a new parser for the given reader.
func NewParser(r io.Reader) *Parser {
	return &Parser{lexer: NewLexer(r)}
}

// nextToken gets the next token from the lexer.
func (p *Parser) nextToken() {
	p.currentToken = p.lexer.NextToken()
}

// ParseGame parses a single game from the input.
// Returns nil if no more games are available.
func (p *Parser) ParseGame() (*GameRecord, error) {
	// Get first token if we haven't yet
	if p.currentToken == nil {
		p.nextToken()
	}

	game := &GameRecord{Tags: make(map[string]string)}
	game.Comments = p.parseOptCommentList()
	game.StartLine = p.currentToken.Line

	if err := p.parseOptTagList(game); err != nil {
		return nil, err
	}
	if err := p.parseMoveList(game); err != nil {
		return nil, err
	}
	game.Comments = append(game.Comments, p.parseOptCommentList()...)

	switch p.currentToken.Type {
	case TerminatingResult:
		game.Result = p.currentToken.Text
		game.EndLine = p.currentToken.Line
		p.nextToken()
	case EOFToken:
		if len(game.Tags) == 0 && len(game.Moves) == 0 {
			return nil, nil
		}
		game.EndLine = p.lexer.LineNumber()
	default:
		return nil, p.unexpected("result")
	}

	// Store result in tags if not present
	if r := game.Tags["Result"]; r == "" || r == "?" {
		game.Tags["Result"] = game.Result
	}
	return game, nil
}

// parseOptTagList parses zero or more tags.
func (p *Parser) parseOptTagList(game *GameRecord) error {
	for p.currentToken.Type == TagToken {
		name := p.currentToken.Text
		p.nextToken()
		if p.currentToken.Type != StringToken {
			return p.unexpected("value of tag " + name)
		}
		game.Tags[name] = p.currentToken.Text
		p.nextToken()
		game.Comments = append(game.Comments, p.parseOptCommentList()...)
	}
	return nil
}

// parseMoveList parses numbered moves up to the result.
func (p *Parser) parseMoveList(game *GameRecord) error {
	for {
		game.Comments = append(game.Comments, p.parseOptCommentList()...)
		switch p.currentToken.Type {
		case MoveNumber:
			p.nextToken()
		case MoveToken:
			game.Moves = append(game.Moves, p.currentToken.Text)
			p.nextToken()
		case ErrorToken:
			return p.unexpected("move")
		default:
			return nil
		}
	}
}

// parseOptCommentList parses zero or more comments.
func (p *Parser) parseOptCommentList() []string {
	var comments []string
	for p.currentToken.Type == CommentToken {
		comments = append(comments, p.currentToken.Text)
		p.nextToken()
	}
	return comments
}

func (p *Parser) unexpected(expected string) error {
	err := &errors.ParseError{
		Err:      errors.ErrInvalidRecord,
		Source:   p.currentToken.Text,
		Expected: expected,
		Got:      p.currentToken.Type.String(),
	}
	return errors.Wrapf(err, "line %d", p.currentToken.Line)
}

// ParseAllGames parses all games from the input.
func (p *Parser) ParseAllGames() ([]*GameRecord, error) {
	var games []*GameRecord
	for {
		game, err := p.ParseGame()
		if err != nil {
			return games, err
		}
		if game == nil {
			break
		}
		games = append(games, game)
	}
	return games, nil
}
