package parser

import (
	"strings"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/errors"
)

// DecodeMove turns a move in coordinate form back into an engine move:
// "e2e4", "e7e8=Q", "O-O", "O-O-O" or "c2c4@e6" for an archer shot.
// Trailing check marks are ignored.
func DecodeMove(text string) (engine.Move, error) {
	s := strings.TrimRight(text, "+#")
	switch s {
	case "O-O":
		side := chess.KingSide
		return engine.Move{Castle: &side}, nil
	case "O-O-O":
		side := chess.QueenSide
		return engine.Move{Castle: &side}, nil
	}

	var m engine.Move
	if at := strings.IndexByte(s, '@'); at >= 0 {
		target, err := chess.ParsePosition(s[at+1:])
		if err != nil {
			return engine.Move{}, badMove(text, "fire square")
		}
		m.Fire = &target
		s = s[:at]
	}
	if eq := strings.IndexByte(s, '='); eq >= 0 {
		if eq == len(s)-1 {
			return engine.Move{}, badMove(text, "promotion kind")
		}
		m.Promotion = chess.Kind(s[eq+1:])
		s = s[:eq]
	}

	// The destination starts at the second letter.
	split := -1
	for i := 1; i < len(s); i++ {
		if chTab[s[i]] == alphaChar {
			split = i
			break
		}
	}
	if split < 0 {
		return engine.Move{}, badMove(text, "two squares")
	}
	from, err := chess.ParsePosition(s[:split])
	if err != nil {
		return engine.Move{}, badMove(text, "origin square")
	}
	to, err := chess.ParsePosition(s[split:])
	if err != nil {
		return engine.Move{}, badMove(text, "destination square")
	}
	m.From, m.To = from, to
	return m, nil
}

func badMove(text, expected string) error {
	return &errors.ParseError{
		Err:      errors.ErrInvalidRecord,
		Source:   text,
		Expected: expected,
	}
}
