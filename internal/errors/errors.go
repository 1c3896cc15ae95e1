// Package errors provides sentinel errors and error types for the fairy chess engine.
// It defines common error conditions and structured error types that preserve
// context while allowing error inspection with errors.Is() and errors.As().
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure conditions.
// Use these with errors.Is() to check for specific error types.
var (
	// ErrInvalidNotation indicates a movement expression that does not parse.
	ErrInvalidNotation = errors.New("invalid movement notation")

	// ErrMissingBoardSize indicates a rider sequence compiled without a board size.
	ErrMissingBoardSize = errors.New("board size required")

	// ErrInvalidVariant indicates a malformed variant definition.
	ErrInvalidVariant = errors.New("invalid variant")

	// ErrUnknownKind indicates a reference to a piece kind missing from the catalog.
	ErrUnknownKind = errors.New("unknown piece kind")

	// ErrInvalidFEN indicates a malformed FEN string.
	ErrInvalidFEN = errors.New("invalid FEN string")

	// ErrEmptySquare indicates a query or move from a square with no piece.
	ErrEmptySquare = errors.New("empty square")

	// ErrNotYourTurn indicates a move by the side not to move.
	ErrNotYourTurn = errors.New("not this side's turn")

	// ErrIllegalMove indicates a move that violates the rules of the variant.
	ErrIllegalMove = errors.New("illegal move")

	// ErrHistoryStart indicates an undo past the first ply.
	ErrHistoryStart = errors.New("already at start of history")

	// ErrHistoryEnd indicates a redo past the last recorded ply.
	ErrHistoryEnd = errors.New("already at end of history")

	// ErrPendingChoice indicates an operation attempted while a promotion,
	// castling confirmation or archer shot is waiting to be resolved.
	ErrPendingChoice = errors.New("a pending choice must be resolved first")

	// ErrNoPendingChoice indicates a resolution call with nothing pending.
	ErrNoPendingChoice = errors.New("no pending choice")

	// ErrGameOver indicates a move after checkmate or stalemate.
	ErrGameOver = errors.New("game is over")

	// ErrNoLegalMoves indicates a search request on a position without moves.
	ErrNoLegalMoves = errors.New("no legal moves")

	// ErrInvariant indicates an internal consistency violation.
	ErrInvariant = errors.New("invariant violated")

	// ErrInvalidConfig indicates invalid configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSnapshotUnavailable indicates a saved game that cannot be restored.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")

	// ErrWrongState indicates a session operation out of order, such as a
	// move before a variant is chosen.
	ErrWrongState = errors.New("not allowed in the current session state")

	// ErrInvalidRecord indicates a game record that does not parse or replay.
	ErrInvalidRecord = errors.New("invalid game record")
)

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// GameError wraps errors with game context, including the ply and the
// squares involved. It implements the error interface and supports
// unwrapping via errors.Is() and errors.As().
type GameError struct {
	Err     error  // The underlying error
	Variant string // Variant id (if known)
	Ply     int    // Ply at which the error occurred
	From    string // Origin square in algebraic form (if applicable)
	To      string // Destination square in algebraic form (if applicable)
	Kind    string // Piece kind involved (if applicable)
}

// Error returns a formatted error message including all available context.
func (e *GameError) Error() string {
	var parts []string

	if e.Variant != "" {
		parts = append(parts, e.Variant)
	}

	parts = append(parts, fmt.Sprintf("ply %d", e.Ply))

	if e.Kind != "" {
		parts = append(parts, e.Kind)
	}

	switch {
	case e.From != "" && e.To != "":
		parts = append(parts, fmt.Sprintf("%s-%s", e.From, e.To))
	case e.From != "":
		parts = append(parts, e.From)
	case e.To != "":
		parts = append(parts, e.To)
	}

	context := strings.Join(parts, ", ")

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", context, e.Err)
	}
	return context
}

// Unwrap returns the underlying error, enabling errors.Is() and errors.As()
// to work through the GameError wrapper.
func (e *GameError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing error with location context.
// It's used for movement notation and data file errors.
type ParseError struct {
	Err      error  // The underlying error
	Source   string // Expression or file being parsed
	Column   int    // Column number (1-based)
	Expected string // What was expected (for syntax errors)
	Got      string // What was found instead
}

// Error returns a formatted error message with location and context.
func (e *ParseError) Error() string {
	var parts []string

	if e.Source != "" {
		loc := fmt.Sprintf("%q", e.Source)
		if e.Column > 0 {
			loc += fmt.Sprintf(":%d", e.Column)
		}
		parts = append(parts, loc)
	}

	if e.Expected != "" && e.Got != "" {
		parts = append(parts, fmt.Sprintf("expected %s, got %s", e.Expected, e.Got))
	} else if e.Expected != "" {
		parts = append(parts, fmt.Sprintf("expected %s", e.Expected))
	} else if e.Got != "" {
		parts = append(parts, fmt.Sprintf("unexpected %s", e.Got))
	}

	if e.Err != nil {
		if len(parts) > 0 {
			return fmt.Sprintf("%s: %v", strings.Join(parts, ": "), e.Err)
		}
		return e.Err.Error()
	}

	if len(parts) > 0 {
		return strings.Join(parts, ": ")
	}
	return "parse error"
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Wrap adds context to an error while preserving the underlying error
// for inspection with errors.Is() and errors.As().
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf adds formatted context to an error while preserving the underlying
// error for inspection with errors.Is() and errors.As().
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
