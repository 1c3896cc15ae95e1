package variant

import (
	"fmt"
	"strconv"
	"strings"

	cchess "github.com/corentings/chess/v2"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
)

// FENPosition is a position in Forsyth-Edwards terms. Only the standard
// kinds can be expressed.
type FENPosition struct {
	Board     *chess.Board
	Turn      chess.Colour
	Castling  [2][2]bool // [colour][side]
	Files     CastlingFiles
	EnPassant *chess.Position // the square a double-stepping pawn passed over
	HalfMove  int
	FullMove  int
}

// ClassicalFiles are the castling files of the standard array.
var ClassicalFiles = CastlingFiles{King: 4, Rooks: [2]int{0, 7}}

var fromPieceType = map[cchess.PieceType]chess.Kind{
	cchess.King:   chess.King,
	cchess.Queen:  chess.Queen,
	cchess.Rook:   chess.Rook,
	cchess.Bishop: chess.Bishop,
	cchess.Knight: chess.Knight,
	cchess.Pawn:   chess.Pawn,
}

// ImportFEN decodes a standard 8x8 FEN into a fairy board.
func ImportFEN(fen string) (*FENPosition, error) {
	opt, err := cchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, errors.ErrInvalidFEN)
	}
	pos := cchess.NewGame(opt).Position()

	out := &FENPosition{Board: chess.NewBoard(8), Files: ClassicalFiles, FullMove: 1}
	squares := pos.Board().SquareMap()
	// Place in square order so piece ids are deterministic.
	for sq := cchess.Square(0); sq < 64; sq++ {
		pc, ok := squares[sq]
		if !ok {
			continue
		}
		kind, ok := fromPieceType[pc.Type()]
		if !ok {
			return nil, fmt.Errorf("piece on %s: %w", sq, errors.ErrInvalidFEN)
		}
		colour := chess.Black
		if pc.Color() == cchess.White {
			colour = chess.White
		}
		at := chess.Pos(int(sq.File()), int(sq.Rank()))
		placed := out.Board.Place(at, colour, kind)
		// FEN has no move counters. A pawn off its home rank has moved.
		if kind == chess.Pawn && at.Rank != pawnHome(colour) {
			placed.Count = 1
			out.Board.Set(at, placed)
		}
	}

	if pos.Turn() == cchess.White {
		out.Turn = chess.White
	} else {
		out.Turn = chess.Black
	}
	rights := string(pos.CastleRights())
	out.Castling[chess.White][chess.KingSide] = strings.ContainsRune(rights, 'K')
	out.Castling[chess.White][chess.QueenSide] = strings.ContainsRune(rights, 'Q')
	out.Castling[chess.Black][chess.KingSide] = strings.ContainsRune(rights, 'k')
	out.Castling[chess.Black][chess.QueenSide] = strings.ContainsRune(rights, 'q')

	if ep := pos.EnPassantSquare(); ep != cchess.NoSquare {
		p := chess.Pos(int(ep.File()), int(ep.Rank()))
		out.EnPassant = &p
	}

	fields := strings.Fields(fen)
	out.HalfMove, _ = strconv.Atoi(fields[4])
	out.FullMove, _ = strconv.Atoi(fields[5])
	return out, nil
}

func pawnHome(c chess.Colour) int {
	if c == chess.White {
		return 1
	}
	return 6
}

var fenLetters = map[chess.Kind]byte{
	chess.King:   'k',
	chess.Queen:  'q',
	chess.Rook:   'r',
	chess.Bishop: 'b',
	chess.Knight: 'n',
	chess.Pawn:   'p',
}

// EncodeFEN writes the position as FEN. Castling rights use Shredder file
// letters when the king or rooks started off the classical files.
func EncodeFEN(p *FENPosition) (string, error) {
	var sb strings.Builder

	if err := writePlacement(&sb, p.Board); err != nil {
		return "", err
	}
	sb.WriteByte(' ')
	if p.Turn == chess.White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	writeCastlingRights(&sb, p)
	sb.WriteByte(' ')
	if p.EnPassant != nil {
		sb.WriteString(p.EnPassant.String())
	} else {
		sb.WriteByte('-')
	}
	fmt.Fprintf(&sb, " %d %d", p.HalfMove, max(p.FullMove, 1))
	return sb.String(), nil
}

func writePlacement(sb *strings.Builder, b *chess.Board) error {
	for rank := b.Size() - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < b.Size(); file++ {
			pc, ok := b.At(chess.Pos(file, rank))
			if !ok {
				empty++
				continue
			}
			letter, ok := fenLetters[pc.Kind]
			if !ok {
				return fmt.Errorf("kind %s has no FEN letter: %w", pc.Kind, errors.ErrInvalidFEN)
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			if pc.Colour == chess.White {
				letter -= 'a' - 'A'
			}
			sb.WriteByte(letter)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return nil
}

func writeCastlingRights(sb *strings.Builder, p *FENPosition) {
	shredder := p.Files != ClassicalFiles
	wrote := false
	for _, c := range chess.Colours {
		for _, side := range []chess.Side{chess.KingSide, chess.QueenSide} {
			if !p.Castling[c][side] {
				continue
			}
			var letter byte
			switch {
			case shredder:
				letter = byte('a' + p.Files.Rooks[side])
			case side == chess.KingSide:
				letter = 'k'
			default:
				letter = 'q'
			}
			if c == chess.White {
				letter -= 'a' - 'A'
			}
			sb.WriteByte(letter)
			wrote = true
		}
	}
	if !wrote {
		sb.WriteByte('-')
	}
}
