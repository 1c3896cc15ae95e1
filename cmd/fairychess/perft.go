package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/output"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

var errPerftMismatch = errors.New("perft mismatch")

// perftCommand runs -perft with the game chosen by -fen or -variant.
func perftCommand(w io.Writer, reg *variant.Registry, cat *catalog.Catalog, start []variant.StartOption) error {
	g, err := setupGame(reg, cat, *variantID, *fenString, start)
	if err != nil {
		return err
	}
	return runPerft(w, g, *perftDepth, *divide, *crossCheck)
}

// setupGame starts a game from fen when given, else from the start of
// the variant with id.
func setupGame(reg *variant.Registry, cat *catalog.Catalog, id, fen string, start []variant.StartOption) (*engine.Game, error) {
	if fen != "" {
		return engine.NewGameFromFEN(fen)
	}
	v, err := reg.Lookup(id)
	if err != nil {
		return nil, err
	}
	return engine.NewGame(v, cat, start...)
}

// perftLine is the count below one first move.
type perftLine struct {
	Move  string
	Nodes uint64
}

// perftDivide counts the leaves below each move of the side to move.
func perftDivide(g *engine.Game, depth int) ([]perftLine, error) {
	moves, err := g.Moves(g.Turn())
	if err != nil {
		return nil, err
	}
	lines := make([]perftLine, 0, len(moves))
	for _, m := range moves {
		child := g.Clone()
		if _, err := child.Play(m); err != nil {
			return nil, errors.Wrapf(err, "play %s", m)
		}
		n, err := child.Perft(depth - 1)
		if err != nil {
			return nil, err
		}
		lines = append(lines, perftLine{Move: m.String(), Nodes: n})
	}
	slices.SortFunc(lines, func(a, b perftLine) int {
		switch {
		case a.Move < b.Move:
			return -1
		case a.Move > b.Move:
			return 1
		}
		return 0
	})
	return lines, nil
}

// runPerft writes the leaf count of g at depth, optionally by first move
// and checked against dragontoothmg.
func runPerft(w io.Writer, g *engine.Game, depth int, div, check bool) error {
	if depth < 1 {
		return errors.Wrapf(errors.ErrInvalidConfig, "perft depth %d", depth)
	}
	began := time.Now()

	var total uint64
	if div {
		lines, err := perftDivide(g, depth)
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Fprintf(w, "%s: %d\n", l.Move, l.Nodes)
			total += l.Nodes
		}
	} else {
		n, err := g.Perft(depth)
		if err != nil {
			return err
		}
		total = n
	}
	fmt.Fprintf(w, "perft(%d) = %d\n", depth, total)
	log.Info().
		Str("variant", g.Variant().ID).
		Int("depth", depth).
		Uint64("nodes", total).
		Dur("elapsed", time.Since(began)).
		Msg("perft")

	if !check {
		return nil
	}
	want, err := referencePerft(g, depth)
	if err != nil {
		return err
	}
	if want != total {
		return errors.Wrapf(errPerftMismatch, "depth %d: %d, dragontoothmg %d", depth, total, want)
	}
	fmt.Fprintln(w, "dragontoothmg agrees")
	return nil
}

// referencePerft counts the same tree with dragontoothmg. Only standard
// chess can be compared.
func referencePerft(g *engine.Game, depth int) (uint64, error) {
	fen := output.FEN(g)
	if g.Variant().ID != "standard" || fen == "" {
		return 0, errors.Wrapf(errors.ErrInvalidConfig, "cannot cross-check variant %s", g.Variant().ID)
	}
	b := dragontoothmg.ParseFen(fen)
	return dragontoothPerft(&b, depth), nil
}

func dragontoothPerft(b *dragontoothmg.Board, depth int) uint64 {
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += dragontoothPerft(b, depth-1)
		unapply()
	}
	return nodes
}
