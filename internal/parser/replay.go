package parser

import (
	"strconv"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/output"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

// Replay plays the moves of rec from the start its tags name: a FEN tag,
// or a Variant tag with a Position tag for Chess960 arrays. The record's
// result must agree with a finished game.
func Replay(rec *GameRecord, reg *variant.Registry, cat *catalog.Catalog) (*output.Record, error) {
	g, err := startOf(rec, reg, cat)
	if err != nil {
		return nil, err
	}

	out := &output.Record{Game: g, Tags: make(map[string]string, len(rec.Tags))}
	for name, value := range rec.Tags {
		if name != "Variant" {
			out.Tags[name] = value
		}
	}
	for i, text := range rec.Moves {
		m, err := DecodeMove(text)
		if err != nil {
			return nil, errors.Wrapf(err, "ply %d", i+1)
		}
		if _, err := g.Play(m); err != nil {
			return nil, errors.Wrapf(err, "ply %d (%s)", i+1, text)
		}
		out.Moves = append(out.Moves, m)
	}

	if got := output.Result(g); got != "*" && rec.Result != "" && rec.Result != got {
		return nil, errors.Wrapf(errors.ErrInvalidRecord, "result %s, but the game ends %s", rec.Result, got)
	}
	return out, nil
}

func startOf(rec *GameRecord, reg *variant.Registry, cat *catalog.Catalog) (*engine.Game, error) {
	id := rec.Tag("Variant")
	if fen := rec.Tag("FEN"); fen != "" {
		if id != "" && id != "standard" {
			return nil, errors.Wrapf(errors.ErrInvalidRecord, "FEN start for variant %s", id)
		}
		return engine.NewGameFromFEN(fen)
	}
	if id == "" {
		id = "standard"
	}
	v, err := reg.Lookup(id)
	if err != nil {
		return nil, err
	}

	var opts []variant.StartOption
	if pos := rec.Tag("Position"); pos != "" {
		n, err := strconv.Atoi(pos)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidRecord, "position %q", pos)
		}
		opts = append(opts, variant.WithPosition(n))
	} else if v.Random != "" {
		return nil, errors.Wrapf(errors.ErrInvalidRecord, "%s game without a Position tag", id)
	}
	return engine.NewGame(v, cat, opts...)
}
