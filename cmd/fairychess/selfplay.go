package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/config"
	"github.com/lgbarn/fairychess-go/internal/output"
	"github.com/lgbarn/fairychess-go/internal/processing"
	"github.com/lgbarn/fairychess-go/internal/search"
	"github.com/lgbarn/fairychess-go/internal/session"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

// Termination tag values for adjudicated games.
const (
	terminationMoveLimit  = "move limit"
	terminationRepetition = "repetition"
)

// selfPlayer plays computer-versus-computer games of one variant.
type selfPlayer struct {
	reg      *variant.Registry
	cat      *catalog.Catalog
	searcher *search.Searcher
	start    []variant.StartOption
	variant  string
	level    int
	ahead    bool
	maxPlies int
}

// playGame plays game number round to the end, or until it is drawn by
// repetition or the ply limit.
func (p *selfPlayer) playGame(ctx context.Context, round int) (*output.Record, *processing.GameAnalysis, error) {
	sess := session.New(p.reg, p.cat,
		session.WithSearcher(p.searcher),
		session.WithStartOptions(p.start...),
		session.WithSettings(session.Settings{
			Mode:      session.PvC,
			Player:    chess.White,
			Level:     p.level,
			Foresight: p.ahead,
		}))
	if err := sess.SelectVariant(p.variant); err != nil {
		return nil, nil, err
	}
	if err := sess.Start(); err != nil {
		return nil, nil, err
	}

	g := sess.Game()
	player := fmt.Sprintf("fairychess %s level %d", programVersion, p.level)
	rec := &output.Record{
		Game: g,
		Tags: map[string]string{
			"White": player,
			"Black": player,
			"Round": strconv.Itoa(round),
		},
	}
	if pos := g.StartPosition(); pos >= 0 {
		rec.Tags["Position"] = strconv.Itoa(pos)
	}
	tracker := processing.NewTracker(g.Rules())
	tracker.Add(g.Frame())

	for sess.State() == session.InPlay {
		if g.Ply() >= p.maxPlies {
			adjudicate(rec, terminationMoveLimit)
			break
		}
		d, err := sess.PlayAuto(ctx)
		if err != nil {
			return nil, nil, err
		}
		rec.Moves = append(rec.Moves, d.Move)
		seen := tracker.Add(g.Frame())
		if seen >= processing.RepetitionLimit && sess.State() == session.InPlay {
			adjudicate(rec, terminationRepetition)
			break
		}
	}
	switch {
	case g.IsCheckmate():
		rec.Tags["Termination"] = "checkmate"
	case g.IsStalemate():
		rec.Tags["Termination"] = "stalemate"
	}
	return rec, processing.AnalyzeGame(g), nil
}

func adjudicate(rec *output.Record, reason string) {
	rec.Tags["Result"] = "1/2-1/2"
	rec.Tags["Termination"] = reason
}

// selfPlayCommand runs -selfplay, writing each game as it finishes.
func selfPlayCommand(ctx context.Context, cfg *config.Config, reg *variant.Registry, cat *catalog.Catalog,
	searcher *search.Searcher, start []variant.StartOption) error {
	p := &selfPlayer{
		reg:      reg,
		cat:      cat,
		searcher: searcher,
		start:    start,
		variant:  *variantID,
		level:    cfg.Search.Level,
		ahead:    cfg.Search.Foresight,
		maxPlies: *maxPlies,
	}

	var writer output.GameWriter
	if *jsonOutput {
		writer = output.NewJSONWriter(cfg.OutputFile)
	} else {
		writer = output.NewTextWriter(cfg.OutputFile, *lineLength)
	}
	board := *showBoard && !*jsonOutput
	if err := p.run(ctx, *selfPlay, writer, cfg.OutputFile, board); err != nil {
		return err
	}
	return writer.Close()
}

// run plays n games, writing each to writer and, with board set, its final
// position to w.
func (p *selfPlayer) run(ctx context.Context, n int, writer output.GameWriter, w io.Writer, board bool) error {
	var score [3]int // white wins, black wins, draws
	for round := 1; round <= n; round++ {
		rec, analysis, err := p.playGame(ctx, round)
		if err != nil {
			return fmt.Errorf("game %d: %w", round, err)
		}
		if err := writer.WriteGame(rec); err != nil {
			return err
		}
		if board {
			if err := output.WriteBoard(w, rec.Game.Board()); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}

		result := output.RecordResult(rec)
		switch result {
		case "1-0":
			score[0]++
		case "0-1":
			score[1]++
		default:
			score[2]++
		}
		log.Info().
			Int("round", round).
			Str("result", result).
			Str("termination", rec.Tags["Termination"]).
			Int("plies", analysis.Plies).
			Ints("lost", analysis.Lost[:]).
			Float64("material", analysis.MaterialBalance()).
			Msg("game finished")
	}
	log.Info().
		Str("variant", p.variant).
		Int("white", score[0]).
		Int("black", score[1]).
		Int("draws", score[2]).
		Msg("self-play finished")
	return nil
}
