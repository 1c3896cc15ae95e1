package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/config"
	"github.com/lgbarn/fairychess-go/internal/matching"
	"github.com/lgbarn/fairychess-go/internal/output"
	"github.com/lgbarn/fairychess-go/internal/parser"
	"github.com/lgbarn/fairychess-go/internal/processing"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

// replayCommand runs -replay.
func replayCommand(cfg *config.Config, reg *variant.Registry, cat *catalog.Catalog) error {
	f, err := os.Open(*replayFile)
	if err != nil {
		return err
	}
	defer f.Close()

	sel, err := selection(*selectTags)
	if err != nil {
		return err
	}
	var writer output.GameWriter
	if *jsonOutput {
		writer = output.NewJSONWriter(cfg.OutputFile)
	} else {
		writer = output.NewTextWriter(cfg.OutputFile, *lineLength)
	}
	if err := replayGames(f, reg, cat, sel, writer); err != nil {
		return fmt.Errorf("%s: %w", *replayFile, err)
	}
	return writer.Close()
}

// selection builds a tag matcher from criteria separated by ';'.
func selection(criteria string) (*matching.TagMatcher, error) {
	tm := matching.NewTagMatcher()
	for _, c := range strings.Split(criteria, ";") {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if err := tm.ParseCriterion(c); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

// replayGames replays every record read from r that sel matches and
// writes the games. It stops at the first record that does not replay.
func replayGames(r io.Reader, reg *variant.Registry, cat *catalog.Catalog, sel *matching.TagMatcher,
	writer output.GameWriter) error {
	p := parser.NewParser(r)
	count, skipped := 0, 0
	for {
		game, err := p.ParseGame()
		if err != nil {
			return err
		}
		if game == nil {
			break
		}
		count++
		if !sel.Match(game.Tags) {
			skipped++
			continue
		}
		rec, err := parser.Replay(game, reg, cat)
		if err != nil {
			return fmt.Errorf("game %d (line %d): %w", count, game.StartLine, err)
		}
		if err := writer.WriteGame(rec); err != nil {
			return err
		}

		analysis := processing.AnalyzeGame(rec.Game)
		log.Debug().
			Int("game", count).
			Str("variant", rec.Game.Variant().ID).
			Str("result", output.RecordResult(rec)).
			Int("plies", analysis.Plies).
			Bool("repetition", analysis.RepetitionDetected()).
			Msg("game replayed")
	}
	log.Info().Int("games", count).Int("skipped", skipped).Msg("replay finished")
	return nil
}
