// fairychess plays chess variants with fairy pieces: it counts move trees,
// lets the computer play itself and serves games over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/config"
	"github.com/lgbarn/fairychess-go/internal/httpx"
	"github.com/lgbarn/fairychess-go/internal/logging"
	"github.com/lgbarn/fairychess-go/internal/search"
	"github.com/lgbarn/fairychess-go/internal/session"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

const programVersion = "0.1.0"

func main() {
	flag.Usage = usage
	flag.Parse()
	collectSetFlags()

	if *help {
		usage()
		os.Exit(0)
	}

	if *version {
		fmt.Printf("fairychess version %s\n", programVersion)
		os.Exit(0)
	}

	cfg := loadConfig()

	// Set up logging and output files
	setupLogFile(cfg)
	setupOutputFile(cfg)
	if err := logging.FromConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}

	cat, reg, err := loadData(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := newRand(cfg.Search.Seed)
	start := startOptions(rng)

	switch {
	case *listVariants:
		err = writeVariants(cfg.OutputFile, reg)
	case *perftDepth > 0:
		err = perftCommand(cfg.OutputFile, reg, cat, start)
	case *selfPlay > 0:
		err = selfPlayCommand(ctx, cfg, reg, cat, newSearcher(cfg.Search, rng), start)
	case *replayFile != "":
		err = replayCommand(cfg, reg, cat)
	case *serve:
		err = serveCommand(ctx, cfg, reg, cat, newSearcher(cfg.Search, rng), start)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("fairychess failed")
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, if any, and applies the
// command-line flags over it.
func loadConfig() *config.Config {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg = applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// setupLogFile configures the log file based on command-line flags.
func setupLogFile(cfg *config.Config) {
	if *logFile == "" {
		return
	}
	file, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G302: 0644 is appropriate for user-created log files
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file %s: %v\n", *logFile, err)
		os.Exit(1)
	}
	cfg.LogFile = file
}

// setupOutputFile configures the output file based on command-line flags.
func setupOutputFile(cfg *config.Config) {
	if *outputFile == "" {
		return
	}
	file, err := os.Create(*outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file %s: %v\n", *outputFile, err)
		os.Exit(1)
	}
	cfg.SetOutput(file)
}

// loadData returns the piece catalog and variant table, from the files
// named in cfg or the built-in ones.
func loadData(cfg *config.Config) (*catalog.Catalog, *variant.Registry, error) {
	cat, err := catalog.Default()
	if cfg.Data.CatalogFile != "" {
		cat, err = loadFile(cfg.Data.CatalogFile, catalog.Load)
	}
	if err != nil {
		return nil, nil, err
	}

	var reg *variant.Registry
	switch {
	case cfg.Data.VariantsFile != "":
		reg, err = loadFile(cfg.Data.VariantsFile, func(r io.Reader) (*variant.Registry, error) {
			return variant.Load(r, cat)
		})
	case cfg.Data.CatalogFile != "":
		reg, err = variant.LoadBuiltin(cat)
	default:
		reg, err = variant.Default()
	}
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Int("kinds", cat.Len()).Int("variants", reg.Len()).Msg("data loaded")
	return cat, reg, nil
}

func loadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := load(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// newRand seeds the random source; seed 0 seeds from the clock.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// startOptions builds the variant start options from the flags.
func startOptions(rng *rand.Rand) []variant.StartOption {
	opts := []variant.StartOption{variant.WithRand(rng)}
	if *startNumber >= 0 {
		opts = append(opts, variant.WithPosition(*startNumber))
	}
	return opts
}

// newSearcher builds the computer player from the search configuration.
func newSearcher(cfg config.SearchConfig, rng *rand.Rand) *search.Searcher {
	opts := []search.Option{
		search.WithDepth(cfg.Depth),
		search.WithTolerance(cfg.Tolerance),
		search.WithCacheSize(cfg.CacheSize),
		search.WithRand(rng),
	}
	if cfg.Workers > 0 {
		opts = append(opts, search.WithWorkers(cfg.Workers))
	}
	return search.New(opts...)
}

// writeVariants lists the variants in table order.
func writeVariants(w io.Writer, reg *variant.Registry) error {
	for _, v := range reg.Variants() {
		var notes []string
		if v.Castling {
			notes = append(notes, "castling")
		}
		if v.Random != "" {
			notes = append(notes, v.Random+" start")
		}
		if v.Asym {
			notes = append(notes, "asymmetric")
		}
		if _, err := fmt.Fprintf(w, "%-16s %-28s %2dx%-2d %v\n", v.ID, v.Name, v.Size, v.Size, notes); err != nil {
			return err
		}
	}
	return nil
}

// serveCommand serves one session over HTTP until interrupted.
func serveCommand(ctx context.Context, cfg *config.Config, reg *variant.Registry, cat *catalog.Catalog,
	searcher *search.Searcher, start []variant.StartOption) error {
	sess := session.New(reg, cat,
		session.WithSearcher(searcher),
		session.WithStartOptions(start...),
		session.WithSettings(session.Settings{
			Mode:      session.PvC,
			Player:    chess.White,
			Level:     cfg.Search.Level,
			Foresight: cfg.Search.Foresight,
		}))
	srv := httpx.New(sess,
		httpx.WithSnapshotFile(cfg.Data.SnapshotFile),
		httpx.WithAllowedOrigins(cfg.Server.AllowedOrigins))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func usage() {
	fmt.Fprintf(os.Stderr, `fairychess version %s

Usage: fairychess [options] -list | -perft n | -selfplay n | -replay file | -serve

Commands:
  -list           List the variants
  -perft n        Count the positions reachable in n plies
  -selfplay n     Let the computer play n games against itself
  -replay file    Check the game records in file and write them again
  -serve          Serve the HTTP and websocket interface

Options:
`, programVersion)
	flag.PrintDefaults()
}
