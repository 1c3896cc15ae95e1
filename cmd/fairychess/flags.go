package main

import (
	"flag"

	"github.com/lgbarn/fairychess-go/internal/config"
)

// Command-line flags
var (
	// Configuration and data files
	configFile   = flag.String("config", "", "YAML configuration file")
	variantsFile = flag.String("variants", "", "Variant table replacing the built-in one")
	catalogFile  = flag.String("catalog", "", "Piece catalog replacing the built-in one")
	snapshotFile = flag.String("snapshot", "", "File the server saves and loads sessions with")

	// Commands
	listVariants = flag.Bool("list", false, "List the variants and exit")
	perftDepth   = flag.Int("perft", 0, "Count the positions reachable in n plies")
	divide       = flag.Bool("divide", false, "Break -perft counts down by first move")
	crossCheck   = flag.Bool("crosscheck", false, "Compare -perft with dragontoothmg (standard chess only)")
	selfPlay     = flag.Int("selfplay", 0, "Let the computer play n games against itself")
	serve        = flag.Bool("serve", false, "Serve the HTTP and websocket interface")
	replayFile   = flag.String("replay", "", "Check the game records in a file and write them again")
	selectTags   = flag.String("select", "", "Replay only games whose tags match, e.g. \"Variant = gardner; Round > 2\"")

	// Game setup
	variantID   = flag.String("variant", "standard", "Variant to play")
	fenString   = flag.String("fen", "", "Start from a FEN position (standard pieces)")
	startNumber = flag.Int("position", -1, "Chess960 start position 0-959; -1 draws one")
	maxPlies    = flag.Int("maxply", 300, "Adjudicate self-play games as drawn after n plies")
	showBoard   = flag.Bool("board", false, "Print the final board after each self-play game")

	// Computer player
	level     = flag.Int("level", 3, "Evaluation level 1-5")
	foresight = flag.Bool("foresight", false, "Search ahead with alpha-beta instead of the greedy pick")
	depth     = flag.Int("depth", 2, "Foresight depth in plies")
	tolerance = flag.Float64("tolerance", 4, "Greedy picks may score this far below the best")
	workers   = flag.Int("workers", 0, "Goroutines scoring moves; 0 uses one per CPU")
	seed      = flag.Uint64("seed", 0, "Random seed; 0 seeds from the clock")

	// Server
	addr = flag.String("addr", "localhost:8080", "Listen address for -serve")

	// Logging
	logLevel = flag.String("loglevel", "info", "Log level: trace, debug, info, warn, error")
	jsonLogs = flag.Bool("jsonlog", false, "Write logs as JSON")
	logFile  = flag.String("l", "", "Write logs to this file instead of stderr")

	// Output
	outputFile = flag.String("o", "", "Write games to this file instead of stdout")
	lineLength = flag.Int("w", 80, "Maximum line length of move text")
	jsonOutput = flag.Bool("J", false, "Write games as JSON")

	// Help
	help    = flag.Bool("h", false, "Show help")
	version = flag.Bool("version", false, "Show version")
)

// setFlags holds the names of the flags given on the command line. Only
// those override the configuration file.
var setFlags = map[string]bool{}

func collectSetFlags() {
	flag.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
}

// applyFlags applies command-line flags over cfg.
func applyFlags(cfg *config.Config) *config.Config {
	b := config.From(cfg)
	applySearchFlags(b)
	applyLogFlags(b)
	applyServerFlags(b)
	applyDataFlags(b)
	return b.Build()
}

// applySearchFlags applies the computer player flags.
func applySearchFlags(b *config.ConfigBuilder) {
	if setFlags["level"] {
		b.WithLevel(*level)
	}
	if setFlags["foresight"] || setFlags["depth"] {
		on := b.Build().Search.Foresight
		if setFlags["foresight"] {
			on = *foresight
		}
		d := 0
		if setFlags["depth"] {
			d = *depth
		}
		b.WithForesight(on, d)
	}
	if setFlags["tolerance"] {
		b.WithTolerance(*tolerance)
	}
	if setFlags["workers"] {
		b.WithWorkers(*workers)
	}
	if setFlags["seed"] {
		b.WithSeed(*seed)
	}
}

// applyLogFlags applies the logging flags.
func applyLogFlags(b *config.ConfigBuilder) {
	if setFlags["loglevel"] {
		b.WithLogLevel(*logLevel)
	}
	if setFlags["jsonlog"] {
		b.WithJSONLogs(*jsonLogs)
	}
}

// applyServerFlags applies the server flags.
func applyServerFlags(b *config.ConfigBuilder) {
	if setFlags["addr"] {
		b.WithAddr(*addr)
	}
}

// applyDataFlags applies the data file flags.
func applyDataFlags(b *config.ConfigBuilder) {
	if setFlags["variants"] {
		b.WithVariantsFile(*variantsFile)
	}
	if setFlags["catalog"] {
		b.WithCatalogFile(*catalogFile)
	}
	if setFlags["snapshot"] {
		b.WithSnapshotFile(*snapshotFile)
	}
}
