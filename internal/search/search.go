// Package search chooses moves for the computer player: a greedy one-ply
// pick or an alpha-beta lookahead over the static evaluator.
package search

import (
	"context"
	"math"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/hashing"
	"github.com/lgbarn/fairychess-go/internal/worker"
)

// Level bounds and search defaults.
const (
	MinLevel         = 1
	MaxLevel         = 5
	DefaultDepth     = 2
	DefaultTolerance = 4
	DefaultCacheSize = 1 << 16
)

// mateScore outweighs any static evaluation.
const mateScore = 1e6

// Decision is a chosen move with its score.
type Decision struct {
	engine.Move
	Score float64
	Nodes uint64 // positions visited
}

// Searcher holds search settings. A Searcher may be reused but not shared
// between goroutines: its random source is not synchronised.
type Searcher struct {
	depth     int
	tolerance float64
	workers   int
	cacheSize int
	rng       *rand.Rand
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithDepth sets the lookahead depth in plies for foresight searches.
func WithDepth(depth int) Option {
	return func(s *Searcher) {
		if depth >= 1 {
			s.depth = depth
		}
	}
}

// WithTolerance sets how far below the best score a greedy pick may be.
func WithTolerance(tol float64) Option {
	return func(s *Searcher) {
		if tol >= 0 {
			s.tolerance = tol
		}
	}
}

// WithWorkers sets the number of goroutines scoring root moves.
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		if n >= 1 {
			s.workers = n
		}
	}
}

// WithCacheSize caps the evaluation cache; 0 means unlimited.
func WithCacheSize(n int) Option {
	return func(s *Searcher) {
		if n >= 0 {
			s.cacheSize = n
		}
	}
}

// WithRand sets the random source for coefficients and tie-breaks.
func WithRand(r *rand.Rand) Option {
	return func(s *Searcher) {
		s.rng = r
	}
}

// New creates a Searcher. Defaults: depth 2, tolerance 4, one worker per
// CPU.
func New(opts ...Option) *Searcher {
	s := &Searcher{
		depth:     DefaultDepth,
		tolerance: DefaultTolerance,
		workers:   runtime.NumCPU(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeMove picks a move for colour c with a default Searcher.
func ComputeMove(ctx context.Context, g *engine.Game, c chess.Colour, level int, foresight bool) (Decision, error) {
	return New().ComputeMove(ctx, g, c, level, foresight)
}

// ComputeMove picks a move for colour c, who must be to move in g. With
// foresight it searches the configured depth with alpha-beta; otherwise it
// scores each move one ply deep and picks at random among those within
// the tolerance of the best. g itself is left untouched.
func (s *Searcher) ComputeMove(ctx context.Context, g *engine.Game, c chess.Colour, level int, foresight bool) (Decision, error) {
	if level < MinLevel || level > MaxLevel {
		return Decision{}, errors.Wrapf(errors.ErrInvalidConfig, "level %d outside [%d, %d]", level, MinLevel, MaxLevel)
	}
	switch g.Phase() {
	case engine.PromotionPending, engine.CastlingConfirmPending, engine.FirePending:
		return Decision{}, errors.Wrapf(errors.ErrPendingChoice, "search at ply %d", g.Ply())
	}
	if c != g.Turn() {
		return Decision{}, errors.Wrapf(errors.ErrNotYourTurn, "%s searched with %s to move", c, g.Turn())
	}

	moves, err := g.Moves(c)
	if err != nil {
		return Decision{}, err
	}
	if len(moves) == 0 {
		return Decision{}, exhausted(g)
	}
	if g.Phase() == engine.GameOver || g.IsCheckmate() || g.IsStalemate() {
		return Decision{}, errors.Wrapf(errors.ErrInvariant, "%d legal moves in a finished game", len(moves))
	}

	r := &run{
		ctx:   ctx,
		eval:  Evaluator{Level: level, Coef: DrawCoefficients(s.rng, level)},
		root:  c,
		cache: hashing.NewThreadSafeEvalCache(s.cacheSize),
	}
	depth, tol := 0, s.tolerance
	if foresight {
		depth, tol = s.depth-1, 0
	}

	results, err := s.scoreRoot(ctx, g, moves, func(game *engine.Game, m engine.Move) (float64, uint64, error) {
		if _, err := game.Play(m); err != nil {
			return 0, 0, err
		}
		var nodes uint64
		score, err := r.alphaBeta(game, depth, math.Inf(-1), math.Inf(1), &nodes)
		if undoErr := game.Undo(); undoErr != nil {
			return 0, nodes, undoErr
		}
		return score, nodes, err
	})
	if err != nil {
		return Decision{}, err
	}

	d := s.pick(results, tol)
	hits, misses := r.cache.Stats()
	log.Debug().
		Str("colour", c.String()).
		Int("level", level).
		Bool("foresight", foresight).
		Str("move", d.Move.String()).
		Float64("score", d.Score).
		Uint64("nodes", d.Nodes).
		Int("cache_hits", hits).
		Int("cache_misses", misses).
		Msg("computed move")
	return d, nil
}

// exhausted explains why the side to move has no move.
func exhausted(g *engine.Game) error {
	switch {
	case g.IsCheckmate():
		return errors.Wrap(errors.ErrNoLegalMoves, "checkmate")
	case g.IsStalemate():
		return errors.Wrap(errors.ErrNoLegalMoves, "stalemate")
	}
	return errors.Wrap(errors.ErrInvariant, "no legal moves without checkmate or stalemate")
}

// scoreRoot scores every root move on a pool of workers, each with its own
// copy of the game. Results come back in move order.
func (s *Searcher) scoreRoot(ctx context.Context, g *engine.Game, moves []engine.Move,
	score func(*engine.Game, engine.Move) (float64, uint64, error)) ([]worker.Result, error) {
	var games []*engine.Game
	pool := worker.NewPool(func(id int, t worker.Task) worker.Result {
		sc, nodes, err := score(games[id], t.Move)
		return worker.Result{Move: t.Move, Index: t.Index, Score: sc, Nodes: nodes, Err: err}
	}, worker.WithWorkers(min(s.workers, len(moves))), worker.WithBufferSize(len(moves)))
	games = make([]*engine.Game, pool.NumWorkers())
	for i := range games {
		games[i] = g.Clone()
	}
	pool.Start()
	stop := context.AfterFunc(ctx, pool.Stop)
	defer stop()

	for i, m := range moves {
		task := worker.Task{Move: m, Index: i}
		if !pool.TrySubmit(task) {
			if pool.IsStopped() {
				break // cancelled; the rest would be drained unscored
			}
			pool.Submit(task)
		}
	}
	pool.Close()

	results := make([]worker.Result, 0, len(moves))
	var firstErr error
	for res := range pool.Results() {
		if res.Err != nil && firstErr == nil {
			firstErr = res.Err
		}
		results = append(results, res)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	slices.SortFunc(results, func(a, b worker.Result) int { return a.Index - b.Index })
	return results, nil
}

// pick chooses uniformly among the results within tol of the best.
func (s *Searcher) pick(results []worker.Result, tol float64) Decision {
	best := math.Inf(-1)
	var nodes uint64
	for _, r := range results {
		best = max(best, r.Score)
		nodes += r.Nodes
	}
	var candidates []worker.Result
	for _, r := range results {
		if r.Score >= best-tol {
			candidates = append(candidates, r)
		}
	}
	choice := candidates[intn(s.rng, len(candidates))]
	return Decision{Move: choice.Move, Score: choice.Score, Nodes: nodes}
}

// run is the state shared by one decision's workers.
type run struct {
	ctx   context.Context
	eval  Evaluator
	root  chess.Colour
	cache *hashing.ThreadSafeEvalCache
}

// alphaBeta returns the minimax value of g from the root colour's side,
// searching depth more plies. Finished games score as mates or draws; a
// quicker mate scores higher.
func (r *run) alphaBeta(g *engine.Game, depth int, alpha, beta float64, nodes *uint64) (float64, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	*nodes++

	switch {
	case g.IsCheckmate():
		if g.Turn() == r.root {
			return -mateScore - float64(depth), nil
		}
		return mateScore + float64(depth), nil
	case g.IsStalemate():
		return 0, nil
	}
	if depth == 0 {
		return r.evaluate(g)
	}

	moves, err := g.Moves(g.Turn())
	if err != nil {
		return 0, err
	}
	if len(moves) == 0 {
		return r.evaluate(g)
	}
	maximizing := g.Turn() == r.root
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for _, m := range moves {
		if _, err := g.Play(m); err != nil {
			return 0, err
		}
		score, err := r.alphaBeta(g, depth-1, alpha, beta, nodes)
		if undoErr := g.Undo(); undoErr != nil {
			return 0, undoErr
		}
		if err != nil {
			return 0, err
		}

		if maximizing {
			best = max(best, score)
			alpha = max(alpha, best)
		} else {
			best = min(best, score)
			beta = min(beta, best)
		}
		if alpha >= beta {
			break
		}
	}
	return best, nil
}

// evaluate is the cached static evaluation for the root colour.
func (r *run) evaluate(g *engine.Game) (float64, error) {
	sig := hashing.SignatureOf(g, r.root)
	if score, ok := r.cache.Lookup(sig); ok {
		return score, nil
	}
	score, err := r.eval.Evaluate(g, r.root)
	if err != nil {
		return 0, err
	}
	r.cache.Store(sig, score)
	log.Trace().Int("ply", g.Ply()).Float64("score", score).Msg("evaluate")
	return score, nil
}
