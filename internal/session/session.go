// Package session drives one game from variant selection to game over:
// it holds the player settings, forwards moves and choices to the engine
// and plays the computer's turns.
package session

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/search"
	"github.com/lgbarn/fairychess-go/internal/snapshot"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

// State is the stage a session is in.
type State int

const (
	VariantSelect State = iota
	ColorModeSelect
	InPlay
	GameOver
)

var stateNames = [...]string{"variant select", "colour and mode select", "in play", "game over"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(strings.ReplaceAll(s.String(), " ", "_")), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, reading the names
// MarshalText writes.
func (s *State) UnmarshalText(text []byte) error {
	name := strings.ReplaceAll(string(text), "_", " ")
	for i, n := range stateNames {
		if n == name {
			*s = State(i)
			return nil
		}
	}
	return errors.Wrapf(errors.ErrInvalidConfig, "session state %q", text)
}

// Mode says who plays the two sides.
type Mode string

const (
	PvP Mode = "pvp" // two humans
	PvC Mode = "pvc" // a human against the computer
)

// ParseMode parses "pvp" or "pvc", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case PvP, PvC:
		return m, nil
	}
	return "", errors.Wrapf(errors.ErrInvalidConfig, "mode %q", s)
}

// Settings are the choices made before a game starts.
type Settings struct {
	Mode      Mode
	Player    chess.Colour // the human's colour against the computer
	Level     int          // computer strength, 0 in PvP
	Foresight bool         // computer searches ahead instead of one ply
}

// Session is one player's view of the application. A Session is not safe
// for concurrent use.
type Session struct {
	reg      *variant.Registry
	cat      *catalog.Catalog
	searcher *search.Searcher
	start    []variant.StartOption

	state    State
	variant  *variant.Variant
	settings Settings
	game     *engine.Game
}

// Option configures a Session.
type Option func(*Session)

// WithSearcher sets the searcher used for computer turns.
func WithSearcher(s *search.Searcher) Option {
	return func(sess *Session) {
		sess.searcher = s
	}
}

// WithStartOptions sets the options every new game starts with.
func WithStartOptions(opts ...variant.StartOption) Option {
	return func(sess *Session) {
		sess.start = opts
	}
}

// WithSettings sets the settings a new session begins with.
func WithSettings(s Settings) Option {
	return func(sess *Session) {
		sess.settings = s
	}
}

// New creates a session waiting for a variant to be chosen.
func New(reg *variant.Registry, cat *catalog.Catalog, opts ...Option) *Session {
	s := &Session{
		reg:      reg,
		cat:      cat,
		state:    VariantSelect,
		settings: Settings{Mode: PvP, Player: chess.White},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.searcher == nil {
		s.searcher = search.New()
	}
	return s
}

// State returns the current stage.
func (s *Session) State() State {
	return s.state
}

// Settings returns the current settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// Variant returns the chosen variant, nil before one is chosen.
func (s *Session) Variant() *variant.Variant {
	return s.variant
}

// Game returns the game in progress, nil before the game starts.
func (s *Session) Game() *engine.Game {
	return s.game
}

// Variants lists the variants that can be chosen.
func (s *Session) Variants() []*variant.Variant {
	return s.reg.Variants()
}

func (s *Session) expect(states ...State) error {
	for _, st := range states {
		if s.state == st {
			return nil
		}
	}
	return errors.Wrapf(errors.ErrWrongState, "session is in %s", s.state)
}

// SelectVariant chooses the variant to play.
func (s *Session) SelectVariant(id string) error {
	if err := s.expect(VariantSelect); err != nil {
		return err
	}
	v, err := s.reg.Lookup(id)
	if err != nil {
		return err
	}
	s.variant = v
	s.state = ColorModeSelect
	return nil
}

// Back returns from colour and mode selection to variant selection.
func (s *Session) Back() error {
	if err := s.expect(ColorModeSelect); err != nil {
		return err
	}
	s.variant = nil
	s.state = VariantSelect
	return nil
}

// SetPlayer sets the human's colour.
func (s *Session) SetPlayer(c chess.Colour) error {
	if err := s.expect(ColorModeSelect); err != nil {
		return err
	}
	s.settings.Player = c
	return nil
}

// SetMode switches between two humans and playing the computer. Choosing
// the computer starts at the lowest level unless a level is already set.
func (s *Session) SetMode(m Mode) error {
	if err := s.expect(ColorModeSelect); err != nil {
		return err
	}
	s.settings.Mode = m
	switch {
	case m == PvP:
		s.settings.Level = 0
	case s.settings.Level < search.MinLevel:
		s.settings.Level = search.MinLevel
	}
	return nil
}

// SetLevel sets the computer's strength. It is only meaningful against the
// computer.
func (s *Session) SetLevel(level int) error {
	if err := s.expect(ColorModeSelect); err != nil {
		return err
	}
	if s.settings.Mode != PvC {
		return errors.Wrap(errors.ErrWrongState, "level applies to games against the computer")
	}
	if level < search.MinLevel || level > search.MaxLevel {
		return errors.Wrapf(errors.ErrInvalidConfig, "level %d outside [%d, %d]", level, search.MinLevel, search.MaxLevel)
	}
	s.settings.Level = level
	return nil
}

// SetForesight turns the computer's lookahead on or off.
func (s *Session) SetForesight(on bool) error {
	if err := s.expect(ColorModeSelect); err != nil {
		return err
	}
	s.settings.Foresight = on
	return nil
}

// Start begins the game with the chosen variant and settings.
func (s *Session) Start() error {
	if err := s.expect(ColorModeSelect); err != nil {
		return err
	}
	if s.settings.Mode == PvC && s.settings.Level < search.MinLevel {
		s.settings.Level = search.MinLevel
	}
	g, err := engine.NewGame(s.variant, s.cat, s.start...)
	if err != nil {
		return err
	}
	s.game = g
	s.sync()
	log.Info().
		Str("variant", s.variant.ID).
		Str("mode", string(s.settings.Mode)).
		Int("level", s.settings.Level).
		Bool("foresight", s.settings.Foresight).
		Msg("game started")
	return nil
}

// Reset abandons the game and returns to variant selection. Settings are
// kept.
func (s *Session) Reset() {
	s.state = VariantSelect
	s.variant = nil
	s.game = nil
}

// sync moves between InPlay and GameOver to follow the engine.
func (s *Session) sync() {
	if s.game.Phase() == engine.GameOver {
		if s.state != GameOver {
			log.Info().
				Int("ply", s.game.Ply()).
				Bool("checkmate", s.game.IsCheckmate()).
				Bool("stalemate", s.game.IsStalemate()).
				Msg("game over")
		}
		s.state = GameOver
		return
	}
	s.state = InPlay
}

// ComputerToMove reports whether it is the computer's turn.
func (s *Session) ComputerToMove() bool {
	return s.state == InPlay &&
		s.settings.Mode == PvC &&
		s.game.Phase() == engine.InPlay &&
		s.game.Turn() != s.settings.Player
}

// human checks that a human may act now.
func (s *Session) human() error {
	if err := s.expect(InPlay, GameOver); err != nil {
		return err
	}
	if s.ComputerToMove() {
		return errors.Wrapf(errors.ErrNotYourTurn, "%s is played by the computer", s.game.Turn())
	}
	return nil
}

func (s *Session) after(out engine.Outcome, err error) (engine.Outcome, error) {
	if err != nil {
		return out, err
	}
	s.sync()
	return out, nil
}

// LegalMoves returns the destinations of the piece on pos.
func (s *Session) LegalMoves(pos chess.Position) (chess.PositionSet, error) {
	if err := s.expect(InPlay, GameOver); err != nil {
		return nil, err
	}
	return s.game.LegalMoves(pos)
}

// Move plays a human move.
func (s *Session) Move(from, to chess.Position) (engine.Outcome, error) {
	if err := s.human(); err != nil {
		return engine.Outcome{}, err
	}
	return s.after(s.game.ApplyMove(from, to))
}

// Castle castles the side to move towards side.
func (s *Session) Castle(side chess.Side) (engine.Outcome, error) {
	if err := s.human(); err != nil {
		return engine.Outcome{}, err
	}
	return s.after(s.game.AttemptCastle(side))
}

// ConfirmCastle answers the castling question of an ambiguous king move.
func (s *Session) ConfirmCastle(yes bool) (engine.Outcome, error) {
	if err := s.expect(InPlay); err != nil {
		return engine.Outcome{}, err
	}
	return s.after(s.game.ConfirmCastle(yes))
}

// ChoosePromotion finishes a pending promotion.
func (s *Session) ChoosePromotion(k chess.Kind) (engine.Outcome, error) {
	if err := s.expect(InPlay); err != nil {
		return engine.Outcome{}, err
	}
	return s.after(s.game.ChoosePromotion(k))
}

// Fire shoots the pending archer at target.
func (s *Session) Fire(target chess.Position) (engine.Outcome, error) {
	if err := s.expect(InPlay); err != nil {
		return engine.Outcome{}, err
	}
	return s.after(s.game.Fire(target))
}

// HoldFire finishes a pending archer move without shooting.
func (s *Session) HoldFire() (engine.Outcome, error) {
	if err := s.expect(InPlay); err != nil {
		return engine.Outcome{}, err
	}
	return s.after(s.game.HoldFire())
}

// Undo takes back a ply. Against the computer it takes back the
// computer's reply too, so that the human is to move again.
func (s *Session) Undo() error {
	if err := s.expect(InPlay, GameOver); err != nil {
		return err
	}
	if err := s.game.Undo(); err != nil {
		return err
	}
	if s.settings.Mode == PvC && s.game.Turn() != s.settings.Player && s.game.CanUndo() {
		if err := s.game.Undo(); err != nil {
			return err
		}
	}
	s.sync()
	return nil
}

// Redo replays an undone ply.
func (s *Session) Redo() error {
	if err := s.expect(InPlay, GameOver); err != nil {
		return err
	}
	if err := s.game.Redo(); err != nil {
		return err
	}
	s.sync()
	return nil
}

// PlayComputer computes and plays the computer's move. The computer always
// promotes to the variant's last promotion kind.
func (s *Session) PlayComputer(ctx context.Context) (search.Decision, error) {
	if err := s.expect(InPlay); err != nil {
		return search.Decision{}, err
	}
	if !s.ComputerToMove() {
		return search.Decision{}, errors.Wrapf(errors.ErrNotYourTurn, "%s is played by a human", s.game.Turn())
	}
	return s.play(ctx, s.game.Turn())
}

// Hint computes, without playing it, the move the computer would make for
// the side to move.
func (s *Session) Hint(ctx context.Context) (search.Decision, error) {
	if err := s.expect(InPlay); err != nil {
		return search.Decision{}, err
	}
	return s.searcher.ComputeMove(ctx, s.game, s.game.Turn(), s.level(), s.settings.Foresight)
}

// PlayAuto plays the side to move with the computer, whoever controls it.
// It drives self-play.
func (s *Session) PlayAuto(ctx context.Context) (search.Decision, error) {
	if err := s.expect(InPlay); err != nil {
		return search.Decision{}, err
	}
	return s.play(ctx, s.game.Turn())
}

func (s *Session) level() int {
	if s.settings.Level < search.MinLevel {
		return search.MinLevel
	}
	return s.settings.Level
}

func (s *Session) play(ctx context.Context, c chess.Colour) (search.Decision, error) {
	d, err := s.searcher.ComputeMove(ctx, s.game, c, s.level(), s.settings.Foresight)
	if err != nil {
		return search.Decision{}, err
	}
	m := d.Move
	m.Promotion = ""
	if _, err := s.game.Play(m); err != nil {
		return search.Decision{}, err
	}
	if d.Promotion != "" {
		d.Promotion = s.variant.Promote[len(s.variant.Promote)-1]
	}
	s.sync()
	return d, nil
}

// Save captures the game and settings.
func (s *Session) Save() (*snapshot.Snapshot, error) {
	if err := s.expect(InPlay, GameOver); err != nil {
		return nil, err
	}
	return snapshot.Capture(s.game, snapshot.Settings{
		Mode:      string(s.settings.Mode),
		Player:    s.settings.Player,
		Level:     s.settings.Level,
		Foresight: s.settings.Foresight,
	}), nil
}

// Resume replaces whatever the session holds with a saved game. On failure
// the session is left unchanged.
func (s *Session) Resume(snap *snapshot.Snapshot) error {
	mode, err := ParseMode(snap.Mode)
	if err != nil {
		return errors.Wrap(errors.ErrSnapshotUnavailable, err.Error())
	}
	g, err := snap.Resume(s.reg, s.cat)
	if err != nil {
		return err
	}
	v, err := s.reg.Lookup(snap.Variant)
	if err != nil {
		return err
	}
	s.variant = v
	s.game = g
	s.settings = Settings{Mode: mode, Player: snap.Player, Level: snap.Level, Foresight: snap.Foresight}
	s.sync()
	log.Info().Str("variant", v.ID).Int("ply", g.Ply()).Msg("game resumed")
	return nil
}
