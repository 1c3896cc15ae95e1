package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/output"
	"github.com/lgbarn/fairychess-go/internal/search"
	"github.com/lgbarn/fairychess-go/internal/session"
	"github.com/lgbarn/fairychess-go/internal/snapshot"
)

// StateResponse is the session and game state sent after every change and
// on the websocket.
type StateResponse struct {
	Session        session.State     `json:"session"`
	Variant        string            `json:"variant,omitempty"`
	Settings       SettingsBody      `json:"settings"`
	ComputerToMove bool              `json:"computerToMove"`
	Game           *output.JSONState `json:"game,omitempty"`
}

// SettingsBody carries the pre-game settings. Absent fields are left
// unchanged.
type SettingsBody struct {
	Mode      string `json:"mode,omitempty"`
	Player    string `json:"player,omitempty"`
	Level     *int   `json:"level,omitempty"`
	Foresight *bool  `json:"foresight,omitempty"`
}

// ActionResponse reports one operation: what it did and the state after.
type ActionResponse struct {
	Outcome *OutcomeBody   `json:"outcome,omitempty"`
	Reply   *DecisionBody  `json:"reply,omitempty"` // the computer's answer
	Moves   []string       `json:"moves,omitempty"`
	State   *StateResponse `json:"state,omitempty"`
}

// OutcomeBody is what a move or choice did.
type OutcomeBody struct {
	Phase     string             `json:"phase"`
	Captured  []output.JSONPiece `json:"captured,omitempty"`
	Castled   bool               `json:"castled,omitempty"`
	Promotion string             `json:"promotion,omitempty"`
	Fired     string             `json:"fired,omitempty"`
}

// DecisionBody is a computed move.
type DecisionBody struct {
	output.JSONMove
	Score float64 `json:"score"`
	Nodes uint64  `json:"nodes"`
}

type variantBody struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Size int    `json:"size,omitempty"`
}

type moveBody struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type sideBody struct {
	Side string `json:"side"` // "kingside" or "queenside"
}

type confirmBody struct {
	Castle bool `json:"castle"`
}

type promoteBody struct {
	Kind string `json:"kind"`
}

type fireBody struct {
	Target string `json:"target"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusOf maps an error to the HTTP status reported for it.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errors.ErrIllegalMove),
		errors.Is(err, errors.ErrEmptySquare),
		errors.Is(err, errors.ErrInvalidConfig),
		errors.Is(err, errors.ErrUnknownKind),
		errors.Is(err, errors.ErrInvalidVariant),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrSnapshotUnavailable):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrWrongState),
		errors.Is(err, errors.ErrNotYourTurn),
		errors.Is(err, errors.ErrPendingChoice),
		errors.Is(err, errors.ErrNoPendingChoice),
		errors.Is(err, errors.ErrGameOver),
		errors.Is(err, errors.ErrHistoryStart),
		errors.Is(err, errors.ErrHistoryEnd),
		errors.Is(err, errors.ErrNoLegalMoves):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func parseSquare(s string) (chess.Position, error) {
	p, err := chess.ParsePosition(s)
	if err != nil {
		return chess.Position{}, fmt.Errorf("%w: square %q", errBadRequest, s)
	}
	return p, nil
}

// stateLocked builds the state view. The caller holds s.mu.
func (s *Server) stateLocked() *StateResponse {
	set := s.sess.Settings()
	level := set.Level
	foresight := set.Foresight
	st := &StateResponse{
		Session: s.sess.State(),
		Settings: SettingsBody{
			Mode:      string(set.Mode),
			Player:    colourName(set.Player),
			Level:     &level,
			Foresight: &foresight,
		},
	}
	if v := s.sess.Variant(); v != nil {
		st.Variant = v.ID
	}
	if g := s.sess.Game(); g != nil {
		st.Game = output.StateToJSON(g)
		st.ComputerToMove = s.sess.ComputerToMove()
	}
	return st
}

func colourName(c chess.Colour) string {
	text, _ := c.MarshalText()
	return string(text)
}

// act runs fn on the session, then answers with the new state and pushes
// it to websocket clients.
func (s *Server) act(w http.ResponseWriter, fn func(*ActionResponse) error) {
	s.mu.Lock()
	resp := &ActionResponse{}
	err := fn(resp)
	resp.State = s.stateLocked()
	s.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.broadcast(resp.State)
	writeJSON(w, http.StatusOK, resp)
}

// move runs a human move or choice and lets the computer answer.
func (s *Server) move(w http.ResponseWriter, r *http.Request, fn func() (engine.Outcome, error)) {
	s.act(w, func(resp *ActionResponse) error {
		out, err := fn()
		if err != nil {
			return err
		}
		resp.Outcome = outcomeBody(out)
		return s.replyLocked(r.Context(), resp)
	})
}

// replyLocked plays the computer's turn if it is due. The caller holds s.mu.
func (s *Server) replyLocked(ctx context.Context, resp *ActionResponse) error {
	if !s.autoReply || !s.sess.ComputerToMove() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.computerTimeout)
	defer cancel()
	d, err := s.sess.PlayComputer(ctx)
	if err != nil {
		return err
	}
	resp.Reply = decisionBody(d)
	return nil
}

func outcomeBody(out engine.Outcome) *OutcomeBody {
	body := &OutcomeBody{
		Phase:     out.Phase.String(),
		Castled:   out.Castled,
		Promotion: string(out.Promotion),
	}
	for _, pc := range out.Captured {
		body.Captured = append(body.Captured, output.JSONPiece{Kind: string(pc.Kind), Colour: colourName(pc.Colour), Count: pc.Count})
	}
	if out.Fired != nil {
		body.Fired = out.Fired.String()
	}
	return body
}

func decisionBody(d search.Decision) *DecisionBody {
	return &DecisionBody{JSONMove: output.MoveToJSON(d.Move), Score: d.Score, Nodes: d.Nodes}
}

func (s *Server) variantsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	vs := s.sess.Variants()
	s.mu.Unlock()

	out := make([]variantBody, 0, len(vs))
	for _, v := range vs {
		out = append(out, variantBody{ID: v.ID, Name: v.Name, Size: v.Size})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.stateLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) selectVariantHandler(w http.ResponseWriter, r *http.Request) {
	var body variantBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	s.act(w, func(*ActionResponse) error {
		return s.sess.SelectVariant(body.ID)
	})
}

func (s *Server) backHandler(w http.ResponseWriter, r *http.Request) {
	s.act(w, func(*ActionResponse) error {
		return s.sess.Back()
	})
}

func (s *Server) settingsHandler(w http.ResponseWriter, r *http.Request) {
	var body SettingsBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	s.act(w, func(*ActionResponse) error {
		if body.Mode != "" {
			m, err := session.ParseMode(body.Mode)
			if err != nil {
				return err
			}
			if err := s.sess.SetMode(m); err != nil {
				return err
			}
		}
		if body.Player != "" {
			c, err := chess.ParseColour(body.Player)
			if err != nil {
				return fmt.Errorf("%w: %v", errBadRequest, err)
			}
			if err := s.sess.SetPlayer(c); err != nil {
				return err
			}
		}
		if body.Level != nil {
			if err := s.sess.SetLevel(*body.Level); err != nil {
				return err
			}
		}
		if body.Foresight != nil {
			return s.sess.SetForesight(*body.Foresight)
		}
		return nil
	})
}

func (s *Server) startHandler(w http.ResponseWriter, r *http.Request) {
	s.act(w, func(resp *ActionResponse) error {
		if err := s.sess.Start(); err != nil {
			return err
		}
		return s.replyLocked(r.Context(), resp)
	})
}

func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.act(w, func(*ActionResponse) error {
		s.sess.Reset()
		return nil
	})
}

func (s *Server) legalMovesHandler(w http.ResponseWriter, r *http.Request) {
	from, err := parseSquare(mux.Vars(r)["square"])
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	set, err := s.sess.LegalMoves(from)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Moves: set.Strings()})
}

func (s *Server) moveHandler(w http.ResponseWriter, r *http.Request) {
	var body moveBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	from, err := parseSquare(body.From)
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := parseSquare(body.To)
	if err != nil {
		writeError(w, err)
		return
	}
	s.move(w, r, func() (engine.Outcome, error) {
		return s.sess.Move(from, to)
	})
}

func (s *Server) castleHandler(w http.ResponseWriter, r *http.Request) {
	var body sideBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	var side chess.Side
	switch body.Side {
	case chess.KingSide.String():
		side = chess.KingSide
	case chess.QueenSide.String():
		side = chess.QueenSide
	default:
		writeError(w, fmt.Errorf("%w: side %q", errBadRequest, body.Side))
		return
	}
	s.move(w, r, func() (engine.Outcome, error) {
		return s.sess.Castle(side)
	})
}

func (s *Server) confirmHandler(w http.ResponseWriter, r *http.Request) {
	var body confirmBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	s.move(w, r, func() (engine.Outcome, error) {
		return s.sess.ConfirmCastle(body.Castle)
	})
}

func (s *Server) promoteHandler(w http.ResponseWriter, r *http.Request) {
	var body promoteBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	s.move(w, r, func() (engine.Outcome, error) {
		return s.sess.ChoosePromotion(chess.Kind(body.Kind))
	})
}

func (s *Server) fireHandler(w http.ResponseWriter, r *http.Request) {
	var body fireBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	target, err := parseSquare(body.Target)
	if err != nil {
		writeError(w, err)
		return
	}
	s.move(w, r, func() (engine.Outcome, error) {
		return s.sess.Fire(target)
	})
}

func (s *Server) holdHandler(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, s.sess.HoldFire)
}

func (s *Server) undoHandler(w http.ResponseWriter, r *http.Request) {
	s.act(w, func(*ActionResponse) error {
		return s.sess.Undo()
	})
}

func (s *Server) redoHandler(w http.ResponseWriter, r *http.Request) {
	s.act(w, func(*ActionResponse) error {
		return s.sess.Redo()
	})
}

func (s *Server) computerHandler(w http.ResponseWriter, r *http.Request) {
	s.act(w, func(resp *ActionResponse) error {
		ctx, cancel := context.WithTimeout(r.Context(), s.computerTimeout)
		defer cancel()
		d, err := s.sess.PlayComputer(ctx)
		if err != nil {
			return err
		}
		resp.Reply = decisionBody(d)
		return nil
	})
}

func (s *Server) hintHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.computerTimeout)
	defer cancel()
	s.mu.Lock()
	d, err := s.sess.Hint(ctx)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decisionBody(d))
}

func (s *Server) saveHandler(w http.ResponseWriter, r *http.Request) {
	if s.snapshotFile == "" {
		writeError(w, errors.Wrap(errors.ErrSnapshotUnavailable, "no snapshot file configured"))
		return
	}
	s.act(w, func(*ActionResponse) error {
		snap, err := s.sess.Save()
		if err != nil {
			return err
		}
		return snapshot.Save(s.snapshotFile, snap)
	})
}

func (s *Server) loadHandler(w http.ResponseWriter, r *http.Request) {
	if s.snapshotFile == "" {
		writeError(w, errors.Wrap(errors.ErrSnapshotUnavailable, "no snapshot file configured"))
		return
	}
	s.act(w, func(*ActionResponse) error {
		snap, err := snapshot.Load(s.snapshotFile)
		if err != nil {
			return err
		}
		return s.sess.Resume(snap)
	})
}
