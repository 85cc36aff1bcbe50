// internal/httpserver/routes_game.go
//
// HTTP routes for free play.
//   - POST /game/new   → new session, or a new round in an existing one
//   - POST /game/place → place the current number into a cell
//   - GET  /game/{id}  → snapshot of a session's game
//   - POST /game/quit  → statistics summary; closes a classic session
//
// Session statistics survive across rounds of the same session. Every round
// is also written to the games table (best effort) for history and
// per-account totals.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numbergame/internal/auth"
	"github.com/robalobadob/numbergame/internal/grid"
	"github.com/robalobadob/numbergame/internal/records"
	"github.com/robalobadob/numbergame/internal/store"
)

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/place", s.handlePlace)
		r.Post("/quit", s.handleQuit)
		r.Get("/{id}", s.handleGetGame)
	})
}

type newGameReq struct {
	GameID string `json:"gameId"` // optional: start another round in this session
}

type gameRes struct {
	GameID  string        `json:"gameId"`
	Outcome *grid.Outcome `json:"outcome,omitempty"`
	Game    grid.Snapshot `json:"game"`
	Events  []Event       `json:"events"`
}

// placeReq addresses a cell either by index or by row/col.
type placeReq struct {
	GameID string `json:"gameId"`
	Index  *int   `json:"index"`
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
}

func (p placeReq) index(cfg grid.Config) (int, bool) {
	switch {
	case p.Index != nil:
		return *p.Index, true
	case p.Row != nil && p.Col != nil:
		return cfg.Index(*p.Row, *p.Col), true
	}
	return 0, false
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	owner, signedIn := s.ownerID(w, r)

	var sess *store.Session
	if req.GameID != "" {
		var ok bool
		if sess, ok = s.ownedSession(w, r, req.GameID, owner); !ok {
			return
		}
		if sess.Mode != store.ModeClassic {
			writeError(w, http.StatusConflict, "daily_session")
			return
		}
	} else {
		g, err := grid.New(s.cfg.Grid, s.newSource(), grid.Hooks{})
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("new grid")
			writeError(w, http.StatusInternalServerError, "config_error")
			return
		}
		sess = &store.Session{ID: auth.GenID(), OwnerID: owner, Mode: store.ModeClassic, Game: g}
		if err := s.store.Save(r.Context(), sess); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("save session")
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
	}

	sess.Lock()
	defer sess.Unlock()
	events := s.startRound(r, sess, ownerFor(owner, signedIn))
	writeJSON(w, http.StatusOK, gameRes{GameID: sess.ID, Game: sess.Game.Snapshot(), Events: events})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	idx, ok := req.index(s.cfg.Grid)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing_cell")
		return
	}
	owner, signedIn := s.ownerID(w, r)
	sess, ok := s.ownedSession(w, r, req.GameID, owner)
	if !ok {
		return
	}
	if sess.Mode != store.ModeClassic {
		writeError(w, http.StatusConflict, "daily_session")
		return
	}

	sess.Lock()
	defer sess.Unlock()
	out, events := s.place(r, sess, ownerFor(owner, signedIn), idx)
	writeJSON(w, http.StatusOK, gameRes{GameID: sess.ID, Outcome: &out, Game: sess.Game.Snapshot(), Events: events})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	owner, _ := s.ownerID(w, r)
	sess, ok := s.ownedSession(w, r, chi.URLParam(r, "id"), owner)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	writeJSON(w, http.StatusOK, gameRes{GameID: sess.ID, Game: sess.Game.Snapshot(), Events: []Event{}})
}

type quitReq struct {
	GameID string `json:"gameId"`
}

type quitRes struct {
	Summary string     `json:"summary"`
	Stats   grid.Stats `json:"stats"`
}

func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	var req quitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	owner, _ := s.ownerID(w, r)
	sess, ok := s.ownedSession(w, r, req.GameID, owner)
	if !ok {
		return
	}
	// One daily round per day: it cannot be thrown away and restarted.
	if sess.Mode != store.ModeClassic {
		writeError(w, http.StatusConflict, "daily_session")
		return
	}

	sess.Lock()
	if sess.RoundID != "" && sess.Game.State() == grid.InProgress {
		if err := s.records.AbandonRound(r.Context(), sess.RoundID); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("gameId", sess.ID).Msg("abandon round")
		}
	}
	res := quitRes{Summary: sess.Game.StatsSummary(), Stats: sess.Game.Stats()}
	sess.Unlock()

	_ = s.store.Delete(r.Context(), sess.ID)
	writeJSON(w, http.StatusOK, res)
}

// ------------------------------ shared -------------------------------------

func ownerFor(id string, signedIn bool) records.Owner {
	if signedIn {
		return records.Owner{UserID: id}
	}
	return records.Owner{AnonID: id}
}

// ownedSession loads a session and hides sessions owned by someone else.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request, id, owner string) (*store.Session, bool) {
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_game_id")
		return nil, false
	}
	sess, err := s.store.Get(r.Context(), id)
	if err != nil || !ownedBy(r, sess, owner) {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			hlog.FromRequest(r).Error().Err(err).Str("gameId", id).Msg("get session")
		}
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return sess, true
}

// ownedBy accepts the current owner, or the guest cookie that started the
// session before the player signed in.
func ownedBy(r *http.Request, sess *store.Session, owner string) bool {
	if sess.OwnerID == owner {
		return true
	}
	c, err := r.Cookie(anonCookieName)
	return err == nil && c.Value != "" && c.Value == sess.OwnerID
}

// startRound begins a round on a locked session and records it.
func (s *Server) startRound(r *http.Request, sess *store.Session, owner records.Owner) []Event {
	if sess.RoundID != "" && sess.Game.State() == grid.InProgress {
		if err := s.records.AbandonRound(r.Context(), sess.RoundID); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("gameId", sess.ID).Msg("abandon round")
		}
	}

	rec := &recorder{logger: hlog.FromRequest(r)}
	sess.Game.SetHooks(rec.hooks())
	sess.Game.StartNewGame()
	sess.RoundID = auth.GenID()
	sess.StartedAt = s.now()

	if err := s.records.StartRound(r.Context(), records.Round{
		ID:        sess.RoundID,
		SessionID: sess.ID,
		Owner:     owner,
		Mode:      string(sess.Mode),
		StartedAt: sess.StartedAt,
	}); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("gameId", sess.ID).Msg("insert round row")
	}
	return rec.events
}

// place applies one click on a locked session and persists progress (best effort).
func (s *Server) place(r *http.Request, sess *store.Session, owner records.Owner, idx int) (grid.Outcome, []Event) {
	rec := &recorder{logger: hlog.FromRequest(r)}
	sess.Game.SetHooks(rec.hooks())
	out := sess.Game.HandleCellClick(idx)
	if out == grid.Ignored {
		return out, []Event{}
	}

	ctx := r.Context()
	if err := s.records.RecordPlacement(ctx, sess.RoundID); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("update placements")
	}
	if out == grid.Win || out == grid.Loss {
		s.finishRound(ctx, r, sess, owner)
	}
	return out, rec.events
}

func (s *Server) finishRound(ctx context.Context, r *http.Request, sess *store.Session, owner records.Owner) {
	g := sess.Game
	res := records.Result{
		ID:         sess.RoundID,
		Owner:      owner,
		Won:        g.State() == grid.Won,
		Placements: g.Placements(),
		FinishedAt: s.now(),
	}
	if !res.Won {
		res.Impossible = g.Impossible()
	}
	if err := s.records.FinishRound(ctx, res); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("gameId", sess.ID).Msg("finish round")
	}
}
