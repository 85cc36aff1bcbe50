// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily game (creates or reuses session)
//   - POST /daily/place       → place the current number in today's game
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each player gets one round per day. The draw sequence is seeded from the
// date + salt, so everyone faces the same numbers. The result is persisted
// when the round ends, win or lose.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numbergame/internal/auth"
	"github.com/robalobadob/numbergame/internal/daily"
	"github.com/robalobadob/numbergame/internal/grid"
	"github.com/robalobadob/numbergame/internal/store"
)

// dailyKey identifies one player's session for one date.
type dailyKey struct {
	owner string
	date  string
}

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	sessions map[dailyKey]string // → session ID
	mu       sync.Mutex          // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{srv: s, sessions: make(map[dailyKey]string)}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/place", dd.handlePlace)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID string         `json:"gameId"`
	Date   string         `json:"date"`
	Played bool           `json:"played"`
	Game   *grid.Snapshot `json:"game,omitempty"`
	Events []Event        `json:"events,omitempty"`
}

// handleNew creates or reuses today's session.
// - If the player already has a result for today → Played=true.
// - Otherwise create/reuse an in-memory session and return its snapshot.
// A signed-in player is also matched by the guest cookie they played under.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	s := d.srv
	owner, signedIn := s.ownerID(w, r)
	ids := ownerAliases(r, owner)
	now := s.now()
	date := daily.DateKey(now)

	for _, id := range ids {
		played, err := s.daily.AlreadyPlayed(r.Context(), id, date)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("daily already played")
			continue
		}
		if played {
			writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
			return
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune(r, date)

	for _, id := range ids {
		key := dailyKey{owner: id, date: date}
		sid, ok := d.sessions[key]
		if !ok {
			continue
		}
		sess, err := s.store.Get(r.Context(), sid)
		if err != nil {
			delete(d.sessions, key)
			continue
		}
		sess.Lock()
		snap := sess.Game.Snapshot()
		sess.Unlock()
		writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.ID, Date: date, Played: snap.State.Finished(), Game: &snap})
		return
	}

	g, err := grid.New(s.cfg.Grid, grid.NewSeededSource(daily.Seed(now, s.cfg.DailySalt)), grid.Hooks{})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("new daily grid")
		writeError(w, http.StatusInternalServerError, "config_error")
		return
	}
	sess := &store.Session{ID: auth.GenID(), OwnerID: owner, Mode: store.ModeDaily, Date: date, Game: g}
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[dailyKey{owner: owner, date: date}] = sess.ID

	sess.Lock()
	defer sess.Unlock()
	events := s.startRound(r, sess, ownerFor(owner, signedIn))
	snap := g.Snapshot()
	writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.ID, Date: date, Game: &snap, Events: events})
}

// prune drops sessions left over from earlier dates. Caller holds d.mu.
func (d *dailyServer) prune(r *http.Request, today string) {
	for k, id := range d.sessions {
		if k.date == today {
			continue
		}
		if err := d.srv.store.Delete(r.Context(), id); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("gameId", id).Msg("drop stale daily session")
		}
		delete(d.sessions, k)
	}
}

// ownerAliases lists the IDs a player may have played under: the current
// owner, plus the guest cookie when it differs.
func ownerAliases(r *http.Request, owner string) []string {
	ids := []string{owner}
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" && c.Value != owner {
		ids = append(ids, c.Value)
	}
	return ids
}

// -----------------------------------------------------------------------------
// /daily/place

type dailyPlaceRes struct {
	gameRes
	Date   string `json:"date"`
	Locked bool   `json:"locked"`
}

// handlePlace applies a click to today's session.
// - Rejects unknown sessions and sessions from an earlier date.
// - A finished session is locked: the snapshot is returned unchanged.
// - When the round ends the result goes to the daily leaderboard.
func (d *dailyServer) handlePlace(w http.ResponseWriter, r *http.Request) {
	s := d.srv
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
	date := daily.DateKey(s.now())
	if sess.Mode != store.ModeDaily || sess.Date != date {
		writeError(w, http.StatusConflict, "no_session")
		return
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.Game.State().Finished() {
		writeJSON(w, http.StatusOK, dailyPlaceRes{
			gameRes: gameRes{GameID: sess.ID, Game: sess.Game.Snapshot(), Events: []Event{}},
			Date:    date,
			Locked:  true,
		})
		return
	}

	out, events := s.place(r, sess, ownerFor(owner, signedIn), idx)
	if out == grid.Win || out == grid.Loss {
		res := daily.Result{
			UserID:     owner,
			Date:       date,
			Won:        out == grid.Win,
			Placements: sess.Game.Placements(),
			ElapsedMs:  int(s.now().Sub(sess.StartedAt) / time.Millisecond),
		}
		if err := s.daily.InsertResult(r.Context(), res); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("insert daily result")
		}
	}
	writeJSON(w, http.StatusOK, dailyPlaceRes{
		gameRes: gameRes{GameID: sess.ID, Outcome: &out, Game: sess.Game.Snapshot(), Events: events},
		Date:    date,
		Locked:  sess.Game.State().Finished(),
	})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	s := d.srv
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
