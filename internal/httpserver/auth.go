package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numbergame/internal/auth"
)

const anonCookieName = "numbergame_anon"

// ctxUserKey is the context key type for storing the signed-in user.
type ctxUserKey struct{}

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func userFrom(ctx context.Context) *authUser {
	me, _ := ctx.Value(ctxUserKey{}).(*authUser)
	return me
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers authentication + gated routes (/auth/*, /stats/me, /games/mine).
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userFrom(r.Context()))
	})
	s.r.With(s.requireAuth).Get("/stats/me", s.handleStatsMe)
	s.r.With(s.requireAuth).Get("/games/mine", s.handleGamesMine)
}

// handleSignup creates a new user, signs a JWT, sets auth cookie, and claims anon history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Create(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username_taken")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates user, sets cookie, and claims anon history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w, s.cfg.CookieName, "", time.Time{}, -1)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *auth.User) bool {
	tok, exp, err := s.tokens.Sign(u.ID, u.Username)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.setCookie(w, s.cfg.CookieName, tok, exp, 0)

	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		n, err := s.records.ClaimAnonGames(r.Context(), c.Value, u.ID)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("claim anon games")
		} else if n > 0 {
			hlog.FromRequest(r).Info().Int64("games", n).Str("user", u.ID).Msg("claimed anonymous games")
		}
	}
	return true
}

func (s *Server) handleStatsMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.FindByID(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	avg := 0.0
	if u.GamesPlayed > 0 {
		avg = float64(u.TotalPlacements) / float64(u.GamesPlayed)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":              u.ID,
		"gamesPlayed":     u.GamesPlayed,
		"wins":            u.Wins,
		"losses":          u.Losses,
		"totalPlacements": u.TotalPlacements,
		"averagePerGame":  avg,
		"streak":          u.Streak,
		"bestStreak":      u.BestStreak,
	})
}

func (s *Server) handleGamesMine(w http.ResponseWriter, r *http.Request) {
	rows, err := s.records.RecentGames(r.Context(), userFrom(r.Context()).ID, 50)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("recent games")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// --------------------------- auth middleware -------------------------------

// authenticate resolves a still-existing user from a bearer token or cookie.
func (s *Server) authenticate(r *http.Request) (*authUser, error) {
	raw := s.bearerOrCookie(r)
	if raw == "" {
		return nil, auth.ErrInvalidToken
	}
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(r.Context(), claims.ID); err != nil {
		return nil, err
	}
	return &authUser{ID: claims.ID, Username: claims.Username}, nil
}

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := s.authenticate(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth enforces a valid JWT and injects the user into request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
	})
}

// ownerID returns the signed-in user ID, or ensures an anonymous cookie ID.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) (id string, signedIn bool) {
	if me := userFrom(r.Context()); me != nil {
		return me.ID, true
	}
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value, false
	}
	id = auth.GenID()
	s.setCookie(w, anonCookieName, id, s.now().Add(180*24*time.Hour), 0)
	return id, false
}

// ------------------------------ cookies ------------------------------------

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// setCookie writes an HttpOnly cookie; secure + SameSite=None in production.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time, maxAge int) {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	})
}
