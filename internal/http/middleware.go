package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/training-match/internal/match"
)

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middlewares into a single handler.
// The middlewares are applied in the order they are passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// contextKey is a custom type to avoid key collisions in context.
type contextKey string

const (
	dryRunKey   contextKey = "dryRun"
	identityKey contextKey = "identity"
)

const (
	memberHeader = "X-Member-ID"
	guestHeader  = "X-Guest-Token"
)

// paramsMiddleware handles common query parameters like 'verbose' and 'dry_run'.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("incoming request", "method", r.Method, "url", r.URL.String())
		// Handle 'verbose' for verbose logging. The level is process-wide, so
		// concurrent requests log at debug until this one finishes.
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}

		isDryRun := r.URL.Query().Get("dry_run") == "true"
		ctx := context.WithValue(r.Context(), dryRunKey, isDryRun)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func isDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(dryRunKey).(bool)
	return ok && dryRun
}

// identify resolves the X-Member-ID header (or member_id query parameter,
// which browsers opening a websocket can set) to a club member. The admin
// flag comes from the member row, never from the request.
//
// The member id itself is trusted as sent: authentication happens in front
// of this service. A websocket opened with a member's id also receives the
// events targeted at that member.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		memberID := r.Header.Get(memberHeader)
		if memberID == "" {
			memberID = r.URL.Query().Get("member_id")
		}
		var id Identity
		if memberID != "" {
			member, err := s.Members.GetMember(r.Context(), memberID)
			if err != nil {
				if errors.Is(err, match.ErrMemberNotFound) {
					writeMessage(w, http.StatusUnauthorized, "unknown member")
					return
				}
				writeError(w, err)
				return
			}
			id = Identity{MemberID: member.ID, IsAdmin: member.IsAdmin}
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireMember rejects anonymous and guest callers.
func requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityFromContext(r).MemberID == "" {
			writeMessage(w, http.StatusUnauthorized, "member identity required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFromContext(r *http.Request) Identity {
	id, _ := r.Context().Value(identityKey).(Identity)
	return id
}

// participant returns the caller as participant of the match: the member
// identity when present, otherwise the guest behind X-Guest-Token.
func (s *Server) participant(r *http.Request, matchID int64) (Identity, error) {
	id := identityFromContext(r)
	if id.MemberID != "" {
		return id, nil
	}
	token := r.Header.Get(guestHeader)
	if token == "" {
		return Identity{}, errUnauthorized
	}
	guest, err := s.Training.ValidateGuest(r.Context(), matchID, token)
	if err != nil {
		if errors.Is(err, match.ErrGuestNotFound) {
			return Identity{}, errUnauthorized
		}
		return Identity{}, err
	}
	return Identity{Guest: guest}, nil
}

func matchIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, match.ErrMatchNotFound
	}
	return id, nil
}

func seriesParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "series"))
	if err != nil {
		return 0, match.ErrSeriesNotFound
	}
	return n, nil
}
