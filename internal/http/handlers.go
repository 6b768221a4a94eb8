package http

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/training"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in training.CreateMatchInput
		if err := decode(r, &in); err != nil {
			writeError(w, err)
			return
		}
		in.CreatorID = identityFromContext(r).MemberID
		m, err := s.Training.CreateMatch(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func (s *Server) ListActiveMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Training.ListActiveMatches(r.Context(), identityFromContext(r).MemberID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		m, err := s.Training.GetMatch(r.Context(), matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) GetMatchByCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.Training.GetMatchByCode(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) ListParticipantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		participants, err := s.Training.ListParticipants(r.Context(), matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, participants)
	}
}

func (s *Server) ScoreboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		board, err := s.Training.GetScoreboard(r.Context(), matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}

func (s *Server) RankingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		ranking, err := s.Training.ComputeEqualizedRanking(r.Context(), matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ranking)
	}
}

func (s *Server) JoinMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		p, jr, err := s.Training.JoinMatch(r.Context(), matchID, identityFromContext(r).MemberID)
		if err != nil {
			writeError(w, err)
			return
		}
		if jr != nil {
			writeJSON(w, http.StatusAccepted, jr)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) JoinAsGuestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinAsGuestRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		session, p, err := s.Training.JoinAsGuest(r.Context(), chi.URLParam(r, "code"), req.DisplayName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, joinAsGuestResponse{Session: session, Participant: p})
	}
}

func (s *Server) LeaveMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.Training.LeaveMatch(r.Context(), matchID, identityFromContext(r).MemberID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) CompleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		id := identityFromContext(r)
		m, err := s.Training.CompleteMatch(r.Context(), matchID, id.MemberID, id.IsAdmin)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		id := identityFromContext(r)
		if err := s.Training.DeleteMatch(r.Context(), matchID, id.MemberID, id.IsAdmin); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) UpdateSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var upd training.SettingsUpdate
		if err := decode(r, &upd); err != nil {
			writeError(w, err)
			return
		}
		id := identityFromContext(r)
		m, err := s.Training.UpdateSettings(r.Context(), matchID, id.MemberID, id.IsAdmin, upd)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) SubmitSeriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		caller, err := s.participant(r, matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		var in training.SeriesInput
		if err := decode(r, &in); err != nil {
			writeError(w, err)
			return
		}
		res, err := s.Training.SubmitSeries(r.Context(), matchID, caller.Key(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func (s *Server) UpdateSeriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		number, err := seriesParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		caller, err := s.participant(r, matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		var in training.SeriesInput
		if err := decode(r, &in); err != nil {
			writeError(w, err)
			return
		}
		res, err := s.Training.UpdateSeries(r.Context(), matchID, caller.Key(), number, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) DeleteSeriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		number, err := seriesParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		caller, err := s.participant(r, matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		rec, err := s.Training.DeleteSeries(r.Context(), matchID, caller.Key(), number)
		if err != nil {
			writeError(w, err)
			return
		}
		if rec == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) ToggleReactionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		number, err := seriesParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		target, err := match.ParseParticipantKey(chi.URLParam(r, "participant"))
		if err != nil {
			writeError(w, err)
			return
		}
		caller, err := s.participant(r, matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		var req reactionRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		set, err := s.Training.ToggleReaction(r.Context(), matchID, target, number, caller.Key().String(), req.Emoji)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reactionResponse{Set: set})
	}
}

func (s *Server) RequestJoinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		jr, err := s.Training.RequestJoin(r.Context(), matchID, identityFromContext(r).MemberID)
		if err != nil {
			writeError(w, err)
			return
		}
		if jr == nil {
			// Already a participant.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusCreated, jr)
	}
}

func (s *Server) ListPendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := matchIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		requests, err := s.Training.ListPending(r.Context(), matchID, identityFromContext(r).MemberID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, requests)
	}
}

func (s *Server) RespondToRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req respondRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		id := identityFromContext(r)
		jr, err := s.Training.RespondToRequest(r.Context(), chi.URLParam(r, "requestID"), id.MemberID, id.IsAdmin, req.Action)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, jr)
	}
}

// SweepHandler completes stale matches on demand. Administrators only; with
// dry_run=true it only reports the matches that would be completed.
func (s *Server) SweepHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !identityFromContext(r).IsAdmin {
			writeError(w, match.ErrForbidden)
			return
		}
		if isDryRunFromContext(r) {
			stale, err := s.Training.ListStaleMatches(r.Context(), s.StaleAfter)
			if err != nil {
				writeError(w, err)
				return
			}
			log.Info("[Dry Run] Would have completed stale matches", "count", len(stale))
			writeJSON(w, http.StatusOK, sweepResponse{Completed: len(stale)})
			return
		}
		n, err := s.Training.CompleteStaleMatches(r.Context(), s.StaleAfter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sweepResponse{Completed: n})
	}
}

// WebsocketHandler streams the live events of a match. Members identified
// by header or member_id also receive the events targeted at them.
func (s *Server) WebsocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if _, err := s.Training.GetMatchByCode(r.Context(), code); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Hub.Serve(w, r, code, identityFromContext(r).MemberID); err != nil {
			log.Warn("Websocket connection failed", "error", err, "code", code)
		}
	}
}
