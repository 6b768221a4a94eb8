package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mauv0809/training-match/internal/club"
	"github.com/mauv0809/training-match/internal/notifier/hub"
	"github.com/mauv0809/training-match/internal/training"
)

func NewServer(svc *training.Service, members club.ClubStore, h *hub.Hub, metricsHandler http.Handler, staleAfter time.Duration) *Server {
	server := &Server{
		Training:       svc,
		Members:        members,
		Hub:            h,
		MetricsHandler: metricsHandler,
		StaleAfter:     staleAfter,
		Router:         chi.NewRouter(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	r := s.Router
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", s.MetricsHandler)
	r.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	r.Group(func(r chi.Router) {
		r.Use(paramsMiddleware, s.identify)

		r.Get("/ws/matches/{code}", s.WebsocketHandler())
		r.Get("/matches/code/{code}", s.GetMatchByCodeHandler())
		r.Post("/matches/code/{code}/guests", s.JoinAsGuestHandler())

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", s.GetMatchHandler())
			r.Get("/participants", s.ListParticipantsHandler())
			r.Get("/scoreboard", s.ScoreboardHandler())
			r.Get("/ranking", s.RankingHandler())

			// Members and guests.
			r.Post("/series", s.SubmitSeriesHandler())
			r.Put("/series/{series}", s.UpdateSeriesHandler())
			r.Delete("/series/{series}", s.DeleteSeriesHandler())
			r.Post("/participants/{participant}/series/{series}/reactions", s.ToggleReactionHandler())

			r.Group(func(r chi.Router) {
				r.Use(requireMember)
				r.Delete("/", s.DeleteMatchHandler())
				r.Patch("/settings", s.UpdateSettingsHandler())
				r.Post("/complete", s.CompleteMatchHandler())
				r.Post("/join", s.JoinMatchHandler())
				r.Post("/leave", s.LeaveMatchHandler())
				r.Post("/join-requests", s.RequestJoinHandler())
				r.Get("/join-requests", s.ListPendingHandler())
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireMember)
			r.Get("/matches", s.ListActiveMatchesHandler())
			r.Post("/matches", s.CreateMatchHandler())
			r.Post("/join-requests/{requestID}", s.RespondToRequestHandler())
			r.Post("/sweep", s.SweepHandler())
		})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
