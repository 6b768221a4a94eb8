package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/training-match/internal/club"
	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/notifier/hub"
	"github.com/mauv0809/training-match/internal/training"
)

type Server struct {
	Training       *training.Service
	Members        club.ClubStore
	Hub            *hub.Hub
	MetricsHandler http.Handler
	StaleAfter     time.Duration
	Router         chi.Router
}

// Identity is the caller of a request. Guest is set instead of MemberID for
// guests; both are empty for anonymous callers.
type Identity struct {
	MemberID string
	IsAdmin  bool
	Guest    *match.GuestSession
}

// Key returns the participant key of the caller.
func (i Identity) Key() match.ParticipantKey {
	if i.Guest != nil {
		return match.GuestKey(i.Guest.ID)
	}
	return match.MemberKey(i.MemberID)
}

type errorResponse struct {
	Error string     `json:"error"`
	Kind  match.Kind `json:"kind"`
}

type joinAsGuestRequest struct {
	DisplayName string `json:"display_name"`
}

type joinAsGuestResponse struct {
	Session     *match.GuestSession `json:"session"`
	Participant *match.Participant  `json:"participant"`
}

type reactionRequest struct {
	Emoji string `json:"emoji"`
}

type reactionResponse struct {
	Set bool `json:"set"`
}

type respondRequest struct {
	Action training.Action `json:"action"`
}

type sweepResponse struct {
	Completed int `json:"completed"`
}
