package match

import "errors"

// Kind classifies a domain error. Every kind is recoverable: the requested
// mutation is denied and state is left unchanged.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindForbidden        Kind = "FORBIDDEN"
	KindInvalidState     Kind = "INVALID_STATE"
	KindNotStarted       Kind = "NOT_STARTED"
	KindConflict         Kind = "CONFLICT"
	KindValidationFailed Kind = "VALIDATION_FAILED"
	KindAlreadyExists    Kind = "ALREADY_EXISTS"
	KindInternal         Kind = "INTERNAL"
)

// Error is a domain error with a kind and a stable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrMatchNotFound       = newError(KindNotFound, "match not found")
	ErrParticipantNotFound = newError(KindNotFound, "participant not found")
	ErrSeriesNotFound      = newError(KindNotFound, "series not found")
	ErrRequestNotFound     = newError(KindNotFound, "join request not found")
	ErrGuestNotFound       = newError(KindNotFound, "guest session not found")
	ErrMemberNotFound      = newError(KindNotFound, "member not found")

	ErrForbidden            = newError(KindForbidden, "forbidden")
	ErrCannotLeaveAsCreator = newError(KindForbidden, "the creator cannot leave the match")
	ErrNotParticipant       = newError(KindForbidden, "not a participant of this match")
	ErrGuestsNotAllowed     = newError(KindForbidden, "guests are not allowed in this match")

	ErrMatchNotActive  = newError(KindInvalidState, "match is not active")
	ErrRequestResolved = newError(KindInvalidState, "join request is not pending")

	ErrMatchNotStarted = newError(KindNotStarted, "match has not started yet")

	ErrCodeConflict            = newError(KindConflict, "match code already in use")
	ErrCodeGenerationExhausted = newError(KindConflict, "could not generate a unique match code")

	ErrValidation          = newError(KindValidationFailed, "validation failed")
	ErrMissingShooterClass = newError(KindValidationFailed, "a shooter class is required for handicap matches")
	ErrInvalidWeaponClass  = newError(KindValidationFailed, "invalid weapon class")
	ErrInvalidShot         = newError(KindValidationFailed, "invalid shot value")
	ErrInvalidSeries       = newError(KindValidationFailed, "invalid series input")
	ErrSeriesLimitReached  = newError(KindValidationFailed, "maximum number of series reached")

	ErrAlreadyPending = newError(KindAlreadyExists, "a join request is already pending")
	ErrBlocked        = newError(KindForbidden, "join requests for this match are blocked")
)

// KindOf returns the kind of err, or KindInternal when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
