package battle

import "errors"

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrAlreadyInMatch      = errors.New("player already in an active match")
	ErrNotParticipant      = errors.New("player is not in this match")
	ErrDuplicateSubmission = errors.New("action already submitted for this question")
	ErrStaleTurn           = errors.New("submission does not match the current turn")
	ErrNoPendingQuestion   = errors.New("no question is awaiting answers")
	ErrMatchPaused         = errors.New("match is paused waiting for a reconnect")
	ErrMatchOver           = errors.New("match already reached a terminal state")
	ErrInvalidAction       = errors.New("invalid action")
)
