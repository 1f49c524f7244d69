package battle

import (
	"context"

	"triviamon/internal/model"
)

// QuestionProvider supplies the trivia questions gating each turn
type QuestionProvider interface {
	// NextQuestion returns a question at or below gradeLevel, skipping
	// excludeIDs and anything the given players saw recently. Returns
	// nil when the bank is exhausted for the filter.
	NextQuestion(ctx context.Context, gradeLevel int, playerIDs []string, excludeIDs []string) (*model.Question, error)
	QuestionByID(ctx context.Context, id string) (*model.Question, error)
	// MarkSeen records that the players were shown a question so it is
	// not repeated for them soon
	MarkSeen(ctx context.Context, playerIDs []string, questionID string) error
}

// RosterProvider loads teams and persists terminal HP/XP deltas
type RosterProvider interface {
	LoadTeam(ctx context.Context, playerID string) ([]model.RosterEntry, error)
	ApplyHPDelta(ctx context.Context, pokemonID string, delta int) error
	ApplyXPGain(ctx context.Context, pokemonID string, amount int) (*model.XPGainResult, error)
}

// InventoryProvider loads owned consumables and persists what a match used
type InventoryProvider interface {
	LoadItems(ctx context.Context, playerID string) (map[string]int, error)
	ConsumeItem(ctx context.Context, playerID, itemID string, quantity int) error
}

// Recorder receives the terminal result of a match
type Recorder interface {
	RecordResult(ctx context.Context, result *model.MatchResult) error
}

// Broadcaster pushes outbound events to connected players. The websocket
// hub implements this; the manager receives it by injection rather than
// reaching into transport state.
type Broadcaster interface {
	BroadcastToPlayer(matchID, playerID, msgType string, payload interface{})
	BroadcastToMatch(matchID, msgType string, payload interface{})
	DisconnectMatch(matchID string)
}
