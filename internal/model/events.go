package model

// Outbound event payloads. Every accepted state transition produces exactly
// one event for both participants; payloads carry enough delta information
// that clients never need to replay history.

// QuestionIssuedPayload accompanies a question_issued event
type QuestionIssuedPayload struct {
	MatchID    string           `json:"matchId"`
	TurnNumber int              `json:"turnNumber"`
	Question   *QuestionPayload `json:"question"`
	DeadlineMS int64            `json:"deadlineMs"`
}

// SideDelta summarizes one side's state after a turn resolution
type SideDelta struct {
	PlayerID      string         `json:"playerId"`
	ActiveIdx     int            `json:"activeIdx"`
	ActiveHP      int            `json:"activeHp"`
	ActiveMaxHP   int            `json:"activeMaxHp"`
	Statuses      []StatusEffect `json:"statuses"`
	FaintedIdx    []int          `json:"faintedIdx,omitempty"`
	Score         int            `json:"score"`
	AnswerCorrect *bool          `json:"answerCorrect,omitempty"`
}

// TurnResultPayload accompanies a turn_result event
type TurnResultPayload struct {
	MatchID    string       `json:"matchId"`
	TurnNumber int          `json:"turnNumber"`
	Sides      [2]SideDelta `json:"sides"`
	Summary    []string     `json:"summary"`
	NextOwner  int          `json:"nextOwner"`
}

// MatchEndedPayload accompanies a match_ended event
type MatchEndedPayload struct {
	MatchID    string    `json:"matchId"`
	TurnNumber int       `json:"turnNumber"`
	Winner     int       `json:"winner"`
	WinnerID   string    `json:"winnerId,omitempty"`
	EndReason  EndReason `json:"endReason"`
	ScoreDelta [2]int    `json:"scoreDelta"`
}

// MatchPausedPayload accompanies a match_paused event
type MatchPausedPayload struct {
	MatchID      string `json:"matchId"`
	Disconnected string `json:"disconnectedPlayerId"`
	GraceMS      int64  `json:"graceMs"`
}

// SnapshotPayload is the full current state re-sent on reconnect
type SnapshotPayload struct {
	Match    *Match           `json:"match"`
	Question *QuestionPayload `json:"question,omitempty"`
}
