package model

import "time"

// MatchStatus is the lifecycle state of a battle
type MatchStatus string

const (
	MatchWaiting    MatchStatus = "WAITING"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchPaused     MatchStatus = "PAUSED_DISCONNECT"
	MatchCompleted  MatchStatus = "COMPLETED"
	MatchAbandoned  MatchStatus = "ABANDONED"
)

// ActionKind is what a player chose to do with their turn
type ActionKind string

const (
	ActionAttack  ActionKind = "attack"
	ActionUseItem ActionKind = "use_item"
	ActionSwitch  ActionKind = "switch"
	ActionForfeit ActionKind = "forfeit"
)

// StatusEffect is a persistent combat condition on a roster entry
type StatusEffect string

const (
	StatusAsleep   StatusEffect = "asleep"
	StatusPoisoned StatusEffect = "poisoned"
)

// Action is one player's chosen move for a single turn
type Action struct {
	Kind     ActionKind `json:"kind"`
	ItemID   string     `json:"itemId,omitempty"`
	SwitchTo int        `json:"switchTo,omitempty"`
}

// RosterEntry is one combatant's battle-local projection. Mutations stay
// in-match until terminal HP/XP deltas are handed to persistence.
type RosterEntry struct {
	PokemonID      string         `json:"pokemonId" bson:"pokemonId"`
	Name           string         `json:"name" bson:"name"`
	Level          int            `json:"level" bson:"level"`
	HP             int            `json:"hp" bson:"hp"`
	MaxHP          int            `json:"maxHp" bson:"maxHp"`
	Statuses       []StatusEffect `json:"statuses" bson:"statuses"`
	MaxStatusSlots int            `json:"maxStatusSlots" bson:"maxStatusSlots"`
	AttackBuffPct  int            `json:"attackBuffPct,omitempty" bson:"attackBuffPct,omitempty"`
	DefenseBuffPct int            `json:"defenseBuffPct,omitempty" bson:"defenseBuffPct,omitempty"`
	BuffExpiryTurn int            `json:"buffExpiryTurn,omitempty" bson:"buffExpiryTurn,omitempty"`
}

// Fainted reports whether the entry can no longer act
func (r *RosterEntry) Fainted() bool {
	return r.HP <= 0
}

// HasStatus reports whether the given condition is active
func (r *RosterEntry) HasStatus(s StatusEffect) bool {
	for _, st := range r.Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// AddStatus applies a condition if a status slot is free. Returns false
// when the entry is saturated or already has the condition.
func (r *RosterEntry) AddStatus(s StatusEffect) bool {
	if r.HasStatus(s) || len(r.Statuses) >= r.MaxStatusSlots {
		return false
	}
	r.Statuses = append(r.Statuses, s)
	return true
}

// ClearStatus removes a condition if present
func (r *RosterEntry) ClearStatus(s StatusEffect) {
	out := r.Statuses[:0]
	for _, st := range r.Statuses {
		if st != s {
			out = append(out, st)
		}
	}
	r.Statuses = out
}

// ClampHP keeps HP inside [0, MaxHP]
func (r *RosterEntry) ClampHP() {
	if r.HP < 0 {
		r.HP = 0
	}
	if r.HP > r.MaxHP {
		r.HP = r.MaxHP
	}
}

// Side holds one participant's battle state
type Side struct {
	PlayerID   string         `json:"playerId" bson:"playerId"`
	Roster     []RosterEntry  `json:"roster" bson:"roster"`
	ActiveIdx  int            `json:"activeIdx" bson:"activeIdx"`
	Items      map[string]int `json:"items" bson:"items"`
	Score      int            `json:"score" bson:"score"`
	GradeLevel int            `json:"gradeLevel" bson:"gradeLevel"`

	// MirrorArmed reflects the opponent's next buff/debuff back at them.
	// TraitorArmed voids the opponent's next beneficial effect.
	MirrorArmed  bool `json:"mirrorArmed,omitempty" bson:"mirrorArmed,omitempty"`
	TraitorArmed bool `json:"traitorArmed,omitempty" bson:"traitorArmed,omitempty"`
}

// Active returns the currently fielded roster entry
func (s *Side) Active() *RosterEntry {
	if s.ActiveIdx < 0 || s.ActiveIdx >= len(s.Roster) {
		return nil
	}
	return &s.Roster[s.ActiveIdx]
}

// NextAlive returns the index of the next non-fainted entry, or -1
func (s *Side) NextAlive() int {
	for i := range s.Roster {
		if !s.Roster[i].Fainted() {
			return i
		}
	}
	return -1
}

// Exhausted reports whether every roster entry has fainted
func (s *Side) Exhausted() bool {
	return s.NextAlive() == -1
}

// PendingQuestion is the question currently gating the turn
type PendingQuestion struct {
	QuestionID string    `json:"questionId" bson:"questionId"`
	Epoch      int       `json:"epoch" bson:"epoch"`
	Deadline   time.Time `json:"deadline" bson:"deadline"`
}

// EndReason records how a match reached a terminal state
type EndReason string

const (
	EndRosterExhausted EndReason = "roster_exhausted"
	EndForfeit         EndReason = "forfeit"
	EndCaptured        EndReason = "captured"
	EndDisconnect      EndReason = "disconnect_timeout"
	EndAbandoned       EndReason = "abandoned"
)

// Match is the authoritative record of one ongoing battle. It is owned by
// a single goroutine in the battle manager; nothing outside that loop
// mutates it.
type Match struct {
	ID              string           `json:"id" bson:"_id"`
	Sides           [2]Side          `json:"sides" bson:"sides"`
	TurnNumber      int              `json:"turnNumber" bson:"turnNumber"`
	TurnOwner       int              `json:"turnOwner" bson:"turnOwner"`
	Status          MatchStatus      `json:"status" bson:"status"`
	PendingQuestion *PendingQuestion `json:"pendingQuestion,omitempty" bson:"pendingQuestion,omitempty"`
	TurnSeed        int64            `json:"turnSeed" bson:"turnSeed"`
	Winner          int              `json:"winner" bson:"winner"` // side index, -1 if none
	EndReason       EndReason        `json:"endReason,omitempty" bson:"endReason,omitempty"`
	CreatedAt       time.Time        `json:"createdAt" bson:"createdAt"`
	EndedAt         *time.Time       `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// SideOf returns the side index for a player, or -1 if not a participant
func (m *Match) SideOf(playerID string) int {
	for i := range m.Sides {
		if m.Sides[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

// Terminal reports whether the match has reached a final state
func (m *Match) Terminal() bool {
	return m.Status == MatchCompleted || m.Status == MatchAbandoned
}

// Clone returns a deep copy safe to hand outside the owning goroutine
func (m *Match) Clone() *Match {
	c := *m
	for i := range c.Sides {
		s := &c.Sides[i]
		roster := make([]RosterEntry, len(s.Roster))
		copy(roster, s.Roster)
		for j := range roster {
			statuses := make([]StatusEffect, len(roster[j].Statuses))
			copy(statuses, roster[j].Statuses)
			roster[j].Statuses = statuses
		}
		s.Roster = roster
		items := make(map[string]int, len(s.Items))
		for k, v := range s.Items {
			items[k] = v
		}
		s.Items = items
	}
	if m.PendingQuestion != nil {
		pq := *m.PendingQuestion
		c.PendingQuestion = &pq
	}
	if m.EndedAt != nil {
		t := *m.EndedAt
		c.EndedAt = &t
	}
	return &c
}

// MatchResult is the terminal hand-off to persistence
type MatchResult struct {
	MatchID    string    `json:"matchId" bson:"matchId"`
	Winner     int       `json:"winner" bson:"winner"`
	EndReason  EndReason `json:"endReason" bson:"endReason"`
	PlayerIDs  [2]string `json:"playerIds" bson:"playerIds"`
	ScoreDelta [2]int    `json:"scoreDelta" bson:"scoreDelta"`
	Turns      int       `json:"turns" bson:"turns"`
	EndedAt    time.Time `json:"endedAt" bson:"endedAt"`
}
