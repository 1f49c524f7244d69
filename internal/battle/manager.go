package battle

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"triviamon/internal/config"
	"triviamon/internal/model"
)

// deps bundles everything a match goroutine needs from the outside world
type deps struct {
	cfg        *config.BattleConfig
	questions  QuestionProvider
	roster     RosterProvider
	inventory  InventoryProvider
	recorder   Recorder
	bc         Broadcaster
	onTerminal func(matchID string)
}

// PlayerRef identifies one participant at match creation
type PlayerRef struct {
	PlayerID   string
	GradeLevel int
}

// Manager owns every live match. Each match is driven by a single
// goroutine; the manager only routes commands and guards the
// player-to-match index.
type Manager struct {
	deps *deps

	mu       sync.RWMutex
	matches  map[string]*match
	byPlayer map[string]string
}

// NewManager creates a match lifecycle manager
func NewManager(cfg *config.BattleConfig, questions QuestionProvider, roster RosterProvider, inventory InventoryProvider, recorder Recorder) *Manager {
	m := &Manager{
		matches:  make(map[string]*match),
		byPlayer: make(map[string]string),
	}
	m.deps = &deps{
		cfg:        cfg,
		questions:  questions,
		roster:     roster,
		inventory:  inventory,
		recorder:   recorder,
		onTerminal: m.evict,
	}
	return m
}

// SetBroadcaster injects the outbound event sink. Must be called before
// any match is created.
func (m *Manager) SetBroadcaster(b Broadcaster) {
	m.deps.bc = b
}

// CreateMatch pairs two players into a live match and starts its owning
// goroutine. The match waits for both websocket channels to attach
// before issuing the first question.
func (m *Manager) CreateMatch(ctx context.Context, a, b PlayerRef) (string, error) {
	m.mu.Lock()
	if id, ok := m.byPlayer[a.PlayerID]; ok {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: %s in match %s", ErrAlreadyInMatch, a.PlayerID, id)
	}
	if id, ok := m.byPlayer[b.PlayerID]; ok {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: %s in match %s", ErrAlreadyInMatch, b.PlayerID, id)
	}
	// reserve both players while rosters load
	m.byPlayer[a.PlayerID] = ""
	m.byPlayer[b.PlayerID] = ""
	m.mu.Unlock()

	release := func() {
		m.mu.Lock()
		delete(m.byPlayer, a.PlayerID)
		delete(m.byPlayer, b.PlayerID)
		m.mu.Unlock()
	}

	state := &model.Match{
		ID:        uuid.New().String(),
		TurnOwner: 0,
		Winner:    -1,
		Status:    model.MatchWaiting,
		TurnSeed:  time.Now().UnixNano(),
		CreatedAt: time.Now(),
	}

	for i, ref := range []PlayerRef{a, b} {
		team, err := m.deps.roster.LoadTeam(ctx, ref.PlayerID)
		if err != nil {
			release()
			return "", fmt.Errorf("failed to load team for %s: %w", ref.PlayerID, err)
		}
		if len(team) == 0 {
			release()
			return "", fmt.Errorf("%w: %s has no battle-ready team", ErrInvalidAction, ref.PlayerID)
		}
		if len(team) > m.deps.cfg.MaxTeamSize {
			team = team[:m.deps.cfg.MaxTeamSize]
		}
		items, err := m.deps.inventory.LoadItems(ctx, ref.PlayerID)
		if err != nil {
			release()
			return "", fmt.Errorf("failed to load items for %s: %w", ref.PlayerID, err)
		}
		if items == nil {
			items = map[string]int{}
		}
		state.Sides[i] = model.Side{
			PlayerID:   ref.PlayerID,
			Roster:     team,
			Items:      items,
			GradeLevel: ref.GradeLevel,
		}
	}

	mt := newMatch(state, m.deps)

	m.mu.Lock()
	m.matches[state.ID] = mt
	m.byPlayer[a.PlayerID] = state.ID
	m.byPlayer[b.PlayerID] = state.ID
	m.mu.Unlock()

	go mt.run()
	log.Printf("match %s created: %s vs %s", state.ID, a.PlayerID, b.PlayerID)
	return state.ID, nil
}

func (m *Manager) lookup(matchID string) (*match, error) {
	m.mu.RLock()
	mt, ok := m.matches[matchID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMatchNotFound
	}
	return mt, nil
}

// Snapshot returns a deep copy of the match state, participants only
func (m *Manager) Snapshot(matchID, playerID string) (*model.Match, error) {
	mt, err := m.lookup(matchID)
	if err != nil {
		return nil, err
	}
	if mt.state.SideOf(playerID) < 0 {
		return nil, ErrNotParticipant
	}
	snap := make(chan *model.Match, 1)
	mt.post(command{kind: cmdSnapshot, snap: snap})
	return <-snap, nil
}

// SubmitAction records a player's answer and chosen action for a turn.
// The first valid submission per player per question wins; duplicates
// get ErrDuplicateSubmission and change nothing.
func (m *Manager) SubmitAction(matchID, playerID string, turnNumber, answerIndex int, action model.Action) error {
	mt, err := m.lookup(matchID)
	if err != nil {
		return err
	}
	reply := make(chan error, 1)
	mt.post(command{
		kind:        cmdSubmit,
		playerID:    playerID,
		turnNumber:  turnNumber,
		answerIndex: answerIndex,
		action:      action,
		reply:       reply,
	})
	return <-reply
}

// Forfeit concedes the match for playerID. Idempotent on finished
// matches.
func (m *Manager) Forfeit(matchID, playerID string) error {
	mt, err := m.lookup(matchID)
	if err != nil {
		return err
	}
	reply := make(chan error, 1)
	mt.post(command{kind: cmdForfeit, playerID: playerID, reply: reply})
	return <-reply
}

// PlayerConnected attaches a player's duplex channel: the match starts
// once both are present, or resumes from a disconnect pause
func (m *Manager) PlayerConnected(matchID, playerID string) error {
	mt, err := m.lookup(matchID)
	if err != nil {
		return err
	}
	if mt.state.SideOf(playerID) < 0 {
		return ErrNotParticipant
	}
	mt.post(command{kind: cmdConnect, playerID: playerID})
	return nil
}

// PlayerDisconnected pauses the match and starts the reconnect grace
// window
func (m *Manager) PlayerDisconnected(matchID, playerID string) {
	mt, err := m.lookup(matchID)
	if err != nil {
		return
	}
	mt.post(command{kind: cmdDisconnect, playerID: playerID})
}

// MatchIDForPlayer returns the live match a player is attached to
func (m *Manager) MatchIDForPlayer(playerID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byPlayer[playerID]
	return id, ok && id != ""
}

// evict drops a terminal match from the registry so its players can be
// paired again
func (m *Manager) evict(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.matches[matchID]
	if !ok {
		return
	}
	delete(m.matches, matchID)
	for i := range mt.state.Sides {
		if m.byPlayer[mt.state.Sides[i].PlayerID] == matchID {
			delete(m.byPlayer, mt.state.Sides[i].PlayerID)
		}
	}
	log.Printf("match %s evicted", matchID)
}
