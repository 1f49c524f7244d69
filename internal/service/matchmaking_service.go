package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"triviamon/internal/battle"
	"triviamon/internal/cache"
	"triviamon/internal/model"
)

var (
	ErrAlreadyQueued  = errors.New("player is already queued")
	ErrAlreadyBattled = errors.New("player is already in a match")
)

// gradeBand is the widest grade-level gap two players can be paired across
const gradeBand = 2

// QueueStatus reports where a player stands with matchmaking
type QueueStatus struct {
	InQueue bool   `json:"inQueue"`
	MatchID string `json:"matchId,omitempty"`
}

// MatchmakingService pairs queued players into battles. The queue itself
// lives in Redis so waiting players survive a restart; pairing runs under
// a local mutex so only one pass drains the queue at a time.
type MatchmakingService struct {
	queue      cache.QueueCache
	matchCache cache.MatchCache
	manager    *battle.Manager

	pairMu sync.Mutex
}

// NewMatchmakingService creates a new matchmaking service
func NewMatchmakingService(queue cache.QueueCache, matchCache cache.MatchCache, manager *battle.Manager) *MatchmakingService {
	return &MatchmakingService{
		queue:      queue,
		matchCache: matchCache,
		manager:    manager,
	}
}

// Join enqueues a player and attempts a pairing pass. Returns the match id
// if the player was paired immediately.
func (s *MatchmakingService) Join(ctx context.Context, claims *model.PlayerClaims) (*QueueStatus, error) {
	if _, ok := s.manager.MatchIDForPlayer(claims.PlayerID); ok {
		return nil, ErrAlreadyBattled
	}

	added, err := s.queue.Enqueue(ctx, &cache.QueueTicket{
		PlayerID:   claims.PlayerID,
		GradeLevel: claims.GradeLevel,
		EnqueuedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue: %w", err)
	}
	if !added {
		return nil, ErrAlreadyQueued
	}

	s.tryPair(ctx)

	if matchID, ok := s.manager.MatchIDForPlayer(claims.PlayerID); ok {
		return &QueueStatus{MatchID: matchID}, nil
	}
	return &QueueStatus{InQueue: true}, nil
}

// Leave removes a player from the queue
func (s *MatchmakingService) Leave(ctx context.Context, playerID string) error {
	return s.queue.Remove(ctx, playerID)
}

// Status reports whether the player is queued or already paired
func (s *MatchmakingService) Status(ctx context.Context, playerID string) (*QueueStatus, error) {
	if matchID, ok := s.manager.MatchIDForPlayer(playerID); ok {
		return &QueueStatus{MatchID: matchID}, nil
	}
	queued, err := s.queue.Contains(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return &QueueStatus{InQueue: queued}, nil
}

// tryPair drains the queue, pairing players within the grade band. Tickets
// that find no partner this pass go back to the end of the queue.
func (s *MatchmakingService) tryPair(ctx context.Context) {
	s.pairMu.Lock()
	defer s.pairMu.Unlock()

	var waiting []*cache.QueueTicket
	for {
		ticket, err := s.queue.Dequeue(ctx)
		if err != nil {
			log.Printf("matchmaking: dequeue failed: %v", err)
			break
		}
		if ticket == nil {
			break
		}

		matched := false
		for i, other := range waiting {
			if !compatible(ticket, other) {
				continue
			}
			waiting = append(waiting[:i], waiting[i+1:]...)
			s.createMatch(ctx, other, ticket)
			matched = true
			break
		}
		if !matched {
			waiting = append(waiting, ticket)
		}
	}

	for _, ticket := range waiting {
		if _, err := s.queue.Enqueue(ctx, ticket); err != nil {
			log.Printf("matchmaking: requeue failed for %s: %v", ticket.PlayerID, err)
		}
	}
}

func compatible(a, b *cache.QueueTicket) bool {
	diff := a.GradeLevel - b.GradeLevel
	if diff < 0 {
		diff = -diff
	}
	return diff <= gradeBand
}

func (s *MatchmakingService) createMatch(ctx context.Context, a, b *cache.QueueTicket) {
	matchID, err := s.manager.CreateMatch(ctx,
		battle.PlayerRef{PlayerID: a.PlayerID, GradeLevel: a.GradeLevel},
		battle.PlayerRef{PlayerID: b.PlayerID, GradeLevel: b.GradeLevel},
	)
	if err != nil {
		log.Printf("matchmaking: create match failed for %s vs %s: %v", a.PlayerID, b.PlayerID, err)
		return
	}

	meta := &cache.MatchMeta{
		MatchID:   matchID,
		PlayerIDs: [2]string{a.PlayerID, b.PlayerID},
		Status:    string(model.MatchWaiting),
		CreatedAt: time.Now(),
	}
	if err := s.matchCache.SetMeta(ctx, meta); err != nil {
		log.Printf("matchmaking: match meta write failed for %s: %v", matchID, err)
	}
	log.Printf("matchmaking: paired %s vs %s in match %s", a.PlayerID, b.PlayerID, matchID)
}
