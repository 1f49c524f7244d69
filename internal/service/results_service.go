package service

import (
	"context"
	"fmt"
	"log"

	"triviamon/internal/cache"
	"triviamon/internal/model"
	"triviamon/internal/repository"
)

// ResultsService archives finished matches and settles ranking side effects
type ResultsService struct {
	matchRepo   repository.MatchRepo
	playerRepo  repository.PlayerRepo
	leaderboard cache.LeaderboardCache
	matchCache  cache.MatchCache
}

// NewResultsService creates a new results service
func NewResultsService(
	matchRepo repository.MatchRepo,
	playerRepo repository.PlayerRepo,
	leaderboard cache.LeaderboardCache,
	matchCache cache.MatchCache,
) *ResultsService {
	return &ResultsService{
		matchRepo:   matchRepo,
		playerRepo:  playerRepo,
		leaderboard: leaderboard,
		matchCache:  matchCache,
	}
}

// RecordResult persists the terminal state of a match. The archive write is
// authoritative; counter and leaderboard updates are best effort.
func (s *ResultsService) RecordResult(ctx context.Context, result *model.MatchResult) error {
	if err := s.matchRepo.Archive(ctx, result); err != nil {
		return fmt.Errorf("failed to archive match %s: %w", result.MatchID, err)
	}

	// a draw updates neither counter
	if result.Winner >= 0 {
		for i, pid := range result.PlayerIDs {
			if err := s.playerRepo.RecordOutcome(ctx, pid, i == result.Winner); err != nil {
				log.Printf("results: outcome update failed for %s: %v", pid, err)
			}
		}
	}

	for i, pid := range result.PlayerIDs {
		if result.ScoreDelta[i] == 0 {
			continue
		}
		if err := s.leaderboard.AddScore(ctx, pid, result.ScoreDelta[i]); err != nil {
			log.Printf("results: leaderboard update failed for %s: %v", pid, err)
		}
	}

	if err := s.matchCache.Delete(ctx, result.MatchID); err != nil {
		log.Printf("results: match meta cleanup failed for %s: %v", result.MatchID, err)
	}
	return nil
}

// RecentResults returns a player's latest archived matches
func (s *ResultsService) RecentResults(ctx context.Context, playerID string, limit int64) ([]*model.MatchResult, error) {
	return s.matchRepo.RecentByPlayer(ctx, playerID, limit)
}

// TopPlayers returns the global ladder standings
func (s *ResultsService) TopPlayers(ctx context.Context, limit int) ([]cache.LeaderboardEntry, error) {
	entries, err := s.leaderboard.GetTop(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		player, err := s.playerRepo.GetByID(ctx, entries[i].PlayerID)
		if err == nil && player != nil {
			entries[i].Nickname = player.Nickname
		}
	}
	return entries, nil
}
