package service

import (
	"context"
	"fmt"

	"triviamon/internal/model"
	"triviamon/internal/repository"
)

const (
	battleStatusSlots = 2
	levelUpMaxHPGain  = 5
)

// RosterService projects persistent pokemon into battle rosters and writes
// terminal HP and XP deltas back
type RosterService struct {
	pokemonRepo repository.PokemonRepo
}

// NewRosterService creates a new roster service
func NewRosterService(pokemonRepo repository.PokemonRepo) *RosterService {
	return &RosterService{
		pokemonRepo: pokemonRepo,
	}
}

// LoadTeam returns the player's fielded team as battle roster entries.
// Pokemon at zero HP are left out; they need healing before they can fight.
func (s *RosterService) LoadTeam(ctx context.Context, playerID string) ([]model.RosterEntry, error) {
	team, err := s.pokemonRepo.GetTeam(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}

	entries := make([]model.RosterEntry, 0, len(team))
	for _, p := range team {
		if p.HP <= 0 {
			continue
		}
		entries = append(entries, model.RosterEntry{
			PokemonID:      p.ID,
			Name:           p.Name,
			Level:          p.Level,
			HP:             p.HP,
			MaxHP:          p.MaxHP,
			MaxStatusSlots: battleStatusSlots,
		})
	}
	return entries, nil
}

// ApplyHPDelta adjusts a pokemon's persistent HP by the match outcome
func (s *RosterService) ApplyHPDelta(ctx context.Context, pokemonID string, delta int) error {
	p, err := s.pokemonRepo.GetByID(ctx, pokemonID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("pokemon %s not found", pokemonID)
	}

	p.HP += delta
	if p.HP < 0 {
		p.HP = 0
	}
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
	return s.pokemonRepo.Update(ctx, p)
}

// ApplyXPGain adds XP to a pokemon, applying any level-ups
func (s *RosterService) ApplyXPGain(ctx context.Context, pokemonID string, amount int) (*model.XPGainResult, error) {
	p, err := s.pokemonRepo.GetByID(ctx, pokemonID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("pokemon %s not found", pokemonID)
	}

	p.XP += amount
	leveled := false
	for p.XP >= p.XPToNextLevel() {
		p.XP -= p.XPToNextLevel()
		p.Level++
		p.MaxHP += levelUpMaxHPGain
		p.HP = p.MaxHP
		leveled = true
	}

	if err := s.pokemonRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return &model.XPGainResult{
		PokemonID: pokemonID,
		LeveledUp: leveled,
		NewLevel:  p.Level,
	}, nil
}
