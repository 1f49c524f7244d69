package service

import (
	"context"
	"fmt"
	"testing"

	"triviamon/internal/model"
)

type mockPokemonRepo struct {
	byID map[string]*model.Pokemon
	team []*model.Pokemon
}

func (m *mockPokemonRepo) Create(ctx context.Context, p *model.Pokemon) error {
	if m.byID == nil {
		m.byID = make(map[string]*model.Pokemon)
	}
	// Mirror the real repo's contract of assigning an ID when empty.
	if p.ID == "" {
		p.ID = fmt.Sprintf("mock_%d", len(m.byID)+1)
	}
	m.byID[p.ID] = p
	return nil
}

func (m *mockPokemonRepo) GetByID(ctx context.Context, id string) (*model.Pokemon, error) {
	return m.byID[id], nil
}

func (m *mockPokemonRepo) GetTeam(ctx context.Context, ownerID string) ([]*model.Pokemon, error) {
	return m.team, nil
}

func (m *mockPokemonRepo) Update(ctx context.Context, p *model.Pokemon) error {
	m.byID[p.ID] = p
	return nil
}

func TestLoadTeamSkipsFaintedPokemon(t *testing.T) {
	repo := &mockPokemonRepo{
		team: []*model.Pokemon{
			{ID: "a", Name: "Sparky", Level: 5, HP: 40, MaxHP: 40},
			{ID: "b", Name: "Bulby", Level: 6, HP: 0, MaxHP: 44},
			{ID: "c", Name: "Squirt", Level: 4, HP: 12, MaxHP: 42},
		},
	}
	svc := NewRosterService(repo)

	entries, err := svc.LoadTeam(context.Background(), "p1")
	if err != nil {
		t.Fatalf("LoadTeam: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (fainted skipped)", len(entries))
	}
	if entries[0].PokemonID != "a" || entries[1].PokemonID != "c" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].MaxStatusSlots != battleStatusSlots {
		t.Fatalf("status slots = %d, want %d", entries[0].MaxStatusSlots, battleStatusSlots)
	}
}

func TestApplyHPDeltaClamps(t *testing.T) {
	repo := &mockPokemonRepo{
		byID: map[string]*model.Pokemon{
			"a": {ID: "a", HP: 10, MaxHP: 40},
		},
	}
	svc := NewRosterService(repo)

	if err := svc.ApplyHPDelta(context.Background(), "a", -25); err != nil {
		t.Fatalf("ApplyHPDelta: %v", err)
	}
	if repo.byID["a"].HP != 0 {
		t.Fatalf("HP = %d, want clamp to 0", repo.byID["a"].HP)
	}

	if err := svc.ApplyHPDelta(context.Background(), "a", 100); err != nil {
		t.Fatalf("ApplyHPDelta: %v", err)
	}
	if repo.byID["a"].HP != 40 {
		t.Fatalf("HP = %d, want clamp to max 40", repo.byID["a"].HP)
	}
}

func TestApplyXPGainLevelsUp(t *testing.T) {
	repo := &mockPokemonRepo{
		byID: map[string]*model.Pokemon{
			"a": {ID: "a", Level: 1, XP: 90, HP: 20, MaxHP: 30},
		},
	}
	svc := NewRosterService(repo)

	gain, err := svc.ApplyXPGain(context.Background(), "a", 120)
	if err != nil {
		t.Fatalf("ApplyXPGain: %v", err)
	}
	if !gain.LeveledUp || gain.NewLevel != 2 {
		t.Fatalf("gain = %+v, want level-up to 2", gain)
	}

	p := repo.byID["a"]
	if p.XP != 110 {
		t.Fatalf("leftover XP = %d, want 110", p.XP)
	}
	if p.MaxHP != 35 || p.HP != 35 {
		t.Fatalf("HP %d/%d, want full 35/35 after level-up", p.HP, p.MaxHP)
	}
}

func TestApplyXPGainNoLevelUp(t *testing.T) {
	repo := &mockPokemonRepo{
		byID: map[string]*model.Pokemon{
			"a": {ID: "a", Level: 5, XP: 100, HP: 20, MaxHP: 40},
		},
	}
	svc := NewRosterService(repo)

	gain, err := svc.ApplyXPGain(context.Background(), "a", 25)
	if err != nil {
		t.Fatalf("ApplyXPGain: %v", err)
	}
	if gain.LeveledUp {
		t.Fatalf("unexpected level-up: %+v", gain)
	}
	if repo.byID["a"].XP != 125 {
		t.Fatalf("XP = %d, want 125", repo.byID["a"].XP)
	}
	if repo.byID["a"].HP != 20 {
		t.Fatalf("HP = %d, should be untouched without level-up", repo.byID["a"].HP)
	}
}
