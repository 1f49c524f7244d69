package service

import (
	"context"
	"errors"
	"testing"

	"triviamon/internal/model"
)

type mockPlayerRepo struct {
	created []*model.Player
}

func (m *mockPlayerRepo) Create(ctx context.Context, p *model.Player) error {
	m.created = append(m.created, p)
	return nil
}

func (m *mockPlayerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	return nil, nil
}

func (m *mockPlayerRepo) RecordOutcome(ctx context.Context, id string, won bool) error {
	return nil
}

func (m *mockPlayerRepo) Touch(ctx context.Context, id string) error {
	return nil
}

type mockInventoryRepo struct {
	granted map[string]int
}

func (m *mockInventoryRepo) GetByOwner(ctx context.Context, ownerID string) ([]*model.InventoryItem, error) {
	return nil, nil
}

func (m *mockInventoryRepo) Grant(ctx context.Context, ownerID, itemID string, quantity int) error {
	if m.granted == nil {
		m.granted = make(map[string]int)
	}
	m.granted[itemID] += quantity
	return nil
}

func (m *mockInventoryRepo) Consume(ctx context.Context, ownerID, itemID string, quantity int) error {
	return nil
}

func newTestAuthService() (*AuthService, *mockPlayerRepo, *mockPokemonRepo, *mockInventoryRepo) {
	players := &mockPlayerRepo{}
	pokemon := &mockPokemonRepo{byID: map[string]*model.Pokemon{}}
	inventory := &mockInventoryRepo{}
	return NewAuthService(players, pokemon, inventory, "test-secret"), players, pokemon, inventory
}

func TestGuestLoginGrantsStarters(t *testing.T) {
	svc, players, pokemon, inventory := newTestAuthService()

	resp, err := svc.GuestLogin(context.Background(), &model.GuestLoginRequest{
		Nickname:   "Ash",
		GradeLevel: 4,
	})
	if err != nil {
		t.Fatalf("GuestLogin: %v", err)
	}
	if resp.Token == "" || resp.PlayerID == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}

	if len(players.created) != 1 {
		t.Fatalf("created %d players, want 1", len(players.created))
	}
	if len(pokemon.byID) != len(starterTeam) {
		t.Fatalf("granted %d starters, want %d", len(pokemon.byID), len(starterTeam))
	}
	for itemID, qty := range starterItems {
		if inventory.granted[itemID] != qty {
			t.Fatalf("granted %dx %s, want %d", inventory.granted[itemID], itemID, qty)
		}
	}

	claims, err := svc.ValidatePlayerToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidatePlayerToken: %v", err)
	}
	if claims.PlayerID != resp.PlayerID || claims.Nickname != "Ash" || claims.GradeLevel != 4 {
		t.Fatalf("claims round-trip mismatch: %+v", claims)
	}
}

func TestGuestLoginValidation(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, err := svc.GuestLogin(context.Background(), &model.GuestLoginRequest{Nickname: "x", GradeLevel: 4})
	if !errors.Is(err, ErrInvalidNickname) {
		t.Fatalf("err = %v, want ErrInvalidNickname", err)
	}

	_, err = svc.GuestLogin(context.Background(), &model.GuestLoginRequest{Nickname: "Misty", GradeLevel: 13})
	if !errors.Is(err, ErrInvalidGrade) {
		t.Fatalf("err = %v, want ErrInvalidGrade", err)
	}
}

func TestValidatePlayerTokenRejectsGarbage(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.ValidatePlayerToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}

	// token signed with a different secret must fail
	other := NewAuthService(&mockPlayerRepo{}, &mockPokemonRepo{byID: map[string]*model.Pokemon{}}, &mockInventoryRepo{}, "other-secret")
	resp, err := other.GuestLogin(context.Background(), &model.GuestLoginRequest{Nickname: "Brock", GradeLevel: 5})
	if err != nil {
		t.Fatalf("GuestLogin: %v", err)
	}
	if _, err := svc.ValidatePlayerToken(resp.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken for foreign signature", err)
	}
}
