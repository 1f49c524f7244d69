package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"triviamon/internal/model"
	"triviamon/internal/repository"
)

var (
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrInvalidNickname = errors.New("nickname must be 2-24 characters")
	ErrInvalidGrade    = errors.New("grade level must be between 1 and 12")
)

// starterTeam is granted to every new guest so they can battle right away
var starterTeam = []struct {
	name    string
	species string
	maxHP   int
}{
	{"Sparky", "electric_mouse", 40},
	{"Bulby", "plant_lizard", 44},
	{"Squirt", "water_turtle", 42},
}

var starterItems = map[string]int{
	"heal_r1":  3,
	"pokeball": 1,
}

// AuthService handles guest login and token validation
type AuthService struct {
	playerRepo    repository.PlayerRepo
	pokemonRepo   repository.PokemonRepo
	inventoryRepo repository.InventoryRepo
	jwtSecret     []byte
}

// NewAuthService creates a new auth service
func NewAuthService(
	playerRepo repository.PlayerRepo,
	pokemonRepo repository.PokemonRepo,
	inventoryRepo repository.InventoryRepo,
	jwtSecret string,
) *AuthService {
	return &AuthService{
		playerRepo:    playerRepo,
		pokemonRepo:   pokemonRepo,
		inventoryRepo: inventoryRepo,
		jwtSecret:     []byte(jwtSecret),
	}
}

// GuestLogin creates a player with a starter team and returns a session token
func (s *AuthService) GuestLogin(ctx context.Context, req *model.GuestLoginRequest) (*model.GuestLoginResponse, error) {
	nickname := strings.TrimSpace(req.Nickname)
	if len(nickname) < 2 || len(nickname) > 24 {
		return nil, ErrInvalidNickname
	}
	if req.GradeLevel < 1 || req.GradeLevel > 12 {
		return nil, ErrInvalidGrade
	}

	playerID := "p_" + uuid.New().String()[:8]
	player := &model.Player{
		ID:         playerID,
		Nickname:   nickname,
		GradeLevel: req.GradeLevel,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	for slot, st := range starterTeam {
		p := &model.Pokemon{
			OwnerID:   playerID,
			Name:      st.name,
			Species:   st.species,
			Level:     5,
			HP:        st.maxHP,
			MaxHP:     st.maxHP,
			InTeam:    true,
			TeamSlot:  slot,
			CreatedAt: time.Now(),
		}
		if err := s.pokemonRepo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to grant starter: %w", err)
		}
	}
	for itemID, qty := range starterItems {
		if err := s.inventoryRepo.Grant(ctx, playerID, itemID, qty); err != nil {
			return nil, fmt.Errorf("failed to grant starter items: %w", err)
		}
	}

	token, err := s.generateToken(player)
	if err != nil {
		return nil, err
	}
	return &model.GuestLoginResponse{
		Token:    token,
		PlayerID: playerID,
	}, nil
}

func (s *AuthService) generateToken(player *model.Player) (string, error) {
	claims := &model.PlayerClaims{
		PlayerID:   player.ID,
		Nickname:   player.Nickname,
		GradeLevel: player.GradeLevel,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidatePlayerToken validates a player JWT and returns claims
func (s *AuthService) ValidatePlayerToken(tokenString string) (*model.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.PlayerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
