package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims are JWT claims for player session tokens
type PlayerClaims struct {
	PlayerID   string `json:"playerId"`
	Nickname   string `json:"nickname"`
	GradeLevel int    `json:"gradeLevel"`
	jwt.RegisteredClaims
}

// GuestLoginRequest is the request body for guest login
type GuestLoginRequest struct {
	Nickname   string `json:"nickname"`
	GradeLevel int    `json:"gradeLevel"`
}

// GuestLoginResponse is returned after a successful guest login
type GuestLoginResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
}
