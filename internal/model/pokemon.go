package model

import "time"

// Pokemon is the persistent record backing a roster entry
type Pokemon struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	OwnerID   string    `json:"ownerId" bson:"ownerId"`
	Name      string    `json:"name" bson:"name"`
	Species   string    `json:"species" bson:"species"`
	Level     int       `json:"level" bson:"level"`
	XP        int       `json:"xp" bson:"xp"`
	HP        int       `json:"hp" bson:"hp"`
	MaxHP     int       `json:"maxHp" bson:"maxHp"`
	InTeam    bool      `json:"inTeam" bson:"inTeam"`
	TeamSlot  int       `json:"teamSlot" bson:"teamSlot"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// XPToNextLevel is the threshold for the next level-up
func (p *Pokemon) XPToNextLevel() int {
	return p.Level * 100
}

// Player is a registered trainer
type Player struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Nickname     string    `json:"nickname" bson:"nickname"`
	GradeLevel   int       `json:"gradeLevel" bson:"gradeLevel"`
	Wins         int       `json:"wins" bson:"wins"`
	Losses       int       `json:"losses" bson:"losses"`
	LastActiveAt time.Time `json:"lastActiveAt" bson:"lastActiveAt"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// InventoryItem is one owned consumable stack
type InventoryItem struct {
	ID       string `json:"id" bson:"_id,omitempty"`
	OwnerID  string `json:"ownerId" bson:"ownerId"`
	ItemID   string `json:"itemId" bson:"itemId"`
	Quantity int    `json:"quantity" bson:"quantity"`
}

// XPGainResult reports the outcome of applying XP to a pokemon
type XPGainResult struct {
	PokemonID string `json:"pokemonId"`
	LeveledUp bool   `json:"leveledUp"`
	NewLevel  int    `json:"newLevel"`
}
