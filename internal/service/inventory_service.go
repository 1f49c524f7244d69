package service

import (
	"context"
	"fmt"

	"triviamon/internal/model"
	"triviamon/internal/repository"
)

// InventoryService exposes owned consumables to battles and records use
type InventoryService struct {
	inventoryRepo repository.InventoryRepo
}

// NewInventoryService creates a new inventory service
func NewInventoryService(inventoryRepo repository.InventoryRepo) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
	}
}

// LoadItems returns the player's usable item stacks keyed by item id.
// Stacks for ids missing from the catalog are ignored.
func (s *InventoryService) LoadItems(ctx context.Context, playerID string) (map[string]int, error) {
	stacks, err := s.inventoryRepo.GetByOwner(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	items := make(map[string]int)
	for _, stack := range stacks {
		if _, ok := model.ItemCatalog[stack.ItemID]; !ok {
			continue
		}
		if stack.Quantity > 0 {
			items[stack.ItemID] += stack.Quantity
		}
	}
	return items, nil
}

// ConsumeItem decrements a player's item stack
func (s *InventoryService) ConsumeItem(ctx context.Context, playerID, itemID string, quantity int) error {
	return s.inventoryRepo.Consume(ctx, playerID, itemID, quantity)
}

// Grant adds items to a player's inventory
func (s *InventoryService) Grant(ctx context.Context, playerID, itemID string, quantity int) error {
	if _, ok := model.ItemCatalog[itemID]; !ok {
		return fmt.Errorf("unknown item %s", itemID)
	}
	return s.inventoryRepo.Grant(ctx, playerID, itemID, quantity)
}
