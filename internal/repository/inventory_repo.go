package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"triviamon/internal/model"
)

type InventoryRepo interface {
	GetByOwner(ctx context.Context, ownerID string) ([]*model.InventoryItem, error)
	Grant(ctx context.Context, ownerID, itemID string, quantity int) error
	// Consume decrements an owned stack; fails if the owner holds fewer
	// than quantity
	Consume(ctx context.Context, ownerID, itemID string, quantity int) error
}

type inventoryRepo struct {
	collection *mongo.Collection
}

func NewInventoryRepo(db *mongo.Database) InventoryRepo {
	return &inventoryRepo{
		collection: db.Collection("inventory"),
	}
}

func (r *inventoryRepo) GetByOwner(ctx context.Context, ownerID string) ([]*model.InventoryItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*model.InventoryItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inventoryRepo) Grant(ctx context.Context, ownerID, itemID string, quantity int) error {
	filter := bson.M{"ownerId": ownerID, "itemId": itemID}
	update := bson.M{
		"$inc":         bson.M{"quantity": quantity},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID().Hex()},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *inventoryRepo) Consume(ctx context.Context, ownerID, itemID string, quantity int) error {
	filter := bson.M{
		"ownerId":  ownerID,
		"itemId":   itemID,
		"quantity": bson.M{"$gte": quantity},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"quantity": -quantity}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("player %s does not hold %dx %s", ownerID, quantity, itemID)
	}
	return nil
}
