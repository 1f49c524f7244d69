package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"triviamon/internal/model"
)

type PlayerRepo interface {
	Create(ctx context.Context, player *model.Player) error
	GetByID(ctx context.Context, id string) (*model.Player, error)
	// RecordOutcome bumps the win or loss counter and refreshes activity
	RecordOutcome(ctx context.Context, id string, won bool) error
	Touch(ctx context.Context, id string) error
}

type playerRepo struct {
	collection *mongo.Collection
}

func NewPlayerRepo(db *mongo.Database) PlayerRepo {
	return &playerRepo{
		collection: db.Collection("players"),
	}
}

func (r *playerRepo) Create(ctx context.Context, player *model.Player) error {
	if player.ID == "" {
		player.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	player.CreatedAt = now
	player.LastActiveAt = now
	_, err := r.collection.InsertOne(ctx, player)
	return err
}

func (r *playerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	var player model.Player
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepo) RecordOutcome(ctx context.Context, id string, won bool) error {
	field := "losses"
	if won {
		field = "wins"
	}
	update := bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"lastActiveAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *playerRepo) Touch(ctx context.Context, id string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastActiveAt": time.Now()}})
	return err
}
