package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"triviamon/internal/model"
)

type MatchRepo interface {
	// Archive stores the terminal result of a finished match
	Archive(ctx context.Context, result *model.MatchResult) error
	GetByMatchID(ctx context.Context, matchID string) (*model.MatchResult, error)
	// RecentByPlayer returns a player's latest results, newest first
	RecentByPlayer(ctx context.Context, playerID string, limit int64) ([]*model.MatchResult, error)
}

type matchRepo struct {
	collection *mongo.Collection
}

func NewMatchRepo(db *mongo.Database) MatchRepo {
	return &matchRepo{
		collection: db.Collection("matches"),
	}
}

func (r *matchRepo) Archive(ctx context.Context, result *model.MatchResult) error {
	_, err := r.collection.InsertOne(ctx, result)
	return err
}

func (r *matchRepo) GetByMatchID(ctx context.Context, matchID string) (*model.MatchResult, error) {
	var result model.MatchResult
	err := r.collection.FindOne(ctx, bson.M{"matchId": matchID}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *matchRepo) RecentByPlayer(ctx context.Context, playerID string, limit int64) ([]*model.MatchResult, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "endedAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"playerIds": playerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*model.MatchResult
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
