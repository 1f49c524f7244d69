package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"triviamon/internal/model"
)

type PokemonRepo interface {
	Create(ctx context.Context, p *model.Pokemon) error
	GetByID(ctx context.Context, id string) (*model.Pokemon, error)
	// GetTeam returns the owner's fielded pokemon ordered by team slot
	GetTeam(ctx context.Context, ownerID string) ([]*model.Pokemon, error)
	Update(ctx context.Context, p *model.Pokemon) error
}

type pokemonRepo struct {
	collection *mongo.Collection
}

func NewPokemonRepo(db *mongo.Database) PokemonRepo {
	return &pokemonRepo{
		collection: db.Collection("pokemon"),
	}
}

func (r *pokemonRepo) Create(ctx context.Context, p *model.Pokemon) error {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

func (r *pokemonRepo) GetByID(ctx context.Context, id string) (*model.Pokemon, error) {
	var p model.Pokemon
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *pokemonRepo) GetTeam(ctx context.Context, ownerID string) ([]*model.Pokemon, error) {
	opts := options.Find().SetSort(bson.D{{Key: "teamSlot", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID, "inTeam": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var team []*model.Pokemon
	if err = cursor.All(ctx, &team); err != nil {
		return nil, err
	}
	return team, nil
}

func (r *pokemonRepo) Update(ctx context.Context, p *model.Pokemon) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	return err
}
