package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"matchroom/internal/model"
)

type RatingRepo interface {
	AdjustRating(ctx context.Context, playerID string, delta int) error
	GetByPlayerID(ctx context.Context, playerID string) (*model.Rating, error)
}

type ratingRepo struct {
	collection *mongo.Collection
}

func NewRatingRepo(client *mongo.Client, database string) RatingRepo {
	db := client.Database(database)
	return &ratingRepo{
		collection: db.Collection("ratings"),
	}
}

// AdjustRating applies a rating delta as an upsert, also bumping the win or
// loss counter to match the sign of the delta.
func (r *ratingRepo) AdjustRating(ctx context.Context, playerID string, delta int) error {
	inc := bson.M{"elo": delta}
	if delta > 0 {
		inc["wins"] = 1
	} else if delta < 0 {
		inc["losses"] = 1
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": playerID},
		bson.M{
			"$inc": inc,
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *ratingRepo) GetByPlayerID(ctx context.Context, playerID string) (*model.Rating, error) {
	var rating model.Rating
	err := r.collection.FindOne(ctx, bson.M{"_id": playerID}).Decode(&rating)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}
