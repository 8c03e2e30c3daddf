package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository mirrors identity-provider users locally so attachment
// revisions and document links can reference a stable creator id.
type UserRepository interface {
	UpsertBySub(ctx context.Context, u *models.User) (*models.User, error)
	GetBySub(ctx context.Context, sub string) (*models.User, error)
}

type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository ensures a unique index on sub; index failures are
// not fatal since lookups still work without it.
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sub", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &MongoUserRepository{col: col}
}

// UpsertBySub refreshes the profile and permission set from the latest
// claims on every authenticated request.
func (r *MongoUserRepository) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":       u.Email,
			"name":        u.Name,
			"isStaff":     u.IsStaff,
			"isSuperuser": u.IsSuperuser,
			"permissions": u.Permissions,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved models.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"sub": u.Sub}, update, opts).Decode(&saved)
	if errors.Is(err, mongo.ErrNoDocuments) {
		u.UpdatedAt = now
		return u, nil
	}
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", u.Sub, err)
	}
	return &saved, nil
}

// GetBySub returns nil, nil for unknown subjects.
func (r *MongoUserRepository) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"sub": sub}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", sub, err)
	}
	return &u, nil
}
