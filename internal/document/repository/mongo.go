package repository

import (
	"context"
	"time"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements a MongoDB-backed repository for documents.
// Documents are addressed by a string "id" field and by the unique
// (locale, slug) pair.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "locale", Value: 1}, {Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	now := time.Now().UTC()
	if doc.ID == "" {
		doc.ID = "doc_" + primitive.NewObjectID().Hex()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrExists
		}
		return "", err
	}
	return doc.ID, nil
}

func (m *MongoRepo) findOne(ctx context.Context, filter bson.M) (*document.Document, error) {
	var d document.Document
	if err := m.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	return m.findOne(ctx, bson.M{"id": id})
}

func (m *MongoRepo) GetByPath(ctx context.Context, locale, slug string) (*document.Document, error) {
	return m.findOne(ctx, bson.M{"locale": locale, "slug": slug})
}

func (m *MongoRepo) List(ctx context.Context) ([]*document.Document, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}
