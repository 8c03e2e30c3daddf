package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores attachments, revisions and document links in three
// collections of one database. Numeric ids come from a counters collection.
type MongoRepo struct {
	attachments *mongo.Collection
	revisions   *mongo.Collection
	links       *mongo.Collection
	counters    *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	m := &MongoRepo{
		attachments: db.Collection("attachments"),
		revisions:   db.Collection("attachment_revisions"),
		links:       db.Collection("document_attachments"),
		counters:    db.Collection("counters"),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = m.attachments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "mindtouchAttachmentId", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	_, _ = m.revisions.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "attachmentId", Value: 1}}})
	_, _ = m.links.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "documentId", Value: 1}, {Key: "attachmentId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return m
}

func (m *MongoRepo) nextID(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.counters.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

func (m *MongoRepo) CreateAttachment(ctx context.Context, a *attachment.Attachment) error {
	id, err := m.nextID(ctx, "attachments")
	if err != nil {
		return err
	}
	a.ID = id
	if _, err := m.attachments.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateLegacyID
		}
		return err
	}
	return nil
}

func (m *MongoRepo) findAttachment(ctx context.Context, filter bson.M) (*attachment.Attachment, error) {
	var a attachment.Attachment
	if err := m.attachments.FindOne(ctx, filter).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (m *MongoRepo) Get(ctx context.Context, id int64) (*attachment.Attachment, error) {
	return m.findAttachment(ctx, bson.M{"_id": id})
}

func (m *MongoRepo) GetByMindtouchID(ctx context.Context, legacyID int64) (*attachment.Attachment, error) {
	return m.findAttachment(ctx, bson.M{"mindtouchAttachmentId": legacyID})
}

func (m *MongoRepo) DeleteAttachment(ctx context.Context, id int64) error {
	res, err := m.attachments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := m.revisions.DeleteMany(ctx, bson.M{"attachmentId": id}); err != nil {
		return err
	}
	_, err = m.links.DeleteMany(ctx, bson.M{"attachmentId": id})
	return err
}

func (m *MongoRepo) SaveRevision(ctx context.Context, rev *attachment.Revision) error {
	if _, err := m.Get(ctx, rev.AttachmentID); err != nil {
		return err
	}
	id, err := m.nextID(ctx, "attachment_revisions")
	if err != nil {
		return err
	}
	rev.ID = id
	if _, err := m.revisions.InsertOne(ctx, rev); err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"currentRevisionId": rev.ID, "title": rev.Title, "modified": rev.Created}}
	_, err = m.attachments.UpdateOne(ctx, bson.M{"_id": rev.AttachmentID}, update)
	return err
}

func (m *MongoRepo) GetRevision(ctx context.Context, id int64) (*attachment.Revision, error) {
	var r attachment.Revision
	if err := m.revisions.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (m *MongoRepo) ListRevisions(ctx context.Context, attachmentID int64) ([]*attachment.Revision, error) {
	cur, err := m.revisions.Find(ctx, bson.M{"attachmentId": attachmentID}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*attachment.Revision{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) Attach(ctx context.Context, link *attachment.DocumentAttachment) error {
	filter := bson.M{"documentId": link.DocumentID, "attachmentId": link.AttachmentID}
	update := bson.M{
		"$set":         bson.M{"attachedById": link.AttachedByID, "name": link.Name, "isOriginal": link.IsOriginal},
		"$setOnInsert": bson.M{"created": link.Created},
	}
	_, err := m.links.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (m *MongoRepo) ListByDocument(ctx context.Context, documentID string) ([]*attachment.DocumentAttachment, error) {
	cur, err := m.links.Find(ctx, bson.M{"documentId": documentID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*attachment.DocumentAttachment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
