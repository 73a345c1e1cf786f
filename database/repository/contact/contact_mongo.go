package contactRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"decorbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoContactRepo implements ContactRepository using MongoDB.
type MongoContactRepo struct {
	coll *mongo.Collection
}

func NewMongoContactRepo(ctx context.Context, db *mongo.Database) (*MongoContactRepo, error) {
	r := &MongoContactRepo{coll: db.Collection("contacts")}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoContactRepo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create contact indexes: %w", err)
	}
	return nil
}

func (r *MongoContactRepo) Create(ctx context.Context, draft models.ContactDraft, now time.Time) (*models.ContactMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	m := newContact(draft, now)
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return nil, models.Infra("insert contact", err)
	}
	return &m, nil
}

func (r *MongoContactRepo) UpdateStatus(ctx context.Context, id string, status models.ContactStatus, now time.Time) (*models.ContactMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m models.ContactMessage
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "contact", ID: id, Err: err}
		}
		return nil, models.Infra("update contact status", err)
	}
	return &m, nil
}

func (r *MongoContactRepo) List(ctx context.Context, filter models.ContactFilter) (*models.ContactPage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	page, limit := normalizePage(filter.Page, filter.Limit)
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, models.Infra("count contacts", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, models.Infra("list contacts", err)
	}
	items := make([]models.ContactMessage, 0, limit)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, models.Infra("decode contacts", err)
	}
	return &models.ContactPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (r *MongoContactRepo) CountByStatus(ctx context.Context, status models.ContactStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, models.Infra("count contacts", err)
	}
	return n, nil
}
