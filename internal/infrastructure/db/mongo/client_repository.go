package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kodestudio/requirements-api/internal/core/domain"
	"github.com/kodestudio/requirements-api/internal/core/ports"
)

const collectionClients = "clients"

type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(collectionClients)}
}

func (r *ClientRepository) Insert(ctx context.Context, doc map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", fmt.Errorf("insert client: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert client: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (map[string]any, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bson.M
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return stringifyID(doc), nil
}

// List pages through client profiles; name and city filter by
// case-insensitive substring.
func (r *ClientRepository) List(ctx context.Context, q ports.ClientListQuery) ([]map[string]any, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if q.Name != "" {
		filter["name"] = substringRegex(q.Name)
	}
	if q.City != "" {
		filter["city"] = substringRegex(q.City)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	skip := int64(q.Page-1) * int64(q.PerPage)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(q.PerPage))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}

	docs, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Search(ctx context.Context, term string, limit int) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	re := substringRegex(term)
	filter := bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"email": re},
		bson.M{"city": re},
	}}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return decodeAll(ctx, cur)
}

// UpdateByEmail syncs every profile sharing the email. Duplicate rows per
// email exist by design, so this is an UpdateMany. Zero matches is fine.
func (r *ClientRepository) UpdateByEmail(ctx context.Context, email string, fields map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateMany(ctx, bson.M{"email": email}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("sync clients by email: %w", err)
	}
	return nil
}
