package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kodestudio/requirements-api/internal/core/domain"
	"github.com/kodestudio/requirements-api/internal/core/ports"
)

const collectionRequirements = "requirements"

type RequirementRepository struct {
	col *mongo.Collection
}

func NewRequirementRepository(db *mongo.Database) *RequirementRepository {
	return &RequirementRepository{col: db.Collection(collectionRequirements)}
}

// Insert persists a new requirement document and returns its generated id.
func (r *RequirementRepository) Insert(ctx context.Context, doc map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", fmt.Errorf("insert requirement: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert requirement: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// FindByID retrieves a requirement with its identifier stringified.
func (r *RequirementRepository) FindByID(ctx context.Context, id string) (map[string]any, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bson.M
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequirementNotFound
		}
		return nil, fmt.Errorf("find requirement: %w", err)
	}
	return stringifyID(doc), nil
}

// List returns one page of requirements plus the total count, both computed
// from the same filter.
func (r *RequirementRepository) List(ctx context.Context, q ports.ListQuery) ([]map[string]any, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	for k, v := range q.Filters {
		filter[k] = v
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count requirements: %w", err)
	}

	skip := int64(q.Page-1) * int64(q.PerPage)
	opts := options.Find().
		SetSort(bson.D{{Key: q.SortBy, Value: q.SortDir}}).
		SetSkip(skip).
		SetLimit(int64(q.PerPage))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list requirements: %w", err)
	}

	docs, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Update applies a partial $set. The caller has already stripped identifier
// fields and stamped updated_at.
func (r *RequirementRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("update requirement: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRequirementNotFound
	}
	return nil
}

func (r *RequirementRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete requirement: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRequirementNotFound
	}
	return nil
}

// Search matches term case-insensitively across title, description,
// requestor name and department.
func (r *RequirementRepository) Search(ctx context.Context, term string, limit int) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	re := substringRegex(term)
	filter := bson.M{"$or": bson.A{
		bson.M{"projectTitle": re},
		bson.M{"description": re},
		bson.M{"requestorName": re},
		bson.M{"department": re},
	}}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search requirements: %w", err)
	}
	return decodeAll(ctx, cur)
}

// Stats aggregates grouped counts by status, priority and department.
func (r *RequirementRepository) Stats(ctx context.Context) (*ports.RequirementStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count requirements: %w", err)
	}

	stats := &ports.RequirementStats{Total: total}
	if stats.StatusCounts, err = r.groupCounts(ctx, "status"); err != nil {
		return nil, err
	}
	if stats.PriorityCounts, err = r.groupCounts(ctx, "priority"); err != nil {
		return nil, err
	}
	if stats.DepartmentCounts, err = r.groupCounts(ctx, "department"); err != nil {
		return nil, err
	}
	return stats, nil
}

// groupCounts runs a $group/$sum pipeline over one field. Documents missing
// the field land under the empty key.
func (r *RequirementRepository) groupCounts(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s counts: %w", field, err)
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Key   *string `bson:"_id"`
			Count int64   `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode %s counts: %w", field, err)
		}
		key := ""
		if row.Key != nil {
			key = *row.Key
		}
		counts[key] = row.Count
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor %s counts: %w", field, err)
	}
	return counts, nil
}

// EnsureIndexes creates the indexes backing list filters and the default
// sort order.
func (r *RequirementRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "department", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
