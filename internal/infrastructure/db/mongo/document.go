package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kodestudio/requirements-api/internal/core/domain"
)

// parseID converts a caller-facing hex identifier to the store's native
// ObjectID. Malformed ids fail with domain.ErrInvalidID before any query.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

// stringifyID renders the document's native _id as a hex string. Identifiers
// never cross the repository boundary in their binary form.
func stringifyID(doc bson.M) map[string]any {
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		doc["_id"] = oid.Hex()
	}
	return map[string]any(doc)
}

// decodeAll drains a cursor into id-stringified documents.
func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]map[string]any, error) {
	defer cur.Close(ctx)

	docs := []map[string]any{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, stringifyID(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return docs, nil
}

// substringRegex builds a case-insensitive substring matcher with the term
// treated literally.
func substringRegex(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}
