package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListingRepository implements repository.Listings over one collection
type ListingRepository[T models.Listing] struct {
	collection *mongo.Collection
	newT       func() T
}

// NewListingRepository uses the collection named after kind
func NewListingRepository[T models.Listing](db *mongo.Database, kind models.Kind, newT func() T) *ListingRepository[T] {
	return &ListingRepository[T]{collection: db.Collection(string(kind)), newT: newT}
}

func (r *ListingRepository[T]) Create(ctx context.Context, item T) error {
	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

func (r *ListingRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	item := r.newT()
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(item)
	if err != nil {
		var zero T
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
		}
		return zero, fmt.Errorf("db findone failed: %w", err)
	}
	return item, nil
}

func (r *ListingRepository[T]) Find(ctx context.Context, q repository.Query) ([]T, error) {
	filter := bson.M{}
	for k, v := range q.Filter {
		filter[k] = v
	}

	opts := options.Find()
	if q.SortField != "" {
		dir := 1
		if q.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.SortField, Value: dir}})
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	for cursor.Next(ctx) {
		item := r.newT()
		if err := cursor.Decode(item); err != nil {
			return nil, fmt.Errorf("db decode failed: %w", err)
		}
		out = append(out, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("db cursor failed: %w", err)
	}
	return out, nil
}

func (r *ListingRepository[T]) Update(ctx context.Context, item T) error {
	id := item.Core().ID
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, item)
	if err != nil {
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *ListingRepository[T]) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// IncrementViews uses $inc so no schema validation runs on the document
func (r *ListingRepository[T]) IncrementViews(ctx context.Context, id string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// updateSet applies update to the document matching filter and returns the resulting length of field
func (r *ListingRepository[T]) updateSet(ctx context.Context, filter, update bson.M, field string) (int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{field: 1})

	var doc bson.M
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return 0, err
	}
	return arrayLen(doc[field]), nil
}

func (r *ListingRepository[T]) ToggleMember(ctx context.Context, id, field, userID string) (bool, int, error) {
	now := time.Now().UTC()

	count, err := r.updateSet(ctx,
		bson.M{"_id": id, field: userID},
		bson.M{"$pull": bson.M{field: userID}, "$set": bson.M{"updatedAt": now}},
		field)
	if err == nil {
		return false, count, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, fmt.Errorf("db update failed: %w", err)
	}

	count, err = r.updateSet(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{field: userID}, "$set": bson.M{"updatedAt": now}},
		field)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
		}
		return false, 0, fmt.Errorf("db update failed: %w", err)
	}
	return true, count, nil
}

func (r *ListingRepository[T]) AddMember(ctx context.Context, id, field, userID string) (int, error) {
	count, err := r.updateSet(ctx,
		bson.M{"_id": id, field: bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{field: userID}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
		field)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("db update failed: %w", err)
	}
	if err := r.exists(ctx, id); err != nil {
		return 0, err
	}
	return 0, models.ErrAlreadyMember
}

func (r *ListingRepository[T]) TransitionStatus(ctx context.Context, id, from, to string, set map[string]any) error {
	filter := bson.M{"_id": id}
	if from != "" {
		filter[repository.StatusField] = from
	}
	fields := bson.M{repository.StatusField: to, "updatedAt": time.Now().UTC()}
	for k, v := range set {
		fields[k] = v
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("status is not %q: %w", from, models.ErrInvalidState)
}

func (r *ListingRepository[T]) exists(ctx context.Context, id string) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("db count failed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func arrayLen(v any) int {
	switch a := v.(type) {
	case bson.A:
		return len(a)
	case []any:
		return len(a)
	}
	return 0
}
