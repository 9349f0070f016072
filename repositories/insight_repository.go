package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourspellcaster/spellcaster_backend/models"
)

// InsightRepository provides typed operations on the insights collection
type InsightRepository struct {
	collection *mongo.Collection
}

func NewInsightRepository(db *mongo.Database) *InsightRepository {
	return &InsightRepository{
		collection: db.Collection("insights"),
	}
}

func (r *InsightRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Create inserts a new, initially inactive insight
func (r *InsightRepository) Create(createdBy primitive.ObjectID, req *models.CreateInsightRequest) (*models.Insight, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	now := time.Now()
	insight := &models.Insight{
		ID:        primitive.NewObjectID(),
		Title:     req.Title,
		Content:   req.Content,
		Frequency: req.Frequency,
		Tags:      req.Tags,
		Active:    false,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, insight)
	if err != nil {
		return nil, err
	}
	return insight, nil
}

// GetByID returns the insight or mongo.ErrNoDocuments
func (r *InsightRepository) GetByID(id primitive.ObjectID) (*models.Insight, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var insight models.Insight
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&insight)
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// GetAll returns all insights, newest first
func (r *InsightRepository) GetAll() ([]models.Insight, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	insights := []models.Insight{}
	if err := cursor.All(ctx, &insights); err != nil {
		return nil, err
	}
	return insights, nil
}

// GetActive returns the active insight for a frequency, or mongo.ErrNoDocuments
func (r *InsightRepository) GetActive(frequency string) (*models.Insight, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var insight models.Insight
	err := r.collection.FindOne(ctx, bson.M{"frequency": frequency, "active": true}).Decode(&insight)
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// Update applies the provided fields and returns the updated insight
func (r *InsightRepository) Update(id primitive.ObjectID, req *models.UpdateInsightRequest) (*models.Insight, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Content != nil {
		set["content"] = *req.Content
	}
	if req.Frequency != nil {
		set["frequency"] = *req.Frequency
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var insight models.Insight
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&insight)
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// Delete removes an insight
func (r *InsightRepository) Delete(id primitive.ObjectID) error {
	ctx, cancel := r.ctx()
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetActive activates the target insight and deactivates its frequency
// siblings. Two sequential writes, not a transaction; the invariant of at
// most one active insight per frequency holds after both complete.
func (r *InsightRepository) SetActive(id primitive.ObjectID) (*models.Insight, error) {
	insight, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.ctx()
	defer cancel()

	now := time.Now()
	_, err = r.collection.UpdateMany(ctx,
		bson.M{"frequency": insight.Frequency, "_id": bson.M{"$ne": id}, "active": true},
		bson.M{"$set": bson.M{"active": false, "updatedAt": now}},
	)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Insight
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"active": true, "updatedAt": now}},
		opts,
	).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
