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

// TemplateRepository provides typed operations on the requestTemplates collection
type TemplateRepository struct {
	collection *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{
		collection: db.Collection("requestTemplates"),
	}
}

func (r *TemplateRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Create inserts a new active template
func (r *TemplateRepository) Create(createdBy primitive.ObjectID, req *models.CreateTemplateRequest) (*models.RequestTemplate, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := time.Now()
	template := &models.RequestTemplate{
		ID:             primitive.NewObjectID(),
		Name:           req.Name,
		ServiceType:    req.ServiceType,
		ServiceName:    req.ServiceName,
		Description:    req.Description,
		RitualSteps:    req.RitualSteps,
		EstimatedPrice: req.EstimatedPrice,
		EstimatedDays:  req.EstimatedDays,
		Priority:       priority,
		Category:       req.Category,
		Active:         true,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := r.collection.InsertOne(ctx, template)
	if err != nil {
		return nil, err
	}
	return template, nil
}

// GetByID returns the template or mongo.ErrNoDocuments
func (r *TemplateRepository) GetByID(id primitive.ObjectID) (*models.RequestTemplate, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var template models.RequestTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// GetAll returns templates, optionally restricted to active ones
func (r *TemplateRepository) GetAll(activeOnly bool) ([]models.RequestTemplate, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "usageCount", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []models.RequestTemplate{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update applies the provided fields and returns the updated template
func (r *TemplateRepository) Update(id primitive.ObjectID, req *models.UpdateTemplateRequest) (*models.RequestTemplate, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.ServiceType != nil {
		set["serviceType"] = *req.ServiceType
	}
	if req.ServiceName != nil {
		set["serviceName"] = *req.ServiceName
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.RitualSteps != nil {
		set["ritualSteps"] = req.RitualSteps
	}
	if req.EstimatedPrice != nil {
		set["estimatedPrice"] = *req.EstimatedPrice
	}
	if req.EstimatedDays != nil {
		set["estimatedDays"] = *req.EstimatedDays
	}
	if req.Priority != nil {
		set["priority"] = *req.Priority
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var template models.RequestTemplate
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&template)
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// SoftDelete clears the active flag; usage history is kept
func (r *TemplateRepository) SoftDelete(id primitive.ObjectID) error {
	ctx, cancel := r.ctx()
	defer cancel()

	update := bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// IncrementUsage bumps usageCount when a user applies the template
func (r *TemplateRepository) IncrementUsage(id primitive.ObjectID) error {
	ctx, cancel := r.ctx()
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"usageCount": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
