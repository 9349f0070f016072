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

// PriceQuoteRepository provides typed operations on the priceQuotes
// collection. Accept, reject and update are guarded inside the repository
// with conditional updates so two concurrent calls can never both transition
// the same quote.
type PriceQuoteRepository struct {
	collection *mongo.Collection
}

func NewPriceQuoteRepository(db *mongo.Database) *PriceQuoteRepository {
	return &PriceQuoteRepository{
		collection: db.Collection("priceQuotes"),
	}
}

func (r *PriceQuoteRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Create inserts a pending quote with validUntil = now + validDays
func (r *PriceQuoteRepository) Create(userID, serviceID primitive.ObjectID, serviceName string, quotedPrice float64, notes string, validDays int) (*models.PriceQuote, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	if validDays <= 0 {
		validDays = models.DefaultQuoteValidDays
	}

	now := time.Now()
	quote := &models.PriceQuote{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ServiceID:   serviceID,
		ServiceName: serviceName,
		QuotedPrice: quotedPrice,
		Notes:       notes,
		ValidUntil:  now.AddDate(0, 0, validDays),
		Status:      models.QuoteStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.collection.InsertOne(ctx, quote)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// GetByID returns the quote or mongo.ErrNoDocuments
func (r *PriceQuoteRepository) GetByID(id primitive.ObjectID) (*models.PriceQuote, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var quote models.PriceQuote
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quote)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetUserQuotes returns a user's quotes, newest first
func (r *PriceQuoteRepository) GetUserQuotes(userID primitive.ObjectID) ([]models.PriceQuote, error) {
	return r.find(bson.M{"userId": userID})
}

// GetAdminQuotes returns all quotes, optionally filtered by status
func (r *PriceQuoteRepository) GetAdminQuotes(status string) ([]models.PriceQuote, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(filter)
}

func (r *PriceQuoteRepository) find(filter bson.M) ([]models.PriceQuote, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	quotes := []models.PriceQuote{}
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// Accept transitions a pending, unexpired quote to accepted. The owner check
// is part of the filter so a user can only act on their own quote.
func (r *PriceQuoteRepository) Accept(id, userID primitive.ObjectID) (*models.PriceQuote, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"_id":        id,
		"userId":     userID,
		"status":     models.QuoteStatusPending,
		"validUntil": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{
		"status":    models.QuoteStatusAccepted,
		"updatedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var quote models.PriceQuote
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&quote)
	if err == mongo.ErrNoDocuments {
		return nil, r.classifyQuoteFailure(id, userID, true)
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Reject transitions a pending quote to rejected. Expired quotes may still be
// rejected explicitly.
func (r *PriceQuoteRepository) Reject(id, userID primitive.ObjectID, reason string) (*models.PriceQuote, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"userId": userID,
		"status": models.QuoteStatusPending,
	}
	update := bson.M{"$set": bson.M{
		"status":          models.QuoteStatusRejected,
		"rejectionReason": reason,
		"updatedAt":       time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var quote models.PriceQuote
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&quote)
	if err == mongo.ErrNoDocuments {
		return nil, r.classifyQuoteFailure(id, userID, false)
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// classifyQuoteFailure explains why a conditional accept/reject matched nothing
func (r *PriceQuoteRepository) classifyQuoteFailure(id, userID primitive.ObjectID, checkExpiry bool) error {
	quote, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if quote.UserID != userID {
		return mongo.ErrNoDocuments
	}
	if quote.Status != models.QuoteStatusPending {
		return ErrQuoteNotPending
	}
	if checkExpiry && quote.Expired() {
		return ErrQuoteExpired
	}
	return ErrQuoteNotPending
}

// Update edits a pending quote. validUntil is only recomputed when an
// extension is given.
func (r *PriceQuoteRepository) Update(id primitive.ObjectID, price *float64, notes *string, extendDays int) (*models.PriceQuote, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if price != nil {
		set["quotedPrice"] = *price
	}
	if notes != nil {
		set["notes"] = *notes
	}
	if extendDays > 0 {
		set["validUntil"] = time.Now().AddDate(0, 0, extendDays)
	}

	filter := bson.M{"_id": id, "status": models.QuoteStatusPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var quote models.PriceQuote
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&quote)
	if err == mongo.ErrNoDocuments {
		if _, getErr := r.GetByID(id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrQuoteNotPending
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}
