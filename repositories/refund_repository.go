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

// RefundRepository provides typed operations on the refundRequests
// collection. Every status change goes through a conditional update keyed on
// the legal transition table, so a request can never be processed twice or
// reviewed after processing.
type RefundRepository struct {
	collection *mongo.Collection
}

func NewRefundRepository(db *mongo.Database) *RefundRepository {
	return &RefundRepository{
		collection: db.Collection("refundRequests"),
	}
}

func (r *RefundRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Create inserts a pending refund request
func (r *RefundRepository) Create(userID primitive.ObjectID, req *models.CreateRefundRequestRequest) (*models.RefundRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	refund := &models.RefundRequest{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		PaymentIntentID: req.PaymentIntentID,
		Amount:          req.Amount,
		ServiceName:     req.ServiceName,
		ServiceType:     req.ServiceType,
		Reason:          req.Reason,
		UserMessage:     req.UserMessage,
		Status:          models.RefundStatusPending,
		RequestedAt:     time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, refund)
	if err != nil {
		return nil, err
	}
	return refund, nil
}

// GetByID returns the refund request or mongo.ErrNoDocuments
func (r *RefundRepository) GetByID(id primitive.ObjectID) (*models.RefundRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var refund models.RefundRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&refund)
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// GetUserRefunds returns a user's refund requests, newest first
func (r *RefundRepository) GetUserRefunds(userID primitive.ObjectID) ([]models.RefundRequest, error) {
	return r.find(bson.M{"userId": userID})
}

// GetAdminRefunds returns all refund requests, optionally filtered by status
func (r *RefundRepository) GetAdminRefunds(status string) ([]models.RefundRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(filter)
}

func (r *RefundRepository) find(filter bson.M) ([]models.RefundRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "requestedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	refunds := []models.RefundRequest{}
	if err := cursor.All(ctx, &refunds); err != nil {
		return nil, err
	}
	return refunds, nil
}

// CountPending returns the number of refund requests awaiting review
func (r *RefundRepository) CountPending() (int64, error) {
	ctx, cancel := r.ctx()
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{"status": models.RefundStatusPending})
}

// transition applies a conditional status change and classifies failures
func (r *RefundRepository) transition(id primitive.ObjectID, from, to string, set bson.M) (*models.RefundRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	set["status"] = to
	filter := bson.M{"_id": id, "status": from}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var refund models.RefundRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&refund)
	if err == mongo.ErrNoDocuments {
		if _, getErr := r.GetByID(id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// processingClaimFilter matches an approved request that no process call has
// claimed yet
func processingClaimFilter(id primitive.ObjectID) bson.M {
	return bson.M{
		"_id":                 id,
		"status":              models.RefundStatusApproved,
		"processingStartedAt": bson.M{"$exists": false},
	}
}

// ClaimForProcessing stamps processingStartedAt on an approved, unclaimed
// request. At most one concurrent process call wins the claim and reaches the
// payment provider; losers get ErrInvalidTransition.
func (r *RefundRepository) ClaimForProcessing(id primitive.ObjectID) (*models.RefundRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	update := bson.M{"$set": bson.M{"processingStartedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var refund models.RefundRequest
	err := r.collection.FindOneAndUpdate(ctx, processingClaimFilter(id), update, opts).Decode(&refund)
	if err == mongo.ErrNoDocuments {
		if _, getErr := r.GetByID(id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// Review moves a pending request to approved or denied
func (r *RefundRepository) Review(id, adminID primitive.ObjectID, req *models.ReviewRefundRequest) (*models.RefundRequest, error) {
	if !models.CanTransitionRefund(models.RefundStatusPending, req.Status) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	set := bson.M{
		"adminId":    adminID,
		"reviewedAt": now,
	}
	if req.AdminNotes != "" {
		set["adminNotes"] = req.AdminNotes
	}
	if req.RefundAmount != nil {
		set["refundedAmount"] = *req.RefundAmount
	}
	if req.RefundMethod != "" {
		set["refundMethod"] = req.RefundMethod
	}

	return r.transition(id, models.RefundStatusPending, req.Status, set)
}

// MarkProcessed records a successful provider refund on an approved request
func (r *RefundRepository) MarkProcessed(id primitive.ObjectID, refundIntentID string, refundedAmount float64) (*models.RefundRequest, error) {
	set := bson.M{
		"refundIntentId": refundIntentID,
		"refundedAmount": refundedAmount,
		"processedAt":    time.Now(),
	}
	return r.transition(id, models.RefundStatusApproved, models.RefundStatusProcessed, set)
}

// MarkFailed records a provider failure on an approved request. Failed is
// terminal; the admin opens a new request to retry.
func (r *RefundRepository) MarkFailed(id primitive.ObjectID, providerError string) (*models.RefundRequest, error) {
	set := bson.M{
		"adminNotes":  providerError,
		"processedAt": time.Now(),
	}
	return r.transition(id, models.RefundStatusApproved, models.RefundStatusFailed, set)
}

// MarkCompletedByIntent finalizes processed requests when the provider
// confirms the charge was refunded. Driven by the charge.refunded webhook.
func (r *RefundRepository) MarkCompletedByIntent(paymentIntentID string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	filter := bson.M{
		"paymentIntentId": paymentIntentID,
		"status":          models.RefundStatusProcessed,
	}
	update := bson.M{"$set": bson.M{
		"status":      models.RefundStatusCompleted,
		"completedAt": time.Now(),
	}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}
