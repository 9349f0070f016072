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

// ServiceRequestRepository provides typed operations on the serviceRequests
// collection. Status changes go through conditional updates so concurrent
// admin actions cannot race a document into an illegal state.
type ServiceRequestRepository struct {
	collection *mongo.Collection
}

func NewServiceRequestRepository(db *mongo.Database) *ServiceRequestRepository {
	return &ServiceRequestRepository{
		collection: db.Collection("serviceRequests"),
	}
}

func (r *ServiceRequestRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Create inserts a new service request. User submissions always start pending
// with medium priority.
func (r *ServiceRequestRepository) Create(userID primitive.ObjectID, req *models.CreateServiceRequestRequest) (*models.ServiceRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	now := time.Now()
	request := &models.ServiceRequest{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		ServiceName:     req.ServiceName,
		ServiceType:     req.ServiceType,
		Description:     req.Description,
		ClientNotes:     req.ClientNotes,
		Status:          models.RequestStatusPending,
		Priority:        models.PriorityMedium,
		PaymentIntentID: req.PaymentIntentID,
		RequestedAt:     now,
		UpdatedAt:       now,
	}

	_, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return nil, err
	}
	return request, nil
}

// GetByID returns the request or mongo.ErrNoDocuments
func (r *ServiceRequestRepository) GetByID(id primitive.ObjectID) (*models.ServiceRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var request models.ServiceRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetUserRequests returns a user's requests, newest first
func (r *ServiceRequestRepository) GetUserRequests(userID primitive.ObjectID, limit, skip int64) ([]models.ServiceRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "requestedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.ServiceRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// adminFilter builds the Mongo filter for the admin queue
func adminFilter(filter models.ServiceRequestFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.ServiceType != "" {
		query["serviceType"] = filter.ServiceType
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.Search != "" {
		regex := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"serviceName": regex},
			bson.M{"description": regex},
			bson.M{"clientNotes": regex},
		}
	}
	return query
}

// GetAdminRequests returns the filtered admin queue, newest first
func (r *ServiceRequestRepository) GetAdminRequests(filter models.ServiceRequestFilter) ([]models.ServiceRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "requestedAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	if filter.Skip > 0 {
		opts.SetSkip(filter.Skip)
	}

	cursor, err := r.collection.Find(ctx, adminFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.ServiceRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// Count returns the number of requests matching the filter
func (r *ServiceRequestRepository) Count(filter models.ServiceRequestFilter) (int64, error) {
	ctx, cancel := r.ctx()
	defer cancel()
	return r.collection.CountDocuments(ctx, adminFilter(filter))
}

// UpdateStatus transitions a request. The filter carries the set of statuses
// from which the target is reachable, so an illegal or concurrent transition
// matches nothing. completedAt is stamped on completion.
func (r *ServiceRequestRepository) UpdateStatus(id primitive.ObjectID, status, note string) (*models.ServiceRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	sources := models.RequestStatusSources(status)
	if len(sources) == 0 {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	set := bson.M{
		"status":    status,
		"updatedAt": now,
	}
	if status == models.RequestStatusCompleted {
		set["completedAt"] = now
	}
	if note != "" {
		set["adminNotes"] = note
	}

	filter := bson.M{"_id": id, "status": bson.M{"$in": sources}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.ServiceRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		// Distinguish a missing document from an illegal transition
		if _, getErr := r.GetByID(id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// setField applies a single-field update and returns the updated document
func (r *ServiceRequestRepository) setField(id primitive.ObjectID, set bson.M) (*models.ServiceRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.ServiceRequest
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Assign sets the admin responsible for a request
func (r *ServiceRequestRepository) Assign(id, adminID primitive.ObjectID) (*models.ServiceRequest, error) {
	return r.setField(id, bson.M{"assignedTo": adminID})
}

// UpdatePriority changes the request priority
func (r *ServiceRequestRepository) UpdatePriority(id primitive.ObjectID, priority string) (*models.ServiceRequest, error) {
	return r.setField(id, bson.M{"priority": priority})
}

// AddAdminNotes replaces the admin notes
func (r *ServiceRequestRepository) AddAdminNotes(id primitive.ObjectID, notes string) (*models.ServiceRequest, error) {
	return r.setField(id, bson.M{"adminNotes": notes})
}

// UpdateRitualSteps replaces the ritual step sequence
func (r *ServiceRequestRepository) UpdateRitualSteps(id primitive.ObjectID, steps []models.RitualStep) (*models.ServiceRequest, error) {
	return r.setField(id, bson.M{"ritualSteps": steps})
}

// AppendStepPhoto pushes a photo URL onto the matching ritual step
func (r *ServiceRequestRepository) AppendStepPhoto(id primitive.ObjectID, stepNumber int, photoURL string) (*models.ServiceRequest, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	filter := bson.M{"_id": id, "ritualSteps.stepNumber": stepNumber}
	update := bson.M{
		"$push": bson.M{"ritualSteps.$.photoUrls": photoURL},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.ServiceRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AttachPayment stamps the paid amount once the payment intent succeeds.
// Looked up by intent ID because the webhook only carries Stripe identifiers.
func (r *ServiceRequestRepository) AttachPayment(paymentIntentID string, amountPaid float64) error {
	ctx, cancel := r.ctx()
	defer cancel()

	update := bson.M{"$set": bson.M{
		"amountPaid": amountPaid,
		"updatedAt":  time.Now(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"paymentIntentId": paymentIntentID}, update)
	return err
}

// AttachPaymentByID links an intent to a request identified by metadata
func (r *ServiceRequestRepository) AttachPaymentByID(id primitive.ObjectID, paymentIntentID string, amountPaid float64) error {
	ctx, cancel := r.ctx()
	defer cancel()

	update := bson.M{"$set": bson.M{
		"paymentIntentId": paymentIntentID,
		"amountPaid":      amountPaid,
		"updatedAt":       time.Now(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// AppendPaymentFailureNote records a failed payment attempt on the request
func (r *ServiceRequestRepository) AppendPaymentFailureNote(paymentIntentID, note string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	update := bson.M{"$set": bson.M{
		"adminNotes": note,
		"updatedAt":  time.Now(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"paymentIntentId": paymentIntentID}, update)
	return err
}

// CountByStatus groups request counts by status for the dashboard
func (r *ServiceRequestRepository) CountByStatus() (map[string]int64, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := map[string]int64{}
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cursor.Err()
}

// TotalRevenue sums amountPaid over all requests
func (r *ServiceRequestRepository) TotalRevenue() (float64, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amountPaid"}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	if cursor.Next(ctx) {
		var row struct {
			Total float64 `bson:"total"`
		}
		if err := cursor.Decode(&row); err != nil {
			return 0, err
		}
		return row.Total, nil
	}
	return 0, cursor.Err()
}
