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

// InviteRepository provides typed operations on the adminInvites collection.
// Acceptance and revocation are conditional on "pending" so a token can only
// be consumed once even under concurrent submissions.
type InviteRepository struct {
	collection *mongo.Collection
}

func NewInviteRepository(db *mongo.Database) *InviteRepository {
	return &InviteRepository{
		collection: db.Collection("adminInvites"),
	}
}

func (r *InviteRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Create inserts a pending invite with the given opaque token
func (r *InviteRepository) Create(email, role, token string, invitedBy primitive.ObjectID, expiresInDays int) (*models.AdminInvite, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	if expiresInDays <= 0 {
		expiresInDays = models.DefaultInviteExpiryDays
	}

	now := time.Now()
	invite := &models.AdminInvite{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Role:      role,
		Token:     token,
		Status:    models.InviteStatusPending,
		InvitedBy: invitedBy,
		ExpiresAt: now.AddDate(0, 0, expiresInDays),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, invite)
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// GetByToken returns the invite or mongo.ErrNoDocuments
func (r *InviteRepository) GetByToken(token string) (*models.AdminInvite, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var invite models.AdminInvite
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&invite)
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// List returns all invites, newest first
func (r *InviteRepository) List() ([]models.AdminInvite, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invites := []models.AdminInvite{}
	if err := cursor.All(ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// Revoke cancels a pending invite
func (r *InviteRepository) Revoke(token string) (*models.AdminInvite, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	filter := bson.M{"token": token, "status": models.InviteStatusPending}
	update := bson.M{"$set": bson.M{"status": models.InviteStatusRevoked}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var invite models.AdminInvite
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&invite)
	if err == mongo.ErrNoDocuments {
		if _, getErr := r.GetByToken(token); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInviteNotPending
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// Accept consumes a pending invite. The email must match case-insensitively
// and the expiry window must still be open; an expired invite is flagged as
// such on the way out. The final transition is conditional on "pending" so a
// re-submitted token fails with ErrInviteNotPending.
func (r *InviteRepository) Accept(token, email string) (*models.AdminInvite, error) {
	invite, err := r.GetByToken(token)
	if err != nil {
		return nil, err
	}

	if invite.Status != models.InviteStatusPending {
		return nil, ErrInviteNotPending
	}
	if invite.Expired() {
		r.markExpired(token)
		return nil, ErrInviteExpired
	}
	if !invite.EmailMatches(email) {
		return nil, ErrEmailMismatch
	}

	ctx, cancel := r.ctx()
	defer cancel()

	now := time.Now()
	filter := bson.M{"token": token, "status": models.InviteStatusPending}
	update := bson.M{"$set": bson.M{
		"status":     models.InviteStatusAccepted,
		"acceptedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var accepted models.AdminInvite
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&accepted)
	if err == mongo.ErrNoDocuments {
		// Lost the race to another acceptance
		return nil, ErrInviteNotPending
	}
	if err != nil {
		return nil, err
	}
	return &accepted, nil
}

// markExpired stamps a pending invite whose window has passed
func (r *InviteRepository) markExpired(token string) {
	ctx, cancel := r.ctx()
	defer cancel()

	filter := bson.M{"token": token, "status": models.InviteStatusPending}
	update := bson.M{"$set": bson.M{"status": models.InviteStatusExpired}}
	r.collection.UpdateOne(ctx, filter, update)
}
