package repositories

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourspellcaster/spellcaster_backend/models"
)

// AuditRepository writes durable records of admin mutations to the auditLogs
// collection.
type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{
		collection: db.Collection("auditLogs"),
	}
}

// Log records an admin action. Audit failures are logged but never fail the
// mutation they describe.
func (r *AuditRepository) Log(actorID primitive.ObjectID, actorEmail, action, targetType, targetID, detail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry := models.AuditLogEntry{
		ID:         primitive.NewObjectID(),
		ActorID:    actorID,
		ActorEmail: actorEmail,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		log.Printf("Failed to write audit log entry %s on %s/%s: %v", action, targetType, targetID, err)
	}
}

// ListForTarget returns the audit trail for one document, newest first
func (r *AuditRepository) ListForTarget(targetType, targetID string) ([]models.AuditLogEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"targetType": targetType, "targetId": targetID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.AuditLogEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
