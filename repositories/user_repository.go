package repositories

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourspellcaster/spellcaster_backend/models"
)

// UserRepository provides typed operations on the users collection
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

func (r *UserRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Create inserts a new user. Emails are stored lowercased; the unique index
// rejects duplicates.
func (r *UserRepository) Create(email, passwordHash, fullName, userType string) (*models.User, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	now := time.Now()
	user := &models.User{
		ID:             primitive.NewObjectID(),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Password:       passwordHash,
		FullName:       fullName,
		UserType:       userType,
		IsActive:       true,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail looks a user up by lowercased email
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns the user or mongo.ErrNoDocuments
func (r *UserRepository) FindByID(id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users without password hashes, newest first
func (r *UserRepository) List() ([]models.User, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"password": 0})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(id primitive.ObjectID, userType string) (*models.User, error) {
	return r.setField(id, bson.M{"userType": userType})
}

// SetActive flips the active flag
func (r *UserRepository) SetActive(id primitive.ObjectID, active bool) (*models.User, error) {
	return r.setField(id, bson.M{"isActive": active})
}

func (r *UserRepository) setField(id primitive.ObjectID, set bson.M) (*models.User, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
