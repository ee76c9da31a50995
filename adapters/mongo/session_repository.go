package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
)

// SessionRepository implements repositories.SessionRepository using MongoDB.
// Only the shell state is stored; generated artifacts never reach it.
type SessionRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new MongoDB session repository
func NewSessionRepository(db *mongo.Database, logger *zap.Logger) *SessionRepository {
	collection := db.Collection("sessions")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "status", Value: 1},
					{Key: "expires_at", Value: 1},
				},
			},
			{
				// Drop documents a week after they stop being active
				Keys:    bson.D{{Key: "last_active_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(int32((7 * 24 * time.Hour).Seconds())),
			},
		})
		if err != nil {
			logger.Error("Failed to create session indexes", zap.Error(err))
		} else {
			logger.Info("Session indexes created successfully")
		}
	}()

	return &SessionRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if err := session.Validate(); err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		r.logger.Error("Failed to create session", zap.Error(err), zap.String("session_id", session.ID))
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Info("Session created", zap.String("session_id", session.ID))
	return nil
}

// GetByID retrieves a session by its ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	var session entities.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrSessionNotFound
		}
		r.logger.Error("Failed to get session by ID", zap.Error(err), zap.String("session_id", id))
		return nil, err
	}
	return &session, nil
}

// Update replaces the stored session
func (r *SessionRepository) Update(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if err := session.Validate(); err != nil {
		return err
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	if err != nil {
		r.logger.Error("Failed to update session", zap.Error(err), zap.String("session_id", session.ID))
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrSessionNotFound
	}

	r.logger.Debug("Session updated", zap.String("session_id", session.ID))
	return nil
}

// Delete deletes a session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete session", zap.Error(err), zap.String("session_id", id))
		return err
	}
	if result.DeletedCount == 0 {
		return repositories.ErrSessionNotFound
	}

	r.logger.Info("Session deleted", zap.String("session_id", id))
	return nil
}

// ExpireSessions marks active sessions past their expiration time as expired
func (r *SessionRepository) ExpireSessions(ctx context.Context) ([]string, error) {
	filter := bson.M{
		"status":     entities.SessionStatusActive,
		"expires_at": bson.M{"$lt": time.Now()},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		r.logger.Error("Failed to find expired sessions", zap.Error(err))
		return nil, err
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	result, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"status": entities.SessionStatusExpired}},
	)
	if err != nil {
		r.logger.Error("Failed to expire sessions", zap.Error(err))
		return nil, err
	}

	r.logger.Info("Expired sessions", zap.Int64("count", result.ModifiedCount))
	return ids, nil
}

// CountActive counts sessions that are active and not yet past expiry
func (r *SessionRepository) CountActive(ctx context.Context) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"status":     entities.SessionStatusActive,
		"expires_at": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
