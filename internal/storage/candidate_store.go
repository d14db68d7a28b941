package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hireflow/onboarding/internal/models"
	"github.com/hireflow/onboarding/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoCandidateStore persists candidate records in a MongoDB
// collection. All writes are merge-updates scoped to one candidate id;
// the event log is append-only via $push.
type MongoCandidateStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoCandidateStore creates a store over the given collection.
func NewMongoCandidateStore(collection *mongo.Collection, logger *zap.Logger) *MongoCandidateStore {
	return &MongoCandidateStore{collection: collection, logger: logger}
}

// Create inserts a new candidate record.
func (s *MongoCandidateStore) Create(ctx context.Context, c *models.Candidate) error {
	_, err := s.collection.InsertOne(ctx, c)
	if err != nil {
		observability.DatabaseOperations.WithLabelValues("create", "error").Inc()
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("create", "ok").Inc()
	return nil
}

// Fetch loads one candidate by id.
func (s *MongoCandidateStore) Fetch(ctx context.Context, id string) (*models.Candidate, error) {
	var c models.Candidate
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrCandidateNotFound
	}
	if err != nil {
		observability.DatabaseOperations.WithLabelValues("fetch", "error").Inc()
		return nil, fmt.Errorf("failed to fetch candidate: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("fetch", "ok").Inc()
	return &c, nil
}

// Commit applies a partial merge-update; nil fields stay unchanged.
func (s *MongoCandidateStore) Commit(ctx context.Context, id string, update models.CandidateUpdate) error {
	set := bson.M{"updated_at": time.Now()}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.FolderRef != nil {
		set["folder_ref"] = *update.FolderRef
	}
	if update.FolderURL != nil {
		set["folder_url"] = *update.FolderURL
	}
	if update.DocumentStatus != nil {
		set["document_status"] = update.DocumentStatus
	}
	if update.LastReminderSentAt != nil {
		set["last_reminder_sent_at"] = *update.LastReminderSentAt
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		observability.DatabaseOperations.WithLabelValues("commit", "error").Inc()
		return fmt.Errorf("failed to commit candidate update: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrCandidateNotFound
	}
	observability.DatabaseOperations.WithLabelValues("commit", "ok").Inc()
	return nil
}

// AppendLog appends one entry to the candidate's event log. Errors are
// always surfaced to the caller.
func (s *MongoCandidateStore) AppendLog(ctx context.Context, id string, event string) error {
	entry := models.EventLogEntry{Event: event, Timestamp: time.Now()}
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"event_log": entry}},
	)
	if err != nil {
		observability.DatabaseOperations.WithLabelValues("append_log", "error").Inc()
		return fmt.Errorf("failed to append event log: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrCandidateNotFound
	}
	observability.DatabaseOperations.WithLabelValues("append_log", "ok").Inc()
	return nil
}

// ClaimReminder is the claim-before-send serialization point. The filter
// only matches when no reminder was claimed within minInterval before
// now, so of two overlapping claims exactly one modifies the record; the
// loser observes ModifiedCount zero and abstains. last_reminder_sent_at
// can only move forward.
func (s *MongoCandidateStore) ClaimReminder(ctx context.Context, id string, now time.Time, minInterval time.Duration) (bool, error) {
	filter := bson.M{
		"_id": id,
		"$or": []bson.M{
			{"last_reminder_sent_at": bson.M{"$exists": false}},
			{"last_reminder_sent_at": nil},
			{"last_reminder_sent_at": bson.M{"$lte": now.Add(-minInterval)}},
		},
	}
	update := bson.M{"$set": bson.M{
		"last_reminder_sent_at": now,
		"updated_at":            now,
	}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		observability.DatabaseOperations.WithLabelValues("claim_reminder", "error").Inc()
		return false, fmt.Errorf("failed to claim reminder: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("claim_reminder", "ok").Inc()

	if res.ModifiedCount == 0 {
		s.logger.Debug("reminder claim lost to a concurrent tick",
			zap.String("candidate_id", id))
		return false, nil
	}
	return true, nil
}

// ListActive returns every candidate not in a terminal status. Onboarded
// candidates never appear here again.
func (s *MongoCandidateStore) ListActive(ctx context.Context) ([]models.Candidate, error) {
	cursor, err := s.collection.Find(ctx, bson.M{
		"status": bson.M{"$ne": models.StatusOnboarded},
	})
	if err != nil {
		observability.DatabaseOperations.WithLabelValues("list_active", "error").Inc()
		return nil, fmt.Errorf("failed to list active candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []models.Candidate
	if err := cursor.All(ctx, &candidates); err != nil {
		observability.DatabaseOperations.WithLabelValues("list_active", "error").Inc()
		return nil, fmt.Errorf("failed to decode active candidates: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("list_active", "ok").Inc()
	return candidates, nil
}
