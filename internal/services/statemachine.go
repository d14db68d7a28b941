package services

import (
	"context"
	"fmt"

	"github.com/hireflow/onboarding/internal/models"
	"go.uber.org/zap"
)

// Event is a trigger that may move a candidate between lifecycle stages.
type Event string

const (
	EventOfferDispatched   Event = "offer_dispatched"
	EventDetailsReceived   Event = "details_received"
	EventFolderProvisioned Event = "folder_provisioned"
	EventSeedDocumentFound Event = "seed_document_found"
	EventAllDocsUploaded   Event = "all_documents_uploaded"
	EventOfferReleased     Event = "offer_released"
	EventFinalized         Event = "finalized"
)

// transitions is the guard table: only the listed (status, event) pairs
// move a candidate. Everything else is a no-op, which is what makes
// redundant triggers idempotent.
var transitions = map[models.Status]map[Event]models.Status{
	models.StatusInitiated: {
		EventOfferDispatched: models.StatusOfferSent,
	},
	models.StatusOfferSent: {
		EventDetailsReceived: models.StatusDetailsReceived,
	},
	models.StatusDetailsReceived: {
		EventFolderProvisioned: models.StatusAwaitingHRDocument,
	},
	models.StatusAwaitingHRDocument: {
		EventSeedDocumentFound: models.StatusDocsPending,
	},
	models.StatusDocsPending: {
		EventAllDocsUploaded: models.StatusAllDocsUploaded,
	},
	models.StatusAllDocsUploaded: {
		EventOfferReleased: models.StatusOfferReleased,
	},
	models.StatusOfferReleased: {
		EventFinalized: models.StatusOnboarded,
	},
}

// StateMachine validates and executes candidate lifecycle transitions.
// Every executed transition commits the new status and appends exactly
// one event-log entry describing the cause.
type StateMachine struct {
	store  CandidateStore
	logger *zap.Logger
}

// NewStateMachine creates a state machine backed by the given store.
func NewStateMachine(store CandidateStore, logger *zap.Logger) *StateMachine {
	return &StateMachine{store: store, logger: logger}
}

// Fire applies ev to the candidate. It returns true when a transition
// was executed and false when the trigger was redundant for the current
// stage (a no-op, not an error). On success c.Status is updated in
// memory to match the committed record.
func (m *StateMachine) Fire(ctx context.Context, c *models.Candidate, ev Event, cause string) (bool, error) {
	next, ok := transitions[c.Status][ev]
	if !ok {
		m.logger.Debug("transition trigger ignored",
			zap.String("candidate_id", c.ID),
			zap.String("status", string(c.Status)),
			zap.String("event", string(ev)))
		return false, nil
	}

	if err := m.store.Commit(ctx, c.ID, models.CandidateUpdate{Status: &next}); err != nil {
		return false, fmt.Errorf("failed to commit transition to %s: %w", next, err)
	}

	if cause == "" {
		cause = string(ev)
	}
	entry := fmt.Sprintf("Status %s -> %s: %s", c.Status, next, cause)
	if err := m.store.AppendLog(ctx, c.ID, entry); err != nil {
		return false, fmt.Errorf("failed to append transition log: %w", err)
	}

	m.logger.Info("candidate transitioned",
		zap.String("candidate_id", c.ID),
		zap.String("from", string(c.Status)),
		zap.String("to", string(next)),
		zap.String("event", string(ev)))

	c.Status = next
	return true, nil
}

// Override sets the status directly, bypassing guards, for operator
// intervention. Always permitted, always logged.
func (m *StateMachine) Override(ctx context.Context, c *models.Candidate, target models.Status, reason string) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidStatus, target)
	}

	if err := m.store.Commit(ctx, c.ID, models.CandidateUpdate{Status: &target}); err != nil {
		return fmt.Errorf("failed to commit override to %s: %w", target, err)
	}

	entry := fmt.Sprintf("Manual override %s -> %s: %s", c.Status, target, reason)
	if err := m.store.AppendLog(ctx, c.ID, entry); err != nil {
		return fmt.Errorf("failed to append override log: %w", err)
	}

	m.logger.Warn("candidate status overridden",
		zap.String("candidate_id", c.ID),
		zap.String("from", string(c.Status)),
		zap.String("to", string(target)),
		zap.String("reason", reason))

	c.Status = target
	return nil
}
