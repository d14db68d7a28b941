package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hireflow/onboarding/internal/models"
	"github.com/hireflow/onboarding/internal/observability"
	"go.uber.org/zap"
)

// ReminderScheduler decides whether a reminder communication is due for
// a candidate and dispatches it under the claim-before-send protocol.
//
// The single due policy is a fixed minimum retry interval since the last
// claim. The claim (a conditional update of last_reminder_sent_at in the
// record store) is the serialization point for overlapping ticks: of two
// concurrent claims only one can observe an eligible timestamp, the
// other abstains. Because the claim is persisted before the dispatch,
// delivery is at-most-once; a dispatch failure after a successful claim
// is logged and not retried until the next eligible interval.
type ReminderScheduler struct {
	store      CandidateStore
	dispatcher Dispatcher
	interval   time.Duration
	logger     *zap.Logger
}

// NewReminderScheduler creates a scheduler with the given retry interval.
func NewReminderScheduler(store CandidateStore, dispatcher Dispatcher, interval time.Duration, logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		store:      store,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger,
	}
}

// IsDue reports whether a reminder should be attempted now. Reminders
// only apply while documents are pending and the candidate sits in the
// stage that has a reminder communication attached.
func (s *ReminderScheduler) IsDue(c *models.Candidate, pendingCount int, now time.Time) bool {
	if pendingCount <= 0 {
		return false
	}
	if c.Status != models.StatusDocsPending {
		return false
	}
	if c.LastReminderSentAt == nil {
		return true
	}
	return now.Sub(*c.LastReminderSentAt) >= s.interval
}

// Process runs the due check, the claim, and the dispatch for one
// candidate. documentStatus is the freshly reconciled status used to
// render the reminder body.
func (s *ReminderScheduler) Process(ctx context.Context, c *models.Candidate, documentStatus map[string]models.DocumentState, pendingCount int, now time.Time) error {
	if !s.IsDue(c, pendingCount, now) {
		return nil
	}

	logger := s.logger.With(
		zap.String("candidate_id", c.ID),
		zap.Int("pending_count", pendingCount),
	)

	// Claim before send. The conditional update re-checks the freshly
	// persisted timestamp, so an overlapping tick that claimed between
	// our IsDue check and here makes this claim fail.
	claimed, err := s.store.ClaimReminder(ctx, c.ID, now, s.interval)
	if err != nil {
		return models.Transient("reminder claim", err)
	}
	if !claimed {
		observability.Reminders.WithLabelValues("abstained").Inc()
		logger.Debug("reminder already claimed by a concurrent tick")
		return nil
	}
	c.LastReminderSentAt = &now

	msg := models.Communication{
		CandidateID: c.ID,
		To:          c.Email,
		Kind:        models.KindDocumentReminder,
		Vars: map[string]string{
			"name":       c.Name,
			"folder_url": c.FolderURL,
		},
		Documents: documentStatus,
	}

	if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
		// The claim is consumed: favoring no-duplicate over no-drop, the
		// send is not retried until the interval elapses again.
		observability.DispatchFailures.WithLabelValues(string(models.KindDocumentReminder)).Inc()
		observability.Reminders.WithLabelValues("dispatch_failed").Inc()
		logger.Error("reminder dispatch failed after claim", zap.Error(err))
		if logErr := s.store.AppendLog(ctx, c.ID, fmt.Sprintf("Reminder dispatch failed: %v", err)); logErr != nil {
			logger.Error("failed to record dispatch failure", zap.Error(logErr))
		}
		return nil
	}

	observability.Reminders.WithLabelValues("sent").Inc()
	if err := s.store.AppendLog(ctx, c.ID, fmt.Sprintf("Document reminder sent (%d pending)", pendingCount)); err != nil {
		logger.Error("failed to record reminder send", zap.Error(err))
	}

	logger.Info("document reminder sent")
	return nil
}
