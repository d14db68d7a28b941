package services

import (
	"context"
	"time"

	"github.com/hireflow/onboarding/internal/models"
)

// CandidateStore is the durable per-candidate record store. All writes
// are merge-updates scoped to one candidate id.
type CandidateStore interface {
	Create(ctx context.Context, c *models.Candidate) error
	Fetch(ctx context.Context, id string) (*models.Candidate, error)
	Commit(ctx context.Context, id string, update models.CandidateUpdate) error
	AppendLog(ctx context.Context, id string, event string) error

	// ClaimReminder atomically sets last_reminder_sent_at to now if and
	// only if no reminder was claimed within minInterval before now. It
	// returns false when a concurrent claim already won.
	ClaimReminder(ctx context.Context, id string, now time.Time, minInterval time.Duration) (bool, error)

	// ListActive returns all candidates not in a terminal status.
	ListActive(ctx context.Context) ([]models.Candidate, error)
}

// FolderStorage is the external document drop location for a candidate.
type FolderStorage interface {
	// Provision creates (or reuses) the candidate folder and returns its
	// opaque reference and a browse URL for communications.
	Provision(ctx context.Context, candidateID, candidateName string) (ref string, url string, err error)

	// ListFiles returns the current file names in the folder. An empty
	// slice with a nil error is a legitimate empty folder; a non-nil
	// error means the listing failed and nothing may be concluded.
	ListFiles(ctx context.Context, ref string) ([]string, error)
}

// Dispatcher transmits a communication through the mail gateway. The
// core only observes success or failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg models.Communication) error
}

// Locker serializes per-candidate pipelines across overlapping ticks.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
