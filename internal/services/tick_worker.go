package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hireflow/onboarding/internal/models"
	"github.com/hireflow/onboarding/internal/observability"
	"go.uber.org/zap"
)

// TickWorker drives the onboarding pipeline: each tick it fetches all
// active candidates and runs folder listing, reconciliation, state
// transitions and the reminder scheduler for each of them.
//
// Candidates are processed with bounded parallelism; a per-candidate
// lease keeps two overlapping ticks from running the same pipeline at
// once, though correctness does not depend on it: the reminder claim is
// the serialization point. A single candidate's failure never aborts
// the batch.
type TickWorker struct {
	store       CandidateStore
	folders     FolderStorage
	reconciler  *Reconciler
	machine     *StateMachine
	scheduler   *ReminderScheduler
	locker      Locker
	interval    time.Duration
	parallelism int
	lockTTL     time.Duration
	stopChan    chan struct{}
	logger      *zap.Logger

	// now is stubbed in tests.
	now func() time.Time
}

// NewTickWorker creates a tick worker.
func NewTickWorker(store CandidateStore, folders FolderStorage, reconciler *Reconciler, machine *StateMachine, scheduler *ReminderScheduler, locker Locker, interval time.Duration, parallelism int, lockTTL time.Duration, logger *zap.Logger) *TickWorker {
	if parallelism < 1 {
		parallelism = 1
	}
	return &TickWorker{
		store:       store,
		folders:     folders,
		reconciler:  reconciler,
		machine:     machine,
		scheduler:   scheduler,
		locker:      locker,
		interval:    interval,
		parallelism: parallelism,
		lockTTL:     lockTTL,
		stopChan:    make(chan struct{}),
		logger:      logger,
		now:         time.Now,
	}
}

// Start launches the tick loop in a background goroutine and returns
// immediately. The loop runs until Stop is called. A new tick starts on
// schedule regardless of whether the previous one fully completed;
// overlap is tolerated, not prevented.
func (w *TickWorker) Start() {
	go w.run()
}

func (w *TickWorker) run() {
	w.logger.Info("tick worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("tick worker stopped")
			return
		case <-ticker.C:
			w.RunTick(context.Background())
		}
	}
}

// Stop stops the worker
func (w *TickWorker) Stop() {
	close(w.stopChan)
}

// RunTick executes one full cycle over all active candidates.
func (w *TickWorker) RunTick(ctx context.Context) {
	start := w.now()
	observability.TicksTotal.Inc()

	candidates, err := w.store.ListActive(ctx)
	if err != nil {
		w.logger.Error("failed to list active candidates", zap.Error(err))
		return
	}

	sem := make(chan struct{}, w.parallelism)
	var wg sync.WaitGroup

	for i := range candidates {
		c := candidates[i]
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			w.runCandidate(ctx, &c)
		}()
	}

	wg.Wait()

	w.logger.Info("tick completed",
		zap.Int("candidates", len(candidates)),
		zap.Duration("duration", time.Since(start)))
}

// runCandidate wraps one pipeline in the per-candidate lease and the
// failure isolation boundary.
func (w *TickWorker) runCandidate(ctx context.Context, c *models.Candidate) {
	logger := w.logger.With(zap.String("candidate_id", c.ID))

	lockKey := fmt.Sprintf("onboarding:tick:%s", c.ID)
	acquired, err := w.locker.Acquire(ctx, lockKey, w.lockTTL)
	if err != nil {
		logger.Warn("failed to acquire candidate lease", zap.Error(err))
		observability.CandidatesProcessed.WithLabelValues("error").Inc()
		return
	}
	if !acquired {
		logger.Debug("candidate pipeline already running, skipping")
		observability.CandidatesProcessed.WithLabelValues("skipped").Inc()
		return
	}
	defer func() {
		if err := w.locker.Release(ctx, lockKey); err != nil {
			logger.Warn("failed to release candidate lease", zap.Error(err))
		}
	}()

	if err := w.processCandidate(ctx, c); err != nil {
		observability.CandidatesProcessed.WithLabelValues("error").Inc()
		logger.Error("candidate pipeline failed",
			zap.String("status", string(c.Status)),
			zap.Bool("transient", models.IsTransient(err)),
			zap.Error(err))
		return
	}
	observability.CandidatesProcessed.WithLabelValues("ok").Inc()
}

// processCandidate runs the reconcile -> transition -> remind pipeline
// for one candidate.
func (w *TickWorker) processCandidate(ctx context.Context, c *models.Candidate) error {
	logger := w.logger.With(zap.String("candidate_id", c.ID))

	// A record without a contact address cannot be processed at all; it
	// stays excluded until an operator corrects it.
	if c.Email == "" {
		logger.Error("candidate record has no email, excluded from processing",
			zap.String("name", c.Name))
		return models.ErrMissingContact
	}

	// Nothing to reconcile before the folder exists.
	if c.FolderRef == "" {
		logger.Debug("no folder provisioned yet, skipping reconciliation")
		return nil
	}

	files, err := w.folders.ListFiles(ctx, c.FolderRef)
	if err != nil {
		// A failed listing is no evidence of change; existing uploaded
		// flags must survive untouched, so stop before reconciling.
		return models.Transient("folder listing", err)
	}

	delta := w.reconciler.Reconcile(c, files)

	if delta.Changed {
		if err := w.store.Commit(ctx, c.ID, models.CandidateUpdate{DocumentStatus: delta.DocumentStatus}); err != nil {
			return models.Transient("document status commit", err)
		}
		c.DocumentStatus = delta.DocumentStatus
		observability.ReconciliationChanges.Inc()
	}

	if c.Status == models.StatusAwaitingHRDocument && delta.SeedPresent {
		if _, err := w.machine.Fire(ctx, c, EventSeedDocumentFound, "seed document found in folder"); err != nil {
			return models.Transient("seed transition", err)
		}
	}

	if c.Status == models.StatusDocsPending && delta.Label == models.StatusAllDocsUploaded {
		if _, err := w.machine.Fire(ctx, c, EventAllDocsUploaded, "all required documents satisfied"); err != nil {
			return models.Transient("completion transition", err)
		}
	}

	return w.scheduler.Process(ctx, c, delta.DocumentStatus, delta.PendingCount, w.now())
}
