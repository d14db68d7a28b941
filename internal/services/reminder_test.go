package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hireflow/onboarding/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reminderCandidate(last *time.Time) *models.Candidate {
	return &models.Candidate{
		ID:                 "c-1",
		Name:               "Asha Verma",
		Email:              "asha@example.com",
		Status:             models.StatusDocsPending,
		FolderURL:          "https://files.example.com/candidates/c-1/",
		RequiredDocuments:  []string{"aadhaar", "pan"},
		LastReminderSentAt: last,
	}
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	halfHourAgo := now.Add(-30 * time.Minute)
	twoDaysAgo := now.Add(-48 * time.Hour)
	exactlyInterval := now.Add(-time.Hour)

	tests := []struct {
		name    string
		status  models.Status
		pending int
		last    *time.Time
		want    bool
	}{
		{"never sent", models.StatusDocsPending, 2, nil, true},
		{"interval elapsed", models.StatusDocsPending, 2, &twoDaysAgo, true},
		{"exactly at interval", models.StatusDocsPending, 1, &exactlyInterval, true},
		{"sent too recently", models.StatusDocsPending, 2, &halfHourAgo, false},
		{"nothing pending", models.StatusDocsPending, 0, nil, false},
		{"wrong stage", models.StatusAwaitingHRDocument, 2, nil, false},
		{"terminal stage", models.StatusOnboarded, 2, nil, false},
	}

	s := NewReminderScheduler(newFakeStore(), &fakeDispatcher{}, time.Hour, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := reminderCandidate(tt.last)
			c.Status = tt.status
			assert.Equal(t, tt.want, s.IsDue(c, tt.pending, now))
		})
	}
}

func TestProcess_ClaimThenSend(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := reminderCandidate(nil)
	store := newFakeStore(c)
	dispatcher := &fakeDispatcher{}
	s := NewReminderScheduler(store, dispatcher, time.Hour, zap.NewNop())

	docs := map[string]models.DocumentState{
		"aadhaar": {DisplayName: "Aadhaar Card"},
		"pan":     {DisplayName: "PAN Card"},
	}
	require.NoError(t, s.Process(context.Background(), c, docs, 2, now))

	require.Equal(t, 1, dispatcher.sentCount())
	msg := dispatcher.sent[0]
	assert.Equal(t, models.KindDocumentReminder, msg.Kind)
	assert.Equal(t, "asha@example.com", msg.To)
	assert.Equal(t, docs, msg.Documents)

	// The claim is persisted before the send.
	require.NotNil(t, store.get("c-1").LastReminderSentAt)
	assert.Equal(t, now, *store.get("c-1").LastReminderSentAt)

	log := store.logFor("c-1")
	require.Len(t, log, 1)
	assert.Equal(t, "Document reminder sent (2 pending)", log[0])
}

func TestProcess_NotDueDoesNotClaim(t *testing.T) {
	now := time.Now()
	last := now.Add(-10 * time.Minute)
	c := reminderCandidate(&last)
	store := newFakeStore(c)
	dispatcher := &fakeDispatcher{}
	s := NewReminderScheduler(store, dispatcher, time.Hour, zap.NewNop())

	require.NoError(t, s.Process(context.Background(), c, nil, 2, now))
	assert.Zero(t, store.claimCalls)
	assert.Zero(t, dispatcher.sentCount())
}

func TestProcess_LostClaimAbstains(t *testing.T) {
	// Two tick pipelines hold stale copies of the same record; the store
	// hands the claim to exactly one of them.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	first := reminderCandidate(nil)
	store := newFakeStore(first)
	dispatcher := &fakeDispatcher{}
	s := NewReminderScheduler(store, dispatcher, time.Hour, zap.NewNop())

	stale := reminderCandidate(nil)

	require.NoError(t, s.Process(context.Background(), first, nil, 2, now))
	require.NoError(t, s.Process(context.Background(), stale, nil, 2, now))

	assert.Equal(t, 2, store.claimCalls)
	assert.Equal(t, 1, dispatcher.sentCount())
}

func TestProcess_ConcurrentTicksSendOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(reminderCandidate(nil))
	dispatcher := &fakeDispatcher{}
	s := NewReminderScheduler(store, dispatcher, time.Hour, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := reminderCandidate(nil)
			_ = s.Process(context.Background(), c, nil, 2, now)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, dispatcher.sentCount())
}

func TestProcess_DispatchFailureConsumesClaim(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := reminderCandidate(nil)
	store := newFakeStore(c)
	dispatcher := &fakeDispatcher{err: errors.New("gateway timeout")}
	s := NewReminderScheduler(store, dispatcher, time.Hour, zap.NewNop())

	// The failed send is not an error for the pipeline and the claim
	// stands: no duplicate is possible within the interval.
	require.NoError(t, s.Process(context.Background(), c, nil, 2, now))
	require.NotNil(t, store.get("c-1").LastReminderSentAt)

	log := store.logFor("c-1")
	require.Len(t, log, 1)
	assert.Contains(t, log[0], "Reminder dispatch failed")

	// A retry within the interval stays silent even after the gateway
	// recovers.
	dispatcher.err = nil
	fresh, err := store.Fetch(context.Background(), "c-1")
	require.NoError(t, err)
	require.NoError(t, s.Process(context.Background(), fresh, nil, 2, now.Add(10*time.Minute)))
	assert.Zero(t, dispatcher.sentCount())

	// After the interval the reminder goes out again.
	fresh, err = store.Fetch(context.Background(), "c-1")
	require.NoError(t, err)
	require.NoError(t, s.Process(context.Background(), fresh, nil, 2, now.Add(2*time.Hour)))
	assert.Equal(t, 1, dispatcher.sentCount())
}

func TestProcess_ClaimErrorIsTransient(t *testing.T) {
	now := time.Now()
	c := reminderCandidate(nil)
	store := newFakeStore(c)
	store.claimErr = errors.New("connection reset")
	dispatcher := &fakeDispatcher{}
	s := NewReminderScheduler(store, dispatcher, time.Hour, zap.NewNop())

	err := s.Process(context.Background(), c, nil, 2, now)
	require.Error(t, err)
	assert.True(t, models.IsTransient(err))
	assert.Zero(t, dispatcher.sentCount())
}
