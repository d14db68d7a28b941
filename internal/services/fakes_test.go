package services

import (
	"context"
	"sync"
	"time"

	"github.com/hireflow/onboarding/internal/models"
)

// fakeStore is an in-memory CandidateStore with the same conditional
// claim semantics as the Mongo implementation.
type fakeStore struct {
	mu         sync.Mutex
	candidates map[string]*models.Candidate
	logs       map[string][]string

	createErr error
	fetchErr  error
	commitErr error
	appendErr error
	claimErr  error
	listErr   error

	commitCalls int
	claimCalls  int
}

func newFakeStore(candidates ...*models.Candidate) *fakeStore {
	s := &fakeStore{
		candidates: make(map[string]*models.Candidate),
		logs:       make(map[string][]string),
	}
	for _, c := range candidates {
		s.candidates[c.ID] = c
	}
	return s
}

func (s *fakeStore) Create(_ context.Context, c *models.Candidate) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *c
	s.candidates[c.ID] = &stored
	return nil
}

func (s *fakeStore) Fetch(_ context.Context, id string) (*models.Candidate, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, models.ErrCandidateNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *fakeStore) Commit(_ context.Context, id string, update models.CandidateUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitCalls++
	if s.commitErr != nil {
		return s.commitErr
	}
	c, ok := s.candidates[id]
	if !ok {
		return models.ErrCandidateNotFound
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	if update.FolderRef != nil {
		c.FolderRef = *update.FolderRef
	}
	if update.FolderURL != nil {
		c.FolderURL = *update.FolderURL
	}
	if update.DocumentStatus != nil {
		c.DocumentStatus = update.DocumentStatus
	}
	if update.LastReminderSentAt != nil {
		c.LastReminderSentAt = update.LastReminderSentAt
	}
	return nil
}

func (s *fakeStore) AppendLog(_ context.Context, id string, event string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[id] = append(s.logs[id], event)
	return nil
}

func (s *fakeStore) ClaimReminder(_ context.Context, id string, now time.Time, minInterval time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimCalls++
	if s.claimErr != nil {
		return false, s.claimErr
	}
	c, ok := s.candidates[id]
	if !ok {
		return false, nil
	}
	if c.LastReminderSentAt != nil && c.LastReminderSentAt.After(now.Add(-minInterval)) {
		return false, nil
	}
	claimed := now
	c.LastReminderSentAt = &claimed
	return true, nil
}

func (s *fakeStore) ListActive(_ context.Context) ([]models.Candidate, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Candidate
	for _, c := range s.candidates {
		if !c.Status.Terminal() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) get(id string) *models.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates[id]
}

func (s *fakeStore) logFor(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logs[id]...)
}

// fakeFolders is an in-memory FolderStorage.
type fakeFolders struct {
	mu             sync.Mutex
	files          map[string][]string
	listErr        error
	provisionErr   error
	provisionCalls int
}

func newFakeFolders() *fakeFolders {
	return &fakeFolders{files: make(map[string][]string)}
}

func (f *fakeFolders) Provision(_ context.Context, candidateID, _ string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.provisionCalls++
	if f.provisionErr != nil {
		return "", "", f.provisionErr
	}
	ref := "candidates/" + candidateID + "/"
	if _, ok := f.files[ref]; !ok {
		f.files[ref] = nil
	}
	return ref, "https://files.example.com/" + ref, nil
}

func (f *fakeFolders) ListFiles(_ context.Context, ref string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.files[ref]...), nil
}

// fakeDispatcher records dispatched communications.
type fakeDispatcher struct {
	mu   sync.Mutex
	sent []models.Communication
	err  error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, msg models.Communication) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, msg)
	return nil
}

func (d *fakeDispatcher) sentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func (d *fakeDispatcher) sentKinds() []models.TemplateKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	kinds := make([]models.TemplateKind, len(d.sent))
	for i, msg := range d.sent {
		kinds[i] = msg.Kind
	}
	return kinds
}

// fakeLocker grants every lease unless deny is set.
type fakeLocker struct {
	mu       sync.Mutex
	deny     bool
	held     map[string]bool
	acquired int
	released int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.deny || l.held[key] {
		return false, nil
	}
	l.held[key] = true
	l.acquired++
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	l.released++
	return nil
}
