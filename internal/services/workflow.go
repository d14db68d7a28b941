package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/onboarding/internal/config"
	"github.com/hireflow/onboarding/internal/models"
	"github.com/hireflow/onboarding/internal/observability"
	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"
)

// StartOnboardingInput is the operator-supplied data for a new candidate.
type StartOnboardingInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
}

// WorkflowService executes the candidate lifecycle operations that are
// triggered by operators and inbound events rather than by the tick
// worker.
type WorkflowService struct {
	store         CandidateStore
	folders       FolderStorage
	dispatcher    Dispatcher
	machine       *StateMachine
	docs          *config.DocumentConfig
	operatorEmail string
	logger        *zap.Logger
}

// NewWorkflowService creates a workflow service.
func NewWorkflowService(store CandidateStore, folders FolderStorage, dispatcher Dispatcher, machine *StateMachine, docs *config.DocumentConfig, operatorEmail string, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{
		store:         store,
		folders:       folders,
		dispatcher:    dispatcher,
		machine:       machine,
		docs:          docs,
		operatorEmail: operatorEmail,
		logger:        logger,
	}
}

// Get returns a candidate record.
func (s *WorkflowService) Get(ctx context.Context, id string) (*models.Candidate, error) {
	return s.store.Fetch(ctx, id)
}

// StartOnboarding creates a candidate record frozen to the current
// document configuration and sends the provisional offer. A failed send
// leaves the candidate in Initiated and is not retried automatically.
func (s *WorkflowService) StartOnboarding(ctx context.Context, input StartOnboardingInput) (*models.Candidate, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, models.ErrMissingContact
	}
	if input.Phone != "" {
		parsed, err := phonenumbers.Parse(input.Phone, "IN")
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			return nil, fmt.Errorf("invalid phone number %q", input.Phone)
		}
	}

	now := time.Now()
	c := &models.Candidate{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(input.Name),
		Email:             strings.TrimSpace(input.Email),
		Phone:             input.Phone,
		Position:          input.Position,
		Status:            models.StatusInitiated,
		DocConfigVersion:  s.docs.Version,
		RequiredDocuments: s.docs.Keys(),
		DocumentStatus:    initialDocumentStatus(s.docs),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	if err := s.store.AppendLog(ctx, c.ID, "Candidate record created."); err != nil {
		return nil, err
	}

	logger := s.logger.With(zap.String("candidate_id", c.ID))

	msg := models.Communication{
		CandidateID: c.ID,
		To:          c.Email,
		Kind:        models.KindProvisionalOffer,
		Vars: map[string]string{
			"name":     c.Name,
			"position": c.Position,
		},
	}
	if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
		observability.DispatchFailures.WithLabelValues(string(models.KindProvisionalOffer)).Inc()
		logger.Error("provisional offer dispatch failed", zap.Error(err))
		if logErr := s.store.AppendLog(ctx, c.ID, fmt.Sprintf("Provisional offer dispatch failed: %v", err)); logErr != nil {
			logger.Error("failed to record dispatch failure", zap.Error(logErr))
		}
		return c, nil
	}

	if _, err := s.machine.Fire(ctx, c, EventOfferDispatched, "provisional offer sent"); err != nil {
		return c, err
	}

	logger.Info("onboarding started", zap.String("email", c.Email))
	return c, nil
}

// DetailsReceived handles the inbound confirmation that acceptance
// details arrived: it moves the candidate forward, provisions the
// document folder (reusing an existing one; never provisioning twice)
// and sends the formal offer with the document request. Re-arrival of
// the same event while already past this stage is a no-op.
func (s *WorkflowService) DetailsReceived(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := s.store.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	fired, err := s.machine.Fire(ctx, c, EventDetailsReceived, "acceptance details received")
	if err != nil {
		return nil, err
	}
	if !fired && c.Status != models.StatusDetailsReceived {
		// Redundant trigger: already past this stage.
		return c, nil
	}

	logger := s.logger.With(zap.String("candidate_id", c.ID))

	if c.FolderRef == "" {
		ref, url, err := s.folders.Provision(ctx, c.ID, c.Name)
		if err != nil {
			return nil, models.Transient("folder provisioning", err)
		}
		update := models.CandidateUpdate{FolderRef: &ref, FolderURL: &url}
		if err := s.store.Commit(ctx, c.ID, update); err != nil {
			return nil, err
		}
		c.FolderRef, c.FolderURL = ref, url
		if err := s.store.AppendLog(ctx, c.ID, "Document folder provisioned."); err != nil {
			return nil, err
		}
		logger.Info("document folder provisioned", zap.String("folder_ref", ref))
	}

	msg := models.Communication{
		CandidateID: c.ID,
		To:          c.Email,
		Kind:        models.KindFormalOffer,
		Vars: map[string]string{
			"name":       c.Name,
			"position":   c.Position,
			"folder_url": c.FolderURL,
			"documents":  strings.Join(s.documentNames(c), ", "),
		},
	}
	if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
		observability.DispatchFailures.WithLabelValues(string(models.KindFormalOffer)).Inc()
		return nil, models.Transient("formal offer dispatch", err)
	}

	if _, err := s.machine.Fire(ctx, c, EventFolderProvisioned, "formal offer and document request sent"); err != nil {
		return nil, err
	}

	s.notifyOperator(ctx, c, fmt.Sprintf("Folder provisioned for %s; awaiting countersigned offer.", c.Name))
	return c, nil
}

// ReleaseOffer is the explicit operator action that releases the final
// offer documents once every required document is satisfied.
func (s *WorkflowService) ReleaseOffer(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := s.store.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.StatusAllDocsUploaded {
		return nil, fmt.Errorf("%w: release requires %s, candidate is %s",
			models.ErrWrongStage, models.StatusAllDocsUploaded, c.Status)
	}

	msg := models.Communication{
		CandidateID: c.ID,
		To:          c.Email,
		Kind:        models.KindFinalOffer,
		Vars: map[string]string{
			"name":     c.Name,
			"position": c.Position,
		},
	}
	if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
		observability.DispatchFailures.WithLabelValues(string(models.KindFinalOffer)).Inc()
		return nil, models.Transient("final offer dispatch", err)
	}

	if _, err := s.machine.Fire(ctx, c, EventOfferReleased, "final offer released by operator"); err != nil {
		return nil, err
	}
	return c, nil
}

// Finalize is the explicit operator action that completes onboarding.
// Once Onboarded the candidate leaves all future ticks.
func (s *WorkflowService) Finalize(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := s.store.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.StatusOfferReleased {
		return nil, fmt.Errorf("%w: finalize requires %s, candidate is %s",
			models.ErrWrongStage, models.StatusOfferReleased, c.Status)
	}

	if _, err := s.machine.Fire(ctx, c, EventFinalized, "onboarding finalized by operator"); err != nil {
		return nil, err
	}
	return c, nil
}

// Override sets a candidate's status directly for operator intervention.
func (s *WorkflowService) Override(ctx context.Context, id string, target models.Status, reason string) (*models.Candidate, error) {
	c, err := s.store.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.machine.Override(ctx, c, target, reason); err != nil {
		return nil, err
	}
	return c, nil
}

// Resend re-dispatches a previously sent communication. It never
// mutates the candidate's status.
func (s *WorkflowService) Resend(ctx context.Context, id string, kind models.TemplateKind) error {
	c, err := s.store.Fetch(ctx, id)
	if err != nil {
		return err
	}

	msg := models.Communication{
		CandidateID: c.ID,
		To:          c.Email,
		Kind:        kind,
		Vars: map[string]string{
			"name":       c.Name,
			"position":   c.Position,
			"folder_url": c.FolderURL,
			"documents":  strings.Join(s.documentNames(c), ", "),
		},
	}
	switch kind {
	case models.KindProvisionalOffer, models.KindFormalOffer, models.KindFinalOffer:
	case models.KindDocumentReminder:
		msg.Documents = c.DocumentStatus
	default:
		return fmt.Errorf("%w: %q", models.ErrInvalidKind, kind)
	}

	if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
		observability.DispatchFailures.WithLabelValues(string(kind)).Inc()
		return models.Transient("resend dispatch", err)
	}

	return s.store.AppendLog(ctx, c.ID, fmt.Sprintf("Communication %s re-sent.", kind))
}

// notifyOperator sends a best-effort internal notice; failures are
// logged, never propagated.
func (s *WorkflowService) notifyOperator(ctx context.Context, c *models.Candidate, text string) {
	if s.operatorEmail == "" {
		return
	}
	msg := models.Communication{
		CandidateID: c.ID,
		To:          s.operatorEmail,
		Kind:        models.KindOperatorNotice,
		Vars: map[string]string{
			"name":       c.Name,
			"notice":     text,
			"folder_url": c.FolderURL,
		},
	}
	if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
		observability.DispatchFailures.WithLabelValues(string(models.KindOperatorNotice)).Inc()
		s.logger.Warn("operator notice dispatch failed",
			zap.String("candidate_id", c.ID),
			zap.Error(err))
	}
}

func (s *WorkflowService) documentNames(c *models.Candidate) []string {
	names := make([]string, 0, len(c.RequiredDocuments))
	for _, key := range c.RequiredDocuments {
		if req, ok := s.docs.Requirement(key); ok {
			names = append(names, req.DisplayName)
			continue
		}
		names = append(names, key)
	}
	return names
}

// initialDocumentStatus builds the all-false checklist a candidate
// starts with.
func initialDocumentStatus(docs *config.DocumentConfig) map[string]models.DocumentState {
	status := make(map[string]models.DocumentState, len(docs.Requirements))
	for _, req := range docs.Requirements {
		status[req.Key] = models.DocumentState{DisplayName: req.DisplayName}
	}
	return status
}
