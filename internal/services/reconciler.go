package services

import (
	"github.com/hireflow/onboarding/internal/config"
	"github.com/hireflow/onboarding/internal/models"
)

// Delta is the pure result of one reconciliation. The caller is
// responsible for committing it; Reconcile itself never touches storage.
//
// Changed covers the document map only. A candidate whose status lags
// behind Label (awaiting the seed document, or already past document
// collection) is the state machine's business, not a storage write.
type Delta struct {
	DocumentStatus map[string]models.DocumentState
	PendingCount   int
	Label          models.Status
	SeedPresent    bool
	Changed        bool
}

// Reconciler compares folder contents against the persisted per-document
// status for the checklist version a candidate was provisioned with.
type Reconciler struct {
	docs *config.DocumentConfig
}

// NewReconciler creates a reconciler bound to a document configuration.
func NewReconciler(docs *config.DocumentConfig) *Reconciler {
	return &Reconciler{docs: docs}
}

// Reconcile derives the new document status from the current folder
// listing. Storage is the source of truth for the uploaded flag; verified
// and specialApproval are operator-set and never touched here.
//
// A failed listing must be handled by the caller before calling
// Reconcile: passing a stale or empty listing after an error would
// wrongly clear uploaded flags.
func (r *Reconciler) Reconcile(c *models.Candidate, fileNames []string) Delta {
	satisfiedByFile := Classify(r.docs.Requirements, fileNames)

	status := make(map[string]models.DocumentState, len(c.RequiredDocuments))
	changed := false
	pending := 0

	for _, key := range c.RequiredDocuments {
		prev := c.DocumentStateFor(key)
		next := prev
		next.Uploaded = satisfiedByFile[key]
		if next.DisplayName == "" {
			if req, ok := r.docs.Requirement(key); ok {
				next.DisplayName = req.DisplayName
			}
		}

		if next != prev {
			changed = true
		}
		if !next.Satisfied() {
			pending++
		}
		status[key] = next
	}

	label := models.StatusAllDocsUploaded
	if pending > 0 {
		label = models.StatusDocsPending
	}

	return Delta{
		DocumentStatus: status,
		PendingCount:   pending,
		Label:          label,
		SeedPresent:    MatchesRequirement(r.docs.SeedDocument, fileNames),
		Changed:        changed,
	}
}
