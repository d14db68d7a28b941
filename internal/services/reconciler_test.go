package services

import (
	"testing"

	"github.com/hireflow/onboarding/internal/config"
	"github.com/hireflow/onboarding/internal/models"
	"github.com/stretchr/testify/assert"
)

func testDocumentConfig() *config.DocumentConfig {
	return &config.DocumentConfig{
		Version: 1,
		SeedDocument: config.DocumentRequirement{
			Key:         "offer_letter",
			DisplayName: "Countersigned Offer Letter",
			Keywords:    []string{"offer", "countersigned"},
		},
		Requirements: testRequirements(),
	}
}

func pendingCandidate() *models.Candidate {
	return &models.Candidate{
		ID:                "c-1",
		Name:              "Asha Verma",
		Email:             "asha@example.com",
		Status:            models.StatusDocsPending,
		FolderRef:         "candidates/c-1/",
		RequiredDocuments: []string{"aadhaar", "pan", "photo"},
		DocumentStatus: map[string]models.DocumentState{
			"aadhaar": {DisplayName: "Aadhaar Card"},
			"pan":     {DisplayName: "PAN Card"},
			"photo":   {DisplayName: "Passport Photo"},
		},
	}
}

func TestReconcile_MarksUploadedFromListing(t *testing.T) {
	r := NewReconciler(testDocumentConfig())
	c := pendingCandidate()

	delta := r.Reconcile(c, []string{"aadhaar.pdf", "pan_card.jpg"})

	assert.True(t, delta.Changed)
	assert.True(t, delta.DocumentStatus["aadhaar"].Uploaded)
	assert.True(t, delta.DocumentStatus["pan"].Uploaded)
	assert.False(t, delta.DocumentStatus["photo"].Uploaded)
	assert.Equal(t, 1, delta.PendingCount)
	assert.Equal(t, models.StatusDocsPending, delta.Label)
}

func TestReconcile_RemovedFileClearsUploaded(t *testing.T) {
	r := NewReconciler(testDocumentConfig())
	c := pendingCandidate()
	c.DocumentStatus["aadhaar"] = models.DocumentState{DisplayName: "Aadhaar Card", Uploaded: true}

	delta := r.Reconcile(c, nil)

	assert.True(t, delta.Changed)
	assert.False(t, delta.DocumentStatus["aadhaar"].Uploaded)
	assert.Equal(t, 3, delta.PendingCount)
}

func TestReconcile_PreservesOperatorFlags(t *testing.T) {
	r := NewReconciler(testDocumentConfig())
	c := pendingCandidate()
	c.DocumentStatus["aadhaar"] = models.DocumentState{DisplayName: "Aadhaar Card", Verified: true}
	c.DocumentStatus["pan"] = models.DocumentState{DisplayName: "PAN Card", SpecialApproval: true}

	// Neither file is in the folder; verified and specialApproval still
	// keep both documents out of the pending count.
	delta := r.Reconcile(c, []string{"photo.jpg"})

	assert.True(t, delta.DocumentStatus["aadhaar"].Verified)
	assert.False(t, delta.DocumentStatus["aadhaar"].Uploaded)
	assert.True(t, delta.DocumentStatus["pan"].SpecialApproval)
	assert.Equal(t, 0, delta.PendingCount)
	assert.Equal(t, models.StatusAllDocsUploaded, delta.Label)
}

func TestReconcile_SecondRunIsUnchanged(t *testing.T) {
	r := NewReconciler(testDocumentConfig())
	c := pendingCandidate()
	files := []string{"aadhaar.pdf"}

	first := r.Reconcile(c, files)
	assert.True(t, first.Changed)

	c.DocumentStatus = first.DocumentStatus
	second := r.Reconcile(c, files)
	assert.False(t, second.Changed)
	assert.Equal(t, first.DocumentStatus, second.DocumentStatus)
	assert.Equal(t, first.PendingCount, second.PendingCount)
}

func TestReconcile_StatusLagIsNotAChange(t *testing.T) {
	r := NewReconciler(testDocumentConfig())

	// Before the seed document arrives the candidate sits in
	// AwaitingHRDocument while the derived label already says
	// DocsPending. That gap belongs to the state machine; the document
	// map is identical, so there is nothing to commit.
	c := pendingCandidate()
	c.Status = models.StatusAwaitingHRDocument
	delta := r.Reconcile(c, nil)
	assert.False(t, delta.Changed)
	assert.Equal(t, models.StatusDocsPending, delta.Label)

	// Same for a candidate already past document collection.
	c = pendingCandidate()
	c.Status = models.StatusOfferReleased
	for key, state := range c.DocumentStatus {
		state.Uploaded = true
		c.DocumentStatus[key] = state
	}
	delta = r.Reconcile(c, []string{"aadhaar.pdf", "pan.jpg", "photo.png"})
	assert.False(t, delta.Changed)
	assert.Equal(t, models.StatusAllDocsUploaded, delta.Label)
}

func TestReconcile_FillsDisplayNames(t *testing.T) {
	r := NewReconciler(testDocumentConfig())
	c := pendingCandidate()
	c.DocumentStatus = nil

	delta := r.Reconcile(c, nil)

	assert.Equal(t, "Aadhaar Card", delta.DocumentStatus["aadhaar"].DisplayName)
	assert.Equal(t, "PAN Card", delta.DocumentStatus["pan"].DisplayName)
}

func TestReconcile_SeedDetection(t *testing.T) {
	r := NewReconciler(testDocumentConfig())
	c := pendingCandidate()
	c.Status = models.StatusAwaitingHRDocument

	assert.False(t, r.Reconcile(c, []string{"aadhaar.pdf"}).SeedPresent)
	assert.True(t, r.Reconcile(c, []string{"Countersigned_Offer.pdf"}).SeedPresent)
}

func TestReconcile_AllSatisfiedLabelsCompletion(t *testing.T) {
	r := NewReconciler(testDocumentConfig())
	c := pendingCandidate()

	delta := r.Reconcile(c, []string{"aadhaar.pdf", "pan.jpg", "photo.png"})

	assert.Equal(t, 0, delta.PendingCount)
	assert.Equal(t, models.StatusAllDocsUploaded, delta.Label)
	assert.True(t, delta.Changed)
}
