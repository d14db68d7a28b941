package models

import "time"

// Status is the onboarding lifecycle stage of a candidate. It is mutated
// only through the state machine (or an explicit operator override).
type Status string

const (
	StatusInitiated          Status = "Initiated"
	StatusOfferSent          Status = "OfferSent"
	StatusDetailsReceived    Status = "DetailsReceived"
	StatusAwaitingHRDocument Status = "AwaitingHRDocument"
	StatusDocsPending        Status = "DocsPending"
	StatusAllDocsUploaded    Status = "AllDocsUploaded"
	StatusOfferReleased      Status = "OfferReleased"
	StatusOnboarded          Status = "Onboarded"
)

// Valid reports whether s is one of the defined lifecycle stages.
func (s Status) Valid() bool {
	switch s {
	case StatusInitiated, StatusOfferSent, StatusDetailsReceived,
		StatusAwaitingHRDocument, StatusDocsPending, StatusAllDocsUploaded,
		StatusOfferReleased, StatusOnboarded:
		return true
	}
	return false
}

// Terminal reports whether a candidate in this status is excluded from
// all further scheduler and reconciliation ticks.
func (s Status) Terminal() bool {
	return s == StatusOnboarded
}

// DocumentState tracks one required document for a candidate.
type DocumentState struct {
	DisplayName     string `bson:"display_name" json:"display_name"`
	Uploaded        bool   `bson:"uploaded" json:"uploaded"`
	Verified        bool   `bson:"verified" json:"verified"`
	SpecialApproval bool   `bson:"special_approval" json:"special_approval"`
}

// Satisfied reports whether this document no longer counts as pending.
func (d DocumentState) Satisfied() bool {
	return d.Uploaded || d.Verified || d.SpecialApproval
}

// EventLogEntry is one line of a candidate's append-only audit trail.
type EventLogEntry struct {
	Event     string    `bson:"event" json:"event"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Candidate is the persisted record of one onboarding subject.
//
// DocumentStatus keys are always a subset of RequiredDocuments, which is
// frozen at provisioning time together with DocConfigVersion so that a
// later configuration change never reshapes records already in flight.
type Candidate struct {
	ID                 string                   `bson:"_id" json:"id"`
	Name               string                   `bson:"name" json:"name"`
	Email              string                   `bson:"email" json:"email"`
	Phone              string                   `bson:"phone,omitempty" json:"phone,omitempty"`
	Position           string                   `bson:"position,omitempty" json:"position,omitempty"`
	Status             Status                   `bson:"status" json:"status"`
	FolderRef          string                   `bson:"folder_ref,omitempty" json:"folder_ref,omitempty"`
	FolderURL          string                   `bson:"folder_url,omitempty" json:"folder_url,omitempty"`
	DocConfigVersion   int                      `bson:"doc_config_version" json:"doc_config_version"`
	RequiredDocuments  []string                 `bson:"required_documents" json:"required_documents"`
	DocumentStatus     map[string]DocumentState `bson:"document_status,omitempty" json:"document_status,omitempty"`
	LastReminderSentAt *time.Time               `bson:"last_reminder_sent_at,omitempty" json:"last_reminder_sent_at,omitempty"`
	EventLog           []EventLogEntry          `bson:"event_log,omitempty" json:"event_log,omitempty"`
	CreatedAt          time.Time                `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time                `bson:"updated_at" json:"updated_at"`
}

// DocumentState returns the tracked state for a document key. Absent keys
// read as all-false, so a record provisioned before its first
// reconciliation behaves the same as one with an explicit zero entry.
func (c *Candidate) DocumentStateFor(key string) DocumentState {
	if c.DocumentStatus == nil {
		return DocumentState{}
	}
	return c.DocumentStatus[key]
}

// PendingDocuments returns the required document keys not yet satisfied.
func (c *Candidate) PendingDocuments() []string {
	var pending []string
	for _, key := range c.RequiredDocuments {
		if !c.DocumentStateFor(key).Satisfied() {
			pending = append(pending, key)
		}
	}
	return pending
}

// CandidateUpdate is a partial merge-update of a candidate record. Nil
// fields are left unchanged by the store.
type CandidateUpdate struct {
	Status             *Status                  `bson:"status,omitempty"`
	FolderRef          *string                  `bson:"folder_ref,omitempty"`
	FolderURL          *string                  `bson:"folder_url,omitempty"`
	DocumentStatus     map[string]DocumentState `bson:"document_status,omitempty"`
	LastReminderSentAt *time.Time               `bson:"last_reminder_sent_at,omitempty"`
}
