package models

// TemplateKind identifies which communication a dispatch request renders.
type TemplateKind string

const (
	KindProvisionalOffer TemplateKind = "provisional_offer"
	KindFormalOffer      TemplateKind = "formal_offer"
	KindDocumentReminder TemplateKind = "document_reminder"
	KindFinalOffer       TemplateKind = "final_offer"
	KindOperatorNotice   TemplateKind = "operator_notice"
)

// Valid reports whether k names a known template.
func (k TemplateKind) Valid() bool {
	switch k {
	case KindProvisionalOffer, KindFormalOffer, KindDocumentReminder,
		KindFinalOffer, KindOperatorNotice:
		return true
	}
	return false
}

// Communication is a dispatch request handed to the mail gateway. The
// core only learns success or failure; transport detail stays opaque.
type Communication struct {
	CandidateID string                   `json:"candidate_id"`
	To          string                   `json:"to"`
	Kind        TemplateKind             `json:"kind"`
	Vars        map[string]string        `json:"vars,omitempty"`
	Documents   map[string]DocumentState `json:"documents,omitempty"`
}
