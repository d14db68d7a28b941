package notify

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/hireflow/onboarding/internal/models"
)

// Subject returns the mail subject for a template kind.
func Subject(kind models.TemplateKind) string {
	switch kind {
	case models.KindProvisionalOffer:
		return "Provisional Offer - HireFlow"
	case models.KindFormalOffer:
		return "Formal Offer Letter & Document Submission"
	case models.KindDocumentReminder:
		return "Action Required: Onboarding Documents"
	case models.KindFinalOffer:
		return "Final Offer Letter - HireFlow"
	case models.KindOperatorNotice:
		return "Onboarding update"
	default:
		return "HireFlow Onboarding"
	}
}

var bodyTemplates = template.Must(template.New("bodies").Parse(`
{{define "provisional_offer"}}
<div style="font-family: Arial, sans-serif; max-width: 500px;">
  <h2>Provisional Offer</h2>
  <p>Dear {{.name}},</p>
  <p>We are pleased to extend you a provisional offer{{if .position}} for the role of <strong>{{.position}}</strong>{{end}}.
  A formal offer will follow once we have received your acceptance details.</p>
  <p>Regards,<br>HR Team</p>
</div>
{{end}}

{{define "formal_offer"}}
<div style="font-family: Arial, sans-serif; max-width: 500px;">
  <h2>Formal Offer &amp; Document Submission</h2>
  <p>Dear {{.name}},</p>
  <p>Thank you for providing your details. We are excited to move forward!</p>
  <p><strong>Action required:</strong> please upload the following documents: {{.documents}}.</p>
  <p><a href="{{.folder_url}}">Open your document folder</a></p>
  <p>Regards,<br>HR Team</p>
</div>
{{end}}

{{define "document_reminder"}}
<div style="font-family: Arial, sans-serif; max-width: 500px; border: 1px solid #eee; padding: 20px;">
  <h2 style="color: #1e40af;">Pending Documents</h2>
  <p>Hi {{.name}},</p>
  <p>Please upload the following missing documents to your folder:</p>
  <table style="width: 100%; border-collapse: collapse;">{{.rows}}</table>
  <div style="text-align: center; margin-top: 15px;">
    <a href="{{.folder_url}}"
       style="background: #2563eb; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; font-weight: bold;">
       Open Folder
    </a>
  </div>
</div>
{{end}}

{{define "final_offer"}}
<div style="font-family: Arial, sans-serif; max-width: 500px;">
  <h2>Final Offer Letter</h2>
  <p>Dear {{.name}},</p>
  <p>All your documents are in order. Your final offer letter is attached{{if .position}} for the role of <strong>{{.position}}</strong>{{end}}.</p>
  <p>Regards,<br>HR Team</p>
</div>
{{end}}

{{define "operator_notice"}}
<div style="font-family: Arial, sans-serif; max-width: 500px;">
  <p>{{.notice}}</p>
  {{if .folder_url}}<p><a href="{{.folder_url}}">Candidate folder</a></p>{{end}}
</div>
{{end}}
`))

// RenderBody renders the HTML body for a communication.
func RenderBody(msg models.Communication) (string, error) {
	vars := make(map[string]interface{}, len(msg.Vars)+1)
	for k, v := range msg.Vars {
		vars[k] = v
	}
	if msg.Kind == models.KindDocumentReminder {
		vars["rows"] = statusRows(msg.Documents)
	}

	var sb strings.Builder
	if err := bodyTemplates.ExecuteTemplate(&sb, string(msg.Kind), vars); err != nil {
		return "", fmt.Errorf("failed to render %s body: %w", msg.Kind, err)
	}
	return sb.String(), nil
}

// statusRows renders the per-document table of the reminder mail. Rows
// are sorted by display name so repeated sends render identically.
func statusRows(documents map[string]models.DocumentState) template.HTML {
	states := make([]models.DocumentState, 0, len(documents))
	for _, st := range documents {
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].DisplayName < states[j].DisplayName })

	var sb strings.Builder
	for _, doc := range states {
		text, color := "Missing", "#dc2626"
		switch {
		case doc.Verified || doc.SpecialApproval:
			text, color = "Approved", "#059669"
		case doc.Uploaded:
			text, color = "Uploaded", "#2563eb"
		}
		sb.WriteString(fmt.Sprintf(
			`<tr><td style="padding:10px; border-bottom:1px solid #eee;">%s</td>`+
				`<td style="padding:10px; border-bottom:1px solid #eee; text-align:right; color:%s; font-weight:bold;">%s</td></tr>`,
			template.HTMLEscapeString(doc.DisplayName), color, text))
	}
	return template.HTML(sb.String())
}
