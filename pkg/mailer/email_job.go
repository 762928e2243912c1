package mailer

import (
	mailtpl "github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

// EmailJob is a single email, either sent inline or published as JSON to the
// RabbitMQ email queue. When Template is set the subject and bodies are
// rendered from it with Data; otherwise Subject/Text/HTML are used as is.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // activate_user, activate_shop, reset_password
	Data     map[string]any `json:"data,omitempty"`
}

// Render resolves the final subject, text and html bodies.
func (j EmailJob) Render() (subject, text, html string, err error) {
	if j.Template == "" {
		return j.Subject, j.Text, j.HTML, nil
	}
	data := j.Data
	if data == nil {
		data = map[string]any{}
	}
	if v, ok := data["RecipientEmail"]; !ok || v == "" {
		data["RecipientEmail"] = j.To
	}
	return mailtpl.Render(j.Template, data)
}
