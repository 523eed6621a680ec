package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

const (
	TemplateInvoiceNew       = "invoice_new"
	TemplateRechargeReminder = "recharge_reminder"
	TemplatePlanReminder     = "plan_reminder"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render executes a named template and resolves its subject. A "subject" key in
// data wins over the per-template default.
func Render(templateName string, data map[string]any) (subject string, body string, err error) {
	t := templates.Lookup(templateName + ".html")
	if t == nil {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, templateName)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("execute template %s: %w", templateName, err)
	}

	if subj, ok := data["subject"].(string); ok && subj != "" {
		return subj, buf.String(), nil
	}

	business, _ := data["business_name"].(string)
	if business == "" {
		business = "us"
	}
	switch templateName {
	case TemplateInvoiceNew:
		number, _ := data["invoice_number"].(string)
		subject = fmt.Sprintf("Invoice %s from %s", number, business)
	case TemplateRechargeReminder:
		subject = "Your recharge is about to expire"
	case TemplatePlanReminder:
		subject = "Your plan is about to expire"
	default:
		subject = "Notification from " + business
	}
	return subject, buf.String(), nil
}
