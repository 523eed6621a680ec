// Package render produces the HTML summary of an invoice used in email bodies.
package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strconv"
	"strings"
)

const invoiceHTMLTemplate = `<div class="invoice-card" style="max-width: 640px; border: 1px solid #e3e8ee; border-radius: 4px; padding: 24px; font-family: {{.Font}};">
  <div style="display: flex; justify-content: space-between;">
    <div>
      <div style="font-size: 20px; font-weight: 700; color: {{.PrimaryColor}};">Invoice {{.Number}}</div>
      <div style="color: #697386;">Issued {{.IssueDate}} &middot; Due {{.DueDate}}</div>
    </div>
    <div style="text-align: right; font-weight: 600;">{{.Status}}</div>
  </div>
  <p style="margin: 16px 0 4px;"><strong>{{.BusinessName}}</strong></p>
  <p style="margin: 0 0 16px;">Bill to: {{.CustomerName}}</p>
  <table style="width: 100%; border-collapse: collapse;">
    <thead>
      <tr style="text-align: left; color: #697386; font-size: 12px;">
        <th>Description</th>
        <th style="text-align: right;">Qty</th>
        <th style="text-align: right;">Unit price</th>
        <th style="text-align: right;">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.Description}}</td>
        <td style="text-align: right;">{{.Quantity}}</td>
        <td style="text-align: right;">{{.UnitPrice}}</td>
        <td style="text-align: right;">{{.Amount}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  <table style="width: 100%; margin-top: 16px;">
    <tr><td style="color: #697386;">Subtotal</td><td style="text-align: right;">{{.Subtotal}}</td></tr>
    <tr><td style="color: #697386;">{{.TaxLabel}}</td><td style="text-align: right;">{{.Tax}}</td></tr>
    <tr><td><strong>Total</strong></td><td style="text-align: right;"><strong>{{.Total}}</strong></td></tr>
  </table>
  {{if .BankDetails}}<p style="font-size: 12px; color: #697386;">{{.BankDetails}}</p>{{end}}
</div>
`

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// View is a fully formatted invoice; amounts are display strings.
type View struct {
	Number       string
	Status       string
	IssueDate    string
	DueDate      string
	BusinessName string
	CustomerName string
	Items        []ItemView
	Subtotal     string
	TaxLabel     string
	Tax          string
	Total        string
	BankDetails  string
	PrimaryColor string
	Font         string
}

type ItemView struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

type Renderer interface {
	RenderHTML(View) (template.HTML, error)
}

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(view View) (template.HTML, error) {
	view.PrimaryColor = sanitizeColor(view.PrimaryColor)
	if strings.TrimSpace(view.Font) == "" {
		view.Font = "Helvetica, Arial, sans-serif"
	}
	if view.BusinessName == "" {
		view.BusinessName = "Invoice"
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, view); err != nil {
		return "", err
	}
	// Output of html/template is already escaped.
	return template.HTML(buf.String()), nil
}

// FormatQuantity renders an integer quantity for display.
func FormatQuantity(q int64) string {
	return strconv.FormatInt(q, 10)
}

func sanitizeColor(value string) string {
	trimmed := strings.TrimSpace(value)
	if hexColorPattern.MatchString(trimmed) {
		return trimmed
	}
	return "#111827"
}
