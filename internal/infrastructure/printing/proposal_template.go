package printing

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/agencyhub/backend/internal/domain/proposals"
)

// proposalTemplate is the built-in print layout for proposal PDFs
var proposalTemplate = template.Must(template.New("proposal").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1f2937; margin: 0; }
  h1 { font-size: 22px; margin-bottom: 4px; }
  .meta { color: #6b7280; font-size: 12px; margin-bottom: 24px; }
  .body { font-size: 13px; line-height: 1.6; margin-bottom: 28px; white-space: pre-wrap; }
  table { width: 100%; border-collapse: collapse; font-size: 13px; }
  th { text-align: left; border-bottom: 2px solid #1f2937; padding: 6px 8px; }
  th.num, td.num { text-align: right; }
  td { border-bottom: 1px solid #e5e7eb; padding: 6px 8px; }
  .total td { border-bottom: none; font-weight: bold; padding-top: 12px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Prepared by {{.OrgName}}{{if .SentDate}} &middot; {{.SentDate}}{{end}}</div>
{{if .Body}}<div class="body">{{.Body}}</div>{{end}}
<table>
  <tr><th>Description</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Amount</th></tr>
  {{range .Items}}
  <tr>
    <td>{{.Description}}</td>
    <td class="num">{{.Quantity}}</td>
    <td class="num">{{.UnitPrice}}</td>
    <td class="num">{{.Amount}}</td>
  </tr>
  {{end}}
  <tr class="total"><td colspan="3">Total</td><td class="num">{{.Total}}</td></tr>
</table>
</body>
</html>`))

type proposalItemView struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

type proposalView struct {
	Title    string
	OrgName  string
	SentDate string
	Body     string
	Items    []proposalItemView
	Total    string
}

// RenderProposalHTML builds the printable HTML document for a proposal
func RenderProposalHTML(proposal *proposals.Proposal, orgName string) (string, error) {
	view := proposalView{
		Title:   proposal.Title,
		OrgName: orgName,
		Body:    proposal.Body,
		Total:   money(proposal.Total(), proposal.Currency),
	}
	if proposal.SentAt != nil {
		view.SentDate = proposal.SentAt.Format("January 2, 2006")
	}
	for _, item := range proposal.Items {
		view.Items = append(view.Items, proposalItemView{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   money(item.UnitPrice, proposal.Currency),
			Amount:      money(item.Amount(), proposal.Currency),
		})
	}

	var buf bytes.Buffer
	if err := proposalTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("printing: failed to build proposal document: %w", err)
	}
	return buf.String(), nil
}

func money(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
}
