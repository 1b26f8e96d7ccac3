package notify

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Template names, also used as the metric label.
const (
	TemplateNewMessage       = "new_message"
	TemplateClaimSubmitted   = "claim_submitted"
	TemplateClaimApproved    = "claim_approved"
	TemplateClaimRejected    = "claim_rejected"
	TemplateComplianceDigest = "compliance_digest"
)

const htmlLayout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#1f2933;max-width:560px;margin:0 auto;padding:24px">
{{template "body" .}}
<p style="color:#7b8794;font-size:12px;margin-top:32px">You received this email because you have an account on the Construction Staffing Marketplace.</p>
</body></html>{{end}}`

var htmlBodies = map[string]string{
	TemplateNewMessage: `{{define "body"}}<p>Hi {{.RecipientName}},</p>
<p><strong>{{.SenderName}}</strong> sent you a message:</p>
<blockquote style="border-left:3px solid #f59e0b;padding-left:12px;color:#3e4c59">{{.Preview}}</blockquote>
<p><a href="{{.Link}}">Reply in your inbox</a></p>{{end}}`,

	TemplateClaimSubmitted: `{{define "body"}}<p>Hi {{.ClaimantName}},</p>
<p>We received your request to claim <strong>{{.AgencyName}}</strong>. Our team reviews claims within two business days.</p>
<p><a href="{{.Link}}">Check the claim status</a></p>{{end}}`,

	TemplateClaimApproved: `{{define "body"}}<p>Hi {{.ClaimantName}},</p>
<p>Your claim for <strong>{{.AgencyName}}</strong> was approved. You can now manage the agency profile and its compliance records.</p>
<p><a href="{{.Link}}">Open your dashboard</a></p>{{end}}`,

	TemplateClaimRejected: `{{define "body"}}<p>Hi {{.ClaimantName}},</p>
<p>Your claim for <strong>{{.AgencyName}}</strong> was not approved.</p>
<p>Reason: {{.Reason}}</p>
<p><a href="{{.Link}}">View the agency</a></p>{{end}}`,

	TemplateComplianceDigest: `{{define "body"}}<p>Hi {{.OwnerName}},</p>
<p>Some compliance records of <strong>{{.AgencyName}}</strong> need attention:</p>
<ul>{{range .Items}}<li>{{.Label}}: {{if .Expired}}expired on{{else}}expires on{{end}} {{.ExpirationDate}}</li>{{end}}</ul>
<p><a href="{{.Link}}">Update compliance records</a></p>{{end}}`,
}

var textBodies = map[string]string{
	TemplateNewMessage: `Hi {{.RecipientName}},

{{.SenderName}} sent you a message:

{{.Preview}}

Reply: {{.Link}}
`,
	TemplateClaimSubmitted: `Hi {{.ClaimantName}},

We received your request to claim {{.AgencyName}}. Our team reviews claims within two business days.

Status: {{.Link}}
`,
	TemplateClaimApproved: `Hi {{.ClaimantName}},

Your claim for {{.AgencyName}} was approved. You can now manage the agency profile and its compliance records.

Dashboard: {{.Link}}
`,
	TemplateClaimRejected: `Hi {{.ClaimantName}},

Your claim for {{.AgencyName}} was not approved.
Reason: {{.Reason}}

Agency: {{.Link}}
`,
	TemplateComplianceDigest: `Hi {{.OwnerName}},

Some compliance records of {{.AgencyName}} need attention:
{{range .Items}}
- {{.Label}}: {{if .Expired}}expired on{{else}}expires on{{end}} {{.ExpirationDate}}{{end}}

Update: {{.Link}}
`,
}

type templateSet struct {
	html map[string]*htmltemplate.Template
	text map[string]*texttemplate.Template
}

func parseTemplates() templateSet {
	ts := templateSet{
		html: make(map[string]*htmltemplate.Template, len(htmlBodies)),
		text: make(map[string]*texttemplate.Template, len(textBodies)),
	}
	for name, body := range htmlBodies {
		t := htmltemplate.Must(htmltemplate.New(name).Parse(htmlLayout))
		ts.html[name] = htmltemplate.Must(t.Parse(body))
	}
	for name, body := range textBodies {
		ts.text[name] = texttemplate.Must(texttemplate.New(name).Parse(body))
	}
	return ts
}
