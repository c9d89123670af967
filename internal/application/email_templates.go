package application

import (
	"bytes"
	"html/template"
)

var statusEmailTemplate = template.Must(template.New("status").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1e40af;">JanSankalp AI</h2>
  <p>Dear {{.Name}},</p>
  <p>The status of your report <strong>{{.TicketID}}</strong>{{if .Title}} ({{.Title}}){{end}} is now <strong>{{.Status}}</strong>.</p>
  <p>You can track progress from your dashboard at any time.</p>
</div>`))

var registeredEmailTemplate = template.Must(template.New("registered").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1e40af;">JanSankalp AI</h2>
  <p>Dear {{.Name}},</p>
  <p>Your complaint has been registered with ticket <strong>{{.TicketID}}</strong>.</p>
  <p>Category: {{.Category}}</p>
  <p>We will notify you as it moves through review.</p>
</div>`))

func renderStatusEmail(name, ticketID, status, title string) string {
	return renderEmail(statusEmailTemplate, map[string]string{
		"Name":     displayName(name),
		"TicketID": ticketID,
		"Status":   status,
		"Title":    title,
	})
}

func renderRegisteredEmail(name, ticketID, category string) string {
	return renderEmail(registeredEmailTemplate, map[string]string{
		"Name":     displayName(name),
		"TicketID": ticketID,
		"Category": category,
	})
}

func renderEmail(tpl *template.Template, data map[string]string) string {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func displayName(name string) string {
	if name == "" {
		return "Citizen"
	}
	return name
}
