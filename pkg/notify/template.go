package notify

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"time"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

const DefaultTemplate = `[{{.SeverityLabel}}] {{.Message}}
Resource: {{.Resource}}
Level: {{.Level}}
Raised: {{.Raised}}
{{- if .Depletion }}
Estimated depletion: {{.Depletion}}
{{- end }}
Alert ID: {{.AlertID}}
`

type TemplateData struct {
	AlertID       string
	Resource      string
	Severity      string
	SeverityLabel string
	Level         string
	Message       string
	Raised        string
	Depletion     string
}

type Template struct {
	tpl *template.Template
}

// NewTemplate parses a notification template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("alert-notification").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

func (t *Template) Render(data TemplateData) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("alert template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildTemplateData(alert models.Alert) TemplateData {
	label := "WARNING"
	if alert.Severity == models.SeverityCritical {
		label = "CRITICAL"
	}
	data := TemplateData{
		AlertID:       alert.ID,
		Resource:      string(alert.Resource),
		Severity:      string(alert.Severity),
		SeverityLabel: label,
		Level:         fmt.Sprintf("%.1f%%", alert.Level),
		Message:       alert.Message,
		Raised:        alert.Timestamp.UTC().Format(time.RFC3339),
	}
	if alert.EstimatedDepletion != nil {
		data.Depletion = alert.EstimatedDepletion.UTC().Format(time.RFC3339)
	}
	return data
}

// BuildContent renders the subject and body for an alert.
func (t *Template) BuildContent(alert models.Alert) (Content, error) {
	data := buildTemplateData(alert)
	body, err := t.Render(data)
	if err != nil {
		return Content{}, err
	}
	return Content{
		Subject: fmt.Sprintf("[%s] %s", data.SeverityLabel, alert.Message),
		Body:    body,
	}, nil
}
