package notification

import (
	"fmt"
	"strings"
	"sync"
)

// Channel is how a notification is delivered.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Template is a reusable message with {{key}} placeholders.
type Template struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine stores templates and renders them with data maps.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates an engine with the clinic's built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	for _, t := range builtinTemplates {
		tpl := t
		e.templates[tpl.ID] = &tpl
	}
	return e
}

var builtinTemplates = []Template{
	{
		ID:      "appointment-booked",
		Name:    "Appointment Booked",
		Body:    "Hi {{patient_name}}, your appointment with {{doctor_name}} on {{date}} at {{time}} is received and pending confirmation.",
		Channel: ChannelSMS,
	},
	{
		ID:      "appointment-confirmed",
		Name:    "Appointment Confirmed",
		Body:    "Hi {{patient_name}}, your appointment with {{doctor_name}} on {{date}} at {{time}} is confirmed.",
		Channel: ChannelSMS,
	},
	{
		ID:      "appointment-cancelled",
		Name:    "Appointment Cancelled",
		Body:    "Hi {{patient_name}}, your appointment on {{date}} at {{time}} has been cancelled.",
		Channel: ChannelSMS,
	},
	{
		ID:      "appointment-reminder",
		Name:    "Appointment Reminder",
		Subject: "Appointment reminder",
		Body:    "Hi {{patient_name}}, a reminder of your appointment with {{doctor_name}} tomorrow at {{time}}.",
		Channel: ChannelSMS,
	},
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Get returns a template by ID.
func (e *TemplateEngine) Get(id string) (*Template, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.templates[id]
	return t, ok
}

// Render performs {{key}} replacement over the template's subject and body.
// Placeholders absent from data are left untouched.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	t, ok := e.Get(templateID)
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}
