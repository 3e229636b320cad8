package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notification is one outbound message with its delivery record.
type Notification struct {
	ID           string            `json:"id"`
	Channel      Channel           `json:"channel"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject,omitempty"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
}

const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Manager dispatches notifications and keeps their delivery records
// in-memory. Enqueue is non-blocking; a background worker started with Run
// drains the queue.
type Manager struct {
	email     EmailSender
	sms       SMSSender
	templates *TemplateEngine
	logger    zerolog.Logger

	queue chan *Notification

	mu      sync.RWMutex
	records map[string]*Notification
}

func NewManager(email EmailSender, sms SMSSender, tpl *TemplateEngine, logger zerolog.Logger) *Manager {
	return &Manager{
		email:     email,
		sms:       sms,
		templates: tpl,
		logger:    logger,
		queue:     make(chan *Notification, 256),
		records:   make(map[string]*Notification),
	}
}

// Run drains the queue until ctx is cancelled. Call it from a goroutine.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-m.queue:
			m.deliver(ctx, n)
		}
	}
}

// Enqueue records a notification and hands it to the worker. When the queue
// is full the notification is marked failed instead of blocking the caller.
func (m *Manager) Enqueue(n *Notification) {
	m.track(n)
	select {
	case m.queue <- n:
	default:
		m.setResult(n, fmt.Errorf("notification queue full"))
		m.logger.Warn().Str("notification_id", n.ID).Msg("notification queue full, dropping")
	}
}

// Send delivers a notification synchronously.
func (m *Manager) Send(ctx context.Context, n *Notification) error {
	m.track(n)
	return m.deliver(ctx, n)
}

// SendFromTemplate renders a template and delivers the result synchronously.
func (m *Manager) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Notification, error) {
	n, err := m.fromTemplate(templateID, data, recipient)
	if err != nil {
		return nil, err
	}
	if err := m.Send(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// EnqueueFromTemplate renders a template and queues the result for the
// background worker.
func (m *Manager) EnqueueFromTemplate(templateID string, data map[string]string, recipient string) (*Notification, error) {
	n, err := m.fromTemplate(templateID, data, recipient)
	if err != nil {
		return nil, err
	}
	m.Enqueue(n)
	return n, nil
}

func (m *Manager) fromTemplate(templateID string, data map[string]string, recipient string) (*Notification, error) {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	tpl, _ := m.templates.Get(templateID)
	return &Notification{
		Channel:      tpl.Channel,
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
	}, nil
}

func (m *Manager) track(n *Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	n.Status = StatusQueued

	m.mu.Lock()
	m.records[n.ID] = n
	m.mu.Unlock()
}

func (m *Manager) deliver(ctx context.Context, n *Notification) error {
	var err error
	switch n.Channel {
	case ChannelEmail:
		err = m.email.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
	case ChannelSMS:
		err = m.sms.SendSMS(ctx, n.Recipient, n.Body)
	default:
		err = fmt.Errorf("unsupported channel: %s", n.Channel)
	}

	m.setResult(n, err)
	if err != nil {
		m.logger.Warn().Err(err).
			Str("notification_id", n.ID).
			Str("channel", string(n.Channel)).
			Msg("notification delivery failed")
	}
	return err
}

func (m *Manager) setResult(n *Notification, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		n.Status = StatusFailed
		n.Error = err.Error()
		return
	}
	n.Status = StatusSent
	sentAt := time.Now().UTC()
	n.SentAt = &sentAt
	n.Error = ""
}

// Get retrieves a snapshot of a notification record by ID. A copy is
// returned because the worker may still be mutating the record.
func (m *Manager) Get(id string) (*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("notification %q not found", id)
	}
	cp := *n
	return &cp, nil
}

// ListByRecipient returns up to limit record snapshots addressed to
// recipient.
func (m *Manager) ListByRecipient(recipient string, limit int) []*Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Notification
	for _, n := range m.records {
		if n.Recipient == recipient {
			cp := *n
			result = append(result, &cp)
			if len(result) >= limit {
				break
			}
		}
	}
	return result
}

// Retry re-sends a failed notification.
func (m *Manager) Retry(ctx context.Context, id string) error {
	m.mu.RLock()
	n, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	if n.Status != StatusFailed {
		return fmt.Errorf("notification %q is not in failed status (current: %s)", id, n.Status)
	}
	return m.deliver(ctx, n)
}

// Stats returns record counts grouped by status.
func (m *Manager) Stats() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]int)
	for _, n := range m.records {
		stats[n.Status]++
	}
	return stats
}
