// Package notify tells sales staff about new leads by e-mail.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bktrade/site/internal/model"
)

const leadSubject = "Новая заявка с сайта БК-Трейд"

// Dispatcher sends lead notifications from a background worker so the
// submitter never waits for the mail relay. Each lead is attempted at most
// once; failures are logged and dropped.
type Dispatcher struct {
	mailer  Mailer
	from    string
	to      []string
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan *model.Lead
	done   chan struct{}
}

// NewDispatcher creates a Dispatcher with a queue of queueSize leads and
// starts its worker. Call Close to drain it.
func NewDispatcher(mailer Mailer, from string, to []string, queueSize int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		mailer:  mailer,
		from:    from,
		to:      to,
		timeout: 30 * time.Second,
		queue:   make(chan *model.Lead, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// NotifyLead queues lead for notification without blocking. When the queue
// is full or the dispatcher is closed the notification is dropped.
func (d *Dispatcher) NotifyLead(lead *model.Lead) {
	copied := *lead
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		slog.Warn("lead notification dropped: dispatcher closed", "lead_id", lead.ID)
		return
	}
	select {
	case d.queue <- &copied:
	default:
		slog.Warn("lead notification dropped: queue full", "lead_id", lead.ID)
	}
}

// Close stops accepting leads and waits for queued ones to be sent or ctx
// to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for lead := range d.queue {
		d.send(lead)
	}
}

func (d *Dispatcher) send(lead *model.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("lead notification panicked", "lead_id", lead.ID, "panic", r)
		}
	}()

	if err := d.mailer.Send(ctx, LeadMessage(lead, d.from, d.to)); err != nil {
		slog.Error("lead notification failed", "lead_id", lead.ID, "error", err)
		return
	}
	slog.Info("lead notification sent", "lead_id", lead.ID)
}

// LeadMessage renders the notification for lead.
func LeadMessage(lead *model.Lead, from string, to []string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Источник: %s\n", lead.Source)
	fmt.Fprintf(&b, "Имя: %s\n", lead.Name)
	fmt.Fprintf(&b, "Организация: %s\n", lead.Organization)
	fmt.Fprintf(&b, "Телефон: %s\n", lead.Phone)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Позиция: %s\n", lead.Item)
	fmt.Fprintf(&b, "Сообщение: %s", lead.Message)
	return Message{
		From:    from,
		To:      to,
		Subject: leadSubject,
		Body:    b.String(),
	}
}
