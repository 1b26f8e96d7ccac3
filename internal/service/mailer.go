package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"staffingapi/internal/notify"
)

const mailTimeout = 15 * time.Second

// Mailer runs notifications outside the request path. A failed email is
// logged and never reported to the caller.
type Mailer struct {
	notifier notify.Notifier
	log      logrus.FieldLogger
	wg       sync.WaitGroup

	// RequestID extracts a request id from the context for failure logs.
	RequestID func(context.Context) string
}

func NewMailer(n notify.Notifier, log logrus.FieldLogger) *Mailer {
	return &Mailer{notifier: n, log: log}
}

// Go sends asynchronously. The request context's values (trace, request id)
// are kept but its cancellation is not.
func (m *Mailer) Go(ctx context.Context, name string, send func(context.Context, notify.Notifier) error) {
	if m == nil || m.notifier == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(base, mailTimeout)
		defer cancel()
		if err := send(ctx, m.notifier); err != nil {
			fields := logrus.Fields{
				"event":    "email_failed",
				"template": name,
				"error":    err.Error(),
			}
			if m.RequestID != nil {
				if id := m.RequestID(ctx); id != "" {
					fields["request_id"] = id
				}
			}
			m.log.WithFields(fields).Warn("notification not delivered")
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (m *Mailer) Wait() {
	if m == nil {
		return
	}
	m.wg.Wait()
}

// Send delivers synchronously and returns the notifier's error. It is used by
// jobs that report delivery results themselves.
func (m *Mailer) Send(ctx context.Context, send func(context.Context, notify.Notifier) error) error {
	if m == nil || m.notifier == nil {
		return nil
	}
	return send(ctx, m.notifier)
}
