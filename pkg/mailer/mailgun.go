package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/pkg/errors"
)

const defaultSendTimeout = 10 * time.Second

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun sends through the Mailgun HTTP API from a fixed From address.
type Mailgun struct {
	client  *mg.MailgunImpl
	From    string
	Timeout time.Duration
}

func NewMailgun(domain, apiKey, from string) *Mailgun {
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), From: from, Timeout: defaultSendTimeout}
}

// Send delivers one message. The HTML part is attached only when html is set.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.From, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return errors.Wrapf(err, "mailgun send to %s", to)
	}
	return nil
}
