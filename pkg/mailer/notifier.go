package mailer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DirectNotifier renders and sends each email before returning.
type DirectNotifier struct {
	sender Sender
}

func NewDirectNotifier(sender Sender) *DirectNotifier {
	return &DirectNotifier{sender: sender}
}

func (n *DirectNotifier) Notify(ctx context.Context, job EmailJob) error {
	subject, text, html, err := job.Render()
	if err != nil {
		return errors.Wrapf(err, "render %s", job.Template)
	}
	if err := n.sender.Send(ctx, job.To, subject, text, html); err != nil {
		return errors.Wrap(err, "send email")
	}
	return nil
}

// Publisher is the part of helpers.RabbitPublisher used here.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier hands the job to cmd/email_worker through RabbitMQ.
type QueueNotifier struct {
	pub Publisher
}

func NewQueueNotifier(pub Publisher) *QueueNotifier {
	return &QueueNotifier{pub: pub}
}

func (n *QueueNotifier) Notify(ctx context.Context, job EmailJob) error {
	if err := n.pub.PublishJSON(ctx, job); err != nil {
		return errors.Wrap(err, "publish email job")
	}
	return nil
}

// LogNotifier only logs; used when MAIL_SEND_ENABLED=false.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

func (n LogNotifier) Notify(_ context.Context, job EmailJob) error {
	if n.Logger != nil {
		n.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template, "data": job.Data}).
			Info("mail sending disabled; email not sent")
	}
	return nil
}
