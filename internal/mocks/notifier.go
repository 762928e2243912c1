package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer"
)

// Notifier keeps every email job instead of sending it.
type Notifier struct {
	mu   sync.Mutex
	Jobs []mailer.EmailJob
	Err  error
}

func NewNotifier() *Notifier { return &Notifier{} }

func (n *Notifier) Notify(_ context.Context, job mailer.EmailJob) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Jobs = append(n.Jobs, job)
	return nil
}

// Last returns the most recent job, or a zero job.
func (n *Notifier) Last() mailer.EmailJob {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Jobs) == 0 {
		return mailer.EmailJob{}
	}
	return n.Jobs[len(n.Jobs)-1]
}

// LastToken extracts the token appended to the action URL of the last job.
func (n *Notifier) LastToken() string {
	url, _ := n.Last().Data["ActionURL"].(string)
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return ""
}
