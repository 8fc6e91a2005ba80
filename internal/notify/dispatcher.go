package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Dispatcher hands emails off for delivery without waiting for them.
type Dispatcher interface {
	Dispatch(ctx context.Context, m Email)
}

// AsyncDispatcher sends every email from its own goroutine.
type AsyncDispatcher struct {
	mailer  Mailer
	log     *logrus.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncDispatcher(m Mailer, log *logrus.Logger) *AsyncDispatcher {
	return &AsyncDispatcher{mailer: m, log: log, timeout: 30 * time.Second}
}

// Dispatch detaches from ctx: the caller's request usually ends before
// the email is out.
func (d *AsyncDispatcher) Dispatch(_ context.Context, m Email) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.mailer.Send(ctx, m); err != nil {
			d.log.WithFields(logrus.Fields{"to": m.To, "subject": m.Subject}).WithError(err).Warn("email delivery failed")
		}
	}()
}

// Wait blocks until every dispatched email has been attempted.
func (d *AsyncDispatcher) Wait() { d.wg.Wait() }
