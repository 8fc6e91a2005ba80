package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/iliyamo/venue-booking/internal/logging"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (r *recordingMailer) Send(_ context.Context, m Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return r.err
}

func TestAsyncDispatcherDelivers(t *testing.T) {
	rm := &recordingMailer{}
	d := NewAsyncDispatcher(rm, logging.Discard())
	d.Dispatch(context.Background(), Email{To: "a@example.com", Subject: "one"})
	d.Dispatch(context.Background(), Email{To: "b@example.com", Subject: "two"})
	d.Wait()
	if len(rm.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(rm.sent))
	}
}

func TestAsyncDispatcherSwallowsFailures(t *testing.T) {
	rm := &recordingMailer{err: errors.New("relay down")}
	d := NewAsyncDispatcher(rm, logging.Discard())
	d.Dispatch(context.Background(), Email{To: "a@example.com"})
	d.Wait()
	if len(rm.sent) != 1 {
		t.Fatalf("attempts = %d, want 1", len(rm.sent))
	}
}

func TestCircuitBreakerOpensAfterThreeFailures(t *testing.T) {
	cb := CircuitBreaker("test", logrus.New())
	fail := func() (interface{}, error) { return nil, errors.New("boom") }
	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(fail)
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}
	if _, err := cb.Execute(fail); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want ErrOpenState", err)
	}
}

func TestSMTPMailerRejectsEmptyRecipient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com"}, logging.Discard())
	if err := m.Send(context.Background(), Email{Subject: "x"}); err == nil {
		t.Fatal("expected error")
	}
}
