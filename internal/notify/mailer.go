// Package notify delivers outbound email.  Delivery is best effort:
// callers log failures and never roll back state because of them.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

// Email is one outbound HTML message.  Kind names the event that caused
// it and is only used for logging.
type Email struct {
	Kind    string `json:"kind,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer sends a single email synchronously.
type Mailer interface {
	Send(ctx context.Context, m Email) error
}

// SMTPConfig holds the outgoing server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends through an SMTP relay.  Consecutive failures open a
// circuit breaker so a dead relay does not stall every request.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	cb     *gobreaker.CircuitBreaker
}

func NewSMTPMailer(cfg SMTPConfig, log *logrus.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		cb:     CircuitBreaker("smtp", log),
	}
}

func (s *SMTPMailer) Send(ctx context.Context, m Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.To == "" {
		return errors.New("notify: empty recipient")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.dialer.DialAndSend(msg)
	})
	return err
}

// CircuitBreaker trips after three consecutive failures and probes
// again after ten seconds.
func CircuitBreaker(name string, log *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				if log != nil {
					log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
						Warn("circuit breaker state changed")
				}
			},
		},
	)
}

// LogMailer only logs the message.  It stands in for SMTP in
// development.
type LogMailer struct {
	Log *logrus.Logger
}

func (l LogMailer) Send(_ context.Context, m Email) error {
	l.Log.WithFields(logrus.Fields{"to": m.To, "subject": m.Subject}).Info("email (not sent, smtp disabled)")
	return nil
}
