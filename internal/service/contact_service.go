package service

import (
	"context"
	"errors"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// Cooldown throttles anonymous senders identified by a client key.
type Cooldown interface {
	// Acquire returns 0 and starts the window when key is free, or the
	// time left until it is.
	Acquire(ctx context.Context, key string, window time.Duration) (time.Duration, error)
}

// RedisCooldown keeps one expiring key per client.
type RedisCooldown struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCooldown(rdb *redis.Client, prefix string) *RedisCooldown {
	if prefix == "" {
		prefix = "cooldown"
	}
	return &RedisCooldown{rdb: rdb, prefix: prefix}
}

func (r *RedisCooldown) Acquire(ctx context.Context, key string, window time.Duration) (time.Duration, error) {
	k := r.prefix + ":" + key
	ok, err := r.rdb.SetNX(ctx, k, 1, window).Result()
	if err != nil {
		return 0, err
	}
	if ok {
		return 0, nil
	}
	ttl, err := r.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if ttl <= 0 {
		// key without expiry or already gone; treat as free next time
		return 0, nil
	}
	return ttl, nil
}

// ContactInput is a public contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ReplyInput is an admin answer to a contact message or a report.
type ReplyInput struct {
	Kind    string // contact or report
	ID      uint64
	Email   string
	Subject string
	Message string
}

type ContactService struct {
	d          Deps
	cooldown   Cooldown
	adminInbox string
}

// NewContactService builds the service.  cooldown may be nil, in which
// case only the per email limit applies.
func NewContactService(d Deps, cooldown Cooldown, adminInbox string) *ContactService {
	return &ContactService{d: d.withDefaults(), cooldown: cooldown, adminInbox: adminInbox}
}

// Submit stores a contact message and forwards it to the admin inbox.
// client identifies the sender's connection for the short burst limit.
func (s *ContactService) Submit(ctx context.Context, client string, in ContactInput) (model.ContactMessage, error) {
	in.Name, in.Email = strings.TrimSpace(in.Name), strings.ToLower(strings.TrimSpace(in.Email))
	in.Subject, in.Message = strings.TrimSpace(in.Subject), strings.TrimSpace(in.Message)
	if in.Name == "" || in.Email == "" || in.Message == "" {
		return model.ContactMessage{}, booking.Validation("Please fill in all required fields.")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return model.ContactMessage{}, booking.Validation("Invalid email address.")
	}
	now := s.d.Clock.Now()

	last, err := s.d.Store.Contacts().LastCreatedAtByEmail(ctx, in.Email)
	if err != nil {
		return model.ContactMessage{}, err
	}
	if err := booking.CheckCooldown("message", last, now, s.d.Policy.ContactCooldown); err != nil {
		return model.ContactMessage{}, err
	}
	if s.cooldown != nil && client != "" {
		left, err := s.cooldown.Acquire(ctx, "contact:"+client, s.d.Policy.ContactBurst)
		if err != nil {
			s.d.Log.WithError(err).Warn("contact cooldown unavailable")
		} else if left > 0 {
			m := int(math.Ceil(left.Minutes()))
			return model.ContactMessage{}, booking.Cooldown(m, "Please wait %d more minute(s) before sending another message.", m)
		}
	}

	msg := model.ContactMessage{Name: in.Name, Email: in.Email, Subject: in.Subject, Message: in.Message, CreatedAt: now}
	id, err := s.d.Store.Contacts().Create(ctx, msg)
	if err != nil {
		return model.ContactMessage{}, err
	}
	msg.ID = id
	if s.adminInbox != "" {
		fx := &effects{}
		fx.email(contactAdminEmail(s.adminInbox, msg))
		s.d.outbox().apply(ctx, fx)
	}
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, actor booking.Actor) ([]model.ContactMessage, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.d.Store.Contacts().List(ctx)
}

func (s *ContactService) MarkRead(ctx context.Context, actor booking.Actor, id uint64) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	return mapNotFound(s.d.Store.Contacts().MarkRead(ctx, id), "Message not found.")
}

// Reply emails an answer.  A reply to a contact message marks it read;
// a reply to a report resolves it.
func (s *ContactService) Reply(ctx context.Context, actor booking.Actor, in ReplyInput) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	in.Email, in.Message = strings.TrimSpace(in.Email), strings.TrimSpace(in.Message)
	if in.Email == "" || in.Message == "" {
		return booking.Validation("Email and message are required.")
	}
	if in.Kind == "" {
		in.Kind = "contact"
	}
	if in.Kind != "contact" && in.Kind != "report" {
		return booking.Validation("Invalid reply target %q.", in.Kind)
	}
	if in.Subject == "" {
		in.Subject = "Re: your message"
	}
	if s.d.Mail == nil {
		return errors.New("reply: no mail dispatcher configured")
	}

	name := ""
	err := s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		if in.ID == 0 {
			return nil
		}
		switch in.Kind {
		case "report":
			rep, err := tx.Reports().Get(ctx, in.ID)
			if err != nil {
				return mapNotFound(err, "Report not found.")
			}
			if u, err := tx.Users().GetByID(ctx, rep.UserID); err == nil {
				name = u.Name
			}
			return tx.Reports().SetStatus(ctx, in.ID, model.ReportResolved)
		default:
			m, err := tx.Contacts().Get(ctx, in.ID)
			if err != nil {
				return mapNotFound(err, "Message not found.")
			}
			name = m.Name
			return tx.Contacts().MarkRead(ctx, in.ID)
		}
	})
	if err != nil {
		return err
	}
	fx := &effects{}
	fx.email(replyEmail(in.Email, name, in.Subject, in.Message))
	s.d.outbox().apply(ctx, fx)
	return nil
}
