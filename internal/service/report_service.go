package service

import (
	"context"
	"strings"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

const minReportLength = 10

type ReportService struct {
	d Deps
}

func NewReportService(d Deps) *ReportService {
	return &ReportService{d: d.withDefaults()}
}

// Create files a report.  Messages shorter than ten characters and a
// second report within the cooldown are refused.
func (s *ReportService) Create(ctx context.Context, actor booking.Actor, typ, message string) (model.Report, error) {
	if err := actor.RequireUser(); err != nil {
		return model.Report{}, err
	}
	message = strings.TrimSpace(message)
	if len([]rune(message)) < minReportLength {
		return model.Report{}, booking.Validation("The message is too short. Please describe the problem (at least %d characters).", minReportLength)
	}
	typ = strings.TrimSpace(typ)
	if typ == "" {
		typ = "other"
	}
	now := s.d.Clock.Now()

	var out model.Report
	err := s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		if _, err := tx.Users().GetForUpdate(ctx, actor.UserID); err != nil {
			return mapNotFound(err, "User not found.")
		}
		last, err := tx.Reports().LastCreatedAt(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if err := booking.CheckCooldown("report", last, now, s.d.Policy.ReportCooldown); err != nil {
			return err
		}
		out = model.Report{UserID: actor.UserID, Type: typ, Message: message, Status: model.ReportPending, CreatedAt: now}
		id, err := tx.Reports().Create(ctx, out)
		out.ID = id
		return err
	})
	if err != nil {
		return model.Report{}, err
	}
	return out, nil
}

// List returns every report, newest first.
func (s *ReportService) List(ctx context.Context, actor booking.Actor) ([]model.ReportView, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.d.Store.Reports().List(ctx)
}

// SetStatus moves a report between pending and resolved.  Resolving it
// notifies the reporter.
func (s *ReportService) SetStatus(ctx context.Context, actor booking.Actor, id uint64, status string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if status != model.ReportPending && status != model.ReportResolved {
		return booking.Validation("Invalid report status %q.", status)
	}
	fx := &effects{}
	err := s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		rep, err := tx.Reports().Get(ctx, id)
		if err != nil {
			return mapNotFound(err, "Report not found.")
		}
		if err := tx.Reports().SetStatus(ctx, id, status); err != nil {
			return err
		}
		if status == model.ReportResolved && rep.Status != model.ReportResolved {
			fx.notify(rep.UserID, model.NotifyReportResolved, reportResolvedNotice(rep))
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.d.outbox().apply(ctx, fx)
	return nil
}

func (s *ReportService) Delete(ctx context.Context, actor booking.Actor, id uint64) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	return mapNotFound(s.d.Store.Reports().Delete(ctx, id), "Report not found.")
}
