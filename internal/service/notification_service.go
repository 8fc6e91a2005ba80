package service

import (
	"context"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
)

// NotificationService exposes a user's in-app notifications.
type NotificationService struct {
	d Deps
}

func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{d: d.withDefaults()}
}

func (s *NotificationService) List(ctx context.Context, actor booking.Actor) ([]model.Notification, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	return s.d.Store.Notifications().ListByUser(ctx, actor.UserID)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor booking.Actor, id uint64) error {
	if err := actor.RequireUser(); err != nil {
		return err
	}
	return mapNotFound(s.d.Store.Notifications().MarkRead(ctx, id, actor.UserID), "Notification not found.")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor booking.Actor) error {
	if err := actor.RequireUser(); err != nil {
		return err
	}
	return s.d.Store.Notifications().MarkAllRead(ctx, actor.UserID)
}

func (s *NotificationService) Clear(ctx context.Context, actor booking.Actor) error {
	if err := actor.RequireUser(); err != nil {
		return err
	}
	return s.d.Store.Notifications().DeleteAll(ctx, actor.UserID)
}
