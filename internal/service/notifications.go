package service

import (
	"context"

	"taskflow/internal/domain"
	"taskflow/internal/limits"
)

// CheckUsageLimits reports the caller's plan, usage and whether new
// resources may be created.
func (s *Service) CheckUsageLimits(ctx context.Context, userID string) (limits.Report, error) {
	if userID == "" {
		return limits.Report{}, domain.ErrUnauthorized
	}
	return s.limits.Report(ctx, userID)
}

// NotificationList is a recipient's inbox.
type NotificationList struct {
	Items       []domain.Notification
	UnreadCount int
}

// ListNotifications returns the actor's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, actor *domain.Actor, unreadOnly bool) (*NotificationList, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	items, err := s.store.Notifications().ListByRecipient(ctx, actor.UserID, unreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.Notifications().CountUnread(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Items: items, UnreadCount: unread}, nil
}

// MarkRead marks one of the actor's notifications as read.
func (s *Service) MarkRead(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return s.store.Notifications().SetRead(ctx, id, actor.UserID, true)
}

// MarkUnread marks one of the actor's notifications as unread.
func (s *Service) MarkUnread(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return s.store.Notifications().SetRead(ctx, id, actor.UserID, false)
}

// MarkAllRead marks every unread notification of the actor as read.
func (s *Service) MarkAllRead(ctx context.Context, actor *domain.Actor) (int, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	return s.store.Notifications().MarkAllRead(ctx, actor.UserID)
}

// DeleteNotification removes one of the actor's notifications.
func (s *Service) DeleteNotification(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return s.store.Notifications().Delete(ctx, id, actor.UserID)
}

// ListActivity returns the actor's own recent activity.
func (s *Service) ListActivity(ctx context.Context, actor *domain.Actor, limit int) ([]domain.Activity, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.store.Activity().ListByActor(ctx, actor.UserID, limit)
}

// ListProjectActivity returns recent activity about a project the actor can read.
func (s *Service) ListProjectActivity(ctx context.Context, actor *domain.Actor, projectID string, limit int) ([]domain.Activity, error) {
	if _, err := s.GetProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	return s.store.Activity().ListByTarget(ctx, domain.ProjectTarget(projectID), limit)
}
