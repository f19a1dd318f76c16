package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/campusbridge/jobmarket/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

// UserChannel is the Redis pub/sub channel carrying a user's notifications.
func UserChannel(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *model.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	// Fan out over Redis if it is configured; delivery is best effort.
	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			s.redisClient.Publish(ctx, UserChannel(notification.UserID.String()), payload)
		}
	}

	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
