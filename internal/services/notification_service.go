package services

import (
	"context"
	"log/slog"

	"github.com/ledgercore/banking-api/internal/metrics"
	"github.com/ledgercore/banking-api/internal/models"
	repo "github.com/ledgercore/banking-api/internal/repository"
)

// NotificationService is the notification sink. Notify is fire-and-forget: a
// failed insert is logged and counted but never surfaced to the caller.
type NotificationService struct {
	r repo.Notifications
}

func NewNotificationService(r repo.Notifications) *NotificationService {
	return &NotificationService{r: r}
}

func (s *NotificationService) Notify(ctx context.Context, userID, message string, kind models.NotificationType) {
	if _, err := s.r.Create(ctx, userID, message, kind); err != nil {
		metrics.NotificationsFailed.Inc()
		slog.Warn("notification delivery failed", "user_id", userID, "err", err)
		return
	}
	metrics.NotificationsSent.Inc()
}

func (s *NotificationService) SendAlert(ctx context.Context, userID, message string) {
	s.Notify(ctx, userID, message, models.NotifyAlert)
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.r.ListByUser(ctx, userID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (models.Notification, error) {
	return s.r.MarkRead(ctx, id, userID)
}
