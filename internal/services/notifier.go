package services

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"github.com/yuzuru-dev/fedilike/backend/internal/repositories"
	"github.com/yuzuru-dev/fedilike/backend/pkg/logger"
)

// PushSender delivers a push notification to one device; implemented by
// pkg/firebase over FCM. A nil sender disables push.
type PushSender interface {
	Send(ctx context.Context, token, notificationType string, payload map[string]string) error
}

// Notifier records notifications for local recipients and best-effort pushes
// them to a registered device
type Notifier struct {
	notifications repositories.NotificationRepository
	push          PushSender
}

func NewNotifier(notifications repositories.NotificationRepository, push PushSender) *Notifier {
	return &Notifier{notifications: notifications, push: push}
}

// Notify persists a notification row for the recipient and, when a device
// token is registered, pushes it. Push failures are logged and swallowed.
func (n *Notifier) Notify(ctx context.Context, recipient *models.Account, actorID uint, notificationType string, activityID uint, activityType string) error {
	notification := &models.Notification{
		Type:         notificationType,
		ActorID:      actorID,
		RecipientID:  recipient.ID,
		ActivityID:   activityID,
		ActivityType: activityType,
	}
	if err := n.notifications.CreateNotification(notification); err != nil {
		return err
	}

	if n.push != nil && recipient.DeviceToken != "" {
		payload := map[string]string{
			"activity_id":   strconv.FormatUint(uint64(activityID), 10),
			"activity_type": activityType,
		}
		if err := n.push.Send(ctx, recipient.DeviceToken, notificationType, payload); err != nil {
			logger.Warn("push notification failed",
				zap.Uint("recipient_id", recipient.ID),
				zap.String("type", notificationType),
				zap.Error(err))
		}
	}
	return nil
}
