package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, userID int64, ntype, title, body string) error
	UserEmail(ctx context.Context, userID int64) (string, error)
	ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
}
