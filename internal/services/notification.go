package services

import (
	"context"
	"fmt"
	"time"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type NotificationService struct {
	db *bun.DB
}

func NewNotificationService(db *bun.DB) *NotificationService {
	return &NotificationService{db: db}
}

// notify inserts a notification using db, which may be a transaction.
func notify(ctx context.Context, db bun.IDB, userID uuid.UUID, kind, title string, body *string) error {
	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := db.NewInsert().Model(n).Exec(ctx); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// List returns the user's notifications newest first. unreadOnly limits
// the result to unread ones.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	items := make([]models.Notification, 0)
	q := s.db.NewSelect().
		Model(&items).
		Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = FALSE")
	}
	count, err := q.Order("created_at DESC").
		Limit(ClampLimit(limit)).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, count, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.db.NewSelect().
		Model((*models.Notification)(nil)).
		Where("user_id = ?", userID).
		Where("read = FALSE").
		Count(ctx)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = TRUE").
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// MarkAllRead returns how many notifications changed state.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = TRUE").
		Where("user_id = ?", userID).
		Where("read = FALSE").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
