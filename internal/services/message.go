package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MessageService handles direct messages. A thread is a top-level message
// plus its replies.
type MessageService struct {
	db *bun.DB
}

func NewMessageService(db *bun.DB) *MessageService {
	return &MessageService{db: db}
}

const previewLen = 80

func preview(body string) *string {
	r := []rune(body)
	if len(r) > previewLen {
		r = append(r[:previewLen], '…')
	}
	s := string(r)
	return &s
}

// Send stores a message and notifies the recipient. Replies must belong to
// a thread the sender takes part in; they attach to the thread root.
func (s *MessageService) Send(ctx context.Context, senderID uuid.UUID, req models.SendMessageRequest) (*models.Message, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperr.Invalid("body is required")
	}
	if req.RecipientID == uuid.Nil && req.ParentID == nil {
		return nil, apperr.Invalid("recipient_id is required")
	}

	msg := &models.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// If this is a reply, inherit the thread from the parent
		if req.ParentID != nil {
			var parent models.Message
			err := tx.NewSelect().Model(&parent).Where("id = ?", *req.ParentID).Scan(ctx)
			if err != nil {
				return apperr.FromDB(err)
			}
			if parent.SenderID != senderID && parent.RecipientID != senderID {
				return apperr.ErrForbidden
			}
			root := parent.ID
			if parent.ParentID != nil {
				root = *parent.ParentID
			}
			msg.ParentID = &root
			if parent.SenderID == senderID {
				msg.RecipientID = parent.RecipientID
			} else {
				msg.RecipientID = parent.SenderID
			}
		}
		if msg.RecipientID == senderID {
			return apperr.Invalid("cannot message yourself")
		}

		if _, err := tx.NewInsert().Model(msg).Exec(ctx); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		return notify(ctx, tx, msg.RecipientID, models.NotificationMessage, "New message", preview(body))
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Inbox returns top-level threads the user sent or received, with replies.
func (s *MessageService) Inbox(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Message, error) {
	threads := make([]models.Message, 0)
	err := s.db.NewSelect().
		Model(&threads).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("m.sender_id = ?", userID).WhereOr("m.recipient_id = ?", userID)
		}).
		Where("m.parent_id IS NULL").
		Relation("Replies", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Order("m.created_at DESC").
		Limit(ClampLimit(limit)).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("inbox: %w", err)
	}
	return threads, nil
}

// Get returns one message with replies if the user takes part in it.
func (s *MessageService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Message, error) {
	msg := new(models.Message)
	err := s.db.NewSelect().
		Model(msg).
		Where("m.id = ?", id).
		Relation("Replies", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Scan(ctx)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if msg.SenderID != userID && msg.RecipientID != userID {
		return nil, apperr.ErrNotFound
	}
	return msg, nil
}

// MarkRead marks a message and its replies addressed to the user as read.
func (s *MessageService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	_, err := s.db.NewUpdate().
		Model((*models.Message)(nil)).
		Set("read_at = ?", time.Now().UTC()).
		WhereGroup(" AND ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
			return q.Where("id = ?", id).WhereOr("parent_id = ?", id)
		}).
		Where("recipient_id = ?", userID).
		Where("read_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}
