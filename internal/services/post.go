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

type PostService struct {
	db *bun.DB
}

func NewPostService(db *bun.DB) *PostService {
	return &PostService{db: db}
}

func (s *PostService) ListPosts(ctx context.Context, params models.PostQueryParams) ([]models.Post, int, error) {
	items := make([]models.Post, 0)
	q := s.db.NewSelect().Model(&items)
	if params.UserID != nil {
		q = q.Where("user_id = ?", *params.UserID)
	}
	if params.BusinessID != nil {
		q = q.Where("business_id = ?", *params.BusinessID)
	}
	if params.ProfessionalID != nil {
		q = q.Where("professional_id = ?", *params.ProfessionalID)
	}
	count, err := q.Order("created_at DESC").
		Limit(ClampLimit(params.Limit)).
		Offset(params.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return items, count, nil
}

// CreatePost publishes a post, optionally on behalf of a business or
// professional profile the author owns.
func (s *PostService) CreatePost(ctx context.Context, userID uuid.UUID, req models.CreatePostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" && req.Image == nil {
		return nil, apperr.Invalid("content or image is required")
	}
	if req.BusinessID != nil && req.ProfessionalID != nil {
		return nil, apperr.Invalid("a post belongs to at most one business or professional")
	}
	if req.BusinessID != nil {
		if err := s.requireOwned(ctx, (*models.Business)(nil), *req.BusinessID, userID); err != nil {
			return nil, err
		}
	}
	if req.ProfessionalID != nil {
		if err := s.requireOwned(ctx, (*models.Professional)(nil), *req.ProfessionalID, userID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	p := &models.Post{
		ID:             uuid.New(),
		UserID:         userID,
		BusinessID:     req.BusinessID,
		ProfessionalID: req.ProfessionalID,
		Content:        content,
		Image:          req.Image,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.db.NewInsert().Model(p).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

func (s *PostService) requireOwned(ctx context.Context, model any, id, userID uuid.UUID) error {
	ok, err := s.db.NewSelect().Model(model).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrForbidden
	}
	return nil
}

// DeletePost removes a post with its likes and saves. Only the author may delete.
func (s *PostService) DeletePost(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*models.Post)(nil)).
			Where("id = ?", id).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.ErrNotFound
		}
		if _, err := tx.NewDelete().Model((*models.PostLike)(nil)).Where("post_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		_, err = tx.NewDelete().Model((*models.PostSave)(nil)).Where("post_id = ?", id).Exec(ctx)
		return err
	})
}

// ToggleLike likes the post, or unlikes it if already liked.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*models.ToggleResult, error) {
	row := &models.PostLike{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()}
	return s.toggle(ctx, userID, postID, row, "likes_count", models.NotificationLike, "Someone liked your post")
}

// ToggleSave saves the post, or unsaves it if already saved.
func (s *PostService) ToggleSave(ctx context.Context, userID, postID uuid.UUID) (*models.ToggleResult, error) {
	row := &models.PostSave{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()}
	return s.toggle(ctx, userID, postID, row, "saves_count", models.NotificationSave, "Someone saved your post")
}

// toggle flips the (post, user) row and keeps the post counter in step
// within one transaction. The author is notified on activation unless they
// acted on their own post.
func (s *PostService) toggle(ctx context.Context, userID, postID uuid.UUID, row any, counter, kind, title string) (*models.ToggleResult, error) {
	result := new(models.ToggleResult)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		post := new(models.Post)
		err := tx.NewSelect().Model(post).
			Column("id", "user_id").
			Where("id = ?", postID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			return apperr.FromDB(err)
		}

		res, err := tx.NewDelete().Model(row).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		delta := -1
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return err
			}
			delta = 1
			result.Active = true
		}

		err = tx.NewUpdate().Model((*models.Post)(nil)).
			Set("? = GREATEST(? + ?, 0)", bun.Ident(counter), bun.Ident(counter), delta).
			Where("id = ?", postID).
			Returning("?", bun.Ident(counter)).
			Scan(ctx, &result.Count)
		if err != nil {
			return fmt.Errorf("update %s: %w", counter, err)
		}

		if result.Active && post.UserID != userID {
			return notify(ctx, tx, post.UserID, kind, title, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
