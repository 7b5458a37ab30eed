package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"citizenpress/internal/models"
)

const postViewSelect = `
	SELECT p.post_id, p.user_id, p.heading, p.description, p.location, p.category,
		p.media_url, p.media_key, p.thumbnail_url, p.resource_type, p.status,
		p.approved_by, p.approved_at, p.created_at, p.updated_at,
		u.name AS author_name, u.mobile AS author_mobile,
		(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.post_id) AS like_count
	FROM posts p
	JOIN users u ON u.user_id = p.user_id`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	query := `
		INSERT INTO posts
		(post_id, user_id, heading, description, location, category, media_url, media_key,
		 thumbnail_url, resource_type, status, approved_by, approved_at, created_at, updated_at)
		VALUES
		(:post_id, :user_id, :heading, :description, :location, :category, :media_url, :media_key,
		 :thumbnail_url, :resource_type, :status, :approved_by, :approved_at, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return wrapError("create post", err)
	}

	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	query := `
		SELECT post_id, user_id, heading, description, location, category, media_url, media_key,
			thumbnail_url, resource_type, status, approved_by, approved_at, created_at, updated_at
		FROM posts
		WHERE post_id = $1
	`

	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, postID); err != nil {
		return nil, wrapError("get post", err)
	}

	return &post, nil
}

func (r *postRepository) GetView(ctx context.Context, postID string) (*models.PostView, error) {
	var view models.PostView
	if err := r.db.GetContext(ctx, &view, postViewSelect+` WHERE p.post_id = $1`, postID); err != nil {
		return nil, wrapError("get post view", err)
	}

	return &view, nil
}

func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]models.PostView, int, error) {
	var cond conditions
	if filter.Status != "" {
		cond.add(`p.status = $%d`, filter.Status)
	}
	if filter.Category != "" {
		cond.add(`p.category = $%d`, filter.Category)
	}
	if filter.Location != "" {
		cond.add(`p.location ILIKE $%d`, likePattern(filter.Location))
	}
	if filter.Search != "" {
		cond.add(`(p.heading ILIKE $%[1]d OR p.description ILIKE $%[1]d)`, likePattern(filter.Search))
	}
	if filter.UserID != "" {
		cond.add(`p.user_id = $%d`, filter.UserID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts p`+cond.where(), cond.args...); err != nil {
		return nil, 0, wrapError("count posts", err)
	}

	suffix, args := cond.page(filter.Limit, filter.Offset)
	query := postViewSelect + cond.where() + ` ORDER BY p.created_at DESC` + suffix

	posts := []models.PostView{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, wrapError("list posts", err)
	}

	return posts, total, nil
}

func (r *postRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	query := `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM posts
	`

	var counts models.StatusCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return counts, wrapError("count posts by status", err)
	}

	return counts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]models.PostView, error) {
	posts := []models.PostView{}
	query := postViewSelect + ` WHERE p.user_id = $1 ORDER BY p.created_at DESC`

	if err := r.db.SelectContext(ctx, &posts, query, userID); err != nil {
		return nil, wrapError("list user posts", err)
	}

	return posts, nil
}

func (r *postRepository) LatestApproved(ctx context.Context, limit int) ([]models.PostView, error) {
	posts := []models.PostView{}
	query := postViewSelect + ` WHERE p.status = $1 ORDER BY p.created_at DESC LIMIT $2`

	if err := r.db.SelectContext(ctx, &posts, query, models.StatusApproved, limit); err != nil {
		return nil, wrapError("list breaking posts", err)
	}

	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()

	query := `
		UPDATE posts SET
			heading = :heading,
			description = :description,
			location = :location,
			category = :category,
			media_url = :media_url,
			media_key = :media_key,
			thumbnail_url = :thumbnail_url,
			resource_type = :resource_type,
			status = :status,
			approved_by = :approved_by,
			approved_at = :approved_at,
			updated_at = :updated_at
		WHERE post_id = :post_id
	`

	result, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return wrapError("update post", err)
	}

	return expectAffected("update post", result)
}

// Transition moves a post from one status to another. It reports ErrNotFound
// when the post no longer holds status from.
func (r *postRepository) Transition(ctx context.Context, postID string, from, to models.PostStatus, approvedBy *string, approvedAt *time.Time) error {
	query := `
		UPDATE posts SET
			status = $1,
			approved_by = $2,
			approved_at = $3,
			updated_at = $4
		WHERE post_id = $5 AND status = $6
	`

	result, err := r.db.ExecContext(ctx, query, to, approvedBy, approvedAt, time.Now(), postID, from)
	if err != nil {
		return wrapError("transition post", err)
	}

	return expectAffected("transition post", result)
}

func (r *postRepository) Delete(ctx context.Context, postID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		return wrapError("delete post", err)
	}

	return expectAffected("delete post", result)
}

// ToggleLike flips userID's membership in the post's like set and returns the new count.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (likes int, liked bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("toggle like: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return 0, false, wrapError("toggle like: unlike", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("toggle like: rows affected: %w", err)
	}

	liked = removed == 0
	if liked {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			postID, userID, time.Now())
		if err != nil {
			return 0, false, wrapError("toggle like: like", err)
		}
	}

	if err = tx.GetContext(ctx, &likes, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID); err != nil {
		return 0, false, wrapError("toggle like: count", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("toggle like: commit: %w", err)
	}

	return likes, liked, nil
}
