package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"citizenpress/internal/config"
	"citizenpress/internal/models"
	"citizenpress/internal/repository"
	"citizenpress/internal/storage"
	"citizenpress/internal/utils"
)

const (
	defaultPublicPageSize = 10
	defaultAdminPageSize  = 15

	statusAll = "all"
)

type CreatePostInput struct {
	Heading     string
	Description string
	Location    string
	Category    string
	File        *storage.Upload
}

// PostPatch holds the fields to change. Status is honoured only for admins.
type PostPatch struct {
	Heading     *string
	Description *string
	Location    *string
	Category    *string
	Status      *models.PostStatus
	File        *storage.Upload
}

type PostQuery struct {
	Status   string
	Category string
	Location string
	Search   string
	Page     utils.Page
}

type PostPage struct {
	Posts      []models.PostView    `json:"posts"`
	Pagination Pagination           `json:"pagination"`
	Counts     *models.StatusCounts `json:"counts,omitempty"`
}

// LikeResult is the like state after a toggle.
type LikeResult struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

type PostService interface {
	Create(ctx context.Context, owner *models.User, in CreatePostInput) (*models.PostView, error)
	List(ctx context.Context, caller *models.User, q PostQuery) (*PostPage, error)
	Get(ctx context.Context, caller *models.User, postID string) (*models.PostView, error)
	MyPosts(ctx context.Context, caller *models.User) ([]models.PostView, error)
	Breaking(ctx context.Context) ([]models.PostView, error)
	Update(ctx context.Context, caller *models.User, postID string, patch PostPatch) (*models.PostView, error)
	Delete(ctx context.Context, caller *models.User, postID string) error
	ToggleLike(ctx context.Context, caller *models.User, postID string) (*LikeResult, error)
	Approve(ctx context.Context, admin *models.User, postID string) (*models.PostView, error)
	Reject(ctx context.Context, admin *models.User, postID string) (*models.PostView, error)
}

type postService struct {
	postRepo repository.PostRepository
	storage  storage.Storage
	policy   *bluemonday.Policy
	cfg      *config.Config
	log      *zap.Logger
	now      func() time.Time
}

func NewPostService(postRepo repository.PostRepository, store storage.Storage, cfg *config.Config, log *zap.Logger) PostService {
	return &postService{
		postRepo: postRepo,
		storage:  store,
		policy:   bluemonday.StrictPolicy(),
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (p *postService) clean(s string) string {
	return strings.TrimSpace(p.policy.Sanitize(s))
}

func canManage(caller *models.User, post *models.Post) bool {
	return caller != nil && (caller.IsAdmin() || caller.UserID == post.UserID)
}

func (p *postService) Create(ctx context.Context, owner *models.User, in CreatePostInput) (*models.PostView, error) {
	post := &models.Post{
		UserID:      owner.UserID,
		Heading:     p.clean(in.Heading),
		Description: p.clean(in.Description),
		Location:    p.clean(in.Location),
		Category:    p.clean(in.Category),
		Status:      models.StatusPending,
	}

	if post.Heading == "" || post.Description == "" {
		return nil, newError(ErrBadRequest, "heading and description are required")
	}

	if in.File != nil {
		if err := p.attach(ctx, post, in.File); err != nil {
			return nil, err
		}
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		if post.HasMedia() {
			p.release(ctx, post.MediaKey)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	p.log.Info("post submitted", zap.String("post_id", post.PostID), zap.String("user_id", owner.UserID))
	return p.view(ctx, post.PostID)
}

// attach uploads file and points post at it.
func (p *postService) attach(ctx context.Context, post *models.Post, file *storage.Upload) error {
	obj, err := p.storage.Upload(ctx, storage.FolderPostMedia, file)
	if err != nil {
		return wrapError(ErrStorage, "failed to store media", err)
	}

	post.MediaURL = obj.URL
	post.MediaKey = obj.Key
	post.ResourceType = file.Kind
	post.ThumbnailURL = ""
	if file.Kind == models.KindPDF {
		post.ThumbnailURL = obj.URL
	}

	return nil
}

// release deletes a blob that is no longer referenced. Failures are logged only.
func (p *postService) release(ctx context.Context, key string) {
	if err := p.storage.Delete(ctx, key); err != nil {
		p.log.Warn("failed to release media", zap.String("key", key), zap.Error(err))
	}
}

func (p *postService) view(ctx context.Context, postID string) (*models.PostView, error) {
	view, err := p.postRepo.GetView(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "post not found")
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	return view, nil
}

func (p *postService) load(ctx context.Context, postID string) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "post not found")
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	return post, nil
}

func (p *postService) List(ctx context.Context, caller *models.User, q PostQuery) (*PostPage, error) {
	admin := caller != nil && caller.IsAdmin()

	filter := models.PostFilter{
		Status:   models.StatusApproved,
		Category: strings.TrimSpace(q.Category),
		Location: strings.TrimSpace(q.Location),
		Search:   strings.TrimSpace(q.Search),
	}

	page := withDefaultLimit(q.Page, defaultPublicPageSize)
	if admin {
		page = withDefaultLimit(q.Page, defaultAdminPageSize)

		switch status := strings.ToLower(strings.TrimSpace(q.Status)); status {
		case "", statusAll:
			filter.Status = ""
		default:
			if !models.PostStatus(status).Valid() {
				return nil, newError(ErrBadRequest, fmt.Sprintf("unknown status %q", q.Status))
			}
			filter.Status = models.PostStatus(status)
		}
	}

	filter.Limit = page.Limit
	filter.Offset = page.Offset()

	posts, total, err := p.postRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	result := &PostPage{Posts: posts, Pagination: newPagination(page, total)}

	if admin {
		counts, err := p.postRepo.CountByStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("count posts: %w", err)
		}
		result.Counts = &counts
	}

	return result, nil
}

// Get returns approved posts to anyone and other posts only to their owner or an admin.
func (p *postService) Get(ctx context.Context, caller *models.User, postID string) (*models.PostView, error) {
	view, err := p.view(ctx, postID)
	if err != nil {
		return nil, err
	}

	if view.Status != models.StatusApproved && !canManage(caller, &view.Post) {
		return nil, newError(ErrNotFound, "post not found")
	}

	return view, nil
}

func (p *postService) MyPosts(ctx context.Context, caller *models.User) ([]models.PostView, error) {
	posts, err := p.postRepo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("my posts: %w", err)
	}
	return posts, nil
}

func (p *postService) Breaking(ctx context.Context) ([]models.PostView, error) {
	posts, err := p.postRepo.LatestApproved(ctx, p.cfg.BreakingLimit)
	if err != nil {
		return nil, fmt.Errorf("breaking news: %w", err)
	}
	return posts, nil
}

func (p *postService) Update(ctx context.Context, caller *models.User, postID string, patch PostPatch) (*models.PostView, error) {
	post, err := p.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !canManage(caller, post) {
		return nil, newError(ErrForbidden, "you can only edit your own posts")
	}

	if patch.Heading != nil {
		post.Heading = p.clean(*patch.Heading)
		if post.Heading == "" {
			return nil, newError(ErrBadRequest, "heading cannot be empty")
		}
	}
	if patch.Description != nil {
		post.Description = p.clean(*patch.Description)
		if post.Description == "" {
			return nil, newError(ErrBadRequest, "description cannot be empty")
		}
	}
	if patch.Location != nil {
		post.Location = p.clean(*patch.Location)
	}
	if patch.Category != nil {
		post.Category = p.clean(*patch.Category)
	}

	if patch.Status != nil && caller.IsAdmin() {
		if !patch.Status.Valid() {
			return nil, newError(ErrBadRequest, fmt.Sprintf("unknown status %q", *patch.Status))
		}
		p.setStatus(post, *patch.Status, caller)
	}

	oldKey := post.MediaKey
	if patch.File != nil {
		if err := p.attach(ctx, post, patch.File); err != nil {
			return nil, err
		}
	}

	if err := p.postRepo.Update(ctx, post); err != nil {
		if patch.File != nil {
			p.release(ctx, post.MediaKey)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "post not found")
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	if patch.File != nil && oldKey != "" && oldKey != post.MediaKey {
		p.release(ctx, oldKey)
	}

	return p.view(ctx, post.PostID)
}

// setStatus applies an admin edit of the status. Approval records who approved
// and when; leaving approved clears it.
func (p *postService) setStatus(post *models.Post, status models.PostStatus, admin *models.User) {
	if status == post.Status {
		return
	}

	post.Status = status
	if status == models.StatusApproved {
		now := p.now()
		adminID := admin.UserID
		post.ApprovedBy = &adminID
		post.ApprovedAt = &now
		return
	}

	post.ApprovedBy = nil
	post.ApprovedAt = nil
}

func (p *postService) Delete(ctx context.Context, caller *models.User, postID string) error {
	post, err := p.load(ctx, postID)
	if err != nil {
		return err
	}

	if !canManage(caller, post) {
		return newError(ErrForbidden, "you can only delete your own posts")
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "post not found")
		}
		return fmt.Errorf("delete post: %w", err)
	}

	if post.HasMedia() {
		p.release(ctx, post.MediaKey)
	}

	p.log.Info("post deleted", zap.String("post_id", postID), zap.String("by", caller.UserID))
	return nil
}

func (p *postService) ToggleLike(ctx context.Context, caller *models.User, postID string) (*LikeResult, error) {
	post, err := p.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.Status != models.StatusApproved && !canManage(caller, post) {
		return nil, newError(ErrNotFound, "post not found")
	}

	likes, liked, err := p.postRepo.ToggleLike(ctx, postID, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "post not found")
		}
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	return &LikeResult{Likes: likes, Liked: liked}, nil
}

func (p *postService) Approve(ctx context.Context, admin *models.User, postID string) (*models.PostView, error) {
	post, err := p.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.Status.CanApprove() {
		return nil, newError(ErrConflict, fmt.Sprintf("cannot approve a post that is %s", post.Status))
	}

	now := p.now()
	adminID := admin.UserID
	if err := p.transition(ctx, post, models.StatusApproved, &adminID, &now); err != nil {
		return nil, err
	}

	p.log.Info("post approved", zap.String("post_id", postID), zap.String("by", adminID))
	return p.view(ctx, postID)
}

func (p *postService) Reject(ctx context.Context, admin *models.User, postID string) (*models.PostView, error) {
	post, err := p.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.Status.CanReject() {
		return nil, newError(ErrConflict, fmt.Sprintf("cannot reject a post that is %s", post.Status))
	}

	if err := p.transition(ctx, post, models.StatusRejected, nil, nil); err != nil {
		return nil, err
	}

	p.log.Info("post rejected", zap.String("post_id", postID), zap.String("by", admin.UserID))
	return p.view(ctx, postID)
}

func (p *postService) transition(ctx context.Context, post *models.Post, to models.PostStatus, approvedBy *string, approvedAt *time.Time) error {
	err := p.postRepo.Transition(ctx, post.PostID, post.Status, to, approvedBy, approvedAt)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrConflict, "post status changed concurrently, reload and retry")
		}
		return fmt.Errorf("transition post: %w", err)
	}
	return nil
}
