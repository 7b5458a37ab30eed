package models

import (
	"path/filepath"
	"strings"
	"time"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleReporter Role = "reporter"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleReporter, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	UserID       string    `json:"id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Mobile       string    `json:"mobile" db:"mobile"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	IsVerified   bool      `json:"isVerified" db:"is_verified"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// CanLogin is false only for reporters still awaiting verification.
func (u *User) CanLogin() bool {
	return u.Role != RoleReporter || u.IsVerified
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// OneTimeCode is a password-reset code delivered by email.
type OneTimeCode struct {
	OTPID     string    `json:"id" db:"otp_id"`
	Email     string    `json:"email" db:"email"`
	Code      string    `json:"-" db:"code"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	IsUsed    bool      `json:"isUsed" db:"is_used"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func (o *OneTimeCode) IsValid(now time.Time) bool {
	return !o.IsUsed && now.Before(o.ExpiresAt)
}

type PostStatus string

const (
	StatusPending  PostStatus = "pending"
	StatusApproved PostStatus = "approved"
	StatusRejected PostStatus = "rejected"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanApprove reports whether the approve transition is allowed from s.
func (s PostStatus) CanApprove() bool {
	return s == StatusPending || s == StatusRejected
}

// CanReject reports whether the reject transition is allowed from s.
func (s PostStatus) CanReject() bool {
	return s == StatusPending
}

type ResourceKind string

const (
	KindNone  ResourceKind = ""
	KindImage ResourceKind = "image"
	KindVideo ResourceKind = "video"
	KindPDF   ResourceKind = "pdf"
)

// ResourceKindFor derives the media kind from the file extension.
func ResourceKindFor(fileName string) ResourceKind {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".") {
	case "mp4", "mov", "avi", "webm":
		return KindVideo
	case "pdf":
		return KindPDF
	default:
		return KindImage
	}
}

type Post struct {
	PostID       string       `json:"id" db:"post_id"`
	UserID       string       `json:"userId" db:"user_id"`
	Heading      string       `json:"heading" db:"heading"`
	Description  string       `json:"description" db:"description"`
	Location     string       `json:"location" db:"location"`
	Category     string       `json:"category" db:"category"`
	MediaURL     string       `json:"image,omitempty" db:"media_url"`
	MediaKey     string       `json:"-" db:"media_key"`
	ThumbnailURL string       `json:"thumbnail,omitempty" db:"thumbnail_url"`
	ResourceType ResourceKind `json:"resourceType,omitempty" db:"resource_type"`
	Status       PostStatus   `json:"status" db:"status"`
	ApprovedBy   *string      `json:"approvedBy" db:"approved_by"`
	ApprovedAt   *time.Time   `json:"approvedAt" db:"approved_at"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

func (p *Post) HasMedia() bool {
	return p.MediaKey != ""
}

// PostView is a post joined with its author and like count for listings.
type PostView struct {
	Post
	AuthorName   string `json:"authorName" db:"author_name"`
	AuthorMobile string `json:"authorMobile" db:"author_mobile"`
	LikeCount    int    `json:"likes" db:"like_count"`
}

// PostFilter narrows post listings. An empty Status matches every status.
type PostFilter struct {
	Status   PostStatus
	Category string
	Location string
	Search   string
	UserID   string
	Limit    int
	Offset   int
}

type StatusCounts struct {
	Total    int `json:"total" db:"total"`
	Pending  int `json:"pending" db:"pending"`
	Approved int `json:"approved" db:"approved"`
	Rejected int `json:"rejected" db:"rejected"`
}

type EPaper struct {
	EPaperID     string     `json:"id" db:"epaper_id"`
	IssueDate    time.Time  `json:"date" db:"issue_date"`
	PDFURL       string     `json:"pdfUrl" db:"pdf_url"`
	PDFKey       string     `json:"-" db:"pdf_key"`
	ThumbnailURL string     `json:"thumbnailUrl" db:"thumbnail_url"`
	ThumbnailKey string     `json:"-" db:"thumbnail_key"`
	FileName     string     `json:"fileName" db:"file_name"`
	FileSize     int64      `json:"fileSize" db:"file_size"`
	OriginalName string     `json:"originalName" db:"original_name"`
	MimeType     string     `json:"mimeType" db:"mime_type"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	DeletedAt    *time.Time `json:"deletedAt" db:"deleted_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

type UserFilter struct {
	Search     string
	Role       Role
	IsVerified *bool
	Limit      int
	Offset     int
}
