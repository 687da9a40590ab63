package community

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Username     string    `json:"username,omitempty"`
	UserImageURL *string   `json:"user_image_url,omitempty"`
	Content      string    `json:"content" db:"content"`
	ImageURL     *string   `json:"image_url,omitempty" db:"image_url"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	LikedByMe    bool      `json:"liked_by_me"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Comment struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	PostID          uuid.UUID  `json:"post_id" db:"post_id"`
	UserID          string     `json:"user_id" db:"user_id"`
	Username        string     `json:"username,omitempty"`
	UserImageURL    *string    `json:"user_image_url,omitempty"`
	Content         string     `json:"content" db:"content"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id,omitempty" db:"parent_comment_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

type CreatePostRequest struct {
	Content string `json:"content"`
	// Image is an optional base64 photo attached to the post.
	Image string `json:"image,omitempty"`
}

type CreateCommentRequest struct {
	Content         string     `json:"content"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id,omitempty"`
}

type ToggleLikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
