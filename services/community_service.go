package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitArenaAPI/internal/apperr"
	"fitArenaAPI/internal/types/community"
)

type CommunityService struct {
	db      *pgxpool.Pool
	uploads *UploadService
}

func NewCommunityService(db *pgxpool.Pool, uploads *UploadService) *CommunityService {
	return &CommunityService{db: db, uploads: uploads}
}

func (s *CommunityService) CreatePost(ctx context.Context, clerkID string, req *community.CreatePostRequest) (*community.Post, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrInvalidRequest)
	}

	var imageURL *string
	if req.Image != "" {
		url, uploadErr := s.uploads.SaveImage(req.Image)
		if uploadErr != nil {
			log.Printf("CreatePost: image upload failed, posting without: %v", uploadErr)
		} else {
			imageURL = &url
		}
	}

	post := &community.Post{
		ID:       uuid.New(),
		UserID:   userID.String(),
		Content:  req.Content,
		ImageURL: imageURL,
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO posts (id, user_id, content, image_url) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		post.ID, userID, post.Content, post.ImageURL,
	).Scan(&post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// GetPosts returns the community feed newest first, with like and comment
// counts and whether the caller liked each post.
func (s *CommunityService) GetPosts(ctx context.Context, clerkID string) ([]*community.Post, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT p.id, p.user_id, u.username, NULLIF(u.image_url, ''), p.content, p.image_url, p.created_at,
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count,
	       (SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id) AS comment_count,
	       EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1) AS liked_by_me
	FROM posts p
	JOIN users u ON u.id = p.user_id
	ORDER BY p.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*community.Post
	for rows.Next() {
		p := &community.Post{}
		var uid uuid.UUID
		err := rows.Scan(
			&p.ID, &uid, &p.Username, &p.UserImageURL, &p.Content, &p.ImageURL, &p.CreatedAt,
			&p.LikeCount, &p.CommentCount, &p.LikedByMe,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.UserID = uid.String()
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	return posts, nil
}

func (s *CommunityService) CreateComment(ctx context.Context, clerkID string, postID uuid.UUID, req *community.CreateCommentRequest) (*community.Comment, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrInvalidRequest)
	}

	var exists bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return nil, apperr.ErrPostNotFound
	}

	comment := &community.Comment{
		ID:              uuid.New(),
		PostID:          postID,
		UserID:          userID.String(),
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO post_comments (id, post_id, user_id, content, parent_comment_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		comment.ID, postID, userID, comment.Content, comment.ParentCommentID,
	).Scan(&comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// GetPostComments returns a post's comments oldest first.
func (s *CommunityService) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*community.Comment, error) {
	query := `
	SELECT c.id, c.post_id, c.user_id, u.username, NULLIF(u.image_url, ''), c.content, c.parent_comment_id, c.created_at
	FROM post_comments c
	JOIN users u ON u.id = c.user_id
	WHERE c.post_id = $1
	ORDER BY c.created_at ASC
	`

	rows, err := s.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []*community.Comment
	for rows.Next() {
		c := &community.Comment{}
		var uid uuid.UUID
		err := rows.Scan(&c.ID, &c.PostID, &uid, &c.Username, &c.UserImageURL, &c.Content, &c.ParentCommentID, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.UserID = uid.String()
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}

	return comments, nil
}

// ToggleLike likes the post, or unlikes it if the caller already had. The
// unique (post_id, user_id) key makes the toggle race-free: the insert either
// lands or conflicts, never both.
func (s *CommunityService) ToggleLike(ctx context.Context, clerkID string, postID uuid.UUID) (*community.ToggleLikeResponse, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return nil, apperr.ErrPostNotFound
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO post_likes (id, post_id, user_id) VALUES ($1, $2, $3)
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		uuid.New(), postID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to like post: %w", err)
	}

	liked := tag.RowsAffected() > 0
	if !liked {
		_, err = s.db.Exec(ctx,
			`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to unlike post: %w", err)
		}
	}

	resp := &community.ToggleLikeResponse{Liked: liked}
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&resp.LikeCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	return resp, nil
}
