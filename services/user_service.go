package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitArenaAPI/internal/apperr"
	"fitArenaAPI/internal/elo"
	"fitArenaAPI/internal/types/leaderboard"
	"fitArenaAPI/internal/types/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx so user lookups can
// run inside or outside a transaction.
type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// resolveUserID maps the Clerk subject from the auth middleware to the
// internal user id.
func resolveUserID(ctx context.Context, q queryer, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperr.ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, points, challenge_wins, elo_level, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query,
		u.ID, u.ClerkID, u.Email, u.Username, u.FirstName, u.LastName, u.ImageURL, u.CreatedAt, u.UpdatedAt,
	).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.Points, &u.ChallengeWins, &u.EloLevel, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u.EloName = elo.ForLevel(u.EloLevel).Name
	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified, points, challenge_wins, elo_level, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.Points, &u.ChallengeWins, &u.EloLevel, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.EloName = elo.ForLevel(u.EloLevel).Name
	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET username = $1, first_name = $2, last_name = $3, image_url = $4, updated_at = $5
	WHERE clerk_id = $6
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, points, challenge_wins, elo_level, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query,
		req.Username, req.FirstName, req.LastName, req.ImageURL, time.Now(), clerkID,
	).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.Points, &u.ChallengeWins, &u.EloLevel, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	u.EloName = elo.ForLevel(u.EloLevel).Name
	return u, nil
}

func (s *UserService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET email_verified = $1, updated_at = now() WHERE clerk_id = $2`, verified, clerkID)
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}
	return nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

// GetLeaderboard returns the global leaderboard page plus the caller's own
// position. Elo tier orders before points, points break ties within a tier.
func (s *UserService) GetLeaderboard(ctx context.Context, clerkID string, page, pageSize int) (*leaderboard.Leaderboard, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	query := `
	SELECT user_id, username, image_url, points, elo_level, position, total
	FROM (
		SELECT id AS user_id, username, NULLIF(image_url, '') AS image_url, points, elo_level,
		       RANK() OVER (ORDER BY elo_level DESC, points DESC, username ASC) AS position,
		       COUNT(*) OVER () AS total
		FROM users
	) ranked
	ORDER BY position
	LIMIT $1 OFFSET $2
	`

	rows, err := s.db.Query(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	board := &leaderboard.Leaderboard{Page: page, PageSize: pageSize}
	for rows.Next() {
		entry := &leaderboard.Entry{}
		var total int
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.ImageURL, &entry.Points, &entry.EloLevel, &entry.Position, &total); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.EloName = elo.ForLevel(entry.EloLevel).Name
		board.TotalUsers = total
		board.Entries = append(board.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	positionQuery := `
	SELECT user_id, username, image_url, points, elo_level, position
	FROM (
		SELECT id AS user_id, clerk_id, username, NULLIF(image_url, '') AS image_url, points, elo_level,
		       RANK() OVER (ORDER BY elo_level DESC, points DESC, username ASC) AS position
		FROM users
	) ranked
	WHERE clerk_id = $1
	`

	own := &leaderboard.Entry{}
	err = s.db.QueryRow(ctx, positionQuery, clerkID).Scan(&own.UserID, &own.Username, &own.ImageURL, &own.Points, &own.EloLevel, &own.Position)
	if err == nil {
		own.EloName = elo.ForLevel(own.EloLevel).Name
		board.UserPosition = own
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get caller position: %w", err)
	}

	return board, nil
}
