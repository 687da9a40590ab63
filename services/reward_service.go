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
	"fitArenaAPI/internal/types/reward"
)

type RewardService struct {
	db *pgxpool.Pool
}

func NewRewardService(db *pgxpool.Pool) *RewardService {
	return &RewardService{db: db}
}

func (s *RewardService) GetRewards(ctx context.Context) ([]*reward.Reward, error) {
	query := `
	SELECT id, name, description, points_cost, image_url, is_active, created_at
	FROM rewards
	WHERE is_active = TRUE
	ORDER BY points_cost ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*reward.Reward
	for rows.Next() {
		r := &reward.Reward{}
		err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.PointsCost, &r.ImageURL, &r.IsActive, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rewards: %w", err)
	}

	return rewards, nil
}

// RedeemReward deducts the reward's cost from the user's points and records
// the redemption. The deduction is conditional on sufficient balance, so a
// concurrent redeem can never drive points negative.
func (s *RewardService) RedeemReward(ctx context.Context, clerkID string, rewardID uuid.UUID) (*reward.UserReward, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var cost int
	var isActive bool
	err = tx.QueryRow(ctx, `SELECT points_cost, is_active FROM rewards WHERE id = $1`, rewardID).Scan(&cost, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	if !isActive {
		return nil, apperr.ErrRewardNotFound
	}

	tag, err := tx.Exec(ctx,
		`UPDATE users SET points = points - $1, updated_at = now() WHERE id = $2 AND points >= $1`,
		cost, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.ErrInsufficientPoints
	}

	redemption := &reward.UserReward{
		ID:         uuid.New(),
		UserID:     userID.String(),
		RewardID:   rewardID,
		PointsPaid: cost,
		RedeemedAt: time.Now(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO user_rewards (id, user_id, reward_id, points_paid, redeemed_at) VALUES ($1, $2, $3, $4, $5)`,
		redemption.ID, userID, redemption.RewardID, redemption.PointsPaid, redemption.RedeemedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	return redemption, nil
}
