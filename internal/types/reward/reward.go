package reward

import (
	"time"

	"github.com/google/uuid"
)

type Reward struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	PointsCost  int       `json:"points_cost" db:"points_cost"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type UserReward struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	RewardID   uuid.UUID `json:"reward_id" db:"reward_id"`
	PointsPaid int       `json:"points_paid" db:"points_paid"`
	RedeemedAt time.Time `json:"redeemed_at" db:"redeemed_at"`
}

type RedeemRequest struct {
	RewardID string `json:"reward_id"`
}
