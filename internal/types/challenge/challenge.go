package challenge

import (
	"time"

	"github.com/google/uuid"

	"fitArenaAPI/internal/metric"
)

type ChallengeType string

const (
	TypePublic  ChallengeType = "public"
	TypePrivate ChallengeType = "private"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Challenge struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Title            string           `json:"title" db:"title"`
	Type             ChallengeType    `json:"type" db:"type"`
	Rules            string           `json:"rules" db:"rules"`
	StartDate        time.Time        `json:"start_date" db:"start_date"`
	EndDate          time.Time        `json:"end_date" db:"end_date"`
	RewardPoints     int              `json:"reward_points" db:"reward_points"`
	MaxParticipants  *int             `json:"max_participants" db:"max_participants"`
	InviteCode       *string          `json:"invite_code,omitempty" db:"invite_code"`
	Metric           metric.Kind      `json:"metric" db:"metric"`
	WinningCriteria  metric.Criterion `json:"winning_criteria" db:"winning_criteria"`
	Goal             *float64         `json:"goal,omitempty" db:"goal"`
	MuscleGroup      *string          `json:"muscle_group,omitempty" db:"muscle_group"`
	ImageURL         *string          `json:"image_url,omitempty" db:"image_url"`
	Status           Status           `json:"status" db:"status"`
	CreatorID        string           `json:"creator_id" db:"creator_id"`
	CreatorName      string           `json:"creator_name,omitempty"`
	WinnerID         *string          `json:"winner_id,omitempty" db:"winner_id"`
	WinnerName       *string          `json:"winner_name,omitempty"`
	ParticipantCount int              `json:"participant_count"`
	IsParticipating  bool             `json:"is_participating"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// Participant is a (challenge, user) membership record. Never mutated and
// never deleted by challenge completion.
type Participant struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChallengeID uuid.UUID `json:"challenge_id" db:"challenge_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

type CreateChallengeRequest struct {
	Title           string           `json:"title"`
	Type            ChallengeType    `json:"type"`
	Rules           string           `json:"rules"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	RewardPoints    int              `json:"reward_points"`
	MaxParticipants *int             `json:"max_participants,omitempty"`
	InviteCode      *string          `json:"invite_code,omitempty"`
	Metric          metric.Kind      `json:"metric"`
	WinningCriteria metric.Criterion `json:"winning_criteria,omitempty"`
	Goal            *float64         `json:"goal,omitempty"`
	MuscleGroup     *string          `json:"muscle_group,omitempty"`
	Image           string           `json:"image,omitempty"` // base64 payload, stored via the upload service
}

type JoinChallengeRequest struct {
	InviteCode string `json:"invite_code,omitempty"`
}

type FinalizeResponse struct {
	WinnerID string  `json:"winner_id"`
	Total    float64 `json:"total"`
	Message  string  `json:"message"`
}
