package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a challenge's shared feed. Workout announcements
// are synthesized server-side when a workout log is registered.
type Message struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ChallengeID  uuid.UUID  `json:"challenge_id" db:"challenge_id"`
	UserID       string     `json:"user_id" db:"user_id"`
	Username     string     `json:"username"`
	UserImageURL *string    `json:"user_image_url,omitempty"`
	Message      string     `json:"message" db:"message"`
	ImageURL     *string    `json:"image_url,omitempty" db:"image_url"`
	IsWorkoutLog bool       `json:"is_workout_log" db:"is_workout_log"`
	WorkoutLogID *uuid.UUID `json:"workout_log_id,omitempty" db:"workout_log_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
	Image   string `json:"image,omitempty"`
}
