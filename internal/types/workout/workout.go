package workout

import (
	"time"

	"github.com/google/uuid"

	"fitArenaAPI/internal/metric"
)

// Log is one workout submission against a challenge. Volume is derived from
// the raw submission by the challenge metric's handler.
type Log struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChallengeID uuid.UUID `json:"challenge_id" db:"challenge_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Date        time.Time `json:"date" db:"date"`
	Volume      float64   `json:"volume" db:"volume"`
	MuscleGroup *string   `json:"muscle_group,omitempty" db:"muscle_group"`
	Location    *string   `json:"location,omitempty" db:"location"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type RegisterRequest struct {
	metric.Submission
	// Image is an optional base64 photo of the workout. Upload failures
	// degrade to a submission without photo.
	Image string `json:"image,omitempty"`
}

type RegisterResponse struct {
	Log     *Log   `json:"log"`
	Message string `json:"message"`
}
