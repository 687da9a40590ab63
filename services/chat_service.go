package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitArenaAPI/internal/apperr"
	"fitArenaAPI/internal/types/chat"
)

type ChatService struct {
	db      *pgxpool.Pool
	uploads *UploadService
}

func NewChatService(db *pgxpool.Pool, uploads *UploadService) *ChatService {
	return &ChatService{db: db, uploads: uploads}
}

func (s *ChatService) SendMessage(ctx context.Context, clerkID string, challengeID uuid.UUID, req *chat.SendMessageRequest) (*chat.Message, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Message == "" {
		return nil, fmt.Errorf("%w: message is required", apperr.ErrInvalidRequest)
	}

	var isParticipant bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM challenge_participants WHERE challenge_id = $1 AND user_id = $2)`,
		challengeID, userID,
	).Scan(&isParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if !isParticipant {
		return nil, apperr.ErrNotParticipating
	}

	var imageURL *string
	if req.Image != "" {
		url, uploadErr := s.uploads.SaveImage(req.Image)
		if uploadErr != nil {
			log.Printf("SendMessage: image upload failed, sending without: %v", uploadErr)
		} else {
			imageURL = &url
		}
	}

	msg := &chat.Message{
		ID:          uuid.New(),
		ChallengeID: challengeID,
		UserID:      userID.String(),
		Message:     req.Message,
		ImageURL:    imageURL,
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO challenge_chats (id, challenge_id, user_id, message, image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		msg.ID, msg.ChallengeID, userID, msg.Message, msg.ImageURL,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return msg, nil
}

// GetMessages returns a challenge's feed oldest first, workout announcements
// included. Only participants can read it.
func (s *ChatService) GetMessages(ctx context.Context, clerkID string, challengeID uuid.UUID) ([]*chat.Message, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var isParticipant bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM challenge_participants WHERE challenge_id = $1 AND user_id = $2)`,
		challengeID, userID,
	).Scan(&isParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if !isParticipant {
		return nil, apperr.ErrNotParticipating
	}

	query := `
	SELECT m.id, m.challenge_id, m.user_id, u.username, NULLIF(u.image_url, ''),
	       m.message, m.image_url, m.is_workout_log, m.workout_log_id, m.created_at
	FROM challenge_chats m
	JOIN users u ON u.id = m.user_id
	WHERE m.challenge_id = $1
	ORDER BY m.created_at ASC
	`

	rows, err := s.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*chat.Message
	for rows.Next() {
		msg := &chat.Message{}
		var userID uuid.UUID
		err := rows.Scan(
			&msg.ID, &msg.ChallengeID, &userID, &msg.Username, &msg.UserImageURL,
			&msg.Message, &msg.ImageURL, &msg.IsWorkoutLog, &msg.WorkoutLogID, &msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msg.UserID = userID.String()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat messages: %w", err)
	}

	return messages, nil
}
