package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitArenaAPI/internal/apperr"
	"fitArenaAPI/internal/metric"
	"fitArenaAPI/internal/types/challenge"
	"fitArenaAPI/internal/types/workout"
)

type WorkoutService struct {
	db      *pgxpool.Pool
	uploads *UploadService
}

func NewWorkoutService(db *pgxpool.Pool, uploads *UploadService) *WorkoutService {
	return &WorkoutService{db: db, uploads: uploads}
}

// RegisterWorkout validates the submission against the challenge's metric,
// computes the volume and persists the log together with its chat
// announcement in one transaction. For daily-capped metrics the unique
// daily_key index rejects a second same-day submission at the store level.
func (s *WorkoutService) RegisterWorkout(ctx context.Context, clerkID string, challengeID uuid.UUID, req *workout.RegisterRequest) (*workout.RegisterResponse, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var imageURL *string
	if req.Image != "" {
		url, uploadErr := s.uploads.SaveImage(req.Image)
		if uploadErr != nil {
			log.Printf("RegisterWorkout: image upload failed, registering without photo: %v", uploadErr)
		} else {
			imageURL = &url
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// FOR SHARE holds the row against Finalize's FOR UPDATE, so the status
	// read and the insert commit under the same snapshot: a log can never
	// slip in between Finalize's aggregate read and its status flip.
	var (
		metricKind metric.Kind
		status     challenge.Status
	)
	err = tx.QueryRow(ctx,
		`SELECT metric, status FROM challenges WHERE id = $1 FOR SHARE`, challengeID,
	).Scan(&metricKind, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	if status == challenge.StatusCompleted {
		return nil, apperr.ErrChallengeCompleted
	}

	var isParticipant bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM challenge_participants WHERE challenge_id = $1 AND user_id = $2)`,
		challengeID, userID,
	).Scan(&isParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if !isParticipant {
		return nil, apperr.ErrNotParticipating
	}

	handler, err := metric.Resolve(metricKind)
	if err != nil {
		return nil, err
	}

	volume, err := handler.ComputeVolume(&req.Submission)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	day := now.Format("2006-01-02")

	var dailyKey *string
	if metricKind.DailyCapped() {
		key := fmt.Sprintf("%s:%s:%s", userID, challengeID, day)
		dailyKey = &key
	}

	entry := &workout.Log{
		ID:          uuid.New(),
		ChallengeID: challengeID,
		UserID:      userID.String(),
		Volume:      volume,
		CreatedAt:   now,
	}
	if req.MuscleGroup != "" {
		entry.MuscleGroup = &req.MuscleGroup
	}
	if req.Location != "" {
		entry.Location = &req.Location
	}
	entry.ImageURL = imageURL

	insertLog := `
	INSERT INTO workout_logs (id, challenge_id, user_id, date, volume, muscle_group, location, image_url, daily_key, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING date
	`
	err = tx.QueryRow(ctx, insertLog,
		entry.ID, entry.ChallengeID, userID, day, entry.Volume,
		entry.MuscleGroup, entry.Location, entry.ImageURL, dailyKey, entry.CreatedAt,
	).Scan(&entry.Date)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperr.ErrDuplicateDailyCheckIn
		}
		return nil, fmt.Errorf("failed to register workout: %w", err)
	}

	// The announcement shares the transaction with the log: either both rows
	// exist or neither does.
	announcement := handler.Describe(&req.Submission, volume)
	_, err = tx.Exec(ctx,
		`INSERT INTO challenge_chats (id, challenge_id, user_id, message, image_url, is_workout_log, workout_log_id)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6)`,
		uuid.New(), challengeID, userID, announcement, entry.ImageURL, entry.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to post workout announcement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit workout registration: %w", err)
	}

	return &workout.RegisterResponse{
		Log:     entry,
		Message: "Workout registered successfully!",
	}, nil
}

// GetChallengeLogs returns all logs of a challenge, newest first. Only
// participants can read them.
func (s *WorkoutService) GetChallengeLogs(ctx context.Context, clerkID string, challengeID uuid.UUID) ([]*workout.Log, error) {
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
	SELECT id, challenge_id, user_id, date, volume, muscle_group, location, image_url, created_at
	FROM workout_logs
	WHERE challenge_id = $1
	ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workout logs: %w", err)
	}
	defer rows.Close()

	var logs []*workout.Log
	for rows.Next() {
		entry := &workout.Log{}
		var userID uuid.UUID
		err := rows.Scan(
			&entry.ID, &entry.ChallengeID, &userID, &entry.Date, &entry.Volume,
			&entry.MuscleGroup, &entry.Location, &entry.ImageURL, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout log: %w", err)
		}
		entry.UserID = userID.String()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read workout logs: %w", err)
	}

	return logs, nil
}
