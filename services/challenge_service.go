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
	"fitArenaAPI/internal/elo"
	"fitArenaAPI/internal/metric"
	"fitArenaAPI/internal/scoring"
	"fitArenaAPI/internal/types/challenge"
	"fitArenaAPI/internal/types/notification"
	"fitArenaAPI/utils"
)

const pgUniqueViolation = "23505"

type ChallengeService struct {
	db           *pgxpool.Pool
	uploads      *UploadService
	notifService *NotificationService
}

func NewChallengeService(db *pgxpool.Pool, uploads *UploadService, notifService *NotificationService) *ChallengeService {
	return &ChallengeService{
		db:           db,
		uploads:      uploads,
		notifService: notifService,
	}
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, clerkID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	creatorID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalidRequest)
	}
	if req.Type != challenge.TypePublic && req.Type != challenge.TypePrivate {
		return nil, fmt.Errorf("%w: type must be public or private", apperr.ErrInvalidRequest)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", apperr.ErrInvalidRequest)
	}
	if !req.Metric.Valid() {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnrecognizedMetric, req.Metric)
	}

	criteria := req.WinningCriteria
	if criteria == "" {
		criteria = metric.CriterionMaxTotal
	}
	if !req.Metric.AllowsCriterion(criteria) {
		return nil, fmt.Errorf("%w: winning criteria %q is not allowed for metric %q", apperr.ErrInvalidRequest, criteria, req.Metric)
	}
	if req.Metric.RequiresGoal() && req.Goal == nil {
		return nil, fmt.Errorf("%w: metric %q requires a goal", apperr.ErrInvalidRequest, req.Metric)
	}

	inviteCode := req.InviteCode
	if req.Type == challenge.TypePrivate && (inviteCode == nil || *inviteCode == "") {
		code := utils.GenerateInviteCode(6)
		inviteCode = &code
	}
	if req.Type == challenge.TypePublic {
		inviteCode = nil
		if req.MaxParticipants != nil && *req.MaxParticipants < 2 {
			return nil, fmt.Errorf("%w: max participants must be at least 2", apperr.ErrInvalidRequest)
		}
	} else {
		// Capacity is only enforced for public challenges.
		req.MaxParticipants = nil
	}

	var imageURL *string
	if req.Image != "" {
		url, err := s.uploads.SaveImage(req.Image)
		if err != nil {
			log.Printf("CreateChallenge: image upload failed, continuing without: %v", err)
		} else {
			imageURL = &url
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	c := &challenge.Challenge{
		ID:              uuid.New(),
		Title:           req.Title,
		Type:            req.Type,
		Rules:           req.Rules,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		RewardPoints:    req.RewardPoints,
		MaxParticipants: req.MaxParticipants,
		InviteCode:      inviteCode,
		Metric:          req.Metric,
		WinningCriteria: criteria,
		Goal:            req.Goal,
		MuscleGroup:     req.MuscleGroup,
		ImageURL:        imageURL,
		Status:          challenge.StatusActive,
		CreatorID:       creatorID.String(),
		CreatedAt:       time.Now(),
	}

	insertQuery := `
	INSERT INTO challenges (id, title, type, rules, start_date, end_date, reward_points, max_participants,
	                        invite_code, metric, winning_criteria, goal, muscle_group, image_url, status, creator_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = tx.Exec(ctx, insertQuery,
		c.ID, c.Title, c.Type, c.Rules, c.StartDate, c.EndDate, c.RewardPoints, c.MaxParticipants,
		c.InviteCode, c.Metric, c.WinningCriteria, c.Goal, c.MuscleGroup, c.ImageURL, c.Status, creatorID, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	// The creator is enrolled in the same transaction, so a challenge never
	// exists without its first participant.
	_, err = tx.Exec(ctx,
		`INSERT INTO challenge_participants (id, challenge_id, user_id) VALUES ($1, $2, $3)`,
		uuid.New(), c.ID, creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enroll creator as participant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit challenge: %w", err)
	}

	c.ParticipantCount = 1
	c.IsParticipating = true
	return c, nil
}

func (s *ChallengeService) ListChallenges(ctx context.Context, clerkID string) ([]*challenge.Challenge, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT c.id, c.title, c.type, c.rules, c.start_date, c.end_date, c.reward_points, c.max_participants,
	       c.metric, c.winning_criteria, c.goal, c.muscle_group, c.image_url, c.status,
	       c.creator_id, creator.username, c.winner_id, winner.username, c.created_at,
	       (SELECT COUNT(*) FROM challenge_participants p WHERE p.challenge_id = c.id) AS participant_count,
	       EXISTS (SELECT 1 FROM challenge_participants p WHERE p.challenge_id = c.id AND p.user_id = $1) AS is_participating
	FROM challenges c
	JOIN users creator ON creator.id = c.creator_id
	LEFT JOIN users winner ON winner.id = c.winner_id
	ORDER BY c.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*challenge.Challenge
	for rows.Next() {
		c := &challenge.Challenge{}
		err := rows.Scan(
			&c.ID, &c.Title, &c.Type, &c.Rules, &c.StartDate, &c.EndDate, &c.RewardPoints, &c.MaxParticipants,
			&c.Metric, &c.WinningCriteria, &c.Goal, &c.MuscleGroup, &c.ImageURL, &c.Status,
			&c.CreatorID, &c.CreatorName, &c.WinnerID, &c.WinnerName, &c.CreatedAt,
			&c.ParticipantCount, &c.IsParticipating,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read challenges: %w", err)
	}

	return challenges, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID) (*challenge.Challenge, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT c.id, c.title, c.type, c.rules, c.start_date, c.end_date, c.reward_points, c.max_participants,
	       c.invite_code, c.metric, c.winning_criteria, c.goal, c.muscle_group, c.image_url, c.status,
	       c.creator_id, creator.username, c.winner_id, winner.username, c.created_at,
	       (SELECT COUNT(*) FROM challenge_participants p WHERE p.challenge_id = c.id) AS participant_count,
	       EXISTS (SELECT 1 FROM challenge_participants p WHERE p.challenge_id = c.id AND p.user_id = $2) AS is_participating
	FROM challenges c
	JOIN users creator ON creator.id = c.creator_id
	LEFT JOIN users winner ON winner.id = c.winner_id
	WHERE c.id = $1
	`

	c := &challenge.Challenge{}
	err = s.db.QueryRow(ctx, query, challengeID, userID).Scan(
		&c.ID, &c.Title, &c.Type, &c.Rules, &c.StartDate, &c.EndDate, &c.RewardPoints, &c.MaxParticipants,
		&c.InviteCode, &c.Metric, &c.WinningCriteria, &c.Goal, &c.MuscleGroup, &c.ImageURL, &c.Status,
		&c.CreatorID, &c.CreatorName, &c.WinnerID, &c.WinnerName, &c.CreatedAt,
		&c.ParticipantCount, &c.IsParticipating,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	// The invite code is only visible to the creator.
	if c.CreatorID != userID.String() {
		c.InviteCode = nil
	}

	return c, nil
}

// JoinChallenge enrolls the caller. The challenge row is locked for the
// duration of the transaction so the capacity check cannot over-admit under
// concurrent joins.
func (s *ChallengeService) JoinChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID, inviteCode string) error {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		cType           challenge.ChallengeType
		status          challenge.Status
		storedCode      *string
		maxParticipants *int
		creatorID       uuid.UUID
		title           string
	)
	err = tx.QueryRow(ctx,
		`SELECT type, status, invite_code, max_participants, creator_id, title FROM challenges WHERE id = $1 FOR UPDATE`,
		challengeID,
	).Scan(&cType, &status, &storedCode, &maxParticipants, &creatorID, &title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrChallengeNotFound
		}
		return fmt.Errorf("failed to get challenge: %w", err)
	}

	if status == challenge.StatusCompleted {
		return apperr.ErrChallengeCompleted
	}
	if cType == challenge.TypePrivate && (storedCode == nil || *storedCode != inviteCode) {
		return apperr.ErrInvalidInviteCode
	}

	if cType == challenge.TypePublic && maxParticipants != nil {
		var count int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM challenge_participants WHERE challenge_id = $1`, challengeID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}
		if count >= *maxParticipants {
			return apperr.ErrChallengeFull
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO challenge_participants (id, challenge_id, user_id) VALUES ($1, $2, $3)`,
		uuid.New(), challengeID, userID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.ErrAlreadyParticipating
		}
		return fmt.Errorf("failed to join challenge: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit join: %w", err)
	}

	// Best effort: tell the creator someone joined.
	if creatorID != userID {
		s.notifService.Notify(ctx, &notification.CreateNotificationRequest{
			UserID:  creatorID.String(),
			Type:    notification.NotificationNewParticipant,
			Title:   "New participant",
			Message: fmt.Sprintf("Someone joined your challenge %q", title),
			Data:    map[string]any{"challenge_id": challengeID.String()},
		})
	}

	return nil
}

// Finalize computes the winner, closes the challenge and credits reward
// points. The status flip is a compare-and-swap on 'active' and shares a
// transaction with the point credit, so a second finalize can never
// re-credit.
func (s *ChallengeService) Finalize(ctx context.Context, clerkID string, challengeID uuid.UUID) (*challenge.FinalizeResponse, error) {
	requesterID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		creatorID    uuid.UUID
		status       challenge.Status
		rewardPoints int
		metricKind   metric.Kind
		criteria     metric.Criterion
		goal         *float64
		title        string
	)
	err = tx.QueryRow(ctx,
		`SELECT creator_id, status, reward_points, metric, winning_criteria, goal, title
		 FROM challenges WHERE id = $1 FOR UPDATE`,
		challengeID,
	).Scan(&creatorID, &status, &rewardPoints, &metricKind, &criteria, &goal, &title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	if creatorID != requesterID {
		return nil, apperr.ErrForbidden
	}
	if status == challenge.StatusCompleted {
		return nil, apperr.ErrChallengeCompleted
	}
	if _, err := metric.Resolve(metricKind); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx,
		`SELECT user_id, volume, created_at FROM workout_logs WHERE challenge_id = $1`,
		challengeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load workout logs: %w", err)
	}

	var logs []scoring.LogEntry
	for rows.Next() {
		var entry scoring.LogEntry
		var userID uuid.UUID
		if err := rows.Scan(&userID, &entry.Volume, &entry.LoggedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan workout log: %w", err)
		}
		entry.UserID = userID.String()
		logs = append(logs, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read workout logs: %w", err)
	}

	winner, err := scoring.ResolveWinner(logs, goal, criteria)
	if err != nil {
		return nil, err
	}

	winnerID, err := uuid.Parse(winner.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid winner id from logs: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE challenges SET status = 'completed', winner_id = $1 WHERE id = $2 AND status = 'active'`,
		winnerID, challengeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to close challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.ErrChallengeCompleted
	}

	var wins int
	err = tx.QueryRow(ctx,
		`UPDATE users SET points = points + $1, challenge_wins = challenge_wins + 1, updated_at = now()
		 WHERE id = $2
		 RETURNING challenge_wins`,
		rewardPoints, winnerID,
	).Scan(&wins)
	if err != nil {
		return nil, fmt.Errorf("failed to credit reward points: %w", err)
	}

	// Wins drive the elo ladder; the stored level keeps the leaderboard sort
	// a plain column order.
	_, err = tx.Exec(ctx,
		`UPDATE users SET elo_level = $1 WHERE id = $2 AND elo_level < $1`,
		elo.ForWins(wins).Level, winnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update elo level: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit finalization: %w", err)
	}

	s.notifService.Notify(ctx, &notification.CreateNotificationRequest{
		UserID:  winnerID.String(),
		Type:    notification.NotificationChallengeWon,
		Title:   "Challenge won!",
		Message: fmt.Sprintf("You won %q and earned %d points", title, rewardPoints),
		Data:    map[string]any{"challenge_id": challengeID.String(), "reward_points": rewardPoints},
	})

	return &challenge.FinalizeResponse{
		WinnerID: winner.UserID,
		Total:    winner.Total,
		Message:  "Challenge finalized successfully!",
	}, nil
}
