package apperr

import "errors"

// Sentinel errors for the challenge engine. Services wrap these with
// fmt.Errorf("...: %w", ...) and handlers translate them to HTTP statuses
// with errors.Is.
var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrUnrecognizedMetric    = errors.New("unrecognized metric type")
	ErrMissingExerciseSets   = errors.New("at least one exercise set is required")
	ErrMissingTotalWeight    = errors.New("total weight is required")
	ErrMissingEnduranceTime  = errors.New("endurance time is required")
	ErrMissingDistanceData   = errors.New("distance is required")
	ErrDuplicateDailyCheckIn = errors.New("workout already registered for today")
	ErrChallengeNotFound     = errors.New("challenge not found")
	ErrChallengeCompleted    = errors.New("challenge is already completed")
	ErrChallengeFull         = errors.New("challenge reached its participant limit")
	ErrAlreadyParticipating  = errors.New("user already joined this challenge")
	ErrInvalidInviteCode     = errors.New("invalid invite code for this private challenge")
	ErrNotParticipating      = errors.New("user is not a participant of this challenge")
	ErrForbidden             = errors.New("only the challenge creator can perform this action")
	ErrNoSubmissions         = errors.New("no workout logs found for this challenge")
	ErrGoalNotReached        = errors.New("no participant reached the challenge goal")
	ErrUserNotFound          = errors.New("user not found")
	ErrPostNotFound          = errors.New("post not found")
	ErrRewardNotFound        = errors.New("reward not found")
	ErrInsufficientPoints    = errors.New("not enough points to redeem this reward")
)
