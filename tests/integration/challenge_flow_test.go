package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitArenaAPI/handlers"
	"fitArenaAPI/internal/metric"
	"fitArenaAPI/internal/types/challenge"
	"fitArenaAPI/internal/types/user"
	"fitArenaAPI/internal/types/workout"
	"fitArenaAPI/middleware"
	"fitArenaAPI/services"
	"fitArenaAPI/tests/helpers"
)

func createTestUser(t *testing.T, userService *services.UserService, suffix string) string {
	t.Helper()
	clerkID := fmt.Sprintf("user_test_%s_%s", suffix, time.Now().Format("20060102150405"))
	_, err := userService.CreateUser(context.Background(), &user.CreateUserRequest{
		ClerkID:   clerkID,
		Email:     fmt.Sprintf("test%s@example.com", suffix),
		Username:  "test" + suffix,
		FirstName: "Test",
		LastName:  suffix,
	})
	require.NoError(t, err)
	return clerkID
}

func authedRequest(method, target string, body []byte, clerkID string, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
	req = req.WithContext(ctx)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

// TestChallengeFullFlow walks the whole lifecycle: create a challenge, have a
// second user join, log workouts for both, and finalize.
func TestChallengeFullFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	uploadService := services.NewUploadService()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool)
	challengeService := services.NewChallengeService(pool, uploadService, notificationService)
	workoutService := services.NewWorkoutService(pool, uploadService)

	challengeHandler := handlers.NewChallengeHandler(challengeService)
	workoutHandler := handlers.NewWorkoutHandler(workoutService)

	creatorID := createTestUser(t, userService, "creator")
	rivalID := createTestUser(t, userService, "rival")

	// Creator creates a public training volume challenge
	createBody, _ := json.Marshal(challenge.CreateChallengeRequest{
		Title:        "August volume battle",
		Type:         challenge.TypePublic,
		Rules:        "Most total volume wins",
		StartDate:    time.Now().Add(-24 * time.Hour),
		EndDate:      time.Now().Add(7 * 24 * time.Hour),
		RewardPoints: 100,
		Metric:       metric.KindTrainingVolume,
	})

	rr := httptest.NewRecorder()
	challengeHandler.CreateChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges", createBody, creatorID, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created challenge.Challenge
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, challenge.StatusActive, created.Status)
	assert.Equal(t, 1, created.ParticipantCount)

	vars := map[string]string{"challengeID": created.ID.String()}

	// Rival joins
	rr = httptest.NewRecorder()
	challengeHandler.JoinChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/join", []byte(`{}`), rivalID, vars))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Joining twice is rejected
	rr = httptest.NewRecorder()
	challengeHandler.JoinChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/join", []byte(`{}`), rivalID, vars))
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Creator logs 10x20 + 5x10 = 250 volume
	creatorWorkout, _ := json.Marshal(workout.RegisterRequest{
		Submission: metric.Submission{
			Sets: []metric.ExerciseSet{{Reps: 10, Weight: 20}, {Reps: 5, Weight: 10}},
		},
	})
	rr = httptest.NewRecorder()
	workoutHandler.RegisterWorkout(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/workouts", creatorWorkout, creatorID, vars))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var registered workout.RegisterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	assert.Equal(t, 250.0, registered.Log.Volume)

	// Rival logs less
	rivalWorkout, _ := json.Marshal(workout.RegisterRequest{
		Submission: metric.Submission{
			Sets: []metric.ExerciseSet{{Reps: 8, Weight: 15}},
		},
	})
	rr = httptest.NewRecorder()
	workoutHandler.RegisterWorkout(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/workouts", rivalWorkout, rivalID, vars))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// Only the creator can finalize
	rr = httptest.NewRecorder()
	challengeHandler.FinalizeChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/finalize", nil, rivalID, vars))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	challengeHandler.FinalizeChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/finalize", nil, creatorID, vars))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result challenge.FinalizeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 250.0, result.Total)

	// Winner got the reward points and a win on their record
	winner, err := userService.GetUserByClerkID(context.Background(), creatorID)
	require.NoError(t, err)
	assert.Equal(t, 100, winner.Points)
	assert.Equal(t, 1, winner.ChallengeWins)
	assert.Equal(t, "Bronze", winner.EloName)

	// Finalizing again is rejected
	rr = httptest.NewRecorder()
	challengeHandler.FinalizeChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/finalize", nil, creatorID, vars))
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Logging into a completed challenge is rejected
	rr = httptest.NewRecorder()
	workoutHandler.RegisterWorkout(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/workouts", rivalWorkout, rivalID, vars))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

// TestFrequencyChallengeDailyDedup checks the one-check-in-per-day rule.
func TestFrequencyChallengeDailyDedup(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	uploadService := services.NewUploadService()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool)
	challengeService := services.NewChallengeService(pool, uploadService, notificationService)
	workoutService := services.NewWorkoutService(pool, uploadService)

	challengeHandler := handlers.NewChallengeHandler(challengeService)
	workoutHandler := handlers.NewWorkoutHandler(workoutService)

	creatorID := createTestUser(t, userService, "daily")

	createBody, _ := json.Marshal(challenge.CreateChallengeRequest{
		Title:        "Show up every day",
		Type:         challenge.TypePublic,
		StartDate:    time.Now().Add(-24 * time.Hour),
		EndDate:      time.Now().Add(30 * 24 * time.Hour),
		RewardPoints: 50,
		Metric:       metric.KindFrequency,
	})

	rr := httptest.NewRecorder()
	challengeHandler.CreateChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges", createBody, creatorID, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created challenge.Challenge
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	vars := map[string]string{"challengeID": created.ID.String()}

	checkIn, _ := json.Marshal(workout.RegisterRequest{
		Submission: metric.Submission{Location: "Iron Temple Gym"},
	})

	rr = httptest.NewRecorder()
	workoutHandler.RegisterWorkout(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/workouts", checkIn, creatorID, vars))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var registered workout.RegisterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	assert.Equal(t, 1.0, registered.Log.Volume)

	// Same user, same day, same challenge: rejected
	rr = httptest.NewRecorder()
	workoutHandler.RegisterWorkout(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/workouts", checkIn, creatorID, vars))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

// TestPrivateChallengeInviteCode checks the invite code gate on private challenges.
func TestPrivateChallengeInviteCode(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	uploadService := services.NewUploadService()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool)
	challengeService := services.NewChallengeService(pool, uploadService, notificationService)

	challengeHandler := handlers.NewChallengeHandler(challengeService)

	creatorID := createTestUser(t, userService, "priv")
	joinerID := createTestUser(t, userService, "joiner")

	createBody, _ := json.Marshal(challenge.CreateChallengeRequest{
		Title:        "Friends only",
		Type:         challenge.TypePrivate,
		StartDate:    time.Now(),
		EndDate:      time.Now().Add(14 * 24 * time.Hour),
		RewardPoints: 25,
		Metric:       metric.KindTotalWeight,
	})

	rr := httptest.NewRecorder()
	challengeHandler.CreateChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges", createBody, creatorID, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created challenge.Challenge
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotNil(t, created.InviteCode)
	vars := map[string]string{"challengeID": created.ID.String()}

	// Wrong code is rejected
	rr = httptest.NewRecorder()
	challengeHandler.JoinChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/join", []byte(`{"invite_code": "WRONG1"}`), joinerID, vars))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Correct code works
	joinBody, _ := json.Marshal(challenge.JoinChallengeRequest{InviteCode: *created.InviteCode})
	rr = httptest.NewRecorder()
	challengeHandler.JoinChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/join", joinBody, joinerID, vars))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Invite code is hidden from non-creators
	rr = httptest.NewRecorder()
	challengeHandler.GetChallenge(rr, authedRequest(http.MethodGet, "/api/v1/challenges/"+created.ID.String(), nil, joinerID, vars))
	require.Equal(t, http.StatusOK, rr.Code)

	var fetched challenge.Challenge
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fetched))
	assert.Nil(t, fetched.InviteCode)
	assert.True(t, fetched.IsParticipating)
}

// TestPublicChallengeCapacity checks that a full public challenge rejects
// further joins.
func TestPublicChallengeCapacity(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	uploadService := services.NewUploadService()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool)
	challengeService := services.NewChallengeService(pool, uploadService, notificationService)

	challengeHandler := handlers.NewChallengeHandler(challengeService)

	creatorID := createTestUser(t, userService, "cap1")
	secondID := createTestUser(t, userService, "cap2")
	thirdID := createTestUser(t, userService, "cap3")

	maxParticipants := 2
	createBody, _ := json.Marshal(challenge.CreateChallengeRequest{
		Title:           "Two is company",
		Type:            challenge.TypePublic,
		StartDate:       time.Now(),
		EndDate:         time.Now().Add(7 * 24 * time.Hour),
		RewardPoints:    10,
		MaxParticipants: &maxParticipants,
		Metric:          metric.KindFrequency,
	})

	rr := httptest.NewRecorder()
	challengeHandler.CreateChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges", createBody, creatorID, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created challenge.Challenge
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	vars := map[string]string{"challengeID": created.ID.String()}

	// Creator is the first participant, second user fills the challenge
	rr = httptest.NewRecorder()
	challengeHandler.JoinChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/join", []byte(`{}`), secondID, vars))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Third join is rejected with a capacity error
	rr = httptest.NewRecorder()
	challengeHandler.JoinChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges/"+created.ID.String()+"/join", []byte(`{}`), thirdID, vars))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "participant limit")
}

// TestChallengeReadsRequireMembership checks that chat and logs are not
// readable by non-participants.
func TestChallengeReadsRequireMembership(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	uploadService := services.NewUploadService()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool)
	challengeService := services.NewChallengeService(pool, uploadService, notificationService)
	workoutService := services.NewWorkoutService(pool, uploadService)
	chatService := services.NewChatService(pool, uploadService)

	challengeHandler := handlers.NewChallengeHandler(challengeService)
	workoutHandler := handlers.NewWorkoutHandler(workoutService)
	chatHandler := handlers.NewChatHandler(chatService)

	creatorID := createTestUser(t, userService, "member")
	outsiderID := createTestUser(t, userService, "outsider")

	createBody, _ := json.Marshal(challenge.CreateChallengeRequest{
		Title:        "Members only feed",
		Type:         challenge.TypePrivate,
		StartDate:    time.Now(),
		EndDate:      time.Now().Add(7 * 24 * time.Hour),
		RewardPoints: 10,
		Metric:       metric.KindFrequency,
	})

	rr := httptest.NewRecorder()
	challengeHandler.CreateChallenge(rr, authedRequest(http.MethodPost, "/api/v1/challenges", createBody, creatorID, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created challenge.Challenge
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	vars := map[string]string{"challengeID": created.ID.String()}

	// Non-participant cannot read the chat feed
	rr = httptest.NewRecorder()
	chatHandler.GetMessages(rr, authedRequest(http.MethodGet, "/api/v1/challenges/"+created.ID.String()+"/chat", nil, outsiderID, vars))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Non-participant cannot read the workout logs
	rr = httptest.NewRecorder()
	workoutHandler.GetChallengeLogs(rr, authedRequest(http.MethodGet, "/api/v1/challenges/"+created.ID.String()+"/workouts", nil, outsiderID, vars))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// The creator still can
	rr = httptest.NewRecorder()
	chatHandler.GetMessages(rr, authedRequest(http.MethodGet, "/api/v1/challenges/"+created.ID.String()+"/chat", nil, creatorID, vars))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	workoutHandler.GetChallengeLogs(rr, authedRequest(http.MethodGet, "/api/v1/challenges/"+created.ID.String()+"/workouts", nil, creatorID, vars))
	assert.Equal(t, http.StatusOK, rr.Code)
}
