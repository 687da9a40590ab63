package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitArenaAPI/handlers"
	"fitArenaAPI/internal/types/community"
	"fitArenaAPI/services"
	"fitArenaAPI/tests/helpers"
)

func TestCommunityPostFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	uploadService := services.NewUploadService()
	userService := services.NewUserService(pool)
	communityService := services.NewCommunityService(pool, uploadService)

	communityHandler := handlers.NewCommunityHandler(communityService)

	authorID := createTestUser(t, userService, "author")
	readerID := createTestUser(t, userService, "reader")

	// Author posts
	postBody, _ := json.Marshal(community.CreatePostRequest{Content: "New squat PR today"})
	rr := httptest.NewRecorder()
	communityHandler.CreatePost(rr, authedRequest(http.MethodPost, "/api/v1/posts", postBody, authorID, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var post community.Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &post))
	vars := map[string]string{"postID": post.ID.String()}

	// Empty content is rejected
	rr = httptest.NewRecorder()
	communityHandler.CreatePost(rr, authedRequest(http.MethodPost, "/api/v1/posts", []byte(`{}`), authorID, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Reader comments
	commentBody, _ := json.Marshal(community.CreateCommentRequest{Content: "Strong!"})
	rr = httptest.NewRecorder()
	communityHandler.CreateComment(rr, authedRequest(http.MethodPost, "/api/v1/posts/"+post.ID.String()+"/comments", commentBody, readerID, vars))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// Reader likes, then unlikes
	rr = httptest.NewRecorder()
	communityHandler.ToggleLike(rr, authedRequest(http.MethodPost, "/api/v1/posts/"+post.ID.String()+"/like", nil, readerID, vars))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var liked community.ToggleLikeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &liked))
	assert.True(t, liked.Liked)
	assert.Equal(t, 1, liked.LikeCount)

	rr = httptest.NewRecorder()
	communityHandler.ToggleLike(rr, authedRequest(http.MethodPost, "/api/v1/posts/"+post.ID.String()+"/like", nil, readerID, vars))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &liked))
	assert.False(t, liked.Liked)
	assert.Equal(t, 0, liked.LikeCount)

	// The feed carries counts and the caller's like state
	rr = httptest.NewRecorder()
	communityHandler.GetPosts(rr, authedRequest(http.MethodGet, "/api/v1/posts", nil, readerID, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var feed []community.Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &feed))
	require.NotEmpty(t, feed)

	var found *community.Post
	for i := range feed {
		if feed[i].ID == post.ID {
			found = &feed[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 1, found.CommentCount)
	assert.Equal(t, 0, found.LikeCount)
	assert.False(t, found.LikedByMe)

	// Comments come back oldest first with author info
	rr = httptest.NewRecorder()
	communityHandler.GetPostComments(rr, authedRequest(http.MethodGet, "/api/v1/posts/"+post.ID.String()+"/comments", nil, readerID, vars))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var comments []community.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "Strong!", comments[0].Content)

	// Commenting a missing post is a 404
	missingVars := map[string]string{"postID": "00000000-0000-0000-0000-000000000000"}
	rr = httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/v1/posts/00000000-0000-0000-0000-000000000000/comments", commentBody, readerID, missingVars)
	communityHandler.CreateComment(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
