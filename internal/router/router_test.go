package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sasa5432-arch/class-review-app/internal/config"
	"github.com/sasa5432-arch/class-review-app/internal/models"
)

// setupTestRouter wires the real router against an in-memory database.
// MinIO, Meilisearch and Redis are unreachable in tests; the router
// degrades to warnings for those, which is exactly the production
// behavior when a sidecar is down.
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Review{}, &models.Comment{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Load()
	cfg.GinMode = gin.TestMode

	return Setup(db, cfg), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var result map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	return result
}

func registerUser(t *testing.T, r *gin.Engine, email string) (token string, userID uint) {
	t.Helper()

	rr := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":        email,
		"password":     "password1234",
		"display_name": "Test User",
		"university":   "Test University",
		"faculty":      "Engineering",
		"department":   "Computer Science",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	data := decodeBody(t, rr)["data"].(map[string]any)
	token = data["access_token"].(string)
	userID = uint(data["user"].(map[string]any)["id"].(float64))
	return token, userID
}

func postReview(t *testing.T, r *gin.Engine, token, course, teacher, rating string) uint {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("course_name", course))
	require.NoError(t, w.WriteField("teacher_name", teacher))
	require.NoError(t, w.WriteField("rating", rating))
	require.NoError(t, w.WriteField("comment", "a thorough write-up"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	data := decodeBody(t, rr)["data"].(map[string]any)
	return uint(data["id"].(float64))
}

func TestRegisterLoginAndMe(t *testing.T) {
	r, _ := setupTestRouter(t)

	token, _ := registerUser(t, r, "student@example.com")

	// Registered credentials log in
	rr := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "student@example.com",
		"password": "password1234",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	// Wrong password does not
	rr = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "student@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// /auth/me resolves the principal
	rr = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]any)
	assert.Equal(t, "student@example.com", data["email"])
}

func TestReviewsRequireAuthentication(t *testing.T) {
	r, _ := setupTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/v1/reviews", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestReviewSearchSortAndLike(t *testing.T) {
	r, _ := setupTestRouter(t)
	token, _ := registerUser(t, r, "student@example.com")

	algID := postReview(t, r, token, "Algorithms", "Sato", "5")
	labID := postReview(t, r, token, "Algorithms Lab", "Suzuki", "3")
	postReview(t, r, token, "Statistics", "Tanaka", "4")

	// Like the lab review a few times
	for i := 0; i < 3; i++ {
		rr := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/reviews/%d/like", labID), token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := doJSON(t, r, http.MethodGet, "/api/v1/reviews?keyword=algorithms&target=course&sort=likes", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	data := decodeBody(t, rr)["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, float64(labID), data[0].(map[string]any)["id"])
	assert.Equal(t, float64(3), data[0].(map[string]any)["likes"])
	assert.Equal(t, float64(algID), data[1].(map[string]any)["id"])

	// Liking a missing review is a 404
	rr = doJSON(t, r, http.MethodPost, "/api/v1/reviews/9999/like", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAverageEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)
	token, _ := registerUser(t, r, "student@example.com")

	postReview(t, r, token, "Algorithms", "Sato", "5")
	postReview(t, r, token, "Algorithms Lab", "Suzuki", "2")

	rr := doJSON(t, r, http.MethodGet, "/api/v1/reviews/average?course_name=algorithms", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]any)
	assert.InDelta(t, 3.5, data["average"].(float64), 0.0001)

	rr = doJSON(t, r, http.MethodGet, "/api/v1/reviews/average?course_name=NoSuchCourse", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	data = decodeBody(t, rr)["data"].(map[string]any)
	assert.Equal(t, 0.0, data["average"].(float64))
}

func TestUpdateAndDeleteAreOwnerGated(t *testing.T) {
	r, _ := setupTestRouter(t)
	ownerToken, _ := registerUser(t, r, "owner@example.com")
	intruderToken, _ := registerUser(t, r, "intruder@example.com")

	reviewID := postReview(t, r, ownerToken, "Calculus", "Sato", "3")
	path := fmt.Sprintf("/api/v1/reviews/%d", reviewID)

	// Update by a different user is forbidden
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("course_name", "Hijacked"))
	require.NoError(t, w.WriteField("teacher_name", "Hijacked"))
	require.NoError(t, w.WriteField("rating", "1"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+intruderToken)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// So is deletion
	rr2 := doJSON(t, r, http.MethodDelete, path, intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, rr2.Code)

	// The review is untouched
	rr2 = doJSON(t, r, http.MethodGet, path, ownerToken, nil)
	require.Equal(t, http.StatusOK, rr2.Code)
	data := decodeBody(t, rr2)["data"].(map[string]any)
	assert.Equal(t, "Calculus", data["course_name"])

	// The owner can delete
	rr2 = doJSON(t, r, http.MethodDelete, path, ownerToken, nil)
	assert.Equal(t, http.StatusOK, rr2.Code)

	rr2 = doJSON(t, r, http.MethodGet, path, ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, rr2.Code)
}

func TestCommentAndReplyFlow(t *testing.T) {
	r, _ := setupTestRouter(t)
	token, _ := registerUser(t, r, "student@example.com")

	reviewID := postReview(t, r, token, "Calculus", "Sato", "3")
	otherID := postReview(t, r, token, "Physics", "Suzuki", "5")

	commentBody := map[string]any{
		"content":    "great explanations in lectures",
		"university": "Test University",
		"faculty":    "Engineering",
		"department": "Computer Science",
	}

	rr := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/reviews/%d/comments", reviewID), token, commentBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	commentID := uint(decodeBody(t, rr)["data"].(map[string]any)["id"].(float64))

	rr = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/reviews/%d/comments/%d/replies", reviewID, commentID), token, commentBody)
	require.Equal(t, http.StatusCreated, rr.Code)

	// A reply posted under a different review is rejected
	rr = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/reviews/%d/comments/%d/replies", otherID, commentID), token, commentBody)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	errObj := decodeBody(t, rr)["error"].(map[string]any)
	assert.Equal(t, "CROSS_REVIEW_REPLY", errObj["code"])

	// The tree comes back with one top-level comment carrying one reply
	rr = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/reviews/%d/comments", reviewID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	tree := decodeBody(t, rr)["data"].([]any)
	require.Len(t, tree, 1)
	replies := tree[0].(map[string]any)["replies"].([]any)
	assert.Len(t, replies, 1)
}

func TestCommentContentBound(t *testing.T) {
	r, _ := setupTestRouter(t)
	token, _ := registerUser(t, r, "student@example.com")

	reviewID := postReview(t, r, token, "Calculus", "Sato", "3")

	long := bytes.Repeat([]byte("x"), 501)
	rr := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/reviews/%d/comments", reviewID), token, map[string]any{
		"content":    string(long),
		"university": "Test University",
		"faculty":    "Engineering",
		"department": "Computer Science",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	errObj := decodeBody(t, rr)["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
