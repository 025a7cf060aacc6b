package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/newmedev/mealreview-backend/internal/handlers"
	"github.com/newmedev/mealreview-backend/internal/middleware"
	"github.com/newmedev/mealreview-backend/internal/models"
	"github.com/newmedev/mealreview-backend/internal/neis"
	"github.com/newmedev/mealreview-backend/internal/routes"
	"github.com/newmedev/mealreview-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes -------------------------------------------------------------

type fakeAuth struct {
	user *models.User
	err  error
}

func (f *fakeAuth) Authenticate(authorization string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeReviewStore struct {
	review  *models.Review
	reviews []models.Review
	stats   *services.SchoolStats
	err     error

	upsertCalls int
	deleteCalls int
}

func (f *fakeReviewStore) Upsert(user *models.User, officeCode, schoolCode, mealDate, mealType string, rating int, content string) (*models.Review, error) {
	f.upsertCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.review, nil
}

func (f *fakeReviewStore) Delete(userID, reviewID uuid.UUID) error {
	f.deleteCalls++
	return f.err
}

func (f *fakeReviewStore) List(officeCode, schoolCode, mealDate, mealType string) ([]models.Review, error) {
	return f.reviews, f.err
}

func (f *fakeReviewStore) ListByUser(userID uuid.UUID) ([]models.Review, error) {
	return f.reviews, f.err
}

func (f *fakeReviewStore) Stats(officeCode, schoolCode string) (*services.SchoolStats, error) {
	return f.stats, f.err
}

type fakeUserStore struct {
	user *models.User
	err  error
}

func (f *fakeUserStore) UpdateSchool(userID uuid.UUID, officeCode, schoolCode, schoolName string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeProvider struct {
	schools []neis.Row
	meals   []neis.Row
	err     error
}

func (f *fakeProvider) SearchSchools(name string) ([]neis.Row, error) {
	return f.schools, f.err
}

func (f *fakeProvider) FetchMeals(officeCode, schoolCode, date, startDate, endDate string) ([]neis.Row, error) {
	return f.meals, f.err
}

// --- helpers -----------------------------------------------------------

func newTestApp(auth middleware.Authenticator, reviews handlers.ReviewStore, users handlers.UserStore, provider handlers.MealProvider) *fiber.App {
	app := fiber.New()
	routes.Setup(app, auth,
		handlers.NewHealthHandler(nil),
		handlers.NewSchoolHandler(provider),
		handlers.NewMealHandler(provider),
		handlers.NewReviewHandler(reviews),
		handlers.NewUserHandler(users),
	)
	return app
}

func jsonRequest(method, target string, body interface{}, token string) *http.Request {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func schoolUser() *models.User {
	return &models.User{
		ID:         uuid.New(),
		Email:      "student@example.com",
		OfficeCode: "J10",
		SchoolCode: "7530126",
		SchoolName: "민족사관고등학교",
	}
}

func reviewBody() map[string]interface{} {
	return map[string]interface{}{
		"school_code": "7530126",
		"office_code": "J10",
		"meal_date":   "20260109",
		"meal_type":   "중식",
		"rating":      4,
		"content":     "맛있어요",
	}
}

// --- auth gate ---------------------------------------------------------

func TestProtectedEndpointsRejectMissingCredential(t *testing.T) {
	// A real identity service over a nil DB: touching the store would
	// panic, so a 401 here proves rejection happens first.
	auth := services.NewIdentityService(nil, nil)
	store := &fakeReviewStore{}
	app := newTestApp(auth, store, &fakeUserStore{}, &fakeProvider{})

	targets := []struct {
		method string
		path   string
	}{
		{fiber.MethodPost, "/api/reviews"},
		{fiber.MethodDelete, "/api/reviews/" + uuid.NewString()},
		{fiber.MethodGet, "/api/auth/me"},
		{fiber.MethodPut, "/api/user/school"},
		{fiber.MethodGet, "/api/user/reviews"},
	}

	for _, target := range targets {
		t.Run(target.method+" "+target.path, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(target.method, target.path, nil, ""))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}

	assert.Zero(t, store.upsertCalls)
	assert.Zero(t, store.deleteCalls)
}

func TestProtectedEndpointsUnavailableWithoutAuthenticator(t *testing.T) {
	app := newTestApp(nil, &fakeReviewStore{}, &fakeUserStore{}, &fakeProvider{})

	resp, err := app.Test(jsonRequest(fiber.MethodGet, "/api/auth/me", nil, "some-token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

// --- reviews -----------------------------------------------------------

func TestCreateReview(t *testing.T) {
	user := schoolUser()
	store := &fakeReviewStore{review: &models.Review{
		ID:         uuid.New(),
		UserID:     user.ID,
		OfficeCode: "J10",
		SchoolCode: "7530126",
		MealDate:   "20260109",
		MealType:   "중식",
		Rating:     4,
		Content:    "맛있어요",
	}}
	app := newTestApp(&fakeAuth{user: user}, store, &fakeUserStore{}, &fakeProvider{})

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/reviews", reviewBody(), "token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(4), body["rating"])
	assert.Equal(t, 1, store.upsertCalls)
}

func TestCreateReviewStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no school set", services.ErrNoSchool, fiber.StatusBadRequest},
		{"wrong school", services.ErrWrongSchool, fiber.StatusForbidden},
		{"invalid rating", services.ErrInvalidRating, fiber.StatusBadRequest},
		{"store failure masked", errors.New("pq: connection reset"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeReviewStore{err: tt.err}
			app := newTestApp(&fakeAuth{user: schoolUser()}, store, &fakeUserStore{}, &fakeProvider{})

			resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/reviews", reviewBody(), "token"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == fiber.StatusInternalServerError {
				body := decodeBody(t, resp)
				assert.Equal(t, "Internal server error", body["message"])
			}
		})
	}
}

func TestDeleteReviewStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"owner deletes", nil, fiber.StatusOK},
		{"not found", services.ErrReviewNotFound, fiber.StatusNotFound},
		{"not owner", services.ErrNotOwner, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeReviewStore{err: tt.err}
			app := newTestApp(&fakeAuth{user: schoolUser()}, store, &fakeUserStore{}, &fakeProvider{})

			resp, err := app.Test(jsonRequest(fiber.MethodDelete, "/api/reviews/"+uuid.NewString(), nil, "token"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestDeleteReviewRejectsBadID(t *testing.T) {
	store := &fakeReviewStore{}
	app := newTestApp(&fakeAuth{user: schoolUser()}, store, &fakeUserStore{}, &fakeProvider{})

	resp, err := app.Test(jsonRequest(fiber.MethodDelete, "/api/reviews/42", nil, "token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, store.deleteCalls)
}

func TestListReviewsRequiresSchoolParams(t *testing.T) {
	app := newTestApp(nil, &fakeReviewStore{}, &fakeUserStore{}, &fakeProvider{})

	resp, err := app.Test(jsonRequest(fiber.MethodGet, "/api/reviews?school_code=7530126", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListReviews(t *testing.T) {
	now := time.Now()
	store := &fakeReviewStore{reviews: []models.Review{
		{ID: uuid.New(), Rating: 5, CreatedAt: now},
		{ID: uuid.New(), Rating: 3, CreatedAt: now.Add(-time.Hour)},
	}}
	app := newTestApp(nil, store, &fakeUserStore{}, &fakeProvider{})

	resp, err := app.Test(jsonRequest(fiber.MethodGet, "/api/reviews?school_code=7530126&office_code=J10", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["reviews"], 2)
}

func TestStoreBackedEndpointsUnavailableWithoutDB(t *testing.T) {
	app := newTestApp(&fakeAuth{user: schoolUser()}, nil, nil, &fakeProvider{})

	targets := []struct {
		method string
		path   string
	}{
		{fiber.MethodGet, "/api/reviews?school_code=1&office_code=2"},
		{fiber.MethodGet, "/api/stats?school_code=1&office_code=2"},
		{fiber.MethodPost, "/api/reviews"},
		{fiber.MethodPut, "/api/user/school"},
	}

	for _, target := range targets {
		t.Run(target.method+" "+target.path, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(target.method, target.path, nil, "token"))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		})
	}
}

func TestStats(t *testing.T) {
	store := &fakeReviewStore{stats: &services.SchoolStats{AverageRating: 4.33, ReviewCount: 3}}
	app := newTestApp(nil, store, &fakeUserStore{}, &fakeProvider{})

	resp, err := app.Test(jsonRequest(fiber.MethodGet, "/api/stats?school_code=7530126&office_code=J10", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, 4.33, body["average_rating"])
	assert.Equal(t, float64(3), body["review_count"])
}

// --- user --------------------------------------------------------------

func TestAuthMe(t *testing.T) {
	user := schoolUser()
	app := newTestApp(&fakeAuth{user: user}, &fakeReviewStore{}, &fakeUserStore{}, &fakeProvider{})

	resp, err := app.Test(jsonRequest(fiber.MethodGet, "/api/auth/me", nil, "token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, user.Email, body["email"])
	assert.Equal(t, "7530126", body["school_code"])
}

func TestUpdateSchool(t *testing.T) {
	user := schoolUser()
	users := &fakeUserStore{user: user}
	app := newTestApp(&fakeAuth{user: user}, &fakeReviewStore{}, users, &fakeProvider{})

	body := map[string]interface{}{
		"school_code": "7530126",
		"office_code": "J10",
		"school_name": "민족사관고등학교",
	}
	resp, err := app.Test(jsonRequest(fiber.MethodPut, "/api/user/school", body, "token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	got := decodeBody(t, resp)
	assert.Equal(t, "민족사관고등학교", got["school_name"])
}

func TestUpdateSchoolIncomplete(t *testing.T) {
	users := &fakeUserStore{err: services.ErrIncompleteSchool}
	app := newTestApp(&fakeAuth{user: schoolUser()}, &fakeReviewStore{}, users, &fakeProvider{})

	resp, err := app.Test(jsonRequest(fiber.MethodPut, "/api/user/school", map[string]interface{}{}, "token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
