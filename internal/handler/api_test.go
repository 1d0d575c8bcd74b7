package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agrisense-ai/agrisense-backend/internal/middleware"
	"github.com/agrisense-ai/agrisense-backend/internal/service"
	"github.com/agrisense-ai/agrisense-backend/internal/store"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

const testJWTSecret = "test-secret"

// newTestAPI builds the API surface for auth, profile, and session
// endpoints on top of an in-memory database.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	db, err := store.NewWithGorm(gdb, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.NewNop()
	users := store.NewUserStore(db, log)
	sessions := store.NewSessionStore(db, log)

	authSvc := service.NewAuthService(users, testJWTSecret, time.Hour, log)
	userSvc := service.NewUserService(users, log)
	sessionSvc := service.NewSessionService(sessions, log)

	authHandler := NewAuthHandler(authSvc, log)
	userHandler := NewUserHandler(userSvc, log)
	sessionHandler := NewSessionHandler(sessionSvc, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/signin", authHandler.Signin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(testJWTSecret))

			r.Get("/auth/me", authHandler.Me)
			r.Get("/users/profile", userHandler.GetProfile)
			r.Put("/users/profile", userHandler.UpdateProfile)
			r.Delete("/users/account", userHandler.DeleteAccount)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.Create)
				r.Get("/", sessionHandler.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", sessionHandler.Get)
					r.Put("/", sessionHandler.Update)
					r.Delete("/", sessionHandler.Delete)
				})
			})
		})
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
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

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func signup(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":     "田中",
		"email":    email,
		"password": "password123",
		"city":     "つくば市",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token := body["data"].(map[string]interface{})["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	t.Run("signup then me", func(t *testing.T) {
		token := signup(t, api, "tanaka@example.com")

		rec, body := doJSON(t, api, http.MethodGet, "/api/v1/auth/me", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		user := body["data"].(map[string]interface{})["user"].(map[string]interface{})
		assert.Equal(t, "tanaka@example.com", user["email"])
		_, exposed := user["password_hash"]
		assert.False(t, exposed)
	})

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		signup(t, api, "dup@example.com")
		rec, body := doJSON(t, api, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"name": "田中", "email": "dup@example.com", "password": "password123",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("signin with wrong password", func(t *testing.T) {
		signup(t, api, "signin@example.com")
		rec, _ := doJSON(t, api, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
			"email": "signin@example.com", "password": "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("signin succeeds", func(t *testing.T) {
		signup(t, api, "ok@example.com")
		rec, body := doJSON(t, api, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
			"email": "ok@example.com", "password": "password123",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, body["data"].(map[string]interface{})["token"])
	})

	t.Run("validation rejects weak input", func(t *testing.T) {
		rec, _ := doJSON(t, api, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"name": "x", "email": "x@example.com", "password": "password123",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = doJSON(t, api, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"name": "田中", "email": "x@example.com", "password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("protected route without token", func(t *testing.T) {
		rec, _ := doJSON(t, api, http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProfileEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := signup(t, api, "profile@example.com")

	t.Run("update merges only provided fields", func(t *testing.T) {
		rec, body := doJSON(t, api, http.MethodPut, "/api/v1/users/profile", token, map[string]interface{}{
			"farm_size":  "2ha",
			"crop_types": []string{"トマト", "きゅうり"},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		user := body["data"].(map[string]interface{})["user"].(map[string]interface{})
		assert.Equal(t, "2ha", user["farm_size"])
		assert.Equal(t, "つくば市", user["city"])
		assert.Equal(t, []interface{}{"トマト", "きゅうり"}, user["crop_types"])
	})

	t.Run("delete account revokes access", func(t *testing.T) {
		other := signup(t, api, "gone@example.com")

		rec, _ := doJSON(t, api, http.MethodDelete, "/api/v1/users/account", other, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, _ = doJSON(t, api, http.MethodGet, "/api/v1/users/profile", other, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSessionEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := signup(t, api, "sessions@example.com")

	t.Run("create with default title", func(t *testing.T) {
		rec, body := doJSON(t, api, http.MethodPost, "/api/v1/sessions/", token, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		session := body["data"].(map[string]interface{})["session"].(map[string]interface{})
		assert.Equal(t, "新しいチャット", session["title"])
	})

	t.Run("rename and fetch", func(t *testing.T) {
		_, body := doJSON(t, api, http.MethodPost, "/api/v1/sessions/", token, map[string]string{"title": "最初"})
		session := body["data"].(map[string]interface{})["session"].(map[string]interface{})
		id := session["id"].(string)

		rec, body := doJSON(t, api, http.MethodPut, "/api/v1/sessions/"+id, token, map[string]string{"title": "改名後"})
		require.Equal(t, http.StatusOK, rec.Code)
		renamed := body["data"].(map[string]interface{})["session"].(map[string]interface{})
		assert.Equal(t, "改名後", renamed["title"])

		rec, body = doJSON(t, api, http.MethodGet, "/api/v1/sessions/"+id, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		fetched := body["data"].(map[string]interface{})["session"].(map[string]interface{})
		assert.Equal(t, "改名後", fetched["title"])
		assert.Empty(t, fetched["messages"])
	})

	t.Run("foreign session is invisible", func(t *testing.T) {
		_, body := doJSON(t, api, http.MethodPost, "/api/v1/sessions/", token, nil)
		id := body["data"].(map[string]interface{})["session"].(map[string]interface{})["id"].(string)

		intruder := signup(t, api, "intruder@example.com")
		rec, _ := doJSON(t, api, http.MethodGet, "/api/v1/sessions/"+id, intruder, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec, _ = doJSON(t, api, http.MethodDelete, "/api/v1/sessions/"+id, intruder, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid session id", func(t *testing.T) {
		rec, _ := doJSON(t, api, http.MethodGet, "/api/v1/sessions/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rename requires a title", func(t *testing.T) {
		_, body := doJSON(t, api, http.MethodPost, "/api/v1/sessions/", token, nil)
		id := body["data"].(map[string]interface{})["session"].(map[string]interface{})["id"].(string)

		rec, _ := doJSON(t, api, http.MethodPut, "/api/v1/sessions/"+id, token, map[string]string{"title": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		_, body := doJSON(t, api, http.MethodPost, "/api/v1/sessions/", token, nil)
		id := body["data"].(map[string]interface{})["session"].(map[string]interface{})["id"].(string)

		rec, _ := doJSON(t, api, http.MethodDelete, "/api/v1/sessions/"+id, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, _ = doJSON(t, api, http.MethodGet, "/api/v1/sessions/"+id, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
