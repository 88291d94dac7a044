package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brewhollow/shop-backend/internal/handlers"
	"github.com/brewhollow/shop-backend/internal/hash"
	"github.com/brewhollow/shop-backend/internal/mailer"
	authmw "github.com/brewhollow/shop-backend/internal/middleware/auth"
	"github.com/brewhollow/shop-backend/internal/models"
	"github.com/brewhollow/shop-backend/internal/mykafka"
	"github.com/brewhollow/shop-backend/internal/service"
	"github.com/brewhollow/shop-backend/internal/tokenstore"
	httpserver "github.com/brewhollow/shop-backend/internal/transport/http"
)

type testEnv struct {
	t   *testing.T
	e   *echo.Echo
	db  *gorm.DB
	svc *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvTTL(t, 15*time.Minute)
}

// newTestEnvTTL wires the full router against an in-memory database. A
// negative accessTTL yields sessions whose access token is already expired.
func newTestEnvTTL(t *testing.T, accessTTL time.Duration) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.TokenRecord{}, &models.Feedback{}))

	store := tokenstore.New(db)
	svc := &service.AuthService{
		DB:            db,
		Store:         store,
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     accessTTL,
		RefreshTTL:    30 * 24 * time.Hour,
	}

	e := echo.New()
	deps := httpserver.Deps{
		Auth:     &handlers.AuthHandler{Svc: svc, Producer: &mykafka.Producer{}},
		Feedback: &handlers.FeedbackHandler{DB: db, Producer: &mykafka.Producer{}, Mailer: &mailer.Mailer{}},
		Catalog:  &handlers.CatalogHandler{},
		Tokens: &authmw.TokenMiddleware{
			DB:            db,
			Store:         store,
			AccessSecret:  svc.AccessSecret,
			RefreshSecret: svc.RefreshSecret,
		},
	}
	httpserver.Register(e, &deps)

	return &testEnv{t: t, e: e, db: db, svc: svc}
}

func (env *testEnv) do(method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	env.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	resp := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(env.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func (env *testEnv) register(firstName, lastName, email, password string) map[string]any {
	env.t.Helper()

	rec, resp := env.do(http.MethodPost, "/api/registration", map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"password":   password,
	}, "")
	require.Equal(env.t, http.StatusOK, rec.Code)
	return resp
}

// login returns the access and refresh tokens of a fresh session.
func (env *testEnv) login(email, password string) (string, string) {
	env.t.Helper()

	rec, resp := env.do(http.MethodPost, "/api/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(env.t, http.StatusOK, rec.Code)

	user, ok := resp["user"].(map[string]any)
	require.True(env.t, ok, "expected user object in login response")
	access, _ := user["access_token"].(string)
	refresh, _ := user["refresh_token"].(string)
	require.NotEmpty(env.t, access)
	require.NotEmpty(env.t, refresh)
	return access, refresh
}

func (env *testEnv) createAdmin(email, password string) {
	env.t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(env.t, err)
	admin := models.User{
		FirstName:    "test",
		LastName:     "admin",
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleAdmin,
		RegisteredOn: time.Now(),
	}
	require.NoError(env.t, env.db.Create(&admin).Error)
}
