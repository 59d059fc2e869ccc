package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/shared"
)

func newTestRouter(repo *mockRepository, actor authz.Actor) http.Handler {
	handler := NewHandler(nil, NewService(repo))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithActor(req.Context(), actor)))
		})
	})
	r.Route("/api/users", handler.MountRoutes)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerViewHidesPasswordHash(t *testing.T) {
	repo := newMockRepository(superUser, adminUser, plainUser)
	repo.users[plainUser.ID].PasswordHash = "secret-hash"
	router := newTestRouter(repo, actorOf(adminUser))

	rec := doJSON(t, router, http.MethodGet, "/api/users/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	assert.NotContains(t, rec.Body.String(), "password")

	var body struct {
		Status string `json:"status"`
		User   User   `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, plainUser.Email, body.User.Email)
}

func TestHandlerForbiddenContract(t *testing.T) {
	repo := newMockRepository(superUser, adminUser, plainUser)
	router := newTestRouter(repo, actorOf(plainUser))

	rec := doJSON(t, router, http.MethodGet, "/api/users/3", "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "This action is unauthorized.", body.Message)
}

func TestHandlerCreateAndValidation(t *testing.T) {
	repo := newMockRepository(superUser, adminUser, plainUser)
	router := newTestRouter(repo, actorOf(adminUser))

	rec := doJSON(t, router, http.MethodPost, "/api/users", `{
		"name": "Carol",
		"email": "carol@example.com",
		"password": "supersecret",
		"role": "user",
		"status": "enabled"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/users", `{
		"name": "C",
		"email": "nope",
		"password": "short",
		"role": "user",
		"status": "enabled"
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "The given data was invalid.", body.Message)
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "password")
}

func TestHandlerListScopeFilter(t *testing.T) {
	repo := newMockRepository(superUser, adminUser, plainUser)
	repo.listResult = []User{plainUser}
	repo.listTotal = 1
	router := newTestRouter(repo, actorOf(adminUser))

	rec := doJSON(t, router, http.MethodGet, "/api/users?role=user", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users?role=admin", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "admins cannot list their peers")

	rec = doJSON(t, router, http.MethodGet, "/api/users?page=abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerDeleteSelfRefused(t *testing.T) {
	repo := newMockRepository(superUser, adminUser, plainUser)
	router := newTestRouter(repo, actorOf(superUser))

	rec := doJSON(t, router, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/users/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
