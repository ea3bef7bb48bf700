package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *http.ServeMux) {
	t.Helper()
	store := openTestStore(t)
	tokens, err := NewTokenIssuer([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	svc := NewService(store, tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	svc.Routes(mux)
	return svc, mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginMe(t *testing.T) {
	_, mux := newTestService(t)

	rec := postJSON(t, mux, "/auth/register", registerRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var reg tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.Token)

	rec = postJSON(t, mux, "/auth/login", credentialsRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	me := httptest.NewRecorder()
	mux.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)

	var user userResponse
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &user))
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, mux := newTestService(t)

	creds := credentialsRequest{Email: "alice@example.com", Password: "pw123456"}
	require.Equal(t, http.StatusCreated, postJSON(t, mux, "/auth/register", creds).Code)
	assert.Equal(t, http.StatusConflict, postJSON(t, mux, "/auth/register", creds).Code)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	_, mux := newTestService(t)

	assert.Equal(t, http.StatusBadRequest,
		postJSON(t, mux, "/auth/register", credentialsRequest{Email: "alice@example.com"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		postJSON(t, mux, "/auth/register", credentialsRequest{Password: "pw123456"}).Code)
}

func TestLoginWrongCredentials(t *testing.T) {
	_, mux := newTestService(t)

	require.Equal(t, http.StatusCreated, postJSON(t, mux, "/auth/register", credentialsRequest{
		Email: "alice@example.com", Password: "pw123456",
	}).Code)

	// Wrong password and unknown email get the same answer.
	assert.Equal(t, http.StatusUnauthorized, postJSON(t, mux, "/auth/login", credentialsRequest{
		Email: "alice@example.com", Password: "wrong",
	}).Code)
	assert.Equal(t, http.StatusUnauthorized, postJSON(t, mux, "/auth/login", credentialsRequest{
		Email: "nobody@example.com", Password: "pw123456",
	}).Code)
}

func TestMeRejectsBadToken(t *testing.T) {
	_, mux := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateQueryFallback(t *testing.T) {
	svc, mux := newTestService(t)

	rec := postJSON(t, mux, "/auth/register", credentialsRequest{
		Email: "alice@example.com", Password: "pw123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	req := httptest.NewRequest(http.MethodGet, "/ws/posture?token="+reg.Token, nil)
	userID, err := svc.Authenticate(req)
	require.NoError(t, err)
	assert.NotEmpty(t, userID)
}

func TestPasswordTruncation(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	hash, err := HashPassword(string(long))
	require.NoError(t, err)

	// Bytes past 72 don't participate in verification.
	assert.True(t, VerifyPassword(hash, string(long[:72])))
	assert.True(t, VerifyPassword(hash, string(long)+"extra"))
	assert.False(t, VerifyPassword(hash, string(long[:71])))
}
