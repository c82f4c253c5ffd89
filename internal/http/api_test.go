package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfa-service/internal/domain"
	"mfa-service/internal/repository/sqlite"
	"mfa-service/internal/service"
)

// --- fakes ---

type fakeAuthService struct {
	registerUser *domain.User
	registerErr  error
	issueErr     error
	verifyErr    error
	loginUser    *domain.User
	loginErr     error
}

func (f *fakeAuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return f.registerUser, f.registerErr
}

func (f *fakeAuthService) IssueCode(ctx context.Context, email string) error {
	return f.issueErr
}

func (f *fakeAuthService) VerifyCode(ctx context.Context, email, code string) error {
	return f.verifyErr
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return f.loginUser, f.loginErr
}

func newTestRouter(t *testing.T, auth service.AuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(auth).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testUser() *domain.User {
	return &domain.User{ID: "id-1", Email: "u@e.com", CreatedAt: time.Now().UTC()}
}

// --- status mapping ---

func TestRegister_Statuses(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		svc        *fakeAuthService
		wantStatus int
	}{
		{
			name:       "created",
			body:       gin.H{"email": "u@e.com", "password": "pw1"},
			svc:        &fakeAuthService{registerUser: testUser()},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate",
			body:       gin.H{"email": "u@e.com", "password": "pw1"},
			svc:        &fakeAuthService{registerErr: service.ErrUserAlreadyExists},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing fields",
			body:       gin.H{"email": "", "password": ""},
			svc:        &fakeAuthService{registerErr: service.ErrMissingCredentials},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.svc)
			w := doJSON(t, router, http.MethodPost, "/api/register", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSendCode_Statuses(t *testing.T) {
	router := newTestRouter(t, &fakeAuthService{})
	w := doJSON(t, router, http.MethodPost, "/api/send-code", gin.H{"email": "u@e.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	router = newTestRouter(t, &fakeAuthService{issueErr: service.ErrUserNotFound})
	w = doJSON(t, router, http.MethodPost, "/api/send-code", gin.H{"email": "nobody@e.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// missing email fails request binding
	router = newTestRouter(t, &fakeAuthService{})
	w = doJSON(t, router, http.MethodPost, "/api/send-code", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyCode_Statuses(t *testing.T) {
	router := newTestRouter(t, &fakeAuthService{})
	w := doJSON(t, router, http.MethodPost, "/api/verify-code", gin.H{"email": "u@e.com", "code": "123456"})
	assert.Equal(t, http.StatusOK, w.Code)

	router = newTestRouter(t, &fakeAuthService{verifyErr: service.ErrInvalidCode})
	w = doJSON(t, router, http.MethodPost, "/api/verify-code", gin.H{"email": "u@e.com", "code": "000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	router = newTestRouter(t, &fakeAuthService{verifyErr: service.ErrUserNotFound})
	w = doJSON(t, router, http.MethodPost, "/api/verify-code", gin.H{"email": "nobody@e.com", "code": "123456"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogin_Statuses(t *testing.T) {
	router := newTestRouter(t, &fakeAuthService{loginUser: testUser()})
	w := doJSON(t, router, http.MethodPost, "/api/login", gin.H{"email": "u@e.com", "password": "pw1"})
	assert.Equal(t, http.StatusOK, w.Code)

	router = newTestRouter(t, &fakeAuthService{loginErr: service.ErrInvalidCredentials})
	w = doJSON(t, router, http.MethodPost, "/api/login", gin.H{"email": "u@e.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	router = newTestRouter(t, &fakeAuthService{loginErr: service.ErrUserNotFound})
	w = doJSON(t, router, http.MethodPost, "/api/login", gin.H{"email": "nobody@e.com", "password": "pw"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	router := newTestRouter(t, &fakeAuthService{loginErr: assert.AnError})
	w := doJSON(t, router, http.MethodPost, "/api/login", gin.H{"email": "u@e.com", "password": "pw"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

// --- full stack scenario ---

type recordingNotifier struct {
	lastCode string
}

func (r *recordingNotifier) SendCode(ctx context.Context, email, code string) error {
	r.lastCode = code
	return nil
}

// TestScenario drives the real service and sqlite store through the whole
// lifecycle: register, issue, verify, wrong code, login, wrong password,
// unknown email.
func TestScenario(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))

	mailer := &recordingNotifier{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	auth := service.NewAuthService(repo, mailer, 10*time.Minute, time.Second, logger)
	router := newTestRouter(t, auth)

	w := doJSON(t, router, http.MethodPost, "/api/register", gin.H{"email": "u@e.com", "password": "pw1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/send-code", gin.H{"email": "u@e.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, mailer.lastCode)

	stored, err := repo.GetByEmail(context.Background(), "u@e.com")
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationCode)
	require.NotNil(t, stored.CodeExpiresAt)

	w = doJSON(t, router, http.MethodPost, "/api/verify-code", gin.H{"email": "u@e.com", "code": mailer.lastCode})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/verify-code", gin.H{"email": "u@e.com", "code": "000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/login", gin.H{"email": "u@e.com", "password": "pw1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/login", gin.H{"email": "u@e.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/send-code", gin.H{"email": "nobody@e.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
