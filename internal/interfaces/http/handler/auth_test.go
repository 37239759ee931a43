package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appidentity "github.com/quotewire/backend/internal/application/identity"
	"github.com/quotewire/backend/internal/domain/identity"
	"github.com/quotewire/backend/internal/infrastructure/auth"
	"github.com/quotewire/backend/internal/infrastructure/config"
	"github.com/quotewire/backend/internal/interfaces/http/middleware"
)

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
	}
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockProfileRepository is a mock implementation of identity.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]identity.Profile, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *identity.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func setupAuthRouter(handler *AuthHandler, jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Auth routes (no JWT required for signup/login/refresh)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/signup", handler.Signup)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.RefreshToken)
	}

	// Protected auth routes (JWT required)
	protectedGroup := r.Group("/api/v1/auth")
	protectedGroup.Use(middleware.JWTAuthMiddleware(jwtService))
	{
		protectedGroup.GET("/user", handler.GetUser)
		protectedGroup.POST("/logout", handler.Logout)
		protectedGroup.PUT("/profile", handler.UpdateProfile)
	}

	return r
}

func createTestUserForHandler(t *testing.T) (*identity.User, *identity.Profile) {
	t.Helper()
	user, err := identity.NewUser("owner@example.com", "correct-horse-battery")
	require.NoError(t, err)
	profile, err := identity.NewProfile(user.ID, "Reyes Plumbing")
	require.NoError(t, err)
	return user, profile
}

func createAuthServiceForHandler(userRepo *MockUserRepository, profileRepo *MockProfileRepository, jwtService *auth.JWTService) *appidentity.AuthService {
	return appidentity.NewAuthService(userRepo, profileRepo, jwtService, auth.NewInMemoryTokenBlacklist(), zap.NewNop())
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)

	userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	userRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	profileRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, profileRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	reqBody := SignupRequest{
		Email:        "new@example.com",
		Password:     "correct-horse-battery",
		BusinessName: "New Venture LLC",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.NotEmpty(t, token["refresh_token"])
	assert.Equal(t, "Bearer", token["token_type"])

	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", userData["email"])
	assert.Equal(t, "New Venture LLC", userData["business_name"])
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)

	userRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, profileRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	reqBody := SignupRequest{
		Email:        "taken@example.com",
		Password:     "correct-horse-battery",
		BusinessName: "Copycat Inc",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.False(t, response["success"].(bool))
	errInfo := response["error"].(map[string]interface{})
	assert.Equal(t, "ERR_ALREADY_EXISTS", errInfo["code"])
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthHandler_Signup_InvalidRequestBody(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, profileRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)

	user, profile := createTestUserForHandler(t)

	userRepo.On("FindByEmail", mock.Anything, "owner@example.com").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)
	profileRepo.On("FindByUserID", mock.Anything, user.ID).Return(profile, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, profileRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	reqBody := LoginRequest{
		Email:    "owner@example.com",
		Password: "correct-horse-battery",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.Equal(t, "Bearer", token["token_type"])

	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "owner@example.com", userData["email"])
	assert.Equal(t, "Reyes Plumbing", userData["business_name"])
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)

	user, _ := createTestUserForHandler(t)
	userRepo.On("FindByEmail", mock.Anything, "owner@example.com").Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, profileRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	reqBody := LoginRequest{
		Email:    "owner@example.com",
		Password: "not-the-password",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	errInfo := response["error"].(map[string]interface{})
	assert.Equal(t, "ERR_UNAUTHORIZED", errInfo["code"])
}

func TestAuthHandler_GetUser_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)

	user, profile := createTestUserForHandler(t)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	profileRepo.On("FindByUserID", mock.Anything, user.ID).Return(profile, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, profileRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "owner@example.com", data["email"])
	assert.Equal(t, "Reyes Plumbing", data["business_name"])
}

func TestAuthHandler_GetUser_MissingToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, profileRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/user", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)

	user, _ := createTestUserForHandler(t)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, profileRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthHandler_UpdateProfile_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)

	user, profile := createTestUserForHandler(t)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	profileRepo.On("FindByUserID", mock.Anything, user.ID).Return(profile, nil)
	profileRepo.On("Save", mock.Anything, profile).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, profileRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
	})
	require.NoError(t, err)

	reqBody := UpdateProfileRequest{BusinessName: "Reyes Plumbing and Heating"}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/auth/profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Reyes Plumbing and Heating", data["business_name"])
	profileRepo.AssertCalled(t, "Save", mock.Anything, profile)
}
