package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/identity"
	"github.com/quotewire/backend/internal/domain/shared"
	"github.com/quotewire/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles account registration, authentication and profile management
type AuthService struct {
	userRepo       identity.UserRepository
	profileRepo    identity.ProfileRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	profileRepo identity.ProfileRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		jwtService:  jwtService,
		blacklist:   blacklist,
		logger:      logger,
	}
}

// SetEventPublisher sets the publisher used to dispatch account events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Signup registers a new account with its business profile and logs it in
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	s.logger.Info("Signup attempt", zap.String("email", input.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		s.logger.Error("Failed to check email availability", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register account")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	user, err := identity.NewUser(input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	profile, err := identity.NewProfile(user.ID, input.BusinessName)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register account")
	}
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		s.logger.Error("Failed to save profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register account")
	}

	if s.eventPublisher != nil {
		for _, event := range user.GetDomainEvents() {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Error("Failed to publish domain event",
					zap.String("event_type", event.EventType()),
					zap.Error(err))
			}
		}
	}
	user.ClearDomainEvents()

	s.logger.Info("Account registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return s.issueTokens(user, profile)
}

// Login authenticates an account and returns tokens.
// Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	s.logger.Info("Login attempt", zap.String("email", input.Email))

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("email", input.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !user.IsActive() {
		s.logger.Warn("Login attempt for deactivated account", zap.String("email", input.Email))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("email", input.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	profile, err := s.profileRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load account profile")
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Don't fail the login, the token is already earned
		s.logger.Error("Failed to record login time", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return s.issueTokens(user, profile)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		default:
			return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid refresh token")
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid refresh token")
	}

	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, userID.String(), claims.GetIssuedAtTime())
	if err != nil {
		s.logger.Error("Failed to check token invalidation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to refresh token")
	}
	if invalidated {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Token has been revoked")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Account no longer exists")
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	profile, err := s.profileRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to refresh token")
	}

	return s.issueTokens(user, profile)
}

// GetUser returns the authenticated account with its business profile
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Account not found")
		}
		return nil, err
	}

	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load account profile")
	}

	info := newUserInfo(user, profile)
	return &info, nil
}

// Logout revokes the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}

	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// UpdateProfile renames the business on the owner's profile
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Account not found")
		}
		return nil, err
	}

	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load account profile")
	}

	if err := profile.Rename(input.BusinessName); err != nil {
		return nil, err
	}

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		s.logger.Error("Failed to save profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update profile")
	}

	s.logger.Info("Profile updated",
		zap.String("user_id", userID.String()),
		zap.String("business_name", profile.BusinessName))

	info := newUserInfo(user, profile)
	return &info, nil
}

// issueTokens generates a token pair and assembles the auth result
func (s *AuthService) issueTokens(user *identity.User, profile *identity.Profile) (*AuthResult, error) {
	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	return &AuthResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  newUserInfo(user, profile),
	}, nil
}

func newUserInfo(user *identity.User, profile *identity.Profile) UserInfo {
	return UserInfo{
		ID:           user.ID,
		Email:        user.Email,
		BusinessName: profile.BusinessName,
		CreatedAt:    user.CreatedAt,
	}
}
