package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quotewire/backend/internal/infrastructure/auth"
	"github.com/quotewire/backend/internal/infrastructure/logger"
)

// Context keys under which validated claims are stored for handlers.
const (
	ctxKeyClaims = "jwt_claims"
	ctxKeyUserID = "jwt_user_id"
	ctxKeyEmail  = "jwt_email"
)

// JWTMiddlewareConfig configures the bearer-token authentication middleware.
type JWTMiddlewareConfig struct {
	// JWTService validates access tokens. Required.
	JWTService *auth.JWTService
	// TokenBlacklist, when set, rejects revoked tokens and sessions.
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths lists exact paths that bypass authentication.
	SkipPaths []string
	// SkipPathPrefixes lists path prefixes that bypass authentication.
	SkipPathPrefixes []string
	// OnError replaces the default 401 response when set.
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// skips reports whether the request path is exempt from authentication.
func (cfg *JWTMiddlewareConfig) skips(path string) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// DefaultJWTConfig exempts the signup, login, refresh and public-link
// endpoints, which by nature are reached without a token.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
			"/api/v1/auth/signup",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/api/v1/public",
		},
	}
}

// JWTAuthMiddleware authenticates requests with the default exemption list.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig authenticates requests by validating the
// bearer token, checking it against the blacklist, and planting the
// claims in both the gin context and the request context logger.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.skips(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, err := bearerToken(c)
		if err != nil {
			rejectToken(c, &cfg, auth.ErrInvalidToken, err.Error())
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			rejectToken(c, &cfg, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil && revoked(c, &cfg, claims) {
			return
		}

		c.Set(ctxKeyClaims, claims)
		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyEmail, claims.Email)

		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("email", claims.Email),
			)
		}

		c.Next()
	}
}

// bearerToken pulls the token out of the Authorization header.
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("Missing authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", errors.New("Invalid authorization header format")
	}
	if token == "" {
		return "", errors.New("Missing token")
	}
	return token, nil
}

// revoked checks the token's JTI and the owner's global cutoff against
// the blacklist, aborting the request when either matches. Blacklist
// lookup failures are logged but do not block the request: an
// unreachable Redis must not take down every authenticated endpoint.
func revoked(c *gin.Context, cfg *JWTMiddlewareConfig, claims *auth.Claims) bool {
	ctx := c.Request.Context()

	if claims.ID != "" {
		hit, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
		switch {
		case err != nil:
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.Error(err))
			}
		case hit:
			rejectToken(c, cfg, auth.ErrTokenBlacklisted, "Token has been revoked")
			return true
		}
	}

	if claims.UserID != "" {
		hit, err := cfg.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		switch {
		case err != nil:
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check user token invalidation",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			}
		case hit:
			rejectToken(c, cfg, auth.ErrTokenBlacklisted, "User session has been invalidated")
			return true
		}
	}

	return false
}

// authFailure pairs the wire-level error code with a client-safe message.
type authFailure struct {
	code    string
	message string
}

var authFailures = map[error]authFailure{
	auth.ErrExpiredToken:     {"TOKEN_EXPIRED", "Token has expired"},
	auth.ErrInvalidToken:     {"INVALID_TOKEN", "Invalid token"},
	auth.ErrInvalidTokenType: {"INVALID_TOKEN_TYPE", "Invalid token type"},
	auth.ErrTokenNotYetValid: {"TOKEN_NOT_VALID", "Token is not yet valid"},
	auth.ErrTokenBlacklisted: {"TOKEN_REVOKED", "Token has been revoked"},
}

func rejectToken(c *gin.Context, cfg *JWTMiddlewareConfig, err error, detail string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", detail),
			zap.String("path", c.Request.URL.Path),
		)
	}

	failure := authFailure{"UNAUTHORIZED", "Authentication required"}
	if f, ok := authFailures[err]; ok {
		failure = f
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    failure.code,
			"message": failure.message,
		},
	})
}

// GetJWTClaims returns the validated claims, or nil on unauthenticated routes.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ctxKeyClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated account ID, or "".
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}

// GetJWTEmail returns the authenticated account email, or "".
func GetJWTEmail(c *gin.Context) string {
	return c.GetString(ctxKeyEmail)
}
