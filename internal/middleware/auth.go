package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/JonnyWalker81/fittrack/backend/internal/apierror"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

// AuthUser is the identity resolved from a bearer token
type AuthUser struct {
	ID    string
	Email string
}

// TokenVerifier resolves a bearer token to the user it was issued for
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*AuthUser, error)
}

// SupabaseVerifier asks the Supabase Auth API who owns the token
type SupabaseVerifier struct {
	client *supabase.Client
}

// NewSupabaseVerifier creates a verifier backed by the Supabase Auth API
func NewSupabaseVerifier(client *supabase.Client) *SupabaseVerifier {
	return &SupabaseVerifier{client: client}
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (*AuthUser, error) {
	user, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &AuthUser{ID: user.ID, Email: user.Email}, nil
}

// accessClaims are the claims Supabase puts in its HS256 access tokens
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 access tokens locally against the project's JWT secret
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier creates a local verifier. Tokens must be HS256 and unexpired.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*AuthUser, error) {
	var claims accessClaims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("invalid token: missing subject")
	}
	return &AuthUser{ID: sub, Email: claims.Email}, nil
}

// bearerToken extracts the token from "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Auth middleware to verify bearer tokens
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Ctx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("authentication failed: missing authorization header")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			log.Debug("authentication failed: invalid authorization format")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			c.Abort()
			return
		}

		user, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Warn("authentication failed: token verification error", logger.Err(err))
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_email", user.Email)

		// the token rides along so PostgREST queries run under the user's RLS policies
		ctx := logger.WithUserID(c.Request.Context(), user.ID)
		ctx = repository.WithUserToken(ctx, token)
		c.Request = c.Request.WithContext(ctx)

		log.Debug("authentication successful", logger.String("user_id", user.ID))

		c.Next()
	}
}
