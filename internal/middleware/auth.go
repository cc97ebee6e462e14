package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Token errors. Their messages are sent back as problem details.
var (
	ErrMissingToken  = errors.New("missing authorization header")
	ErrMalformedAuth = errors.New("invalid authorization header format")
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// CustomClaims are the profile claims Auth0 adds to Fluxo access tokens.
// The callback needs the email to create the user and its client.
type CustomClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

type contextKey string

const (
	ClaimsKey   contextKey = "claims"
	Auth0IDKey  contextKey = "auth0_id"
	ClientIDKey contextKey = "client_id"
)

const (
	jwksCacheTTL     = 5 * time.Minute
	allowedClockSkew = time.Minute
)

// tokenValidator is satisfied by *validator.Validator
type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthMiddleware checks Auth0 access tokens. The same instance validates the
// bearer header of API calls and the query token of WebSocket upgrades, so
// both share one JWKS cache.
type AuthMiddleware struct {
	validator tokenValidator
}

// NewAuthMiddleware builds an RS256 validator for tokens issued by the Auth0
// tenant at domain for the given audience
func NewAuthMiddleware(domain, audience string) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, jwksCacheTTL)
	v, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims { return &CustomClaims{} }),
		validator.WithAllowedClockSkew(allowedClockSkew),
	)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{validator: v}, nil
}

func (m *AuthMiddleware) claims(ctx context.Context, token string) (*validator.ValidatedClaims, error) {
	raw, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		log.Debug().Err(err).Msg("Token validation failed")
		return nil, ErrInvalidToken
	}
	validated, ok := raw.(*validator.ValidatedClaims)
	if !ok || validated.RegisteredClaims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	return validated, nil
}

// ValidateToken returns the Auth0 subject of a raw token. It lets the
// WebSocket handler authenticate upgrades, where browsers cannot set headers.
func (m *AuthMiddleware) ValidateToken(ctx context.Context, token string) (string, error) {
	validated, err := m.claims(ctx, token)
	if err != nil {
		return "", err
	}
	return validated.RegisteredClaims.Subject, nil
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", ErrMalformedAuth
	}
	return token, nil
}

// Authenticate rejects requests without a valid bearer token and stores the
// validated claims and subject on the request context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return unauthorizedError(c, err.Error())
			}

			validated, err := m.claims(c.Request().Context(), token)
			if err != nil {
				return unauthorizedError(c, err.Error())
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validated)
			ctx = context.WithValue(ctx, Auth0IDKey, validated.RegisteredClaims.Subject)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetAuth0ID returns the authenticated subject, or "" outside Authenticate
func GetAuth0ID(c echo.Context) string {
	id, _ := c.Request().Context().Value(Auth0IDKey).(string)
	return id
}

// GetClaims returns the validated claims, or nil outside Authenticate
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	claims, _ := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims)
	return claims
}

// GetCustomClaims returns the profile claims of the token, if any
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	custom, _ := claims.CustomClaims.(*CustomClaims)
	return custom
}
