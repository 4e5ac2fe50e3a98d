package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	claimType       = "type"
)

type Service interface {
	GenerateAccessToken(subject string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken issues a token for an API client. The subject names the client in
// request logs.
func (j *JWTService) GenerateAccessToken(subject string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		jwt.SubjectKey:    subject,
		jwt.IssuedAtKey:   time.Now().Unix(),
		jwt.ExpirationKey: expiresAt,
		claimType:         TokenTypeAccess,
	})
	return tokenString, expiresAt, err
}

// IsAccessToken reports whether the verified token in ctx is an access token.
func IsAccessToken(ctx context.Context) bool {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return false
	}
	tokenType, ok := claims[claimType].(string)
	return ok && tokenType == TokenTypeAccess
}

// Subject returns the subject of the verified token in ctx, or "" when there is none.
func Subject(ctx context.Context) string {
	token, _, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return ""
	}
	return token.Subject()
}
