package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"edulab-backend-go/internal/models"
)

const TokenTTL = 24 * time.Hour

var (
	ErrNoSecret       = errors.New("jwt signing secret is not configured")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("invalid token")
)

// TokenClaims is the verified payload of a session token. The embedded role
// is what the user had at issue time; the authorization guard re-checks the
// current role against the store.
type TokenClaims struct {
	UserID int64
	Role   string
}

// TokenService issues and verifies stateless HS256 session tokens.
// Verification never touches the data store.
type TokenService struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time // mockable
}

func NewTokenService(secret, issuer string) (TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return TokenService{}, ErrNoSecret
	}
	return TokenService{
		Secret: []byte(secret),
		Issuer: issuer,
		TTL:    TokenTTL,
		Now:    time.Now,
	}, nil
}

func (t TokenService) Issue(usr models.User) (string, error) {
	if len(t.Secret) == 0 {
		return "", ErrNoSecret
	}
	now := t.Now().UTC()
	claims := jwt.MapClaims{
		"iss":     t.Issuer,
		"user_id": usr.ID,
		"role":    usr.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(t.TTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

func (t TokenService) Verify(raw string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(t.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrTokenExpired
		}
		return TokenClaims{}, ErrTokenMalformed
	}
	if !token.Valid {
		return TokenClaims{}, ErrTokenMalformed
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return TokenClaims{}, ErrTokenMalformed
	}
	role, ok := claims["role"].(string)
	if !ok {
		return TokenClaims{}, ErrTokenMalformed
	}
	return TokenClaims{UserID: int64(userID), Role: role}, nil
}
