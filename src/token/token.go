package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	cfg "placeshare/src/configuration"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims embedded in every issued token. The user id
// travels in the registered Subject claim.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Service issues and verifies the bearer tokens protected routes require.
// Stateless: there is no session store and no revocation mechanism.
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewService(config cfg.AuthProperties) *Service {
	return &Service{
		secret: []byte(config.Secret),
		ttl:    config.TokenTTL,
		issuer: config.Issuer,
	}
}

// Generate signs a token for the given user.
func (s *Service) Generate(userID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the decoded claims.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
