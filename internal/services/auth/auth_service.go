package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Claims is the access token payload
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthService issues and validates HS256 access tokens. Tokens are also
// tracked in the session store so a logout revokes them before expiry.
type AuthService struct {
	sessions       SessionStore
	jwtSecret      []byte
	accessTokenTTL time.Duration
}

func NewAuthService(sessions SessionStore) *AuthService {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		jwtSecret = []byte("default-secret-key-change-in-production")
	}

	accessTokenTTL := 24 * time.Hour
	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			accessTokenTTL = parsed
		}
	}

	logrus.Infof("Access token TTL: %f hours", accessTokenTTL.Hours())

	return &AuthService{
		sessions:       sessions,
		jwtSecret:      jwtSecret,
		accessTokenTTL: accessTokenTTL,
	}
}

// IssueToken creates a signed access token for the user and registers the
// session.
func (s *AuthService) IssueToken(userID string) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	s.sessions.Put(signed, userID, s.accessTokenTTL)
	return signed, nil
}

// ValidateToken checks signature, expiry and session liveness, returning the
// user id the token was issued for.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return "", errors.New("invalid token claims")
	}

	if _, live := s.sessions.Get(tokenString); !live {
		return "", errors.New("session revoked or expired")
	}
	return claims.UserID, nil
}

// RevokeToken logs the session out
func (s *AuthService) RevokeToken(tokenString string) {
	s.sessions.Delete(tokenString)
}
