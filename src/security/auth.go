package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionService issues short-lived tokens that bind a userId to an unlocked
// local session. Tokens never leave the loopback interface.
type SessionService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewSessionService(secret []byte, expiry time.Duration) *SessionService {
	return &SessionService{
		secret: secret,
		expiry: expiry,
		now:    time.Now,
	}
}

func (a *SessionService) IssueToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken returns the userId carried by a valid, unexpired token.
func (a *SessionService) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("invalid token: 'sub' claim missing")
	}
	return claims.Subject, nil
}
