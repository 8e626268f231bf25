package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sun1tar/todo-backend/services/todo/internal/apperr"
)

// DefaultTokenTTL срок жизни токена
const DefaultTokenTTL = 24 * time.Hour

// Claims полезная нагрузка токена
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService выпускает и проверяет подписанные HS256 токены.
// Токены нигде не хранятся и не отзываются.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock подменяет часы (для тестов)
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Issue выпускает токен для пользователя, истекающий через ttl
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify проверяет подпись, алгоритм и срок действия и возвращает id пользователя
func (s *TokenService) Verify(token string) (int64, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperr.Wrap(apperr.Unauthorized, "Expired token", err)
		}
		return 0, apperr.Wrap(apperr.Unauthorized, "Invalid token", err)
	}
	if claims.UserID <= 0 {
		return 0, apperr.New(apperr.Unauthorized, "Invalid token")
	}
	return claims.UserID, nil
}
