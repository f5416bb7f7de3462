package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrRevokedToken = errors.New("token is revoked")
)

const tokenBlacklistPrefix = "auth:token:blacklist:"

func BuildJWTClaims(u User, ttlSeconds int64) Claims {
	now := time.Now()
	rc := jwt.RegisteredClaims{
		Subject:   u.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlSeconds) * time.Second)),
		ID:        uuid.NewString(),
	}
	return Claims{
		UserID:           u.ID,
		Role:             u.Role,
		RegisteredClaims: rc,
	}
}

func SignToken(claims Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken парсит и валидирует JWT токен
func ParseToken(tokenString string, secret []byte) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		// Если UserID не заполнен, но Subject есть, извлекаем UserID из Subject
		if claims.UserID == uuid.Nil && claims.Subject != "" {
			userID, err := uuid.Parse(claims.Subject)
			if err == nil {
				claims.UserID = userID
			}
		}
		return *claims, nil
	}

	return Claims{}, ErrInvalidToken
}

// Verifier проверяет токены входящих запросов: подпись + blacklist в Redis
type Verifier struct {
	secret []byte
	rdb    *redis.Client
}

func NewVerifier(secret []byte, rdb *redis.Client) *Verifier {
	return &Verifier{secret: secret, rdb: rdb}
}

func (v *Verifier) Verify(ctx context.Context, tokenString string) (Claims, error) {
	claims, err := ParseToken(tokenString, v.secret)
	if err != nil {
		return Claims{}, err
	}

	if claims.UserID == uuid.Nil || claims.ID == "" {
		return Claims{}, ErrInvalidToken
	}

	if v.rdb != nil {
		exists, err := v.rdb.Exists(ctx, tokenBlacklistPrefix+claims.ID).Result()
		if err != nil {
			return Claims{}, err
		}
		if exists == 1 {
			return Claims{}, ErrRevokedToken
		}
	}

	return claims, nil
}
