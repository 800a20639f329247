package utils

import (
	"chat-service/config"

	"github.com/golang-jwt/jwt/v5"
)

// TokenMetadata struct to describe metadata in JWT. Tokens are issued
// by the external identity provider; this service only verifies them.
type TokenMetadata struct {
	Subject string
	Exp     int64
}

func CheckAndExtractTokenMetadata(token string, key string) (*TokenMetadata, error) {
	t, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Config(key)), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := t.Claims.(jwt.MapClaims); ok && t.Valid {
		return &TokenMetadata{
			Subject: claims["sub"].(string),
			Exp:     int64(claims["exp"].(float64)),
		}, nil
	}

	return nil, err
}
