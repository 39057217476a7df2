package session

import (
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/infra"
)

// TokenDecoder читает claims из JWT бэкенда.
// Без ключа подпись не проверяется: ключа у фронтенда обычно нет.
// Срок жизни проверяет Store по своим часам.
type TokenDecoder struct {
	publicKey  *rsa.PublicKey
	hmacSecret []byte
}

func NewTokenDecoder(cfg infra.AuthConfig) (*TokenDecoder, error) {
	d := &TokenDecoder{}
	if len(cfg.VerifyKey) > 0 {
		key, err := ParseRSAPublicKey(cfg.VerifyKey)
		if err != nil {
			return nil, err
		}
		d.publicKey = key
	}
	if cfg.HMACSecret != "" {
		d.hmacSecret = []byte(cfg.HMACSecret)
	}
	return d, nil
}

// Verifying — проверяется ли подпись
func (d *TokenDecoder) Verifying() bool {
	return d.publicKey != nil || len(d.hmacSecret) > 0
}

func (d *TokenDecoder) Decode(tokenStr string) (*domain.CustomClaims, error) {
	tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, fmt.Errorf("empty token")
	}

	claims := &domain.CustomClaims{}
	if !d.Verifying() {
		if _, _, err := jwt.NewParser(jwt.WithoutClaimsValidation()).ParseUnverified(tokenStr, claims); err != nil {
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, d.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

func (d *TokenDecoder) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodRSA:
		if d.publicKey != nil {
			return d.publicKey, nil
		}
	case *jwt.SigningMethodHMAC:
		if len(d.hmacSecret) > 0 {
			return d.hmacSecret, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}

// ParseRSAPublicKey превращает []byte в объект для проверки подписи
func ParseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("public key data is empty")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return key, nil
}
