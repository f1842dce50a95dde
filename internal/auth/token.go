package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/justinabrahms/chessai/internal/chess"
)

const issuer = "chessai"

var ErrInvalidToken = errors.New("invalid player token")

// PlayerClaims binds a token to one side of one game.
type PlayerClaims struct {
	GameID string `json:"gid"`
	Color  string `json:"color"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 player tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token allowing its holder to move color in gameID.
func (m *TokenManager) Issue(gameID string, color chess.Color) (string, error) {
	now := m.now()
	claims := PlayerClaims{
		GameID: gameID,
		Color:  color.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   gameID + "/" + color.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify checks the signature and expiry and returns the game and color the
// token grants.
func (m *TokenManager) Verify(tokenString string) (string, chess.Color, error) {
	var claims PlayerClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", chess.NoColor, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	color, err := chess.ParseColor(claims.Color)
	if err != nil {
		return "", chess.NoColor, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.GameID, color, nil
}
