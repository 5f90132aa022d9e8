package auth

import (
	"context"
	"errors"
	"time"

	"github.com/owobank/owobank/internal/config"
	"github.com/owobank/owobank/internal/identity"
)

type Service struct {
	cfg    config.Config
	idRepo identity.Repository
}

func NewService(cfg config.Config, idRepo identity.Repository) *Service {
	return &Service{cfg: cfg, idRepo: idRepo}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues an access and refresh token pair for an already
// authenticated holder.
func (s *Service) Login(user identity.User) (TokenPair, error) {
	access, accessExp, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

func (s *Service) sign(user identity.User, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := map[string]any{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Refresh verifies the refresh token and returns a new access token if valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", 0, errors.New("invalid refresh token")
	}
	if expired(claims) {
		return "", 0, errors.New("refresh token expired")
	}
	sub, _ := claims["sub"].(string)

	user, err := s.idRepo.FindByID(ctx, sub)
	if err != nil {
		return "", 0, errors.New("user not found")
	}

	now := time.Now()
	accessClaims := map[string]any{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.AccessTokenTTL).Unix(),
	}
	signed, err := SignHS256(accessClaims, []byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

func expired(claims map[string]any) bool {
	exp, ok := claims["exp"].(float64)
	if !ok {
		return true
	}
	return time.Now().Unix() >= int64(exp)
}
