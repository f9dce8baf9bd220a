package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
	ErrOTPMismatch  = errors.New("activation code does not match")
)

const (
	audienceActivation = "activation"
	audienceAccess     = "access"
	audienceRefresh    = "refresh"
)

// TokenConfig carries the three signing secrets and their lifetimes.
type TokenConfig struct {
	ActivationSecret string
	AccessSecret     string
	RefreshSecret    string
	ActivationTTL    time.Duration
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
}

// DefaultTTLs fills zero lifetimes with 5m / 15m / 7d.
func (c TokenConfig) DefaultTTLs() TokenConfig {
	if c.ActivationTTL <= 0 {
		c.ActivationTTL = 5 * time.Minute
	}
	if c.AccessTTL <= 0 {
		c.AccessTTL = 15 * time.Minute
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = 7 * 24 * time.Hour
	}
	return c
}

// ActivationPayload is the pending registration carried inside a ticket.
// The password is hashed before it goes into the token.
type ActivationPayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
}

type activationClaims struct {
	User           ActivationPayload `json:"user"`
	ActivationCode string            `json:"activationCode"`
	jwt.RegisteredClaims
}

// AccessClaims identify the user and carry the role for authorization.
type AccessClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// ActivationTicket is what IssueActivationTicket hands back: the token goes
// to the caller, the code goes out by mail.
type ActivationTicket struct {
	Token string
	Code  string
}

type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, for expiry tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.ActivationSecret == "" || cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	s := &TokenService{cfg: cfg.DefaultTTLs(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ============================================
// Activation tickets
// ============================================

func (s *TokenService) IssueActivationTicket(payload ActivationPayload) (*ActivationTicket, error) {
	code, err := GenerateOTP()
	if err != nil {
		return nil, err
	}

	claims := activationClaims{
		User:             payload,
		ActivationCode:   code,
		RegisteredClaims: s.registered(audienceActivation, "", s.cfg.ActivationTTL),
	}
	token, err := s.sign(claims, s.cfg.ActivationSecret)
	if err != nil {
		return nil, err
	}
	return &ActivationTicket{Token: token, Code: code}, nil
}

// VerifyActivationTicket checks the token and the supplied code. Uniqueness of
// the payload is the caller's job.
func (s *TokenService) VerifyActivationTicket(token, code string) (*ActivationPayload, error) {
	claims, err := s.parseActivation(token)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(claims.ActivationCode), []byte(code)) != 1 {
		return nil, ErrOTPMismatch
	}
	return &claims.User, nil
}

// DecodeActivationTicket returns the payload of a still-valid ticket without
// checking a code. Used to reissue a ticket.
func (s *TokenService) DecodeActivationTicket(token string) (*ActivationPayload, error) {
	claims, err := s.parseActivation(token)
	if err != nil {
		return nil, err
	}
	return &claims.User, nil
}

func (s *TokenService) parseActivation(token string) (*activationClaims, error) {
	claims := &activationClaims{}
	if err := s.parse(token, claims, s.cfg.ActivationSecret, audienceActivation); err != nil {
		// an expired ticket is as useless as a forged one
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ============================================
// Session tokens
// ============================================

func (s *TokenService) IssueAccessToken(userID, role string) (string, error) {
	claims := AccessClaims{
		UserID:           userID,
		Role:             role,
		RegisteredClaims: s.registered(audienceAccess, userID, s.cfg.AccessTTL),
	}
	return s.sign(claims, s.cfg.AccessSecret)
}

func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	claims := refreshClaims{
		UserID:           userID,
		RegisteredClaims: s.registered(audienceRefresh, userID, s.cfg.RefreshTTL),
	}
	return s.sign(claims, s.cfg.RefreshSecret)
}

// ParseAccessToken returns ErrTokenExpired for a correctly signed token past
// its expiry and ErrTokenInvalid for anything else that fails.
func (s *TokenService) ParseAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, s.cfg.AccessSecret, audienceAccess); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseRefreshToken returns the user id carried by a valid refresh token.
func (s *TokenService) ParseRefreshToken(token string) (string, error) {
	claims := &refreshClaims{}
	if err := s.parse(token, claims, s.cfg.RefreshSecret, audienceRefresh); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}

// AccessTTL is exposed for cookie max-age.
func (s *TokenService) AccessTTL() time.Duration { return s.cfg.AccessTTL }

func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// ============================================
// helpers
// ============================================

func (s *TokenService) registered(audience, subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) sign(claims jwt.Claims, secret string) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret, audience string) error {
	if token == "" {
		return ErrTokenInvalid
	}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		// jwt/v5 checks the signature before the claims, so an expired
		// error means the token itself is genuine.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	return nil
}
