package services

import (
	"context"
	"errors"
	"strings"

	"agrocommunity_backend/internal/auth"
	"agrocommunity_backend/internal/dto"
	"agrocommunity_backend/internal/email"
	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/metrics"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/pkg/apperrors"
)

// =======================
// 1. INTERFACE
// =======================

type AuthService interface {
	// Register validates uniqueness and mails an activation code. Nothing is
	// stored until the code is confirmed.
	Register(ctx context.Context, req *dto.RegisterRequest) (string, error)
	Activate(ctx context.Context, req *dto.ActivateRequest) (*models.User, error)
	// ResendOTP issues a fresh ticket for the same registration. The previous
	// ticket stays valid until it expires.
	ResendOTP(ctx context.Context, activationToken string) (string, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*models.User, *dto.Session, error)
}

// =======================
// 2. IMPLEMENTATION
// =======================

type AuthServiceImpl struct {
	users   repositories.UserRepository
	tokens  *auth.TokenService
	mailer  email.Sender
	metrics *metrics.Metrics
}

func NewAuthService(
	users repositories.UserRepository,
	tokens *auth.TokenService,
	mailer email.Sender,
	m *metrics.Metrics,
) AuthService {
	return &AuthServiceImpl{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		metrics: m,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (string, error) {
	payload := auth.ActivationPayload{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Username: strings.TrimSpace(req.Username),
	}

	if err := s.ensureAvailable(ctx, payload.Email, payload.Username, apperrors.ErrEmailTaken); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	payload.PasswordHash = hash

	return s.issueAndSend(ctx, payload)
}

func (s *AuthServiceImpl) Activate(ctx context.Context, req *dto.ActivateRequest) (*models.User, error) {
	if req.ActivationToken == "" {
		return nil, apperrors.ErrActivationTokenMissing
	}

	payload, err := s.tokens.VerifyActivationTicket(req.ActivationToken, req.ActivationCode)
	if err != nil {
		if errors.Is(err, auth.ErrOTPMismatch) {
			return nil, apperrors.ErrInvalidActivationCode
		}
		return nil, apperrors.ErrInvalidActivationToken
	}

	// The same ticket may be presented twice, or another registration may
	// have won the address in the meantime.
	if err := s.ensureAvailable(ctx, payload.Email, payload.Username, apperrors.ErrUserExists); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         payload.Name,
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: payload.PasswordHash,
		Role:         models.UserRoleFarmer,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrUserExists
		}
		return nil, storeFailure(err, "user")
	}

	logger.CtxInfo(ctx, "User activated", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *AuthServiceImpl) ResendOTP(ctx context.Context, activationToken string) (string, error) {
	if activationToken == "" {
		return "", apperrors.ErrActivationTokenMissing
	}

	payload, err := s.tokens.DecodeActivationTicket(activationToken)
	if err != nil {
		return "", apperrors.ErrInvalidActivationToken
	}

	return s.issueAndSend(ctx, *payload)
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, *dto.Session, error) {
	if req.Email == "" || req.Password == "" {
		return nil, nil, apperrors.NewBadRequestError("Please enter email and password")
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, storeFailure(err, "auth")
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "Login failed: wrong password", "user_id", user.ID)
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "User logged in", "user_id", user.ID)
	return user, session, nil
}

// =======================
// 3. HELPERS
// =======================

func (s *AuthServiceImpl) ensureAvailable(ctx context.Context, email, username string, emailErr error) error {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return storeFailure(err, "user")
	}
	if taken {
		return emailErr
	}

	taken, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return storeFailure(err, "user")
	}
	if taken {
		return apperrors.ErrUsernameTaken
	}
	return nil
}

func (s *AuthServiceImpl) issueAndSend(ctx context.Context, payload auth.ActivationPayload) (string, error) {
	ticket, err := s.tokens.IssueActivationTicket(payload)
	if err != nil {
		return "", apperrors.InternalError(err)
	}

	mail := email.ActivationMail{To: payload.Email, Name: payload.Name, Code: ticket.Code}
	if err := s.mailer.SendActivation(ctx, mail); err != nil {
		logger.CtxWithError(ctx, "Failed to send activation mail", err, "email", payload.Email)
		return "", apperrors.ErrUpstream(err, "mail", "Failed to send activation email")
	}

	s.metrics.RecordActivationSent()
	return ticket.Token, nil
}

func (s *AuthServiceImpl) issueSession(user *models.User) (*dto.Session, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.Session{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
