package services

import (
	"context"
	"errors"
	"strings"

	"agrocommunity_backend/internal/auth"
	"agrocommunity_backend/internal/dto"
	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/pkg/apperrors"
)

type UserService interface {
	// Profile returns the user with the ids of followers, followings, own
	// posts and bookmarks.
	Profile(ctx context.Context, userID string) (*dto.UserProfile, error)
	UpdatePassword(ctx context.Context, userID string, req *dto.UpdatePasswordRequest) error
	UpdateInfo(ctx context.Context, userID string, req *dto.UpdateInfoRequest) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, req *dto.UpdateRoleRequest) (*models.User, error)
	// ToggleFollow reports whether followerID follows targetID afterwards.
	ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error)
}

type UserServiceImpl struct {
	users      repositories.UserRepository
	posts      repositories.PostRepository
	dispatcher *Dispatcher
}

func NewUserService(users repositories.UserRepository, posts repositories.PostRepository, dispatcher *Dispatcher) UserService {
	return &UserServiceImpl{
		users:      users,
		posts:      posts,
		dispatcher: dispatcher,
	}
}

func (s *UserServiceImpl) Profile(ctx context.Context, userID string) (*dto.UserProfile, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &dto.UserProfile{User: user}
	if profile.Followers, err = s.users.FollowerIDs(ctx, userID); err != nil {
		return nil, storeFailure(err, "user")
	}
	if profile.Following, err = s.users.FollowingIDs(ctx, userID); err != nil {
		return nil, storeFailure(err, "user")
	}
	if profile.Posts, err = s.posts.IDsByAuthor(ctx, userID); err != nil {
		return nil, storeFailure(err, "post")
	}
	if profile.Bookmarks, err = s.users.BookmarkIDs(ctx, userID); err != nil {
		return nil, storeFailure(err, "user")
	}
	profile.Followers = orEmpty(profile.Followers)
	profile.Following = orEmpty(profile.Following)
	profile.Posts = orEmpty(profile.Posts)
	profile.Bookmarks = orEmpty(profile.Bookmarks)
	return profile, nil
}

func (s *UserServiceImpl) UpdatePassword(ctx context.Context, userID string, req *dto.UpdatePasswordRequest) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return apperrors.ErrInvalidOldPassword
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	user.PasswordHash = hash

	if err := s.users.Update(ctx, user); err != nil {
		return storeFailure(err, "user")
	}
	logger.CtxInfo(ctx, "Password updated", "user_id", userID)
	return nil
}

func (s *UserServiceImpl) UpdateInfo(ctx context.Context, userID string, req *dto.UpdateInfoRequest) (*models.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeFailure(err, "user")
	}
	return user, nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, storeFailure(err, "user")
	}
	return users, nil
}

func (s *UserServiceImpl) UpdateRole(ctx context.Context, req *dto.UpdateRoleRequest) (*models.User, error) {
	role := models.UserRole(req.Role)
	if !role.IsValid() {
		return nil, apperrors.NewBadRequestError("Invalid role: " + req.Role)
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storeFailure(err, "user")
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeFailure(err, "user")
	}
	logger.CtxInfo(ctx, "User role updated", "user_id", user.ID, "role", role)
	return user, nil
}

func (s *UserServiceImpl) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	if followerID == targetID {
		return false, apperrors.ErrCannotFollow
	}

	follower, err := s.findUser(ctx, followerID)
	if err != nil {
		return false, err
	}
	if _, err := s.findUser(ctx, targetID); err != nil {
		return false, err
	}

	following, err := s.users.ToggleFollow(ctx, followerID, targetID)
	if err != nil {
		return false, storeFailure(err, "user")
	}

	if following {
		s.dispatcher.Notify(ctx, targetID, models.Notification{
			Type:        models.NotificationFollow,
			UserID:      followerID,
			UserDetails: follower.Public(),
			Message:     "Started following you",
		})
	}
	return following, nil
}

func (s *UserServiceImpl) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storeFailure(err, "user")
	}
	return user, nil
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
