package users

import (
	"context"
	"errors"
	"strings"

	"sponsorhub-backend/internal/constants"
	"sponsorhub-backend/internal/models"
	"sponsorhub-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service holds DB and Redis for user operations. Redis is needed to
// invalidate a user's sessions when their role changes or they are removed.
type Service struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

var (
	ErrEmailRegistered      = errors.New("Email already registered")
	ErrInvalidEmailFormat   = errors.New("Invalid email format")
	ErrInvalidPassword      = errors.New("Invalid password format")
	ErrInvalidFullname      = errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	ErrInvalidRole          = errors.New("Unknown role")
	ErrUserNotFound         = errors.New("User not found")
	ErrCannotModifyOwnRole  = errors.New("Users cannot modify their own role")
	ErrMustKeepOneAdmin     = errors.New("At least one admin account must remain")
)

type CreateUserInput struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Fullname   string  `json:"fullname"`
	Role       string  `json:"role"`
	Department *string `json:"department"`
}

// CreateUser creates an account. Accounts are admin-provisioned; the default
// role is viewer.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if in.Email == "" || !validation.IsValidEmail(in.Email) {
		return nil, ErrInvalidEmailFormat
	}
	if in.Password == "" || !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	trimmed := strings.TrimSpace(in.Fullname)
	if !validation.IsValidFullname(trimmed) {
		return nil, ErrInvalidFullname
	}
	role := in.Role
	if role == "" {
		role = constants.Viewer
	}
	if !constants.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))

	var existing models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Fullname:     trimmed,
		Role:         role,
		Department:   in.Department,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

type UpdateUserInput struct {
	Fullname   *string `json:"fullname"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Department *string `json:"department"`
}

// UpdateUser patches profile fields. Role changes go through UpdateRole only.
func (s *Service) UpdateUser(ctx context.Context, userID uuid.UUID, in UpdateUserInput) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.Email != nil {
		if !validation.IsValidEmail(*in.Email) {
			return nil, ErrInvalidEmailFormat
		}
		u.Email = strings.TrimSpace(strings.ToLower(*in.Email))
	}
	if in.Password != nil {
		if !validation.IsValidPassword(*in.Password) {
			return nil, ErrInvalidPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), 10)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if in.Fullname != nil {
		trimmed := strings.TrimSpace(*in.Fullname)
		if !validation.IsValidFullname(trimmed) {
			return nil, ErrInvalidFullname
		}
		u.Fullname = trimmed
	}
	if in.Department != nil {
		u.Department = in.Department
	}

	if err := s.DB.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateRole changes a user's role and invalidates their active sessions so a
// downgraded account cannot keep acting on a stale session. Guards: actors
// cannot change their own role, and the last admin cannot be downgraded.
func (s *Service) UpdateRole(ctx context.Context, actorUserID string, targetUserID uuid.UUID, newRole string) (*models.User, error) {
	if !constants.ValidRole(newRole) {
		return nil, ErrInvalidRole
	}
	if actorUserID == targetUserID.String() {
		return nil, ErrCannotModifyOwnRole
	}

	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", targetUserID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if u.Role == constants.Admin && newRole != constants.Admin {
		var count int64
		s.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", constants.Admin).Count(&count)
		if count <= 1 {
			return nil, ErrMustKeepOneAdmin
		}
	}

	u.Role = newRole
	if err := s.DB.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, err
	}

	s.invalidateSessions(ctx, targetUserID.String())
	return &u, nil
}

// RemoveUser soft-deletes the account and invalidates its sessions.
func (s *Service) RemoveUser(ctx context.Context, actorUserID string, targetUserID uuid.UUID) error {
	if actorUserID == targetUserID.String() {
		return ErrCannotModifyOwnRole
	}
	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", targetUserID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrUserNotFound
		}
		return err
	}
	if u.Role == constants.Admin {
		var count int64
		s.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", constants.Admin).Count(&count)
		if count <= 1 {
			return ErrMustKeepOneAdmin
		}
	}
	if err := s.DB.WithContext(ctx).Delete(&u).Error; err != nil {
		return err
	}
	s.invalidateSessions(ctx, targetUserID.String())
	return nil
}

func (s *Service) invalidateSessions(ctx context.Context, userID string) {
	if s.Rdb == nil {
		return
	}
	key := "user_sessions:" + userID
	ids, err := s.Rdb.SMembers(ctx, key).Result()
	if err != nil {
		return
	}
	for _, id := range ids {
		_ = s.Rdb.Del(ctx, "session:"+id).Err()
	}
	_ = s.Rdb.Del(ctx, key).Err()
}
