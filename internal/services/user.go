package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/surveydesk/backend/internal/models"
	"github.com/surveydesk/backend/internal/utils"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest replaces an account's profile. An empty password keeps
// the current credential.
type UpdateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Password string `json:"password"`
}

// List returns every account ordered by id.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	name, email := strings.TrimSpace(req.Name), strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Role == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if !models.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Role:     req.Role,
		Password: hashed,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id uint, req *UpdateUserRequest) (*models.User, error) {
	name, email := strings.TrimSpace(req.Name), strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Role == "" {
		return nil, ErrMissingFields
	}
	if !models.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":  name,
		"email": email,
		"role":  req.Role,
	}
	if req.Password != "" {
		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password"] = hashed
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes an account and its refresh tokens. actorID is the caller;
// an admin cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, id, actorID uint) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return fmt.Errorf("delete refresh tokens of user %d: %w", id, err)
		}
		return nil
	})
}

// ensureEmailFree fails with ErrEmailTaken when another account (not
// exceptID) already uses email.
func (s *UserService) ensureEmailFree(ctx context.Context, email string, exceptID uint) error {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return nil
}
