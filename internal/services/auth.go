package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/surveydesk/backend/internal/config"
	"github.com/surveydesk/backend/internal/models"
	"github.com/surveydesk/backend/internal/utils"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
	directory DirectoryAuthenticator
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{
		db:        db,
		jwtConfig: jwtCfg,
		now:       time.Now,
	}
}

// UseDirectory makes Login fall back to d when the local password check
// fails. Accounts first seen through the directory are created with the user
// role.
func (s *AuthService) UseDirectory(d DirectoryAuthenticator) {
	s.directory = d
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken     string    `json:"token"`
	AccessExpireAt  time.Time `json:"expire_at"`
	RefreshToken    string    `json:"refresh_token"`
	RefreshExpireAt time.Time `json:"refresh_expire_at"`
}

type LoginResult struct {
	TokenPair
	User *models.User `json:"user"`
}

// Login checks email and password and issues an access token plus a
// refresh token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	email := strings.TrimSpace(req.Email)
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !found || !utils.CheckPassword(req.Password, user.Password) {
		if s.directory == nil {
			return nil, ErrInvalidCredentials
		}
		dirUser, err := s.directory.Authenticate(ctx, email, req.Password)
		if err != nil {
			if errors.Is(err, ErrDirectoryRejected) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("directory login: %w", err)
		}
		if !found {
			if err := s.provisionDirectoryUser(ctx, email, dirUser, &user); err != nil {
				return nil, err
			}
		}
	}

	pair, _, err := s.issue(ctx, s.db, &user, clientIP, userAgent)
	if err != nil {
		return nil, err
	}
	return &LoginResult{TokenPair: *pair, User: &user}, nil
}

// Refresh exchanges a live refresh token for a new pair. The presented token
// is revoked and linked to its replacement.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, clientIP, userAgent string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", hashRefreshToken(refreshToken)).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if !stored.Active(s.now()) {
		return nil, ErrInvalidRefreshToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	var pair *TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		issued, replacement, err := s.issue(ctx, tx, &user, clientIP, userAgent)
		if err != nil {
			return err
		}
		pair = issued

		result := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", stored.ID).
			Updates(map[string]interface{}{
				"revoked_at":           s.now(),
				"replaced_by_token_id": replacement.ID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidRefreshToken
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			return nil, err
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	return pair, nil
}

// RevokeRefreshToken marks a refresh token as revoked. Unknown or already
// revoked tokens are ignored.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hashRefreshToken(refreshToken)).
		Update("revoked_at", s.now()).Error
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateAdminIfNotExists creates the configured admin account when no admin
// exists yet. It reports whether an account was created.
func (s *AuthService) CreateAdminIfNotExists(ctx context.Context, admin *config.AdminConfig) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hashedPassword, err := utils.HashPassword(admin.Password)
	if err != nil {
		return false, err
	}
	name := admin.Name
	if name == "" {
		name = "Administrator"
	}
	user := models.User{
		Name:     name,
		Email:    admin.Email,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}

// provisionDirectoryUser stores a local account for a directory login. The
// stored password is a hash of random bytes so only the directory can sign it
// in.
func (s *AuthService) provisionDirectoryUser(ctx context.Context, email string, dirUser *DirectoryUser, user *models.User) error {
	secret, _, err := generateRefreshToken()
	if err != nil {
		return fmt.Errorf("generate placeholder password: %w", err)
	}
	hashed, err := utils.HashPassword(secret)
	if err != nil {
		return fmt.Errorf("hash placeholder password: %w", err)
	}
	name := strings.TrimSpace(dirUser.Name)
	if name == "" {
		name = email
	}
	*user = models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("provision directory user: %w", err)
	}
	return nil
}

// issue signs an access token and stores a new refresh token through tx.
func (s *AuthService) issue(ctx context.Context, tx *gorm.DB, user *models.User, clientIP, userAgent string) (*TokenPair, *models.RefreshToken, error) {
	now := s.now()
	accessHours := s.jwtConfig.ExpireHour
	if accessHours <= 0 {
		accessHours = 24
	}
	refreshHours := s.jwtConfig.RefreshExpireHour
	if refreshHours <= 0 {
		refreshHours = 720
	}

	accessToken, err := utils.GenerateToken(user.ID, user.Email, user.Role, accessHours)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}

	record := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   now.Add(time.Duration(refreshHours) * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:     accessToken,
		AccessExpireAt:  now.Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: record.ExpiresAt,
	}, &record, nil
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
