package services

import (
	"context"
	"errors"

	"github.com/brightpools/charity-draw-backend/internal/config"
	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/internal/repositories"
	"github.com/brightpools/charity-draw-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// ErrInvalidCredentials is returned for any failed login, whether the email
// is unknown or the password is wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthServiceImpl authenticates admin users.
type AuthServiceImpl struct {
	adminRepo repositories.AdminUserRepository
	cfg       *config.Config
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(adminRepo repositories.AdminUserRepository, cfg *config.Config) *AuthServiceImpl {
	return &AuthServiceImpl{adminRepo: adminRepo, cfg: cfg}
}

// Login verifies the admin credentials and returns a signed session token.
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		slog.Warn("Login attempt for unknown email", "email", req.Email)
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		slog.Warn("Login attempt with wrong password", "email", req.Email)
		return "", ErrInvalidCredentials
	}
	token, err := utils.GenerateJWT(admin, s.cfg)
	if err != nil {
		return "", err
	}
	slog.Info("Admin logged in", "email", admin.Email, "role", admin.Role)
	return token, nil
}
