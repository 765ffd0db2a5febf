package services

import (
	"database/sql"
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"barpos_backend/internal/models"
	"barpos_backend/internal/repositories"
	"barpos_backend/pkg/utils"
)

// Custom Errors
var (
	ErrInvalidCredentials = errors.New("invalid name or PIN")
	ErrInvalidPIN         = errors.New("PIN must be 4 to 8 digits")
	ErrUserExists         = errors.New("a staff member with this name already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// --- Data Transfer Objects (DTOs) ---

type RegisterStaffRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	PIN   string `json:"pin" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Name string `json:"name" binding:"required"`
	PIN  string `json:"pin" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// --- AuthService Interface ---

type AuthService interface {
	RegisterStaff(req RegisterStaffRequest) (*models.User, error)
	Login(req LoginRequest) (*LoginResponse, error)
	Refresh(refreshToken string) (*LoginResponse, error)
	GetActiveStaff() ([]models.User, error)
	DeactivateStaff(userID int64) error
}

// --- authService Implementation ---

type authService struct {
	userRepo repositories.UserRepository
	db       *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(ur repositories.UserRepository, db *sql.DB) AuthService {
	return &authService{userRepo: ur, db: db}
}

func (s *authService) RegisterStaff(req RegisterStaffRequest) (*models.User, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name must not be blank", ErrValidation)
	}
	if !validPIN(req.PIN) {
		return nil, ErrInvalidPIN
	}
	if req.Email != "" && !utils.IsValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	role := req.Role
	switch role {
	case models.RoleServer, models.RoleBartender, models.RoleManager,
		models.RoleAssistantManager, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role '%s'", ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	user := &models.User{
		Name:      req.Name,
		Email:     req.Email,
		Role:      role,
		IsManager: role == models.RoleManager || role == models.RoleAssistantManager || role == models.RoleAdmin,
		IsActive:  true,
	}
	if _, err := s.userRepo.CreateUser(s.db, user, string(hash)); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return user, nil
}

func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindUserByName(req.Name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(req.PIN)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user.PinHash = ""

	return s.issueTokens(user)
}

func (s *authService) Refresh(refreshToken string) (*LoginResponse, error) {
	claims, err := utils.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if claims.Issuer != utils.RefreshTokenIssuer {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *authService) GetActiveStaff() ([]models.User, error) {
	return s.userRepo.GetActiveUsers()
}

func (s *authService) DeactivateStaff(userID int64) error {
	err := s.userRepo.DeactivateUser(s.db, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *authService) issueTokens(user *models.User) (*LoginResponse, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
