package service

import (
	"encoding/json"
	"errors"

	"sewago/config"
	"sewago/internal/auth"
	"sewago/internal/domain"
	"sewago/internal/models"
	"sewago/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
)

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Role     string `json:"user_type"` // customer | provider

	// Provider-only profile fields.
	Skills          []string `json:"skills"`
	HourlyRate      float64  `json:"hourly_rate"`
	ExperienceYears int      `json:"experience_years"`
	Description     string   `json:"description"`
}

func (s *AuthService) Register(req RegisterRequest) (*models.User, string, string, error) {
	if req.Role != domain.RoleProvider {
		req.Role = domain.RoleCustomer
	}
	_, err := s.userRepo.GetByEmail(req.Email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	_, err = s.userRepo.GetByUsername(req.Username)
	if err == nil {
		return nil, "", "", ErrUsernameExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Location:     req.Location,
		Role:         req.Role,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	if u.Role == domain.RoleProvider {
		skills, _ := json.Marshal(req.Skills)
		profile := &models.ProviderProfile{
			UserID:          u.ID,
			Skills:          string(skills),
			HourlyRate:      req.HourlyRate,
			ExperienceYears: req.ExperienceYears,
			Description:     req.Description,
		}
		if err := s.userRepo.CreateProviderProfile(profile); err != nil {
			return nil, "", "", err
		}
		u.ProviderProfile = profile
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, nil
}
