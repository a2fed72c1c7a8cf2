package services

import (
	"context"
	"log"
	"strings"

	"github.com/pquerna/otp/totp"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/auth"
	"rentshop-backend/internal/cache"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/repositories"
)

type UserService struct {
	users *repositories.UserRepository
	jwt   *auth.JWTManager
}

func NewUserService(users *repositories.UserRepository, jwt *auth.JWTManager) *UserService {
	return &UserService{users: users, jwt: jwt}
}

func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validation("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}
	switch req.Role {
	case models.RoleSuperAdmin, models.RoleBranchAdmin, models.RoleStaff:
	default:
		return nil, apperrors.Validation("unknown role %q", req.Role)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Persistence("password hashing failed", err)
	}

	u := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		BranchID:     req.BranchID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Printf("[Auth] user %s registered (id=%d, role=%s)", u.Email, u.ID, u.Role)
	return u, nil
}

// Login checks credentials and issues a JWT. For users with 2FA enabled the
// returned response carries a short-lived pending token instead; the caller
// must follow up with VerifyTOTP.
//
// Verified credentials are cached briefly so repeat logins skip the bcrypt
// comparison.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, "", apperrors.Validation("invalid email or password")
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", apperrors.Validation("account is suspended")
	}

	if _, ok := cache.GetCachedAuth(ctx, email, req.Password); !ok {
		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			return nil, "", apperrors.Validation("invalid email or password")
		}
		cache.CacheAuth(ctx, email, req.Password, user.ID)
	}

	if user.TOTPEnabled {
		tempToken, err := s.jwt.GenerateTempToken(user)
		if err != nil {
			return nil, "", apperrors.Persistence("temp token generation failed", err)
		}
		return nil, tempToken, nil
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, "", apperrors.Persistence("token generation failed", err)
	}
	log.Printf("[Auth] user %s logged in", user.Email)
	return &models.LoginResponse{Token: token, User: user}, "", nil
}

// VerifyTOTP is login step two for 2FA users: exchange the pending token and
// a valid authenticator code for a full session token.
func (s *UserService) VerifyTOTP(ctx context.Context, tempToken, code string) (*models.LoginResponse, error) {
	claims, err := s.jwt.ValidateTempToken(tempToken)
	if err != nil {
		return nil, apperrors.Validation("invalid or expired 2fa token")
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	secret, err := s.users.GetTOTPSecret(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if secret == "" || !totp.Validate(code, secret) {
		return nil, apperrors.Validation("invalid 2fa code")
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Persistence("token generation failed", err)
	}
	log.Printf("[Auth] user %s completed 2fa login", user.Email)
	return &models.LoginResponse{Token: token, User: user}, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.users.Get(ctx, id)
}

func (s *UserService) ListByBranch(ctx context.Context, branchID int) ([]*models.User, error) {
	return s.users.ListByBranch(ctx, branchID)
}

func (s *UserService) SetActive(ctx context.Context, id int, active bool) error {
	return s.users.SetActive(ctx, id, active)
}

// UpdateInvoiceSettings stores the GST and UPI details printed on invoices.
func (s *UserService) UpdateInvoiceSettings(ctx context.Context, id int, gstin string, gstIncluded bool, upiID string) error {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	return s.users.UpdateInvoiceSettings(ctx, id, gstin, gstIncluded, upiID)
}
