package services

import (
	"context"
	"log"

	"github.com/pquerna/otp/totp"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/repositories"
)

// TOTPService manages authenticator-app enrolment. Enrolment is two-step:
// Setup stores a secret in a disabled state, Enable turns it on once the
// user proves they can produce a valid code.
type TOTPService struct {
	users  *repositories.UserRepository
	issuer string
}

func NewTOTPService(users *repositories.UserRepository, issuer string) *TOTPService {
	if issuer == "" {
		issuer = "RentShop"
	}
	return &TOTPService{users: users, issuer: issuer}
}

type TOTPSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"url"` // otpauth:// URL for QR rendering
}

func (s *TOTPService) Setup(ctx context.Context, userID int) (*TOTPSetup, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPEnabled {
		return nil, apperrors.Validation("2fa is already enabled for this account")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, apperrors.Persistence("totp key generation failed", err)
	}

	if err := s.users.SetTOTPSecret(ctx, userID, key.Secret(), false); err != nil {
		return nil, err
	}
	return &TOTPSetup{Secret: key.Secret(), URL: key.URL()}, nil
}

func (s *TOTPService) Enable(ctx context.Context, userID int, code string) error {
	secret, err := s.users.GetTOTPSecret(ctx, userID)
	if err != nil {
		return err
	}
	if secret == "" {
		return apperrors.Validation("run 2fa setup first")
	}
	if !totp.Validate(code, secret) {
		return apperrors.Validation("invalid 2fa code")
	}
	if err := s.users.SetTOTPSecret(ctx, userID, secret, true); err != nil {
		return err
	}
	log.Printf("[Auth] 2fa enabled for user %d", userID)
	return nil
}

func (s *TOTPService) Disable(ctx context.Context, userID int, code string) error {
	secret, err := s.users.GetTOTPSecret(ctx, userID)
	if err != nil {
		return err
	}
	if secret == "" || !totp.Validate(code, secret) {
		return apperrors.Validation("invalid 2fa code")
	}
	if err := s.users.SetTOTPSecret(ctx, userID, "", false); err != nil {
		return err
	}
	log.Printf("[Auth] 2fa disabled for user %d", userID)
	return nil
}
