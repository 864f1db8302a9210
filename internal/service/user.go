package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"gorm.io/gorm"

	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/repo"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	pkg_hash "github.com/Skotchmaster/wine_shop/pkg/hash"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

// NormalizePhone parses an international number and formats it as E.164.
func NormalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), "")
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("not a valid number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (s *UserService) UpdateMe(ctx context.Context, userID uint, req transport.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]any{}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, fieldError("email", "This field may not be blank.")
		}
		updates["email"] = email
	}
	if req.FirstName != nil {
		v := strings.TrimSpace(*req.FirstName)
		if v == "" {
			return nil, fieldError("first_name", "This field may not be blank.")
		}
		updates["first_name"] = v
	}
	if req.LastName != nil {
		v := strings.TrimSpace(*req.LastName)
		if v == "" {
			return nil, fieldError("last_name", "This field may not be blank.")
		}
		updates["last_name"] = v
	}
	if req.PhoneNumber != nil {
		if strings.TrimSpace(*req.PhoneNumber) == "" {
			updates["phone_number"] = nil
		} else {
			phone, err := NormalizePhone(*req.PhoneNumber)
			if err != nil {
				return nil, &FieldError{Field: "phone_number", Msg: "The phone number entered is not valid.", Err: err}
			}
			updates["phone_number"] = phone
		}
	}
	if req.Gender != nil {
		if !slices.Contains(models.Genders, *req.Gender) {
			return nil, fieldError("gender", "%q is not a valid choice.", *req.Gender)
		}
		updates["gender"] = *req.Gender
	}
	if req.Birthday != nil {
		if req.Birthday.After(time.Now()) {
			return nil, fieldError("birthday", "Birthday cannot be in the future.")
		}
		updates["birthday"] = *req.Birthday
	}

	if err := s.Repo.UpdateUser(ctx, userID, updates); err != nil {
		switch {
		case repo.IsUniqueViolation(err):
			return nil, fieldError("email", "user with this email already exists.")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		default:
			return nil, err
		}
	}
	return s.Me(ctx, userID)
}

// ChangePassword also revokes every refresh token the user holds.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, req transport.ChangePasswordRequest) error {
	l := logging.FromContext(ctx).With("svc", "user.change_password", "user_id", userID)

	if req.Password != req.Password2 {
		return fieldError("password", "Password fields didn't match.")
	}
	if err := validatePassword("password", req.Password); err != nil {
		return err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, req.OldPassword) {
		return fieldError("old_password", "Old password is not correct")
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("change_password_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return err
	}

	return s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.UpdateUser(ctx, userID, map[string]any{"password_hash": pwHash}); err != nil {
			return err
		}
		return tx.RevokeUserTokens(ctx, userID)
	})
}
