package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/repo"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	pkg_hash "github.com/Skotchmaster/wine_shop/pkg/hash"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
	"github.com/Skotchmaster/wine_shop/pkg/tokens"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
	minPasswordLength = 8
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Events        EventPublisher

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return defaultAccessTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return defaultRefreshTTL
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

func validatePassword(field, password string) error {
	if len(password) < minPasswordLength {
		return fieldError(field, "This password is too short. It must contain at least %d characters.", minPasswordLength)
	}
	if strings.Trim(password, "0123456789") == "" {
		return fieldError(field, "This password is entirely numeric.")
	}
	return nil
}

func role(u *models.User) string {
	if u.IsStaff {
		return tokens.RoleAdmin
	}
	return tokens.RoleUser
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	return s.createUser(ctx, req, false)
}

// CreateSuperuser creates a staff account. It is used by the admin CLI.
func (s *AuthService) CreateSuperuser(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	return s.createUser(ctx, req, true)
}

func (s *AuthService) createUser(ctx context.Context, req transport.RegisterRequest, staff bool) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, fieldError("email", "This field may not be blank.")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, fieldError("first_name", "This field may not be blank.")
	}
	if strings.TrimSpace(req.LastName) == "" {
		return nil, fieldError("last_name", "This field may not be blank.")
	}
	if err := validatePassword("password", req.Password); err != nil {
		return nil, err
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: pwHash,
		IsStaff:      staff,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fieldError("email", "user with this email already exists.")
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), Event{
		Type: "user_registered", ID: user.ID, UserID: user.ID,
		Payload: map[string]any{"email": user.Email},
	})
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*transport.TokenPair, *models.RefreshToken, error) {
	now := time.Now()
	sub := strconv.FormatUint(uint64(user.ID), 10)

	accessExp := now.Add(s.accessTTL())
	access, err := tokens.SignAccess(tokens.AccessClaims{
		Role: role(user),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}, s.JWTSecret)
	if err != nil {
		return nil, nil, err
	}

	refreshExp := now.Add(s.refreshTTL())
	jti := tokens.NewJTI()
	refresh, err := tokens.SignRefresh(tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	}, s.RefreshSecret)
	if err != nil {
		return nil, nil, err
	}

	stored := &models.RefreshToken{
		Token:     tokens.Sha256Hex(refresh),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	return &transport.TokenPair{
		Access:     access,
		Refresh:    refresh,
		AccessExp:  accessExp,
		RefreshExp: refreshExp,
	}, stored, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*transport.TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error("login_error", "status", 500, "error", err)
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	pair, stored, err := s.issue(user)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot sign tokens", "error", err)
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, stored); err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot store refresh token", "error", err)
		return nil, err
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked in the same transaction the new one is stored in, so each refresh
// token can be used once.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*transport.TokenPair, error) {
	claims, err := tokens.RefreshClaimsFromToken(raw, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	stored, err := s.Repo.FindRefreshByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown jti", ErrInvalidRefreshToken)
		}
		return nil, err
	}
	if stored.Token != tokens.Sha256Hex(raw) {
		return nil, fmt.Errorf("%w: token mismatch", ErrInvalidRefreshToken)
	}

	user, err := s.Repo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user is gone", ErrInvalidRefreshToken)
		}
		return nil, err
	}

	pair, next, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, stored.JTI, next); err != nil {
		if errors.Is(err, repo.ErrTokenExpiredOrRevoked) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
		}
		return nil, err
	}
	return pair, nil
}
