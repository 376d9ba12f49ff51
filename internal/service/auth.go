package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkg_hash "github.com/Skotchmaster/pharmacy/pkg/hash"
	"github.com/Skotchmaster/pharmacy/pkg/logging"
	"github.com/Skotchmaster/pharmacy/pkg/tokens"

	"github.com/Skotchmaster/pharmacy/internal/events"
	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/notify"
	"github.com/Skotchmaster/pharmacy/internal/otp"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

type AuthService struct {
	Repo          *repo.GormRepo
	OTP           *otp.Store
	Notifier      notify.Notifier
	Events        events.Publisher
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CodeTTL       time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizePhone(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func contactOf(u *models.User) events.Contact {
	c := events.Contact{UserID: u.ID.String(), Name: u.Name, Email: u.Email}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	return c
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := normalizeEmail(req.Email)
	phone := normalizePhone(req.Phone)
	if email == "" || len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: email and a password of at least 8 characters are required", ErrValidation)
	}

	emailTaken, phoneTaken, err := s.Repo.ContactTaken(ctx, email, phone, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if phoneTaken {
		return nil, fmt.Errorf("%w: phone already registered", ErrConflict)
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        phone,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, duplicate(err, "user")
	}

	events.PublishLogged(ctx, s.Events, l, events.TopicUsers, user.ID.String(),
		events.UserEvent{Type: events.TypeUserRegistered, Contact: contactOf(user)})

	if err := s.sendCode(ctx, otp.PurposeVerify, email); err != nil {
		l.Warn("verification_code_not_sent", "user_id", user.ID, "error", err)
	}
	return user, nil
}

func (s *AuthService) sendCode(ctx context.Context, purpose otp.Purpose, identifier string) error {
	code, err := s.OTP.Issue(purpose, identifier)
	if err != nil {
		if errors.Is(err, otp.ErrOTPCooldown) {
			return fmt.Errorf("%w: wait before requesting another code", ErrTooManyRequests)
		}
		return err
	}

	subject := "Your verification code"
	if purpose == otp.PurposeReset {
		subject = "Your password reset code"
	}
	return s.Notifier.Notify(ctx, notify.Message{
		To:      identifier,
		Subject: subject,
		Body:    fmt.Sprintf("Your code is %s. It expires in %d minutes.", code, int(s.otpTTL().Minutes())),
	})
}

func (s *AuthService) otpTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return otp.DefaultConfig().TTL
}

func (s *AuthService) userByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if notify.IsEmail(identifier) {
		return s.Repo.GetUserByEmail(ctx, normalizeEmail(identifier))
	}
	return s.Repo.GetUserByPhone(ctx, strings.TrimSpace(identifier))
}

func mapOTPError(err error) error {
	switch {
	case errors.Is(err, otp.ErrOTPNotFound), errors.Is(err, otp.ErrOTPExpired),
		errors.Is(err, otp.ErrOTPInvalid), errors.Is(err, otp.ErrOTPTooManyAttempts):
		return fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}
	return err
}

// RequestCode (re)sends a code. Unknown identifiers are accepted silently.
func (s *AuthService) RequestCode(ctx context.Context, identifier string, purpose otp.Purpose) error {
	l := logging.FromContext(ctx).With("svc", "auth.request_code")

	if !purpose.Valid() {
		return fmt.Errorf("%w: unknown purpose", ErrValidation)
	}
	identifier = strings.TrimSpace(identifier)
	if notify.IsEmail(identifier) {
		identifier = normalizeEmail(identifier)
	} else if purpose == otp.PurposeReset {
		return fmt.Errorf("%w: password reset codes are sent by email", ErrValidation)
	}

	user, err := s.userByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(notFound(err, "user"), ErrNotFound) {
			l.Info("code_request_unknown_identifier")
			return nil
		}
		return err
	}
	if purpose == otp.PurposeVerify && user.IsVerified {
		return nil
	}
	return s.sendCode(ctx, purpose, identifier)
}

func (s *AuthService) Verify(ctx context.Context, identifier, code string) error {
	l := logging.FromContext(ctx).With("svc", "auth.verify")

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return fmt.Errorf("%w: email or identifier required", ErrValidation)
	}
	if notify.IsEmail(identifier) {
		identifier = normalizeEmail(identifier)
	}

	if err := s.OTP.Verify(otp.PurposeVerify, identifier, code); err != nil {
		return mapOTPError(err)
	}

	user, err := s.userByIdentifier(ctx, identifier)
	if err != nil {
		return notFound(err, "user")
	}
	if err := s.Repo.MarkVerified(ctx, user.ID); err != nil {
		return notFound(err, "user")
	}

	events.PublishLogged(ctx, s.Events, l, events.TopicUsers, user.ID.String(),
		events.UserEvent{Type: events.TypeUserVerified, Contact: contactOf(user)})
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.Repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(notFound(err, "user"), ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	pair, row, err := s.newPair(user)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, row); err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *AuthService) newPair(user *models.User) (*TokenPair, *models.RefreshToken, error) {
	now := time.Now().UTC()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := tokens.SignAccess(s.JWTSecret, user.ID.String(), user.Role, accessExp)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access: %w", err)
	}
	jti := tokens.NewJTI()
	refresh, err := tokens.SignRefresh(s.RefreshSecret, user.ID.String(), jti, refreshExp)
	if err != nil {
		return nil, nil, fmt.Errorf("sign refresh: %w", err)
	}

	row := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: tokens.Sha256Hex(refresh),
		JTI:       jti,
		ExpiresAt: refreshExp,
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, AccessExp: accessExp, RefreshExp: refreshExp}, row, nil
}

// Refresh rotates a refresh token. Presenting an already rotated token
// revokes every session of its owner.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(notFound(err, "user"), ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, err
	}

	pair, row, err := s.newPair(user)
	if err != nil {
		return nil, err
	}

	err = s.Repo.RotateRefreshToken(ctx, claims.ID, tokens.Sha256Hex(refreshToken), row)
	if errors.Is(err, repo.ErrTokenUnusable) {
		if old, findErr := s.Repo.FindRefreshByJTI(ctx, claims.ID); findErr == nil && old.Revoked {
			l.Warn("refresh_token_reuse", "user_id", user.ID)
			if err := s.Repo.RevokeAllForUser(ctx, user.ID); err != nil {
				l.Error("revoke_sessions_failed", "user_id", user.ID, "error", err)
			}
		}
		return nil, fmt.Errorf("%w: refresh token revoked or expired", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefreshByHash(ctx, tokens.Sha256Hex(refreshToken))
}

// ForgotPassword never reveals whether the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	email = normalizeEmail(email)
	if _, err := s.Repo.GetUserByEmail(ctx, email); err != nil {
		l.Info("password_reset_unknown_email")
		return
	}
	if err := s.sendCode(ctx, otp.PurposeReset, email); err != nil {
		l.Warn("password_reset_code_not_sent", "error", err)
	}
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	email = normalizeEmail(email)
	if err := s.OTP.Verify(otp.PurposeReset, email, code); err != nil {
		return mapOTPError(err)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return notFound(err, "user")
	}
	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.SetPassword(ctx, user.ID, pwHash)
}
