package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkg_hash "github.com/Skotchmaster/pharmacy/pkg/hash"

	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req transport.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]any{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		phone := normalizePhone(req.Phone)
		if phone != nil {
			_, taken, err := s.Repo.ContactTaken(ctx, "", phone, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, fmt.Errorf("%w: phone already registered", ErrConflict)
			}
		}
		updates["phone"] = phone
	}
	if req.Address != nil {
		a := req.Address.Model()
		updates["address_line1"] = a.Line1
		updates["address_line2"] = a.Line2
		updates["address_city"] = a.City
		updates["address_state"] = a.State
		updates["address_postal_code"] = a.PostalCode
	}

	if len(updates) == 0 {
		return s.Me(ctx, id)
	}
	user, err := s.Repo.UpdateUser(ctx, id, updates)
	if err != nil {
		return nil, duplicate(notFound(err, "user"), "phone")
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return notFound(err, "user")
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, current) {
		return fmt.Errorf("%w: current password is wrong", ErrUnauthorized)
	}
	if len(next) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	pwHash, err := pkg_hash.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.SetPassword(ctx, id, pwHash)
}

func (s *UserService) List(ctx context.Context, q string, offset, limit int) (int64, []models.User, error) {
	return s.Repo.ListUsers(ctx, q, offset, limit)
}

func (s *UserService) SetRole(ctx context.Context, actorID, id uuid.UUID, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if actorID == id {
		return nil, fmt.Errorf("%w: cannot change your own role", ErrValidation)
	}

	user, err := s.Repo.UpdateUser(ctx, id, map[string]any{"role": role})
	if err != nil {
		return nil, notFound(err, "user")
	}
	// Tokens carry the role; force a fresh login.
	if err := s.Repo.RevokeAllForUser(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}
