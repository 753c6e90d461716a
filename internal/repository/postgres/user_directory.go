package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"conventionhub/internal/domain"
)

// userDirectory adapts the user repository to the read-only lookup the
// conference core consults. Lookups feed error messages and invitations,
// never authorization decisions.
type userDirectory struct {
	users domain.UserRepository
}

func NewUserDirectory(users domain.UserRepository) domain.UserDirectory {
	return &userDirectory{users: users}
}

func (d *userDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := d.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *userDirectory) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if u.Name != "" {
		return u.Name, nil
	}
	return u.Email, nil
}

func (d *userDirectory) Email(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}
