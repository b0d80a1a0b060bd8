// Package directory resolves the authority account that receives a newly routed case.
package directory

import (
	"context"
	"crimereport/backend/internal/apperr"
	"crimereport/backend/internal/models"
	"crimereport/backend/internal/storage"
	"errors"
)

// AuthorityDirectory looks up authority accounts by department tag.
// FindActiveAuthority returns (nil, nil) when the department has no active authority.
type AuthorityDirectory interface {
	FindActiveAuthority(ctx context.Context, department string) (*models.User, error)
}

// Service is the AuthorityDirectory backed by the user table of the Case Store.
type Service struct {
	storage storage.Storage
}

func NewService(s storage.Storage) *Service {
	return &Service{storage: s}
}

func (s *Service) FindActiveAuthority(ctx context.Context, department string) (*models.User, error) {
	user, err := s.storage.FindActiveAuthority(ctx, department)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authorities lists every authority account of the department, active or not.
func (s *Service) Authorities(ctx context.Context, department string) ([]models.User, error) {
	return s.storage.ListUsers(ctx, storage.UserFilter{Role: models.RoleAuthority, Department: department})
}

// Static is a fixed department → authority table.
type Static map[string]*models.User

func (d Static) FindActiveAuthority(_ context.Context, department string) (*models.User, error) {
	u, ok := d[department]
	if !ok || !u.IsActive {
		return nil, nil
	}
	return u, nil
}
