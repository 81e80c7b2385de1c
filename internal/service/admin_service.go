package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"flipyard/internal/apperr"
	"flipyard/internal/models"
	"flipyard/internal/repository"
)

type AccountAdminStore interface {
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	SetBanned(ctx context.Context, id string, banned bool) error
	SetAdmin(ctx context.Context, id string, admin bool) error
}

// AdminService holds account moderation used by the admin API and
// marketctl. Banning does not revoke sessions; they stop resolving on the
// next request.
type AdminService struct {
	users AccountAdminStore
	log   zerolog.Logger
}

func NewAdminService(users AccountAdminStore, log zerolog.Logger) *AdminService {
	return &AdminService{users: users, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context, page, perPage int) ([]models.User, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	users, err := s.users.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *AdminService) SetBanned(ctx context.Context, userID string, banned bool) error {
	if err := s.users.SetBanned(ctx, userID, banned); err != nil {
		return notFoundUser(err)
	}
	s.log.Info().Str("user_id", userID).Bool("banned", banned).Msg("ban flag changed")
	return nil
}

func (s *AdminService) SetAdmin(ctx context.Context, userID string, admin bool) error {
	if err := s.users.SetAdmin(ctx, userID, admin); err != nil {
		return notFoundUser(err)
	}
	s.log.Info().Str("user_id", userID).Bool("admin", admin).Msg("admin flag changed")
	return nil
}

// ResolveEmail maps an email to an account id for operator tooling.
func (s *AdminService) ResolveEmail(ctx context.Context, email string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return models.User{}, notFoundUser(err)
	}
	return user, nil
}

func notFoundUser(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperr.NotFound("user not found")
	}
	return err
}
