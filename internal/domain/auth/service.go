package auth

import (
	"context"
	"strings"

	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/user"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/logger"

	"github.com/oklog/ulid/v2"
)

type UserStore interface {
	Create(ctx context.Context, user *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// CategorySeeder cria as categorias padrao de um novo usuario.
type CategorySeeder interface {
	SeedDefaults(ctx context.Context, userID ulid.ULID) error
}

type Service struct {
	Users      UserStore
	Categories CategorySeeder
	Transactor shared.Transactor
}

func NewService(users UserStore, categories CategorySeeder, transactor shared.Transactor) *Service {
	return &Service{
		Users:      users,
		Categories: categories,
		Transactor: transactor,
	}
}

type Login struct {
	Email    string
	Password string
}

func (s *Service) Login(ctx context.Context, login Login) (*user.User, error) {
	if login.Password == "" {
		return nil, appErrors.NewValidationError("password", "deve ser informado")
	}

	entity, err := s.Users.GetByEmail(ctx, login.Email)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrUserNotFound.Code) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := user.CheckPassword(entity.Password, login.Password); err != nil {
		return nil, err
	}
	return entity, nil
}

// Register cria o usuario e suas categorias padrao na mesma transacao.
func (s *Service) Register(ctx context.Context, u *user.User) error {
	if strings.TrimSpace(u.Name) == "" {
		return appErrors.NewValidationError("name", "é obrigatório")
	}
	if err := user.ValidatePassword(u.Password); err != nil {
		return err
	}

	exists, err := s.emailExists(ctx, u.Email)
	if err != nil {
		return err
	}
	if exists {
		return appErrors.ErrEmailAlreadyExists
	}

	err = s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Users.Create(ctx, u); err != nil {
			if shared.IsUniqueConstraintError(err) {
				return appErrors.ErrEmailAlreadyExists
			}
			return err
		}
		return s.Categories.SeedDefaults(ctx, u.Id)
	})
	if err != nil {
		return err
	}

	logger.Info().Str("user_id", u.Id.String()).Msg("Usuario registrado")
	return nil
}

func (s *Service) emailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.Users.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	appErr, ok := appErrors.AsAppError(err)
	if !ok {
		return false, appErrors.ErrInternalServer.WithError(err)
	}
	if appErr.Code == appErrors.ErrUserNotFound.Code {
		return false, nil
	}
	return false, appErr
}
