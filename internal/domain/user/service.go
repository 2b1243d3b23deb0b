package user

import (
	"context"
	"regexp"
	"strings"

	"Fluxo/internal/domain/shared"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var (
	upperCaseRe   = regexp.MustCompile(`[A-Z]`)
	specialCharRe = regexp.MustCompile(`[@$!%*?&]`)
)

type Service struct {
	Repository Repository
	// Cost do bcrypt; zero usa o padrao.
	Cost int
}

func NewService(repo Repository) *Service {
	return &Service{Repository: repo, Cost: bcryptCost}
}

func (s *Service) Create(ctx context.Context, user *User) error {
	user.Id = pkg.NewID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Name = strings.TrimSpace(user.Name)
	if user.DefaultContext == "" {
		user.DefaultContext = shared.Personal
	}
	if !user.DefaultContext.IsValid() {
		return appErrors.NewValidationError("default_context", "contexto invalido")
	}

	hashed, err := s.hash(user.Password)
	if err != nil {
		return appErrors.ErrInternalServer.WithError(err)
	}
	user.Password = hashed

	return s.Repository.Create(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, id ulid.ULID) (*User, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.Repository.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) Exists(ctx context.Context, userID ulid.ULID) error {
	_, err := s.GetByID(ctx, userID)
	return err
}

func (s *Service) ListIDs(ctx context.Context) ([]ulid.ULID, error) {
	return s.Repository.ListIDs(ctx)
}

func (s *Service) UpdateProfile(ctx context.Context, userID ulid.ULID, name *string, defaultContext *shared.Context) (*User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, appErrors.NewValidationError("name", "nome não pode estar vazio")
		}
		user.Name = trimmed
	}

	if defaultContext != nil {
		if !defaultContext.IsValid() {
			return nil, appErrors.NewValidationError("default_context", "contexto invalido")
		}
		user.DefaultContext = *defaultContext
	}

	if err := s.Repository.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdatePassword(ctx context.Context, userID ulid.ULID, currentPassword, newPassword string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return appErrors.ErrInvalidCredentials
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := s.hash(newPassword)
	if err != nil {
		return appErrors.ErrInternalServer.WithError(err)
	}
	user.Password = hashed

	return s.Repository.Update(ctx, user)
}

func (s *Service) hash(password string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compara a senha informada com o hash armazenado.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return appErrors.ErrInvalidCredentials
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return appErrors.NewValidationError("password", "deve conter no mínimo 8 caracteres")
	}
	if !upperCaseRe.MatchString(password) {
		return appErrors.NewValidationError("password", "deve conter ao menos uma letra maiúscula")
	}
	if !specialCharRe.MatchString(password) {
		return appErrors.NewValidationError("password", "deve conter ao menos um caractere especial (@$!%*?&)")
	}
	return nil
}
