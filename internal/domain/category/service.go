package category

import (
	"context"
	"time"

	"Fluxo/internal/domain/shared"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Service struct {
	Repository Repository
	shared.BaseService
}

func NewService(repo Repository, userChecker *shared.UserCheckerService) *Service {
	return &Service{
		Repository: repo,
		BaseService: shared.BaseService{
			UserChecker: userChecker,
		},
	}
}

func (s *Service) Create(ctx context.Context, category *Category) error {
	if err := s.EnsureUserExists(ctx, category.UserId); err != nil {
		return err
	}

	category.Name = shared.NormalizeName(category.Name)
	if category.Name == "" {
		return appErrors.NewValidationError("name", "é obrigatório")
	}
	if !category.Type.IsValid() {
		return appErrors.NewValidationError("type", "tipo invalido")
	}

	if err := s.checkNameNotExists(ctx, category.Name, category.UserId); err != nil {
		return err
	}

	now := time.Now()
	category.Id = pkg.NewID()
	category.IsActive = true
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := s.Repository.Create(ctx, category); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return appErrors.NewConflictError("categoria")
		}
		return appErrors.NewDatabaseError(err)
	}

	return nil
}

func (s *Service) Rename(ctx context.Context, categoryID, userID ulid.ULID, name string) (*Category, error) {
	existing, err := s.GetByID(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}

	name = shared.NormalizeName(name)
	if name == "" {
		return nil, appErrors.NewValidationError("name", "é obrigatório")
	}

	if existing.Name != name {
		if err := s.checkNameNotExists(ctx, name, userID); err != nil {
			return nil, err
		}
	}

	existing.Name = name
	existing.UpdatedAt = time.Now()

	if err := s.Repository.Update(ctx, existing); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return nil, appErrors.NewConflictError("categoria")
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return existing, nil
}

// SetActive ativa ou desativa a categoria. Categorias nunca sao removidas
// porque transacoes historicas continuam apontando para elas.
func (s *Service) SetActive(ctx context.Context, categoryID, userID ulid.ULID, active bool) (*Category, error) {
	existing, err := s.GetByID(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}

	if existing.IsActive == active {
		return existing, nil
	}

	existing.IsActive = active
	existing.UpdatedAt = time.Now()

	if err := s.Repository.Update(ctx, existing); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return existing, nil
}

func (s *Service) GetByID(ctx context.Context, categoryID, userID ulid.ULID) (*Category, error) {
	category, err := s.Repository.GetByID(ctx, categoryID, userID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrCategoryNotFound.Code) {
			return nil, err
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	if category.UserId != userID {
		return nil, appErrors.ErrCategoryNotFound
	}
	return category, nil
}

// EnsureUsable garante que a categoria existe, pertence ao usuario e esta ativa.
func (s *Service) EnsureUsable(ctx context.Context, userID, categoryID ulid.ULID) (*Category, error) {
	category, err := s.GetByID(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, appErrors.NewValidationError("category_id", "categoria inativa").
			WithDetails(map[string]interface{}{"category_id": categoryID.String()})
	}
	return category, nil
}

func (s *Service) List(ctx context.Context, userID ulid.ULID, includeInactive bool, pagination *pkg.PaginationParams) ([]*Category, int64, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.Repository.List(ctx, userID, !includeInactive, pagination)
}

// SeedDefaults cria as categorias padrao de um usuario recem cadastrado.
func (s *Service) SeedDefaults(ctx context.Context, userID ulid.ULID) error {
	defaults := DefaultCategoriesForUser(userID, time.Now())
	if err := s.Repository.CreateBatch(ctx, defaults); err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (s *Service) checkNameNotExists(ctx context.Context, name string, userID ulid.ULID) error {
	existing, err := s.Repository.GetByName(ctx, name, userID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrCategoryNotFound.Code) {
			return nil
		}
		return appErrors.NewDatabaseError(err)
	}
	if existing != nil {
		return appErrors.NewConflictError("categoria")
	}
	return nil
}
