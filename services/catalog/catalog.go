package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"homeservice/database"
	serviceRepo "homeservice/database/repository/service"
	"homeservice/models"
	"homeservice/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	activeListKey = "active"
	listTTL       = 5 * time.Minute
)

type CatalogService interface {
	List(ctx context.Context, q models.ServiceQuery) ([]models.Service, error)
	Get(ctx context.Context, identity models.Identity, id string) (*models.Service, error)
	Create(ctx context.Context, input models.ServiceInput) (*models.Service, error)
	Update(ctx context.Context, id string, input models.ServiceInput) (*models.Service, error)
	SetActive(ctx context.Context, id string, active bool) (*models.Service, error)
}

type DefaultCatalogService struct {
	Repo   serviceRepo.ServiceRepository
	Cache  utils.JSONCache
	Logger *zap.Logger
	Now    func() time.Time
}

func (s *DefaultCatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns active services matching q.
func (s *DefaultCatalogService) List(ctx context.Context, q models.ServiceQuery) ([]models.Service, error) {
	if !ValidSort(q.Sort) {
		return nil, utils.NewValidationError("sort", "sort must be one of: price_asc price_desc rating newest")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(q.MaxPrice.Decimal) {
		return nil, utils.NewValidationError("minPrice", "minPrice must not exceed maxPrice")
	}
	all, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(all, q), nil
}

// Get hides inactive services from everyone but admins.
func (s *DefaultCatalogService) Get(ctx context.Context, identity models.Identity, id string) (*models.Service, error) {
	svc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive && !identity.IsAdmin() {
		return nil, notFound()
	}
	return svc, nil
}

func (s *DefaultCatalogService) Create(ctx context.Context, input models.ServiceInput) (*models.Service, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	now := s.now()
	svc := &models.Service{
		ID:        uuid.New().String(),
		IsActive:  true,
		CreatedAt: now,
	}
	applyInput(svc, input, now)
	if err := s.Repo.Create(ctx, svc); err != nil {
		return nil, utils.NewInternalError("failed to create service", err)
	}
	s.invalidate(ctx)
	s.Logger.Info("Service created", zap.String("serviceID", svc.ID), zap.String("title", svc.Title))
	return svc, nil
}

func (s *DefaultCatalogService) Update(ctx context.Context, id string, input models.ServiceInput) (*models.Service, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	svc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(svc, input, s.now())
	if err := s.Repo.Update(ctx, svc); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound()
		}
		return nil, utils.NewInternalError("failed to update service", err)
	}
	s.invalidate(ctx)
	return svc, nil
}

func (s *DefaultCatalogService) SetActive(ctx context.Context, id string, active bool) (*models.Service, error) {
	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound()
		}
		return nil, utils.NewInternalError("failed to update service", err)
	}
	s.invalidate(ctx)
	s.Logger.Info("Service visibility changed", zap.String("serviceID", id), zap.Bool("active", active))
	return s.load(ctx, id)
}

func (s *DefaultCatalogService) active(ctx context.Context) ([]models.Service, error) {
	if s.Cache != nil {
		var cached []models.Service
		ok, err := s.Cache.Get(ctx, activeListKey, &cached)
		if err != nil {
			s.Logger.Warn("Catalog cache read failed", zap.Error(err))
		}
		if ok {
			return cached, nil
		}
	}

	all, err := s.Repo.List(ctx, true)
	if err != nil {
		return nil, utils.NewInternalError("failed to list services", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, activeListKey, all, listTTL); err != nil {
			s.Logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return all, nil
}

func (s *DefaultCatalogService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, activeListKey); err != nil {
		s.Logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *DefaultCatalogService) load(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound()
		}
		return nil, utils.NewInternalError("failed to load service", err)
	}
	return svc, nil
}

func validateInput(input models.ServiceInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return utils.NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return utils.NewValidationError("category", "category is required")
	}
	if !input.BasePrice.IsPositive() {
		return utils.NewValidationError("basePrice", "basePrice must be greater than 0")
	}
	if input.DurationMinutes < 1 {
		return utils.NewValidationError("durationMinutes", "durationMinutes must be at least 1")
	}
	return nil
}

func applyInput(svc *models.Service, input models.ServiceInput, now time.Time) {
	svc.Title = strings.TrimSpace(input.Title)
	svc.Description = strings.TrimSpace(input.Description)
	svc.Category = strings.TrimSpace(input.Category)
	svc.BasePrice = input.BasePrice.Round2()
	svc.DurationMinutes = input.DurationMinutes
	svc.ImageURL = strings.TrimSpace(input.ImageURL)
	if input.IsActive != nil {
		svc.IsActive = *input.IsActive
	}
	svc.UpdatedAt = now
}

func notFound() error {
	return utils.NewNotFoundError("SERVICE_NOT_FOUND", "Service not found")
}
