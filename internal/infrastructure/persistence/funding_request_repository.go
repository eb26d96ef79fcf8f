package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestfolio/backend/internal/domain/funding"
	"github.com/vestfolio/backend/internal/domain/shared"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormFundingRequestRepository implements funding.RequestRepository using GORM
type GormFundingRequestRepository struct {
	db *gorm.DB
}

// NewGormFundingRequestRepository creates a new GormFundingRequestRepository
func NewGormFundingRequestRepository(db *gorm.DB) *GormFundingRequestRepository {
	return &GormFundingRequestRepository{db: db}
}

// FindByID finds a funding request by ID
func (r *GormFundingRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*funding.Request, error) {
	var model models.FundingRequestModel
	if err := dbFrom(ctx, r.db).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the request under a row lock so a decision is
// applied at most once.
func (r *GormFundingRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*funding.Request, error) {
	var model models.FundingRequestModel
	if err := forUpdate(dbFrom(ctx, r.db)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List lists funding requests with filtering and pagination
func (r *GormFundingRequestRepository) List(ctx context.Context, filter funding.RequestFilter) ([]funding.Request, int64, error) {
	var requestModels []models.FundingRequestModel
	var total int64

	query := dbFrom(ctx, r.db).Model(&models.FundingRequestModel{})
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, FundingRequestSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&requestModels).Error; err != nil {
		return nil, 0, err
	}

	requests := make([]funding.Request, len(requestModels))
	for i, model := range requestModels {
		requests[i] = *model.ToDomain()
	}
	return requests, total, nil
}

// Create creates a new funding request
func (r *GormFundingRequestRepository) Create(ctx context.Context, request *funding.Request) error {
	model := models.FundingRequestModelFromDomain(request)
	return dbFrom(ctx, r.db).Create(model).Error
}

// Save persists funding request changes
func (r *GormFundingRequestRepository) Save(ctx context.Context, request *funding.Request) error {
	model := models.FundingRequestModelFromDomain(request)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Ensure GormFundingRequestRepository implements RequestRepository
var _ funding.RequestRepository = (*GormFundingRequestRepository)(nil)
