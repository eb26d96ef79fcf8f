package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestfolio/backend/internal/domain/profit"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormCommentRepository implements profit.CommentRepository using GORM
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create creates a new comment
func (r *GormCommentRepository) Create(ctx context.Context, comment *profit.Comment) error {
	model := models.CommentModelFromDomain(comment)
	return dbFrom(ctx, r.db).Create(model).Error
}

// FindByBatchID lists the comment timeline of a batch, oldest first
func (r *GormCommentRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID) ([]profit.Comment, error) {
	var commentModels []models.CommentModel
	if err := dbFrom(ctx, r.db).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&commentModels).Error; err != nil {
		return nil, err
	}

	comments := make([]profit.Comment, len(commentModels))
	for i, model := range commentModels {
		comments[i] = *model.ToDomain()
	}
	return comments, nil
}

// Ensure GormCommentRepository implements CommentRepository
var _ profit.CommentRepository = (*GormCommentRepository)(nil)
