package repository

import (
	"context"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"gorm.io/gorm"
)

// SubmissionRepository journals booking dispatch attempts.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) error
	UpdateStatus(ctx context.Context, id uint, status models.SubmissionStatus, errMsg string) error
	FindBySession(ctx context.Context, sessionID string) ([]models.Submission, error)
	ListRecent(ctx context.Context, limit int) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id uint, status models.SubmissionStatus, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "error": errMsg}).Error
}

func (r *submissionRepository) FindBySession(ctx context.Context, sessionID string) ([]models.Submission, error) {
	var subs []models.Submission
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("attempt ASC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// ListRecent returns the newest attempts first.
func (r *submissionRepository) ListRecent(ctx context.Context, limit int) ([]models.Submission, error) {
	var subs []models.Submission
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
