package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/task-tracker/internal/adminrequest"
	adminRequestDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/adminrequest"
	"gorm.io/gorm"
)

const withReviewerSelect = "admin_requests.*, users.name AS reviewer_name"

type AdminRequestRepository struct {
	db *gorm.DB
}

func NewAdminRequestRepository(db *gorm.DB) adminrequest.RepositoryAPI {
	return &AdminRequestRepository{db: db}
}

func (r *AdminRequestRepository) Create(ctx context.Context, req *adminRequestDatamodel.AdminRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *AdminRequestRepository) GetByID(ctx context.Context, id int64) (*adminRequestDatamodel.AdminRequest, error) {
	var req adminRequestDatamodel.AdminRequest
	err := r.withReviewer(ctx).Where("admin_requests.id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *AdminRequestRepository) List(ctx context.Context, status *string) ([]*adminRequestDatamodel.AdminRequest, error) {
	var rows []*adminRequestDatamodel.AdminRequest
	q := r.withReviewer(ctx)
	if status != nil {
		q = q.Where("admin_requests.status = ?", *status)
	}
	err := q.Order("admin_requests.requested_at DESC").Order("admin_requests.id DESC").Find(&rows).Error
	return rows, err
}

// Review overwrites the decision columns whatever the current status is.
func (r *AdminRequestRepository) Review(ctx context.Context, id int64, status string, reviewedBy int64, reviewedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&adminRequestDatamodel.AdminRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_at": reviewedAt,
			"reviewed_by": reviewedBy,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *AdminRequestRepository) withReviewer(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&adminRequestDatamodel.AdminRequest{}).
		Select(withReviewerSelect).
		Joins("LEFT JOIN users ON users.id = admin_requests.reviewed_by")
}
