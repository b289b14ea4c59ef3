package repository

import (
	"context"
	"errors"
	"time"

	"github.com/messagegate/smsgate/internal/domain"
	"gorm.io/gorm"
)

// DeliveryReport is the status query projection returned to API callers.
type DeliveryReport struct {
	InternalID   uint64
	ExternalID   *string
	DeliveredOn  *time.Time
	StatusCode   int
	ErrorMessage *string
}

type MessageRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Message, error)
	// Save upserts the batch; messages without an id are inserted and get
	// their id assigned in place.
	Save(ctx context.Context, messages []*domain.Message) error
	// FindByStatusPaged returns one page of messages in the given status
	// plus the total page count for that status at query time.
	FindByStatusPaged(ctx context.Context, status domain.DeliveryStatus, page int, pageSize int) ([]*domain.Message, int, error)
	DeliveryReports(ctx context.Context, tenantID string, ids []uint64) ([]DeliveryReport, error)
}

type GormMessageRepo struct {
	db *gorm.DB
}

func NewGormMessageRepo(db *gorm.DB) *GormMessageRepo {
	return &GormMessageRepo{db: db}
}

func (r *GormMessageRepo) FindByID(ctx context.Context, id uint64) (*domain.Message, error) {
	var model MessageModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return messageModelToDomain(&model), nil
}

func (r *GormMessageRepo) Save(ctx context.Context, messages []*domain.Message) error {
	inserts := make([]MessageModel, 0, len(messages))
	insertIndexes := make([]int, 0, len(messages))

	for i, msg := range messages {
		model := messageModelFromDomain(msg)
		if model == nil {
			continue
		}
		if model.ID == 0 {
			inserts = append(inserts, *model)
			insertIndexes = append(insertIndexes, i)
			continue
		}
		if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
			return err
		}
		*messages[i] = *messageModelToDomain(model)
	}

	if len(inserts) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(&inserts, 100).Error; err != nil {
		return err
	}

	for i := range inserts {
		idx := insertIndexes[i]
		if idx < len(messages) && messages[idx] != nil {
			*messages[idx] = *messageModelToDomain(&inserts[i])
		}
	}

	return nil
}

func (r *GormMessageRepo) FindByStatusPaged(
	ctx context.Context,
	status domain.DeliveryStatus,
	page int,
	pageSize int,
) ([]*domain.Message, int, error) {
	if page < 0 {
		page = 0
	}
	if pageSize < 1 {
		pageSize = 1
	}

	query := r.db.WithContext(ctx).Model(&MessageModel{}).Where("delivery_status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []MessageModel
	err := query.
		Order("id ASC").
		Offset(page * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	messages := make([]*domain.Message, 0, len(models))
	for i := range models {
		messages = append(messages, messageModelToDomain(&models[i]))
	}

	return messages, totalPages, nil
}

func (r *GormMessageRepo) DeliveryReports(ctx context.Context, tenantID string, ids []uint64) ([]DeliveryReport, error) {
	var models []MessageModel
	err := r.db.WithContext(ctx).
		Select("id", "external_id", "delivered_on", "delivery_status", "delivery_error_message").
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	reports := make([]DeliveryReport, 0, len(models))
	for i := range models {
		reports = append(reports, DeliveryReport{
			InternalID:   models[i].ID,
			ExternalID:   models[i].ExternalID,
			DeliveredOn:  models[i].DeliveredOn,
			StatusCode:   models[i].DeliveryStatus.Code(),
			ErrorMessage: models[i].DeliveryErrorMessage,
		})
	}

	return reports, nil
}
