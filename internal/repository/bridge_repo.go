package repository

import (
	"context"
	"errors"

	"github.com/messagegate/smsgate/internal/domain"
	"gorm.io/gorm"
)

// BridgeRepository is the engine's read-only view of bridge configuration.
// Bridges are provisioned out of band; the dispatch path only resolves them.
type BridgeRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Bridge, error)
}

var _ BridgeRepository = (*GormBridgeRepo)(nil)

type GormBridgeRepo struct {
	db *gorm.DB
}

func NewGormBridgeRepo(db *gorm.DB) *GormBridgeRepo {
	return &GormBridgeRepo{db: db}
}

func (r *GormBridgeRepo) FindByID(ctx context.Context, id uint64) (*domain.Bridge, error) {
	var model BridgeModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return bridgeModelToDomain(&model), nil
}
