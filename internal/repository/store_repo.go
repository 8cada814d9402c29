package repository

import (
	"context"

	"gorm.io/gorm"

	"shopfarm_v1/internal/model"
)

// ==================== 接口定义 ====================

// StoreRepository 店铺仓储接口
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	// GetByIDForOwner 店主归属校验，不匹配按不存在处理
	GetByIDForOwner(ctx context.Context, id, ownerID int64) (*model.Store, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*model.Store, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Store, error)
	List(ctx context.Context, page, pageSize int) ([]model.Store, int64, error)
	Save(ctx context.Context, store *model.Store) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	WithTx(tx *gorm.DB) StoreRepository
}

// ==================== 仓储实现 ====================

type storeRepo struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓储
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepo) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) GetBySubdomain(ctx context.Context, subdomain string) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).
		Where("subdomain = ?", subdomain).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&stores).Error
	return stores, err
}

func (r *storeRepo) List(ctx context.Context, page, pageSize int) ([]model.Store, int64, error) {
	var stores []model.Store
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Store{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := query.
		Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&stores).Error
	return stores, total, err
}

func (r *storeRepo) Save(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

func (r *storeRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Store{}, id).Error
}

func (r *storeRepo) WithTx(tx *gorm.DB) StoreRepository {
	return &storeRepo{db: tx}
}
