package repository

import (
	"context"

	"gorm.io/gorm"

	"shopfarm_v1/internal/model"
)

// ==================== 接口定义 ====================

// AttributeRepository 属性目录仓储接口
type AttributeRepository interface {
	Create(ctx context.Context, attr *model.Attribute) error
	GetByID(ctx context.Context, id int64) (*model.Attribute, error)
	// GetByIDForStore 归属校验查询，不泄露存在性
	GetByIDForStore(ctx context.Context, id, storeID int64) (*model.Attribute, error)
	GetBySlug(ctx context.Context, storeID int64, slug string) (*model.Attribute, error)
	// ListByIDs 按 ID 批量解析，限定店铺；缺失的 ID 直接缺席结果，由调用方静默跳过
	ListByIDs(ctx context.Context, storeID int64, ids []int64) ([]model.Attribute, error)
	ListByStore(ctx context.Context, storeID int64) ([]model.Attribute, error)
	Save(ctx context.Context, attr *model.Attribute) error
	Delete(ctx context.Context, id int64) error

	WithTx(tx *gorm.DB) AttributeRepository
}

// ==================== 仓储实现 ====================

type attributeRepo struct {
	db *gorm.DB
}

// NewAttributeRepository 创建属性仓储
func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepo{db: db}
}

func (r *attributeRepo) Create(ctx context.Context, attr *model.Attribute) error {
	return r.db.WithContext(ctx).Create(attr).Error
}

func (r *attributeRepo) GetByID(ctx context.Context, id int64) (*model.Attribute, error) {
	var attr model.Attribute
	if err := r.db.WithContext(ctx).First(&attr, id).Error; err != nil {
		return nil, err
	}
	return &attr, nil
}

func (r *attributeRepo) GetByIDForStore(ctx context.Context, id, storeID int64) (*model.Attribute, error) {
	var attr model.Attribute
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&attr).Error
	if err != nil {
		return nil, err
	}
	return &attr, nil
}

func (r *attributeRepo) GetBySlug(ctx context.Context, storeID int64, slug string) (*model.Attribute, error) {
	var attr model.Attribute
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND slug = ?", storeID, slug).
		First(&attr).Error
	if err != nil {
		return nil, err
	}
	return &attr, nil
}

func (r *attributeRepo) ListByIDs(ctx context.Context, storeID int64, ids []int64) ([]model.Attribute, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var attrs []model.Attribute
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND id IN ?", storeID, ids).
		Find(&attrs).Error
	return attrs, err
}

func (r *attributeRepo) ListByStore(ctx context.Context, storeID int64) ([]model.Attribute, error) {
	var attrs []model.Attribute
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("sort_order ASC, id ASC").
		Find(&attrs).Error
	return attrs, err
}

func (r *attributeRepo) Save(ctx context.Context, attr *model.Attribute) error {
	return r.db.WithContext(ctx).Save(attr).Error
}

func (r *attributeRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Attribute{}, id).Error
}

func (r *attributeRepo) WithTx(tx *gorm.DB) AttributeRepository {
	return &attributeRepo{db: tx}
}
