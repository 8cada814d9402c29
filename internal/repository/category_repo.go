package repository

import (
	"context"

	"gorm.io/gorm"

	"shopfarm_v1/internal/model"
)

// ==================== 接口定义 ====================

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	ListActive(ctx context.Context) ([]model.Category, error)
	ListChildren(ctx context.Context, parentID int64) ([]model.Category, error)
	ListAll(ctx context.Context) ([]model.Category, error)
	Save(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id int64) error

	// 统计计数 (原子增减，商品生命周期触发)
	AdjustCounts(ctx context.Context, id int64, productDelta, variantDelta int64) error
	// SetCounts 对账任务直接写入重算结果
	SetCounts(ctx context.Context, id int64, productCount, variantProductCount int64) error

	WithTx(tx *gorm.DB) CategoryRepository
}

// ==================== 仓储实现 ====================

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) ListActive(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) ListChildren(ctx context.Context, parentID int64) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC, id ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) Save(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Category{}, id).Error
}

func (r *categoryRepo) AdjustCounts(ctx context.Context, id int64, productDelta, variantDelta int64) error {
	if id <= 0 {
		return nil
	}
	updates := map[string]interface{}{
		"product_count": gorm.Expr("product_count + ?", productDelta),
	}
	if variantDelta != 0 {
		updates["variant_product_count"] = gorm.Expr("variant_product_count + ?", variantDelta)
	}
	return r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *categoryRepo) SetCounts(ctx context.Context, id int64, productCount, variantProductCount int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"product_count":         productCount,
			"variant_product_count": variantProductCount,
		}).Error
}

func (r *categoryRepo) WithTx(tx *gorm.DB) CategoryRepository {
	return &categoryRepo{db: tx}
}
