package repository

import (
	"context"

	"gorm.io/gorm"

	"shopfarm_v1/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	// GetByIDForStore 归属校验查询：store_id 不匹配与不存在同样返回 ErrRecordNotFound，
	// 不向调用方泄露商品是否存在
	GetByIDForStore(ctx context.Context, id, storeID int64) (*model.Product, error)
	Save(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// 列表查询
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListByStore(ctx context.Context, storeID int64, page, pageSize int) ([]model.Product, int64, error)
	ListAllByStore(ctx context.Context, storeID int64) ([]model.Product, error)

	// 计数
	IncrViewCount(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context) (map[int64]CategoryProductCount, error)
	CountByStore(ctx context.Context) (map[int64]int64, error)

	// ListBatch 按主键游标批量遍历全表 (对账任务用)
	ListBatch(ctx context.Context, afterID int64, limit int) ([]model.Product, error)

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
	Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error
}

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	StoreID    int64
	CategoryID int64
	State      string
	OnSale     bool
	Keyword    string
	Page       int
	PageSize   int
}

// CategoryProductCount 按分类统计结果 (夜间对账任务用)
type CategoryProductCount struct {
	Total       int64
	WithVariant int64
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByIDForStore(ctx context.Context, id, storeID int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Save(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.StoreID > 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.OnSale {
		query = query.Where("is_on_sale = ?", true)
	}
	if filter.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+filter.Keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("updated_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) ListByStore(ctx context.Context, storeID int64, page, pageSize int) ([]model.Product, int64, error) {
	return r.List(ctx, ProductFilter{
		StoreID:  storeID,
		Page:     page,
		PageSize: pageSize,
	})
}

func (r *productRepo) ListAllByStore(ctx context.Context, storeID int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) IncrViewCount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *productRepo) CountByCategory(ctx context.Context) (map[int64]CategoryProductCount, error) {
	type row struct {
		CategoryID  int64
		Total       int64
		WithVariant int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("category_id, COUNT(*) as total, SUM(CASE WHEN has_variants THEN 1 ELSE 0 END) as with_variant").
		Where("category_id > 0").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[int64]CategoryProductCount, len(rows))
	for _, r := range rows {
		stats[r.CategoryID] = CategoryProductCount{Total: r.Total, WithVariant: r.WithVariant}
	}
	return stats, nil
}

func (r *productRepo) CountByStore(ctx context.Context) (map[int64]int64, error) {
	type row struct {
		StoreID int64
		Total   int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("store_id, COUNT(*) as total").
		Group("store_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64, len(rows))
	for _, r := range rows {
		counts[r.StoreID] = r.Total
	}
	return counts, nil
}

func (r *productRepo) ListBatch(ctx context.Context, afterID int64, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
