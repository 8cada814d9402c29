package service

import (
	"context"
	"errors"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
)

// ==================== CategoryService 分类服务 ====================

// CategoryService 平台分类树维护与店面分面数据
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategory 创建分类 (管理员)
func (s *CategoryService) CreateCategory(ctx context.Context, req *dto.CreateCategoryReq) (*model.Category, error) {
	catSlug := req.Slug
	if catSlug == "" {
		catSlug = slug.Make(req.Name)
	}

	if _, err := s.categoryRepo.GetBySlug(ctx, catSlug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &model.Category{
		Name:      req.Name,
		NameTr:    marshalTr(req.NameTr),
		Slug:      catSlug,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		IsActive:  true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategoryTree 两级分类树 (店面导航/分面筛选)
func (s *CategoryService) GetCategoryTree(ctx context.Context) ([]dto.CategoryResp, error) {
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byParent := make(map[int64][]dto.CategoryResp)
	for _, c := range categories {
		byParent[c.ParentID] = append(byParent[c.ParentID], toCategoryResp(&c))
	}

	roots := byParent[0]
	for i := range roots {
		roots[i].Children = byParent[roots[i].ID]
	}
	if roots == nil {
		roots = []dto.CategoryResp{}
	}
	return roots, nil
}

// DeleteCategory 删除分类 (管理员)
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, id)
}

func toCategoryResp(c *model.Category) dto.CategoryResp {
	return dto.CategoryResp{
		ID:                  c.ID,
		Name:                c.Name,
		Slug:                c.Slug,
		ParentID:            c.ParentID,
		ProductCount:        c.ProductCount,
		VariantProductCount: c.VariantProductCount,
	}
}
