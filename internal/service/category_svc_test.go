package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
)

func setupCategoryTestSvc(t *testing.T) *CategoryService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Category{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return NewCategoryService(repository.NewCategoryRepository(db))
}

func TestCreateCategorySlugConflict(t *testing.T) {
	svc := setupCategoryTestSvc(t)
	ctx := context.Background()

	first, err := svc.CreateCategory(ctx, &dto.CreateCategoryReq{Name: "Apparel"})
	assert.NoError(t, err)
	assert.Equal(t, "apparel", first.Slug)

	_, err = svc.CreateCategory(ctx, &dto.CreateCategoryReq{Name: "Apparel"})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestGetCategoryTree(t *testing.T) {
	svc := setupCategoryTestSvc(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, &dto.CreateCategoryReq{Name: "Apparel"})
	assert.NoError(t, err)
	_, err = svc.CreateCategory(ctx, &dto.CreateCategoryReq{Name: "Tees", ParentID: root.ID})
	assert.NoError(t, err)
	_, err = svc.CreateCategory(ctx, &dto.CreateCategoryReq{Name: "Books"})
	assert.NoError(t, err)

	tree, err := svc.GetCategoryTree(ctx)
	assert.NoError(t, err)
	assert.Len(t, tree, 2)

	var apparel *dto.CategoryResp
	for i := range tree {
		if tree[i].Slug == "apparel" {
			apparel = &tree[i]
		}
	}
	if assert.NotNil(t, apparel) {
		assert.Len(t, apparel.Children, 1)
		assert.Equal(t, "tees", apparel.Children[0].Slug)
	}
}

func TestGetCategoryTreeEmpty(t *testing.T) {
	svc := setupCategoryTestSvc(t)

	tree, err := svc.GetCategoryTree(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func TestDeleteCategoryNotFound(t *testing.T) {
	svc := setupCategoryTestSvc(t)

	err := svc.DeleteCategory(context.Background(), 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
