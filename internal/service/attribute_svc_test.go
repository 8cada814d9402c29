package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
)

func setupAttributeTestSvc(t *testing.T) *AttributeService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Attribute{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return NewAttributeService(repository.NewAttributeRepository(db))
}

func TestCreateAttributeAllocatesValueIDs(t *testing.T) {
	svc := setupAttributeTestSvc(t)
	ctx := context.Background()

	attr, err := svc.CreateAttribute(ctx, &dto.CreateAttributeReq{
		StoreID: 1,
		Name:    "Size",
		Values: []dto.AttributeValueInput{
			{Value: "S"},
			{Value: "M"},
			{Value: "L"},
		},
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	if attr.Slug != "size" {
		t.Errorf("slug=%q，期望 size", attr.Slug)
	}
	if attr.Type != model.AttributeTypeText {
		t.Errorf("缺省类型应为 text，得到 %q", attr.Type)
	}
	if len(attr.Values) != 3 {
		t.Fatalf("期望 3 个值，得到 %d", len(attr.Values))
	}
	for i, v := range attr.Values {
		if v.ID != int64(i+1) {
			t.Errorf("值 %d 的 ID=%d，期望顺序分配 %d", i, v.ID, i+1)
		}
	}
	if attr.NextValueID != 4 {
		t.Errorf("next_value_id=%d，期望 4", attr.NextValueID)
	}
}

func TestCreateAttributeSlugConflict(t *testing.T) {
	svc := setupAttributeTestSvc(t)
	ctx := context.Background()

	req := &dto.CreateAttributeReq{
		StoreID: 1,
		Name:    "Color",
		Type:    model.AttributeTypeColor,
		Values:  []dto.AttributeValueInput{{Value: "Red", ColorHex: "#FF0000"}},
	}
	if _, err := svc.CreateAttribute(ctx, req); err != nil {
		t.Fatalf("首次创建失败: %v", err)
	}
	if _, err := svc.CreateAttribute(ctx, req); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("同店同名应冲突，得到 %v", err)
	}

	// 不同店铺同名不冲突
	other := *req
	other.StoreID = 2
	if _, err := svc.CreateAttribute(ctx, &other); err != nil {
		t.Errorf("跨店同名不应冲突: %v", err)
	}
}

func TestCreateAttributeColorHexOnTextType(t *testing.T) {
	svc := setupAttributeTestSvc(t)
	ctx := context.Background()

	_, err := svc.CreateAttribute(ctx, &dto.CreateAttributeReq{
		StoreID: 1,
		Name:    "Material",
		Type:    model.AttributeTypeText,
		Values:  []dto.AttributeValueInput{{Value: "Cotton", ColorHex: "#FFFFFF"}},
	})
	if !errors.Is(err, ErrInvalidValueType) {
		t.Fatalf("text 类型携带色板值应拒绝，得到 %v", err)
	}
}

func TestUpdateAttributeValueListSemantics(t *testing.T) {
	svc := setupAttributeTestSvc(t)
	ctx := context.Background()

	attr, err := svc.CreateAttribute(ctx, &dto.CreateAttributeReq{
		StoreID: 1,
		Name:    "Size",
		Values: []dto.AttributeValueInput{
			{Value: "S"}, // ID 1
			{Value: "M"}, // ID 2
			{Value: "L"}, // ID 3
		},
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	// 整表提交：保留 S (改名)，删除 M/L，新增 XL
	updated, err := svc.UpdateAttribute(ctx, &dto.UpdateAttributeReq{
		ID:      attr.ID,
		StoreID: 1,
		Values: []dto.AttributeValueInput{
			{ID: 1, Value: "Small"},
			{Value: "XL"},
		},
	})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	if len(updated.Values) != 2 {
		t.Fatalf("期望 2 个值，得到 %d", len(updated.Values))
	}
	if updated.Values[0].ID != 1 || updated.Values[0].Value != "Small" {
		t.Errorf("保留值异常: %+v", updated.Values[0])
	}
	// 新值分配 ID 4，不复用已删除的 2/3
	if updated.Values[1].ID != 4 {
		t.Errorf("新值 ID=%d，期望 4 (删除的 ID 不复用)", updated.Values[1].ID)
	}
	if updated.NextValueID != 5 {
		t.Errorf("next_value_id=%d，期望 5", updated.NextValueID)
	}
}

func TestUpdateAttributeKeepsSlug(t *testing.T) {
	svc := setupAttributeTestSvc(t)
	ctx := context.Background()

	attr, err := svc.CreateAttribute(ctx, &dto.CreateAttributeReq{
		StoreID: 1,
		Name:    "Color",
		Type:    model.AttributeTypeColor,
		Values:  []dto.AttributeValueInput{{Value: "Red"}},
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	name := "Colour"
	updated, err := svc.UpdateAttribute(ctx, &dto.UpdateAttributeReq{
		ID:      attr.ID,
		StoreID: 1,
		Name:    &name,
	})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.Name != "Colour" {
		t.Errorf("name=%q", updated.Name)
	}
	if updated.Slug != "color" {
		t.Errorf("改名不应改 slug: %q", updated.Slug)
	}
	if len(updated.Values) != 1 {
		t.Errorf("未提交值列表时不应改动: %d", len(updated.Values))
	}
}

func TestAttributeOwnershipScoped(t *testing.T) {
	svc := setupAttributeTestSvc(t)
	ctx := context.Background()

	attr, err := svc.CreateAttribute(ctx, &dto.CreateAttributeReq{
		StoreID: 1,
		Name:    "Size",
		Values:  []dto.AttributeValueInput{{Value: "S"}},
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	if _, err := svc.GetAttribute(ctx, attr.ID, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("跨店访问应报记录不存在，得到 %v", err)
	}
	if err := svc.DeleteAttribute(ctx, attr.ID, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("跨店删除应报记录不存在，得到 %v", err)
	}
	if err := svc.DeleteAttribute(ctx, attr.ID, 1); err != nil {
		t.Errorf("本店删除应成功: %v", err)
	}
}
